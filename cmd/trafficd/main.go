package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/config"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/feed"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/messaging"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/pipeline"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/server"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/traffic"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	var logger *zap.Logger
	var err error
	if cfg.Logging.Format == "json" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	if err := cfg.ValidateConfig(logger); err != nil {
		logger.Fatal("Configuration validation failed", zap.Error(err))
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The sensor directory is loaded once at startup and read-only afterwards.
	sensorRetriever := feed.NewSensorRetriever(cfg.Feeds.SensorConfigURL, cfg.Feeds.RequestTimeout, logger)
	sensors, err := sensorRetriever.Retrieve(ctx)
	if err != nil {
		logger.Fatal("Failed to load sensor directory", zap.Error(err))
	}

	store := traffic.NewHotspotStore(logger)
	filter := traffic.NewHotspotFilter()
	resolver := traffic.NewRouteSensorResolver(sensors, logger)
	aggregator := traffic.NewHotspotAggregator(store, logger)
	advisor := traffic.NewRouteChangeAdvisor()

	producer, err := messaging.NewProducer(cfg.Kafka, logger)
	if err != nil {
		logger.Fatal("Failed to create Kafka producer", zap.Error(err))
	}

	adviceSink := messaging.NewAdviceProducer(producer, cfg.Kafka.AdviceTopic)
	hub := server.NewAdviceHub(logger)

	ingestion := pipeline.NewIngestionPipeline(filter, store, logger)
	routes := pipeline.NewRouteAdviceProcessor(resolver, aggregator, advisor, logger, adviceSink, hub)

	ingestQueue := pipeline.NewWorkQueue("traffic-events",
		cfg.Pipeline.QueueSize, cfg.Pipeline.Workers, ingestion.HandleTrafficEvent, logger)
	routeQueue := pipeline.NewWorkQueue("route-changes",
		cfg.Pipeline.QueueSize, cfg.Pipeline.Workers, routes.HandleRouteChange, logger)

	consumers := startConsumers(ctx, cfg, ingestQueue, routeQueue, logger)

	trafficRetriever := feed.NewTrafficRetriever(cfg.Feeds.TrafficDataURL, cfg.Feeds.RequestTimeout, logger)
	emitter := pipeline.NewTrafficEventEmitter(trafficRetriever, producer,
		cfg.Kafka.TrafficEventTopic, cfg.Feeds.PollInterval, logger)
	go emitter.Run(ctx)

	handlers := server.NewHandlers(ingestion, routes, store, producer, hub, logger)
	limiter := server.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger)
	defer limiter.Stop()
	router := server.NewRouter(handlers, hub, limiter, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	cancel()

	for _, consumer := range consumers {
		if err := consumer.Close(); err != nil {
			logger.Error("Failed to close consumer", zap.Error(err))
		}
	}

	if err := ingestQueue.Shutdown(30 * time.Second); err != nil {
		logger.Error("Failed to shutdown ingest queue", zap.Error(err))
	}
	if err := routeQueue.Shutdown(30 * time.Second); err != nil {
		logger.Error("Failed to shutdown route queue", zap.Error(err))
	}

	producer.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// startConsumers subscribes the broker consumers and feeds their messages
// into the pipeline work queues. A full queue drops the message with a
// warning; the broker retains it for the next group member anyway.
func startConsumers(
	ctx context.Context,
	cfg *config.Config,
	ingestQueue, routeQueue *pipeline.WorkQueue,
	logger *zap.Logger,
) []*messaging.Consumer {
	var consumers []*messaging.Consumer

	subscribe := func(kafkaCfg config.KafkaConfig, topic string, handler messaging.MessageHandler) {
		consumer, err := messaging.NewConsumer(kafkaCfg, topic, logger)
		if err != nil {
			logger.Fatal("Failed to create consumer",
				zap.String("topic", topic), zap.Error(err))
		}
		consumers = append(consumers, consumer)
		go func() {
			if err := consumer.Run(ctx, handler); err != nil {
				logger.Error("Consumer stopped",
					zap.String("topic", topic), zap.Error(err))
			}
		}()
	}

	enqueue := func(queue *pipeline.WorkQueue, name string) messaging.MessageHandler {
		return func(key, value []byte) error {
			if !queue.Enqueue(key, value) {
				return fmt.Errorf("%s queue full, dropping message", name)
			}
			return nil
		}
	}

	subscribe(cfg.Kafka, cfg.Kafka.TrafficEventTopic, enqueue(ingestQueue, "traffic event"))
	subscribe(cfg.Kafka, cfg.Kafka.RouteChangeEventTopic, enqueue(routeQueue, "route change"))

	if cfg.Kafka.AdviceLoopback {
		loopbackCfg := cfg.Kafka
		loopbackCfg.GroupID = cfg.Kafka.GroupID + "-advice-loopback"
		subscribe(loopbackCfg, cfg.Kafka.AdviceTopic, messaging.AdviceLogger(logger))
	}

	return consumers
}
