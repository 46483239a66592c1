package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/pipeline"
	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/traffic"
)

// ProducerMetrics exposes broker producer counters to the stats endpoint.
type ProducerMetrics interface {
	Metrics() map[string]int64
}

// Handlers serves the operational API: stats and hotspot lookups.
type Handlers struct {
	ingestion *pipeline.IngestionPipeline
	routes    *pipeline.RouteAdviceProcessor
	store     *traffic.HotspotStore
	producer  ProducerMetrics
	hub       *AdviceHub
	logger    *zap.Logger
}

// NewHandlers wires the pipeline components into the operational API.
func NewHandlers(
	ingestion *pipeline.IngestionPipeline,
	routes *pipeline.RouteAdviceProcessor,
	store *traffic.HotspotStore,
	producer ProducerMetrics,
	hub *AdviceHub,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		ingestion: ingestion,
		routes:    routes,
		store:     store,
		producer:  producer,
		hub:       hub,
		logger:    logger,
	}
}

// GetStats returns the pipeline, store and producer counters.
func (h *Handlers) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ingestion":      h.ingestion.Stats(),
		"routes":         h.routes.Stats(),
		"producer":       h.producer.Metrics(),
		"advice_clients": h.hub.ClientCount(),
	})
}

// GetSensorHotspots returns the current hotspot snapshot for one sensor.
// An unknown sensor id yields an empty object, not an error.
func (h *Handlers) GetSensorHotspots(c *gin.Context) {
	sensorID, err := strconv.Atoi(c.Param("sensorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sensor id must be an integer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sensorId": sensorID,
		"hotspots": h.store.HotspotsOfSensor(sensorID),
	})
}

// NewRouter builds the gin engine with middleware and routes. The rate
// limiter covers the API group only; health and the advice socket stay
// unthrottled.
func NewRouter(handlers *Handlers, hub *AdviceHub, limiter *RateLimiter, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(RequestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(SecurityHeaders())

	router.GET("/health", HealthCheck())
	router.GET("/ws/advice", hub.HandleWebSocket)

	api := router.Group("/api/v1")
	api.Use(limiter.Limit())
	{
		api.GET("/health", HealthCheck())
		api.GET("/stats", handlers.GetStats)
		api.GET("/hotspots/:sensorId", handlers.GetSensorHotspots)
	}

	return router
}
