package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Kafka    KafkaConfig    `json:"kafka"`
	Feeds    FeedsConfig    `json:"feeds"`
	Pipeline PipelineConfig `json:"pipeline"`
	Logging  LoggingConfig  `json:"logging"`
}

type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Environment  string        `json:"environment"`

	RateLimitRPS   int `json:"rate_limit_rps"`
	RateLimitBurst int `json:"rate_limit_burst"`
}

type KafkaConfig struct {
	BootstrapServers string `json:"bootstrap_servers"`
	SecurityProtocol string `json:"security_protocol"`
	SASLMechanism    string `json:"sasl_mechanism"`
	SASLUsername     string `json:"sasl_username"`
	SASLPassword     string `json:"sasl_password"`
	GroupID          string `json:"group_id"`

	TrafficEventTopic     string `json:"traffic_event_topic"`
	RouteChangeEventTopic string `json:"route_change_event_topic"`
	AdviceTopic           string `json:"advice_topic"`

	// AdviceLoopback enables the demo consumer that reads the advice topic
	// back and logs every advisory.
	AdviceLoopback bool `json:"advice_loopback"`
}

type FeedsConfig struct {
	TrafficDataURL  string        `json:"traffic_data_url"`
	SensorConfigURL string        `json:"sensor_config_url"`
	PollInterval    time.Duration `json:"poll_interval"`
	RequestTimeout  time.Duration `json:"request_timeout"`
}

type PipelineConfig struct {
	QueueSize int `json:"queue_size"`
	Workers   int `json:"workers"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),

			RateLimitRPS:   getEnvAsInt("SERVER_RATE_LIMIT_RPS", 50),
			RateLimitBurst: getEnvAsInt("SERVER_RATE_LIMIT_BURST", 100),
		},
		Kafka: KafkaConfig{
			BootstrapServers:      getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092"),
			SecurityProtocol:      getEnv("KAFKA_SECURITY_PROTOCOL", "PLAINTEXT"),
			SASLMechanism:         getEnv("KAFKA_SASL_MECHANISM", ""),
			SASLUsername:          getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:          getEnv("KAFKA_SASL_PASSWORD", ""),
			GroupID:               getEnv("KAFKA_GROUP_ID", "traffic-advisory"),
			TrafficEventTopic:     getEnv("KAFKA_TRAFFIC_EVENT_TOPIC", "traffic-event"),
			RouteChangeEventTopic: getEnv("KAFKA_ROUTE_CHANGE_EVENT_TOPIC", "vehicle-route-change-event"),
			AdviceTopic:           getEnv("KAFKA_ADVICE_TOPIC", "vehicle-route-change-advice"),
			AdviceLoopback:        getEnvAsBool("KAFKA_ADVICE_LOOPBACK", false),
		},
		Feeds: FeedsConfig{
			TrafficDataURL:  getEnv("TRAFFIC_DATA_URL", "http://miv.opendata.belfla.be/miv/verkeersdata"),
			SensorConfigURL: getEnv("SENSOR_CONFIG_URL", "http://miv.opendata.belfla.be/miv/configuratie/xml"),
			PollInterval:    getEnvAsDuration("FEED_POLL_INTERVAL", 5*time.Minute),
			RequestTimeout:  getEnvAsDuration("FEED_REQUEST_TIMEOUT", 10*time.Second),
		},
		Pipeline: PipelineConfig{
			QueueSize: getEnvAsInt("PIPELINE_QUEUE_SIZE", 1024),
			Workers:   getEnvAsInt("PIPELINE_WORKERS", 4),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func (c *Config) ValidateConfig(logger *zap.Logger) error {
	var errors []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "server port must be between 1 and 65535")
	}

	if c.Kafka.BootstrapServers == "" {
		errors = append(errors, "Kafka bootstrap servers are required")
	}

	if c.Kafka.TrafficEventTopic == "" || c.Kafka.RouteChangeEventTopic == "" || c.Kafka.AdviceTopic == "" {
		errors = append(errors, "all Kafka topics are required")
	}

	if c.Feeds.TrafficDataURL == "" {
		errors = append(errors, "traffic data URL is required")
	}

	if c.Feeds.SensorConfigURL == "" {
		errors = append(errors, "sensor config URL is required")
	}

	if c.Feeds.PollInterval < time.Minute {
		logger.Warn("feed poll interval below one minute, upstream publishes per minute",
			zap.Duration("poll_interval", c.Feeds.PollInterval))
	}

	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst < c.Server.RateLimitRPS {
		errors = append(errors, "rate limit burst must be at least the per-second rate")
	}

	if c.Pipeline.QueueSize <= 0 {
		errors = append(errors, "pipeline queue size must be positive")
	}

	if c.Pipeline.Workers <= 0 {
		errors = append(errors, "pipeline worker count must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, ", "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
