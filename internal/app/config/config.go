package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageDriverRedis  = "redis"
	StorageDriverMongo  = "mongo"
	StorageDriverMemory = "memory"

	NotifierLog  = "log"
	NotifierNATS = "nats"
)

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT_CART_SERVICE" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	TimeoutGraceful time.Duration `yaml:"timeout_graceful_shutdown" env:"HTTP_TIMEOUT_GRACEFUL" env-default:"15s"`
}

type GRPCServerConfig struct {
	Port              string        `yaml:"port" env:"GRPC_PORT_CART_SERVICE" env-default:"50055"`
	MaxConnectionIdle time.Duration `yaml:"max_connection_idle" env-default:"15m"`
}

type CatalogConfig struct {
	BaseURL string        `yaml:"base_url" env:"CATALOG_BASE_URL" env-default:"http://localhost:3333"`
	Timeout time.Duration `yaml:"timeout" env:"CATALOG_TIMEOUT" env-default:"5s"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"redis"`
	SnapshotKey string `yaml:"snapshot_key" env:"CART_SNAPSHOT_KEY" env-default:"@RocketShoes:cart"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type MongoDBConfig struct {
	URI        string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	User       string `yaml:"user" env:"MONGO_USER"`
	Password   string `yaml:"password" env:"MONGO_PASSWORD"`
	Database   string `yaml:"database" env:"MONGO_DATABASE" env-default:"cart_service_db"`
	Collection string `yaml:"collection" env:"MONGO_COLLECTION" env-default:"snapshots"`
}

type NATSConfig struct {
	URL                 string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
	NotificationSubject string `yaml:"notification_subject" env:"NATS_NOTIFICATION_SUBJECT" env-default:"storefront.notifications"`
	CartChangedSubject  string `yaml:"cart_changed_subject" env:"NATS_CART_CHANGED_SUBJECT" env-default:"storefront.cart.changed"`
}

type NotifierConfig struct {
	Kind string `yaml:"kind" env:"NOTIFIER" env-default:"log"`
}

type MetricsConfig struct {
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"9095"`
}

type TracingConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	GRPCServer GRPCServerConfig `yaml:"grpc_server"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	MongoDB    MongoDBConfig    `yaml:"mongo"`
	NATS       NATSConfig       `yaml:"nats"`
	Notifier   NotifierConfig   `yaml:"notifier"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Logger     LoggerConfig     `yaml:"logger"`
}

// Validate rejects driver names the app cannot wire.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverRedis, StorageDriverMongo, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Notifier.Kind {
	case NotifierLog, NotifierNATS:
	default:
		return fmt.Errorf("unknown notifier %q", c.Notifier.Kind)
	}
	if c.Storage.SnapshotKey == "" {
		return errors.New("storage snapshot key must not be empty")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, cfg.Validate()
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			log.Printf("Warning: Config file not found at %s, attempting to load from environment variables only.", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, cfg.Validate()
		}
		return nil, err
	}
	return &cfg, cfg.Validate()
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH_CART_SERVICE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
