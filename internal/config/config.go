package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultJWTSecret = "change-me-marketplace-secret"

// Storage providers.
const (
	StorageCloudinary = "cloudinary"
	StorageS3         = "s3"
)

// Config holds all configuration for the service.
// Every field is read from a flat environment variable; nested structs are squashed.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`

	HTTP      HTTPConfig      `mapstructure:",squash"`
	GRPC      GRPCConfig      `mapstructure:",squash"`
	Mongo     MongoConfig     `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	NATS      NATSConfig      `mapstructure:",squash"`
	Storage   StorageConfig   `mapstructure:",squash"`
	SMTP      SMTPConfig      `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	Upload    UploadConfig    `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Log       logger.Config   `mapstructure:",squash"`
	Telemetry TelemetryConfig `mapstructure:",squash"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"HTTP_PORT"`
	ReadTimeout     time.Duration `mapstructure:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"HTTP_SHUTDOWN_TIMEOUT"`
}

type GRPCConfig struct {
	HealthPort string `mapstructure:"GRPC_HEALTH_PORT"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"MONGO_URI"`
	Database       string        `mapstructure:"MONGO_DATABASE"`
	MaxPoolSize    uint64        `mapstructure:"MONGO_MAX_POOL_SIZE"`
	MinPoolSize    uint64        `mapstructure:"MONGO_MIN_POOL_SIZE"`
	ConnectTimeout time.Duration `mapstructure:"MONGO_CONNECT_TIMEOUT"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"REDIS_ENABLED"`
	Address  string        `mapstructure:"REDIS_ADDR"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	ItemTTL  time.Duration `mapstructure:"ITEM_CACHE_TTL"`
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"NATS_ENABLED"`
	URL     string `mapstructure:"NATS_URL"`
}

// StorageConfig selects and configures the image store.
type StorageConfig struct {
	Provider string        `mapstructure:"STORAGE_PROVIDER"`
	Timeout  time.Duration `mapstructure:"STORAGE_TIMEOUT"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_UPLOAD_FOLDER"`

	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"SMTP_ENABLED"`
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT"`
	Username string `mapstructure:"SMTP_USERNAME"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM"`
}

type AuthConfig struct {
	JWTSecret  string `mapstructure:"JWT_SECRET"`
	CookieName string `mapstructure:"AUTH_COOKIE_NAME"`
}

type UploadConfig struct {
	TempDir     string        `mapstructure:"UPLOAD_TMP_DIR"`
	MaxFileSize int64         `mapstructure:"UPLOAD_MAX_FILE_SIZE"`
	MaxFiles    int           `mapstructure:"UPLOAD_MAX_FILES"`
	TempTTL     time.Duration `mapstructure:"UPLOAD_TMP_TTL"`
}

type SchedulerConfig struct {
	CleanupInterval time.Duration `mapstructure:"SCHEDULER_CLEANUP_INTERVAL"`
	ExpiryInterval  time.Duration `mapstructure:"SCHEDULER_EXPIRY_INTERVAL"`
}

type TelemetryConfig struct {
	MetricsPort  string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "marketplace-service")

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("HTTP_READ_TIMEOUT", "15s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "60s")
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("GRPC_HEALTH_PORT", "50055")

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("MONGO_DATABASE", "marketplace")
	v.SetDefault("MONGO_MAX_POOL_SIZE", 100)
	v.SetDefault("MONGO_MIN_POOL_SIZE", 5)
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ITEM_CACHE_TTL", "10m")

	v.SetDefault("NATS_ENABLED", true)
	v.SetDefault("NATS_URL", "nats://localhost:4222")

	v.SetDefault("STORAGE_PROVIDER", StorageCloudinary)
	v.SetDefault("STORAGE_TIMEOUT", "30s")
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CLOUDINARY_UPLOAD_FOLDER", "marketplace")
	v.SetDefault("S3_ENDPOINT", "localhost:9000")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "marketplace-images")
	v.SetDefault("S3_USE_SSL", false)

	v.SetDefault("SMTP_ENABLED", false)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("AUTH_COOKIE_NAME", "token")

	v.SetDefault("UPLOAD_TMP_DIR", filepath.Join(os.TempDir(), "marketplace-uploads"))
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 5<<20)
	v.SetDefault("UPLOAD_MAX_FILES", 12)
	v.SetDefault("UPLOAD_TMP_TTL", "1h")

	v.SetDefault("SCHEDULER_CLEANUP_INTERVAL", "15m")
	v.SetDefault("SCHEDULER_EXPIRY_INTERVAL", "1h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT_FILE", "stdout")

	v.SetDefault("PROMETHEUS_METRICS_PORT", "9095")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

// Load reads configuration from the environment. A .env file, if any, is
// loaded into the environment by main before this is called.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	cfg.Storage.Provider = strings.ToLower(strings.TrimSpace(cfg.Storage.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.Mongo.Database == "" {
		errs = append(errs, errors.New("MONGO_DATABASE is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Storage.Provider {
	case StorageCloudinary, StorageS3:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_PROVIDER %q is not one of %s, %s", c.Storage.Provider, StorageCloudinary, StorageS3))
	}
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_FILE_SIZE must be positive"))
	}
	if c.Upload.MaxFiles <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_FILES must be positive"))
	}
	return errors.Join(errs...)
}

// LogSummary reports the loaded configuration without secrets and warns about insecure defaults.
func (c *Config) LogSummary(appLogger *logger.Logger) {
	if c.Auth.JWTSecret == defaultJWTSecret {
		appLogger.Warn("JWT_SECRET is set to its default insecure value. Please set a strong secret in your environment.")
	}
	if c.Storage.Provider == StorageCloudinary && c.Storage.CloudinaryCloudName == "" {
		appLogger.Warn("STORAGE_PROVIDER is cloudinary but CLOUDINARY_CLOUD_NAME is empty")
	}
	if c.SMTP.Enabled && c.SMTP.From == "" {
		appLogger.Warn("SMTP is enabled without SMTP_FROM")
	}

	appLogger.Info("Configuration loaded",
		zap.String("service_name", c.ServiceName),
		zap.String("http_port", c.HTTP.Port),
		zap.String("grpc_health_port", c.GRPC.HealthPort),
		zap.Bool("mongo_uri_present", c.Mongo.URI != ""),
		zap.String("mongo_database", c.Mongo.Database),
		zap.Bool("redis_enabled", c.Redis.Enabled),
		zap.Bool("nats_enabled", c.NATS.Enabled),
		zap.String("storage_provider", c.Storage.Provider),
		zap.Bool("smtp_enabled", c.SMTP.Enabled),
		zap.String("upload_tmp_dir", c.Upload.TempDir),
		zap.String("prometheus_port", c.Telemetry.MetricsPort),
		zap.String("otel_endpoint", c.Telemetry.OTLPEndpoint),
	)
}
