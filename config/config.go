package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"

	SourceS3Object = "s3object"
	SourceBytes    = "bytes"
)

type (
	Config struct {
		HTTP            HTTP
		Log             Log
		CORS            CORS
		AWS             AWS
		S3              S3
		Store           Store
		DynamoDB        DynamoDB
		PG              PG
		Labeler         Labeler
		Kafka           Kafka
		KafkaController KafkaController
		Swagger         Swagger
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT" envDefault:"5000"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	CORS struct {
		FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	}

	AWS struct {
		Region         string        `env:"AWS_REGION,required,notEmpty"`
		Endpoint       string        `env:"AWS_ENDPOINT"`      // S3-compatible store
		DynamoEndpoint string        `env:"DYNAMODB_ENDPOINT"` // DynamoDB Local, independent of AWS_ENDPOINT
		AccessKey      string        `env:"AWS_ACCESS_KEY_ID"`
		SecretKey      string        `env:"AWS_SECRET_ACCESS_KEY"`
		CfgLoadTimeout time.Duration `env:"AWS_CFG_LOAD_TIMEOUT" envDefault:"10s"`
	}

	S3 struct {
		Bucket        string        `env:"S3_BUCKET_NAME,required,notEmpty"`
		UsePathStyle  bool          `env:"S3_USE_PATH_STYLE" envDefault:"false"`
		PresignExpiry time.Duration `env:"S3_PRESIGN_EXPIRY" envDefault:"15m"`
	}

	Store struct {
		Driver string `env:"STORE_DRIVER" envDefault:"dynamodb"`
	}

	DynamoDB struct {
		Table string `env:"DYNAMODB_TABLE_NAME" envDefault:"images"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX" envDefault:"2"`
		URL     string `env:"PG_URL"`
	}

	Labeler struct {
		MinConfidence float32 `env:"REKOGNITION_MIN_CONFIDENCE" envDefault:"80"`
		MaxLabels     int32   `env:"REKOGNITION_MAX_LABELS" envDefault:"100"`
		MaxTags       int     `env:"LABELER_MAX_TAGS" envDefault:"20"`
		ImageSource   string  `env:"LABELER_IMAGE_SOURCE" envDefault:"s3object"`
	}

	// Kafka carries bucket notifications from S3-compatible stores. Empty brokers disable the consumer.
	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS"`
		GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"image-labeler"`
		Topic   string   `env:"KAFKA_TOPIC" envDefault:"bucket-notifications"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"30s"` // download + detect labels + record update
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		RetryBackoff    time.Duration `env:"KAFKA_CONTROLLER_RETRY_BACKOFF" envDefault:"1s"` // first delay, doubles up to 30s
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDynamoDB:
	case StorePostgres:
		if c.PG.URL == "" {
			return fmt.Errorf("PG_URL is required for STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Labeler.ImageSource {
	case SourceS3Object, SourceBytes:
	default:
		return fmt.Errorf("unknown LABELER_IMAGE_SOURCE %q", c.Labeler.ImageSource)
	}

	if c.Labeler.MinConfidence < 0 || c.Labeler.MinConfidence > 100 {
		return fmt.Errorf("REKOGNITION_MIN_CONFIDENCE must be between 0 and 100")
	}

	if c.Labeler.MaxTags <= 0 {
		return fmt.Errorf("LABELER_MAX_TAGS must be positive")
	}

	return nil
}

// KafkaEnabled reports whether bucket notifications should be consumed from Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
