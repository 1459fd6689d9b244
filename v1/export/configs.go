package export

import "time"

// Sink names accepted by Config.Sink.
const (
	SinkJSONL    = "jsonl"
	SinkKafka    = "kafka"
	SinkRabbit   = "rabbit"
	SinkPostgres = "postgres"
)

const (
	// DefaultBatchSize is the number of envelopes handed to a sink per Write.
	DefaultBatchSize = 500

	// DefaultKafkaWriteTimeout bounds a single produce request.
	DefaultKafkaWriteTimeout = 10 * time.Second

	// DefaultKafkaMaxAttempts is how often a batch is retried before failing.
	DefaultKafkaMaxAttempts = 3

	// DefaultRabbitPort is the plain AMQP port.
	DefaultRabbitPort = 5672
)

// Config defines how decoded records leave the process.
type Config struct {
	// Sink selects the destination: "jsonl" (default), "kafka", "rabbit" or "postgres".
	Sink string `yaml:"sink" envconfig:"KISMETDB_EXPORT_SINK" mapstructure:"sink"`

	// BatchSize is the number of envelopes per sink write.
	//
	// Default: 500
	BatchSize int `yaml:"batch_size" envconfig:"KISMETDB_EXPORT_BATCH_SIZE" mapstructure:"batch_size"`

	Kafka    KafkaConfig    `yaml:"kafka" mapstructure:"kafka"`
	Rabbit   RabbitConfig   `yaml:"rabbit" mapstructure:"rabbit"`
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// KafkaConfig configures the Kafka sink.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" envconfig:"KISMETDB_KAFKA_BROKERS" mapstructure:"brokers"`
	Topic   string   `yaml:"topic" envconfig:"KISMETDB_KAFKA_TOPIC" mapstructure:"topic"`

	// RequiredAcks is -1 (all replicas), 0 (none) or 1 (leader). Default: -1.
	RequiredAcks int `yaml:"required_acks" envconfig:"KISMETDB_KAFKA_REQUIRED_ACKS" mapstructure:"required_acks"`

	// CompressionCodec is one of "gzip", "snappy", "lz4", "zstd" or empty for none.
	CompressionCodec string `yaml:"compression_codec" envconfig:"KISMETDB_KAFKA_COMPRESSION" mapstructure:"compression_codec"`

	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"KISMETDB_KAFKA_WRITE_TIMEOUT" mapstructure:"write_timeout"`
	MaxAttempts  int           `yaml:"max_attempts" envconfig:"KISMETDB_KAFKA_MAX_ATTEMPTS" mapstructure:"max_attempts"`
}

// RabbitConfig configures the RabbitMQ sink.
type RabbitConfig struct {
	Host         string `yaml:"host" envconfig:"KISMETDB_RABBIT_HOST" mapstructure:"host"`
	Port         uint   `yaml:"port" envconfig:"KISMETDB_RABBIT_PORT" mapstructure:"port"`
	User         string `yaml:"user" envconfig:"KISMETDB_RABBIT_USER" mapstructure:"user"`
	Password     string `yaml:"password" envconfig:"KISMETDB_RABBIT_PASSWORD" mapstructure:"password"`
	IsSSLEnabled bool   `yaml:"is_ssl_enabled" envconfig:"KISMETDB_RABBIT_SSL" mapstructure:"is_ssl_enabled"`

	// ExchangeName is declared on connect when ExchangeType is set.
	ExchangeName string `yaml:"exchange_name" envconfig:"KISMETDB_RABBIT_EXCHANGE" mapstructure:"exchange_name"`
	ExchangeType string `yaml:"exchange_type" envconfig:"KISMETDB_RABBIT_EXCHANGE_TYPE" mapstructure:"exchange_type"`

	// RoutingKey defaults to "kismet.<table>".
	RoutingKey string `yaml:"routing_key" envconfig:"KISMETDB_RABBIT_ROUTING_KEY" mapstructure:"routing_key"`
}

// PostgresConfig configures the Postgres archive sink.
type PostgresConfig struct {
	Host     string `yaml:"host" envconfig:"KISMETDB_POSTGRES_HOST" mapstructure:"host"`
	Port     string `yaml:"port" envconfig:"KISMETDB_POSTGRES_PORT" mapstructure:"port"`
	User     string `yaml:"user" envconfig:"KISMETDB_POSTGRES_USER" mapstructure:"user"`
	Password string `yaml:"password" envconfig:"KISMETDB_POSTGRES_PASSWORD" mapstructure:"password"`
	DbName   string `yaml:"db_name" envconfig:"KISMETDB_POSTGRES_DB" mapstructure:"db_name"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"KISMETDB_POSTGRES_SSLMODE" mapstructure:"ssl_mode"`
}

func (c Config) withDefaults() Config {
	if c.Sink == "" {
		c.Sink = SinkJSONL
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Kafka.RequiredAcks == 0 {
		c.Kafka.RequiredAcks = -1
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
	}
	if c.Kafka.MaxAttempts == 0 {
		c.Kafka.MaxAttempts = DefaultKafkaMaxAttempts
	}
	if c.Rabbit.Port == 0 {
		c.Rabbit.Port = DefaultRabbitPort
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	return c
}
