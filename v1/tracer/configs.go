package tracer

// Config defines the tracer configuration.
type Config struct {
	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"KISMETDB_TRACER_SERVICE_NAME" mapstructure:"service_name"`

	// AppEnv is recorded as the deployment environment.
	AppEnv string `yaml:"app_env" envconfig:"KISMETDB_TRACER_APP_ENV" mapstructure:"app_env"`

	// EnableExport sends spans to an OTLP/HTTP collector. Without it spans
	// are created (so trace IDs reach the logs) but never leave the process.
	EnableExport bool `yaml:"enable_export" envconfig:"KISMETDB_TRACER_ENABLE_EXPORT" mapstructure:"enable_export"`

	// Endpoint is the collector URL, e.g. "http://localhost:4318". When
	// empty the exporter falls back to the OTEL_EXPORTER_OTLP_* environment.
	Endpoint string `yaml:"endpoint" envconfig:"KISMETDB_TRACER_ENDPOINT" mapstructure:"endpoint"`
}
