package logger

// Log levels accepted in Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Output encodings accepted in Config.Encoding.
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// Config defines the logger configuration.
type Config struct {
	// Level is one of debug, info, warning or error. Anything else is info.
	Level string `yaml:"level" envconfig:"KISMETDB_LOG_LEVEL" mapstructure:"level"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" envconfig:"KISMETDB_SERVICE_NAME" mapstructure:"service_name"`

	// EnableTracing adds trace_id and span_id to entries logged through the
	// *WithContext methods when the context carries a span.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"KISMETDB_LOG_TRACING" mapstructure:"enable_tracing"`

	// Encoding is "json" (default) or "console". The command line tool uses
	// console output when attached to a terminal.
	Encoding string `yaml:"encoding" envconfig:"KISMETDB_LOG_ENCODING" mapstructure:"encoding"`
}
