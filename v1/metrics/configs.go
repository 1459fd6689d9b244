package metrics

// Default port for metrics server if none is specified.
const DefaultMetricsAddress = ":9090"

// Config defines the configuration structure for the Prometheus metrics server.
type Config struct {
	// Address determines the network address where the Prometheus
	// metrics HTTP server listens. An empty address disables the server;
	// metrics are still collected and can be gathered from Registry.
	//
	// Example values:
	//   - ":9090"   → Listen on all interfaces, port 9090
	//   - "127.0.0.1:9100" → Listen only on localhost, port 9100
	//
	// This setting can be configured via:
	//   - YAML configuration with the "address" key
	//   - Environment variable KISMETDB_METRICS_ADDRESS
	Address string `yaml:"address" envconfig:"KISMETDB_METRICS_ADDRESS" mapstructure:"address"`

	// EnableDefaultCollectors controls whether the built-in Go runtime
	// and process metrics are automatically registered.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"KISMETDB_METRICS_ENABLE_DEFAULT_COLLECTORS" mapstructure:"enable_default_collectors"`

	// Namespace sets a global prefix for all metrics registered by this service.
	//
	// Example:
	//   Namespace: "kismetdb"
	//   → Metric name becomes "kismetdb_operations_total"
	Namespace string `yaml:"namespace" envconfig:"KISMETDB_METRICS_NAMESPACE" mapstructure:"namespace"`

	// ServiceName is attached to every metric as the constant "service" label.
	ServiceName string `yaml:"service_name" envconfig:"KISMETDB_METRICS_SERVICE_NAME" mapstructure:"service_name"`
}
