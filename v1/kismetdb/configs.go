package kismetdb

// DecodePolicy selects what a Records iterator does when a converter fails.
type DecodePolicy string

const (
	// DecodeAbort stops iteration at the first DecodeError and reports it
	// through Records.Err. This is the default.
	DecodeAbort DecodePolicy = "abort"

	// DecodeSkip logs the DecodeError, counts the row as skipped and moves on.
	DecodeSkip DecodePolicy = "skip"
)

// DefaultMaxOpenConns bounds the connections a Table keeps to its log file.
const DefaultMaxOpenConns = 2

// Config defines the top-level configuration for reading Kismet logs.
type Config struct {
	// DecodePolicy controls how rows that fail to decode are handled.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "decode_policy" key
	//   - Environment variable KISMETDB_DECODE_POLICY
	//
	// Default: "abort"
	DecodePolicy DecodePolicy `yaml:"decode_policy" envconfig:"KISMETDB_DECODE_POLICY" mapstructure:"decode_policy"`

	// MaxOpenConns caps the SQLite connections opened per table.
	//
	// Default: 2
	MaxOpenConns int `yaml:"max_open_conns" envconfig:"KISMETDB_MAX_OPEN_CONNS" mapstructure:"max_open_conns"`

	// LogQueries routes every executed statement to the logger at debug level.
	LogQueries bool `yaml:"log_queries" envconfig:"KISMETDB_LOG_QUERIES" mapstructure:"log_queries"`
}

// withDefaults fills zero values.
func (c Config) withDefaults() Config {
	if c.DecodePolicy == "" {
		c.DecodePolicy = DecodeAbort
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = DefaultMaxOpenConns
	}
	return c
}

// Valid reports whether p is a known policy.
func (p DecodePolicy) Valid() bool {
	return p == DecodeAbort || p == DecodeSkip
}
