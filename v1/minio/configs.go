package minio

// Config defines the configuration for fetching Kismet logs from MinIO or
// any S3-compatible store.
type Config struct {
	Connection ConnectionConfig `yaml:"connection" mapstructure:"connection"`
	Download   DownloadConfig   `yaml:"download" mapstructure:"download"`
}

// ConnectionConfig contains MinIO server connection details.
type ConnectionConfig struct {
	Endpoint        string `yaml:"endpoint" envconfig:"KISMETDB_MINIO_ENDPOINT" mapstructure:"endpoint"`                   // e.g. "localhost:9000"; empty disables remote logs
	AccessKeyID     string `yaml:"access_key_id" envconfig:"KISMETDB_MINIO_ACCESS_KEY_ID" mapstructure:"access_key_id"`    // MinIO access key
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"KISMETDB_MINIO_SECRET" mapstructure:"secret_access_key"` // MinIO secret key
	UseSSL          bool   `yaml:"use_ssl" envconfig:"KISMETDB_MINIO_USE_SSL" mapstructure:"use_ssl"`                     // "https" when true
	Region          string `yaml:"region" envconfig:"KISMETDB_MINIO_REGION" mapstructure:"region"`                        // e.g. "us-east-1"
}

// DownloadConfig controls where fetched logs are written.
type DownloadConfig struct {
	// TempDir is the parent directory for downloaded logs. Empty means os.TempDir().
	TempDir string `yaml:"temp_dir" envconfig:"KISMETDB_MINIO_TEMP_DIR" mapstructure:"temp_dir"`
}
