package main

import (
	"fmt"
	"os"
	"reflect"

	"github.com/spf13/viper"

	"github.com/jonathanfoster/python-kismet-db/v1/export"
	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
	"github.com/jonathanfoster/python-kismet-db/v1/logger"
	"github.com/jonathanfoster/python-kismet-db/v1/metrics"
	"github.com/jonathanfoster/python-kismet-db/v1/minio"
	"github.com/jonathanfoster/python-kismet-db/v1/tracer"
)

// AppConfig aggregates the configuration of every module the command wires.
type AppConfig struct {
	Logger  logger.Config   `mapstructure:"logger"`
	Metrics metrics.Config  `mapstructure:"metrics"`
	Tracer  tracer.Config   `mapstructure:"tracer"`
	Reader  kismetdb.Config `mapstructure:"reader"`
	Minio   minio.Config    `mapstructure:"minio"`
	Export  export.Config   `mapstructure:"export"`
}

// loadConfig reads path (YAML, optional) and overlays the KISMETDB_*
// environment variables named in each module's envconfig tags.
func loadConfig(path string) (AppConfig, error) {
	v := viper.New()

	v.SetDefault("logger.level", logger.Info)
	v.SetDefault("logger.service_name", "kismetdb")
	v.SetDefault("metrics.namespace", "kismetdb")
	v.SetDefault("metrics.service_name", "kismetdb")
	v.SetDefault("tracer.service_name", "kismetdb")
	v.SetDefault("export.sink", export.SinkJSONL)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := bindEnv(v, "", reflect.TypeOf(AppConfig{})); err != nil {
		return AppConfig{}, err
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Logger.Encoding == "" && isTerminal(os.Stderr) {
		cfg.Logger.Encoding = logger.EncodingConsole
	}
	return cfg, nil
}

// bindEnv walks t's mapstructure keys and binds every field carrying an
// envconfig tag to that variable, so Unmarshal sees keys absent from the file.
func bindEnv(v *viper.Viper, prefix string, t reflect.Type) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := f.Tag.Get("mapstructure")
		if key == "" || key == "-" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}

		if f.Type.Kind() == reflect.Struct {
			if err := bindEnv(v, key, f.Type); err != nil {
				return err
			}
			continue
		}
		if env := f.Tag.Get("envconfig"); env != "" {
			if err := v.BindEnv(key, env); err != nil {
				return fmt.Errorf("failed to bind %s: %w", env, err)
			}
		}
	}
	return nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
