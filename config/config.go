package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	dc "github.com/ncobase/cursorpage/data/config"
	lc "github.com/ncobase/cursorpage/logging/logger/config"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "CURSORPAGE"

// Config represents the configuration implementation.
type Config struct {
	AppName  string
	RunMode  string
	Logger   *lc.Config
	Data     *dc.Config
	Paging   *Paging
	Observes *Observes
	Viper    *viper.Viper
}

// LoadConfig loads the configuration from configPath. With an empty path the
// usual locations are searched and a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/cursorpage")
		v.AddConfigPath("$HOME/.cursorpage")
		v.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppName:  v.GetString("app_name"),
		RunMode:  v.GetString("run_mode"),
		Logger:   lc.GetConfig(v),
		Data:     dc.GetConfig(v),
		Paging:   getPagingConfig(v),
		Observes: getObservesConfig(v),
		Viper:    v,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "cursorpage")
	v.SetDefault("run_mode", "release")
	v.SetDefault("paging.limit", defaultLimit)
	v.SetDefault("paging.max_limit", defaultMaxLimit)
	v.SetDefault("paging.ordering_field", "_id")
	v.SetDefault("paging.ordering", "desc")
	v.SetDefault("paging.response_format", "default")
	v.SetDefault("paging.automatic_pagination", true)
	v.SetDefault("observes.sentry.sample_rate", 1.0)
	v.SetDefault("observes.tracer.service_name", "cursorpage")
	v.SetDefault("observes.tracer.sampling_rate", 1.0)
	v.SetDefault("observes.tracer.max_export_batch_size", 512)
	v.SetDefault("observes.tracer.batch_timeout", 5*time.Second)
	v.SetDefault("observes.tracer.export_timeout", 30*time.Second)
}
