package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/turtacn/OrphaMine/pkg/errors"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "ORPHAMINE"

// newViper builds a Viper instance with YAML file type, the ORPHAMINE_ env
// prefix, automatic env binding, and a "." → "_" key replacer so that
// "ingest.page_size" resolves to ORPHAMINE_INGEST_PAGE_SIZE.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "bind environment")
	}
	return v, nil
}

// Load reads the YAML file at configPath (skipped when empty), merges
// ORPHAMINE_* overrides, applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrCodeConfiguration, "read config file %q", configPath)
		}
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from ORPHAMINE_* variables and defaults only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "unmarshal configuration")
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set.  Missing
// files are ignored; with no arguments ".env" is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return apperrors.Wrapf(err, apperrors.ErrCodeConfiguration, "load env file %q", p)
		}
	}
	return nil
}

//Personal.AI order the ending
