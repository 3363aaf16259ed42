// Package config loads stencil configuration with Viper from a .stencil.yml
// file, STENCIL_ environment variables and command-line flags.
//
// It covers the template syntax (hole token and component slot marker), the
// default component declarations file, logging and the watch loop.
package config

import (
	"strings"
	"time"

	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/logging"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STENCIL_LOGGING_LEVEL.
const EnvPrefix = "STENCIL"

type Config struct {
	Template   TemplateConfig   `mapstructure:"template" yaml:"template"`
	Components ComponentsConfig `mapstructure:"components" yaml:"components"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Watch      WatchConfig      `mapstructure:"watch" yaml:"watch"`
}

type TemplateConfig struct {
	// Hole separates the static strings of a template file.
	Hole string `mapstructure:"hole" yaml:"hole"`
	// Marker is the tag substring that makes an element a component slot.
	Marker    string `mapstructure:"marker" yaml:"marker"`
	Separator string `mapstructure:"separator" yaml:"separator"`
}

type ComponentsConfig struct {
	// File is the components declaration file used when no flag names one.
	File string `mapstructure:"file" yaml:"file"`
	// Native lists slot names the host builds itself.
	Native []string `mapstructure:"native" yaml:"native"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("template.hole", "${}")
	v.SetDefault("template.marker", "tpl-slot")
	v.SetDefault("template.separator", "-")
	v.SetDefault("components.file", "")
	v.SetDefault("components.native", []string{})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("watch.debounce", 300*time.Millisecond)
}

// Init prepares v to read .stencil.yml (or the file at path) and STENCIL_
// environment variables.
func Init(v *viper.Viper, path string) {
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(".stencil")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load builds the configuration from the global Viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom builds and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, stencilerrors.WrapConfig(err, stencilerrors.ErrCodeConfigInvalid, "decode configuration")
	}

	// Slices set through flags or env arrive as one comma separated string.
	if v.IsSet("components.native") && len(config.Components.Native) == 0 {
		config.Components.Native = v.GetStringSlice("components.native")
	}

	if result := Validate(&config); result.HasErrors() {
		return nil, stencilerrors.NewConfigError(stencilerrors.ErrCodeConfigInvalid,
			"invalid configuration:\n"+result.String())
	}
	return &config, nil
}

// LoggerConfig returns the logger configuration described by c.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Logging.Level); err == nil {
		cfg.Level = level
	}
	cfg.Format = c.Logging.Format
	return cfg
}
