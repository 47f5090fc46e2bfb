// Package config loads ringpipe settings from flags, RINGPIPE_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable names.
const EnvPrefix = "RINGPIPE"

// Config holds ringpipe settings. "-" for Input or Output means stdin or
// stdout.
type Config struct {
	Input       string `mapstructure:"in" validate:"required"`
	Output      string `mapstructure:"out" validate:"required"`
	Capacity    int    `mapstructure:"capacity" validate:"gt=0"`
	ChunkSize   int    `mapstructure:"chunk" validate:"gt=0,ltefield=Capacity"`
	MetricsAddr string `mapstructure:"metrics-addr" validate:"omitempty,hostname_port"`
	LogLevel    string `mapstructure:"log-level" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Flags returns the ringpipe flag set with its defaults.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ringpipe", pflag.ContinueOnError)
	fs.String("in", "-", "input file, - for stdin")
	fs.String("out", "-", "output file, - for stdout")
	fs.Int("capacity", 1<<20, "ring capacity in bytes")
	fs.Int("chunk", 64<<10, "largest single read in bytes")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("config", "", "optional config file (yaml, json or toml)")
	return fs
}

// Load parses args into fs, merges environment and config file values through
// v and validates the result.
func Load(v *viper.Viper, fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", strings.ToLower(fe.Field()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config: invalid settings: %s", strings.Join(msgs, "; "))
}
