// Package config loads and validates websg host configuration.
//
// A configuration file is YAML. Missing keys keep their defaults, unknown
// keys are rejected, and the result is checked with struct validation tags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
)

// Config is the root of a websg configuration file.
type Config struct {
	Log     LogConfig     `yaml:"log" json:"log"`
	Runtime RuntimeConfig `yaml:"runtime" json:"runtime"`
	Loop    LoopConfig    `yaml:"loop" json:"loop"`
	Inspect InspectConfig `yaml:"inspect" json:"inspect,omitempty"`
}

// LogConfig selects the host log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `yaml:"format" json:"format" validate:"oneof=console json" jsonschema:"enum=console,enum=json"`
}

// RuntimeConfig bounds the resources a guest may use.
type RuntimeConfig struct {
	ModuleName       string `yaml:"module_name" json:"module_name" validate:"required"`
	MemoryLimitPages uint32 `yaml:"memory_limit_pages" json:"memory_limit_pages" validate:"min=1,max=65536" jsonschema:"minimum=1,maximum=65536"`
	MaxNameLength    uint32 `yaml:"max_name_length" json:"max_name_length" validate:"min=1" jsonschema:"minimum=1"`
	MaxNodes         int    `yaml:"max_nodes" json:"max_nodes,omitempty" validate:"min=0" jsonschema:"minimum=0"`
}

// LoopConfig controls the update loop.
type LoopConfig struct {
	TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval" validate:"gt=0" jsonschema:"description=time between update calls in nanoseconds"`
	MaxTicks     uint64        `yaml:"max_ticks" json:"max_ticks,omitempty"`
}

// InspectConfig enables the HTTP inspect server when Addr is set.
type InspectConfig struct {
	Addr string `yaml:"addr" json:"addr,omitempty" validate:"omitempty,hostname_port"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Runtime: RuntimeConfig{
			ModuleName:       "websg",
			MemoryLimitPages: 256,
			MaxNameLength:    1024,
		},
		Loop: LoopConfig{
			TickInterval: time.Second / 60,
		},
	}
}

// Load reads and validates the file at path. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &sdkerrors.ConfigError{Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate reports field names using their yaml keys.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate checks c against its validation tags. The first failing field is
// reported as a *errors.ConfigError.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		return &sdkerrors.ConfigError{
			Field: field,
			Err:   fmt.Errorf("failed on %q rule (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &sdkerrors.ConfigError{Err: err}
}

// NewLogger builds the host logger described by c.
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, &sdkerrors.ConfigError{Field: "log.level", Err: err}
	}

	var zc zap.Config
	switch c.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, &sdkerrors.ConfigError{Field: "log.format", Err: fmt.Errorf("unknown format %q", c.Format)}
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = level > zapcore.DebugLevel

	return zc.Build()
}
