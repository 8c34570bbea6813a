package dyte

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// SinkPolicy decides how re-registering an audio sink on a participant that
// already has one maps onto native sink installs.
type SinkPolicy int

const (
	// SinkPolicyInstallOnce installs the native sink once; re-registration
	// only swaps the Go sink.
	SinkPolicyInstallOnce SinkPolicy = iota
	// SinkPolicyReinstall removes and re-installs the native sink on every
	// re-registration.
	SinkPolicyReinstall
	// SinkPolicyAlways issues a native install on every registration.
	SinkPolicyAlways
)

var sinkPolicyNames = [...]string{
	SinkPolicyInstallOnce: "once",
	SinkPolicyReinstall:   "reinstall",
	SinkPolicyAlways:      "always",
}

func (p SinkPolicy) String() string {
	if p.Valid() {
		return sinkPolicyNames[p]
	}
	return fmt.Sprintf("SinkPolicy(%d)", int(p))
}

// Valid reports whether p is a known policy.
func (p SinkPolicy) Valid() bool {
	return p >= 0 && int(p) < len(sinkPolicyNames)
}

// ParseSinkPolicy parses "once", "reinstall" or "always".
func ParseSinkPolicy(s string) (SinkPolicy, error) {
	for i, name := range sinkPolicyNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return SinkPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSinkPolicy, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p SinkPolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSinkPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *SinkPolicy) UnmarshalText(text []byte) error {
	v, err := ParseSinkPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Config is the environment configuration of the bridge.
type Config struct {
	// LibPath is a libmobilecore file or the directory holding it.
	LibPath string `env:"DYTE_LIB_PATH"`
	// ShimPath is a dyteshim file or the directory holding it.
	ShimPath   string     `env:"DYTE_SHIM_PATH"`
	SinkPolicy SinkPolicy `env:"DYTE_AUDIO_SINK_POLICY" envDefault:"once"`
	// LogLevel filters native shim diagnostics.
	LogLevel slog.Level `env:"DYTE_LOG_LEVEL" envDefault:"info"`
}

// ConfigFromEnv loads Config from environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Options converts the configuration into session options.
func (c Config) Options() []Option {
	return []Option{WithConfig(c), WithSinkPolicy(c.SinkPolicy)}
}
