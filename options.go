package dyte

import (
	"log/slog"

	"github.com/dyte-io/dyte-go/hostlock"
	"github.com/dyte-io/dyte-go/internal/native"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dyte-io/dyte-go"

type options struct {
	core   native.Core
	lock   *hostlock.Lock
	logger *slog.Logger
	policy SinkPolicy
	// policySet records an explicit WithSinkPolicy, which wins over Config.
	policySet bool
	tracer    trace.Tracer
	config    *Config
}

// Option configures a Session.
type Option func(*options)

// WithCore uses core instead of loading libmobilecore.
func WithCore(core Core) Option {
	return func(o *options) { o.core = core }
}

// WithHostLock sets the host lock callbacks run under. Defaults to
// hostlock.Global().
func WithHostLock(l *hostlock.Lock) Option {
	return func(o *options) { o.lock = l }
}

// WithLogger sets the session logger. Defaults to the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSinkPolicy sets the audio sink re-registration policy.
func WithSinkPolicy(p SinkPolicy) Option {
	return func(o *options) {
		o.policy = p
		o.policySet = true
	}
}

// WithTracer sets the tracer for session spans. Defaults to the global
// tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithConfig sets the configuration used to load the native libraries and
// the default sink policy. Without it the configuration is read from the
// environment when the libraries are loaded.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = &cfg }
}

func buildOptions(opts []Option) options {
	o := options{policy: SinkPolicyInstallOnce}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lock == nil {
		o.lock = hostlock.Global()
	}
	if o.logger == nil {
		o.logger = logger()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o
}
