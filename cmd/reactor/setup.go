package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/demo"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/telemetry"
)

// rootOptions are the persistent flags.
type rootOptions struct {
	configPath string
	logLevel   string
	trace      bool
}

// environment is everything a command needs to run the engine.
type environment struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	runtime  *reactive.Runtime

	shutdown []func(context.Context) error
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		wd, werr := os.Getwd()
		if werr != nil {
			return nil, werr
		}
		cfg, err = config.Load(wd)
	}
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.trace {
		cfg.Telemetry.Tracing = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// setup loads the configuration and builds a runtime observed by the
// configured logger, metrics and tracer.
func setup(opts *rootOptions) (*environment, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	env := &environment{
		cfg:      cfg,
		logger:   newLogger(cfg.Log, os.Stderr),
		registry: prometheus.NewRegistry(),
	}
	slog.SetDefault(env.logger)

	observers := []reactive.Observer{telemetry.LogObserver{Logger: env.logger}}

	if cfg.Telemetry.Metrics {
		env.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		env.metrics = telemetry.NewMetrics(
			telemetry.WithNamespace(cfg.Telemetry.Namespace),
			telemetry.WithRegistry(env.registry),
		)
		observers = append(observers, env.metrics)
	}

	if cfg.Telemetry.Tracing {
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(os.Stderr),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, err
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		env.shutdown = append(env.shutdown, tp.Shutdown)
		observers = append(observers, telemetry.NewTracer(
			telemetry.WithTracerName(cfg.Telemetry.TracerName),
			telemetry.WithTracerProvider(tp),
		))
	}

	env.runtime = reactive.NewRuntime(
		reactive.WithConfig(cfg.Runtime),
		reactive.WithLogger(env.logger),
		reactive.WithObserver(telemetry.Multi(observers...)),
	)
	return env, nil
}

// patchRecorder returns the metrics as a patch recorder, or nil when
// metrics are disabled.
func (e *environment) patchRecorder() demo.PatchRecorder {
	if e.metrics == nil {
		return nil
	}
	return e.metrics
}

// close flushes and stops the telemetry exporters.
func (e *environment) close() {
	for _, fn := range e.shutdown {
		if err := fn(context.Background()); err != nil {
			e.logger.Warn("telemetry shutdown failed", "error", err)
		}
	}
}
