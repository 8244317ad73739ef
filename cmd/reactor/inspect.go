package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/demo"
	"github.com/vango-dev/reactor/internal/inspect"
)

func inspectCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve the demo and metrics over HTTP",
		Long: `Mount the demo on a runtime and serve it over HTTP.

Endpoints:
  GET  /healthz               liveness
  GET  /metrics               Prometheus metrics
  GET  /debug/demo            demo state as JSON
  POST /debug/demo/{action}   run a demo action, argument in ?arg=

Examples:
  reactor inspect
  reactor inspect --addr=0.0.0.0:7070
  curl -X POST 'localhost:7070/debug/demo/list.remove?arg=1'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")

	return cmd
}

func runInspect(opts *rootOptions, addr string) error {
	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.close()

	if addr == "" {
		addr = env.cfg.Inspect.Addr
	}

	app, err := demo.NewApp(env.runtime, env.cfg.Demo, env.patchRecorder())
	if err != nil {
		return err
	}
	defer app.Dispose()

	serverOpts := []inspect.Option{inspect.WithLogger(env.logger.With("component", "inspect"))}
	if env.metrics != nil {
		serverOpts = append(serverOpts, inspect.WithNodeGauge(env.metrics))
	}
	srv := inspect.New(app, env.registry, serverOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner()
	info("inspect listening on http://%s", addr)
	return srv.Run(ctx, addr)
}
