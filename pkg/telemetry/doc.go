// Package telemetry provides observability for reactive runtimes.
//
// Metrics and Tracer both implement reactive.Observer and are installed
// with reactive.WithObserver. Use Multi to install more than one:
//
//	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	tracer := telemetry.NewTracer()
//	rt := reactive.NewRuntime(reactive.WithObserver(telemetry.Multi(metrics, tracer)))
//
// Metrics exports Prometheus counters and histograms for flushes, node runs,
// captured errors and keyed-list patches. Tracer records one OpenTelemetry
// span per flush using the global tracer provider unless another is
// configured.
package telemetry
