package telemetry

import (
	"log/slog"
	"time"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// multi fans events out to several observers in order.
type multi []reactive.Observer

// Multi combines observers. Nil observers are skipped.
func Multi(observers ...reactive.Observer) reactive.Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) FlushStarted() {
	for _, o := range m {
		o.FlushStarted()
	}
}

func (m multi) FlushFinished(stats reactive.FlushStats, err error) {
	for _, o := range m {
		o.FlushFinished(stats, err)
	}
}

func (m multi) NodeRan(kind reactive.NodeKind, d time.Duration) {
	for _, o := range m {
		o.NodeRan(kind, d)
	}
}

func (m multi) ErrorCaptured(site string, err error) {
	for _, o := range m {
		o.ErrorCaptured(site, err)
	}
}

// LogObserver logs flushes at debug level and captured errors at info
// level.
type LogObserver struct {
	Logger *slog.Logger
}

func (l LogObserver) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// FlushStarted implements reactive.Observer.
func (l LogObserver) FlushStarted() {}

// FlushFinished implements reactive.Observer.
func (l LogObserver) FlushFinished(stats reactive.FlushStats, err error) {
	if err != nil {
		l.logger().Warn("flush failed", "error", err, "waves", stats.Waves, "runs", stats.Runs())
		return
	}
	l.logger().Debug("flush",
		"waves", stats.Waves,
		"effects", stats.Effects,
		"derived", stats.Derived,
		"captured", stats.Captured,
		"duration", stats.Duration)
}

// NodeRan implements reactive.Observer.
func (l LogObserver) NodeRan(reactive.NodeKind, time.Duration) {}

// ErrorCaptured implements reactive.Observer.
func (l LogObserver) ErrorCaptured(site string, err error) {
	l.logger().Info("error captured by boundary", "site", site, "error", err)
}
