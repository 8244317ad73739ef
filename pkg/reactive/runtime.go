package reactive

import (
	"log/slog"
	"sort"
	"time"

	"github.com/vango-dev/reactor/internal/config"
)

// Observer receives scheduler events. Implementations must not read or
// write reactive values.
type Observer interface {
	// FlushStarted is called when a flush begins.
	FlushStarted()

	// FlushFinished is called when a flush ends, with the error returned
	// to the flush caller (nil on success).
	FlushFinished(stats FlushStats, err error)

	// NodeRan is called after every node run.
	NodeRan(kind NodeKind, d time.Duration)

	// ErrorCaptured is called when a boundary absorbs a failure.
	ErrorCaptured(site string, err error)
}

// FlushStats summarizes one flush.
type FlushStats struct {
	// Waves is the number of passes over the effect queue. Effects queued
	// by writes made during a pass run in the next one.
	Waves int

	// Effects and Derived count node runs by kind.
	Effects int
	Derived int

	// Captured counts failures absorbed by boundaries.
	Captured int

	// Dropped counts queued effects discarded after a structural error.
	Dropped int

	Duration time.Duration
}

// Runs returns the total number of node runs.
func (s FlushStats) Runs() int {
	return s.Effects + s.Derived
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithObserver registers a scheduler observer.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		rt.observer = o
	}
}

// WithMaxFlushRuns sets the number of node runs after which a single
// flush is aborted with ErrCycleDetected.
func WithMaxFlushRuns(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.maxFlushRuns = n
		}
	}
}

// WithConfig applies runtime configuration loaded from a config file.
func WithConfig(cfg config.RuntimeConfig) Option {
	return func(rt *Runtime) {
		if cfg.MaxFlushRuns > 0 {
			rt.maxFlushRuns = cfg.MaxFlushRuns
		}
		rt.debug = cfg.Debug
	}
}

// Runtime owns a reactive graph: the node arena, the active-computation
// stack, the batch and the effect queue. A Runtime is not safe for
// concurrent use.
type Runtime struct {
	logger       *slog.Logger
	observer     Observer
	maxFlushRuns int
	debug        bool

	slots []slot
	free  []uint32
	seq   uint64

	stack []*node

	batchDepth int
	flushing   bool
	queue      []*node

	// current is the effect whose run is in progress during a flush.
	current *node

	stats FlushStats
}

// NewRuntime creates a Runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		logger:       slog.Default(),
		maxFlushRuns: config.DefaultMaxFlushRuns,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// LiveNodes returns the number of undisposed computation nodes.
func (rt *Runtime) LiveNodes() int {
	return len(rt.slots) - len(rt.free)
}

// Batching reports whether a batch is open.
func (rt *Runtime) Batching() bool {
	return rt.batchDepth > 0
}

// Flushing reports whether a flush is in progress.
func (rt *Runtime) Flushing() bool {
	return rt.flushing
}

// markSubs raises the state of every live subscriber of src. A cycle found
// at one subscriber is raised only after the others have been marked, so
// no subscriber keeps serving the value src had before the write.
func (rt *Runtime) markSubs(src *source, state nodeState) {
	var cycle any
	rt.forSubs(src, func(n *node) {
		defer func() {
			if r := recover(); r != nil && cycle == nil {
				cycle = r
			}
		}()
		n.stale(state)
	})
	if cycle != nil {
		panic(cycle)
	}
}

// forSubs calls fn for each live subscriber of src, pruning ids of
// disposed nodes along the way.
func (rt *Runtime) forSubs(src *source, fn func(*node)) {
	if len(src.subs) == 0 {
		return
	}
	subs := make([]NodeID, len(src.subs))
	copy(subs, src.subs)

	dead := false
	for _, id := range subs {
		n := rt.lookup(id)
		if n == nil {
			dead = true
			continue
		}
		fn(n)
	}

	if dead {
		live := src.subs[:0]
		for _, id := range src.subs {
			if rt.lookup(id) != nil {
				live = append(live, id)
			}
		}
		src.subs = live
	}
}

// sourceChanged is called by a signal after its value changed.
func (rt *Runtime) sourceChanged(src *source) error {
	src.version++
	rt.markSubs(src, stateDirty)
	return rt.maybeFlush()
}

// enqueue adds an effect to the queue.
func (rt *Runtime) enqueue(n *node) {
	if n.queued || n.disposed {
		return
	}
	n.queued = true
	rt.queue = append(rt.queue, n)
}

// enqueueStale queues an effect invalidated by a write, recording which
// running effects caused it. An effect caused, transitively, by its own
// run in this flush is a cycle.
func (rt *Runtime) enqueueStale(n *node) {
	if cur := rt.current; cur != nil {
		if cur == n {
			panic(cycleError(n.site(), "effect invalidated itself"))
		}
		if _, ok := cur.causes[n.id]; ok {
			panic(cycleError(n.site(), "effect re-triggered by an effect it caused"))
		}
		if n.causes == nil {
			n.causes = make(map[NodeID]struct{}, len(cur.causes)+1)
		}
		for id := range cur.causes {
			n.causes[id] = struct{}{}
		}
		n.causes[cur.id] = struct{}{}
	}
	rt.enqueue(n)
}

// settleSources brings the derived dependencies of n up to date, in
// dependency order, stopping as soon as one of them changed and marked n
// dirty.
func (rt *Runtime) settleSources(n *node) {
	deps := make([]*source, len(n.deps))
	copy(deps, n.deps)
	for _, d := range deps {
		if d.node == nil {
			continue
		}
		d.node.update()
		if n.state == stateDirty {
			return
		}
	}
}

// countRun records a node run in the current flush.
func (rt *Runtime) countRun(kind NodeKind, d time.Duration) {
	if rt.flushing {
		switch kind {
		case KindEffect:
			rt.stats.Effects++
		case KindDerived:
			rt.stats.Derived++
		}
		if rt.stats.Runs() > rt.maxFlushRuns {
			panic(cycleError("flush", "flush exceeded the maximum number of node runs"))
		}
	}
	if rt.observer != nil {
		rt.observer.NodeRan(kind, d)
	}
}

// flush runs queued effects wave by wave until the queue is empty.
func (rt *Runtime) flush() (err error) {
	if rt.flushing || len(rt.queue) == 0 {
		return nil
	}

	rt.flushing = true
	rt.stats = FlushStats{}
	start := time.Now()
	if rt.observer != nil {
		rt.observer.FlushStarted()
	}

	defer func() {
		rt.flushing = false
		rt.stats.Duration = time.Since(start)
		stats := rt.stats
		if rt.debug {
			rt.logger.Debug("reactive: flush finished",
				"waves", stats.Waves,
				"effects", stats.Effects,
				"derived", stats.Derived,
				"captured", stats.Captured,
				"duration", stats.Duration,
				"error", err)
		}
		if rt.observer != nil {
			rt.observer.FlushFinished(stats, err)
		}
	}()

	for len(rt.queue) > 0 {
		wave := rt.queue
		rt.queue = nil
		sort.SliceStable(wave, func(i, j int) bool {
			if wave[i].height != wave[j].height {
				return wave[i].height < wave[j].height
			}
			return wave[i].seq < wave[j].seq
		})
		rt.stats.Waves++

		for i, n := range wave {
			n.queued = false
			if n.disposed {
				continue
			}

			runErr := rt.settle(n)
			n.causes = nil
			if runErr == nil {
				continue
			}

			if IsStructural(runErr) {
				rt.drop(append(wave[i+1:len(wave):len(wave)], rt.queue...))
				rt.queue = nil
				rt.logger.Warn("reactive: flush aborted",
					"site", n.site(),
					"error", runErr,
					"dropped", rt.stats.Dropped)
				return runErr
			}

			if b := n.owner.nearestBoundary(); b != nil {
				rt.stats.Captured++
				rt.logger.Debug("reactive: failure captured by boundary",
					"site", n.site(), "error", runErr)
				if rt.observer != nil {
					rt.observer.ErrorCaptured(n.site(), runErr)
				}
				b.capture(n.site(), runErr)
				continue
			}

			// No boundary: abort, keeping the rest queued for the next flush.
			rt.queue = append(wave[i+1:len(wave):len(wave)], rt.queue...)
			return runErr
		}
	}
	return nil
}

// drop discards queued effects after a structural failure.
func (rt *Runtime) drop(nodes []*node) {
	for _, n := range nodes {
		n.queued = false
		n.causes = nil
		if !n.disposed && n.state != stateClean {
			n.state = stateClean
			rt.stats.Dropped++
		}
	}
}

// settle brings an effect's derived dependencies up to date and runs the
// effect if one of its inputs actually changed. An effect whose previous
// attempt failed always runs.
func (rt *Runtime) settle(n *node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(n.site(), r)
			n.state = stateClean
			n.failed = true
		}
	}()

	if n.failed {
		n.state = stateDirty
	}
	if n.state == stateCheck {
		rt.settleSources(n)
	}
	if n.state != stateDirty {
		n.state = stateClean
		return nil
	}
	return rt.execute(n)
}

// execute runs an effect, then performs at most one coalesced re-run if
// the effect invalidated itself.
func (rt *Runtime) execute(n *node) error {
	err := rt.runEffect(n)
	if n.rerun && !n.disposed {
		n.rerun = false
		n.coalesced = true
		err = rt.runEffect(n)
		n.coalesced = false
	}
	return err
}

// runEffect performs one run of an effect.
func (rt *Runtime) runEffect(n *node) (err error) {
	start := time.Now()

	n.running = true
	n.failed = false
	n.state = stateClean
	n.clearDeps()
	if n.runScope != nil {
		n.runScope.Dispose()
	}
	n.runScope = n.owner.NewChild()

	prev := rt.current
	rt.current = n
	rt.push(n)

	defer func() {
		if r := recover(); r != nil {
			err = recovered(n.site(), r)
		}
		rt.pop()
		rt.current = prev
		n.running = false
		n.ran = true
		n.updateHeight()

		if err != nil {
			n.failed = true
			if IsStructural(err) {
				n.rerun = false
			}
		} else if b := n.owner.nearestBoundary(); b != nil {
			b.clear(n.site())
		}
		rt.countRunSafe(KindEffect, time.Since(start), &err)
	}()

	if ruleErr := n.effect(n.runScope); ruleErr != nil {
		return ruleFailure(n.site(), ruleErr)
	}
	return nil
}

// countRunSafe is countRun for deferred contexts: the run budget panic is
// turned into an error instead of escaping the deferred function.
func (rt *Runtime) countRunSafe(kind NodeKind, d time.Duration, err *error) {
	defer func() {
		if r := recover(); r != nil && *err == nil {
			*err = recovered("flush", r)
		}
	}()
	rt.countRun(kind, d)
}
