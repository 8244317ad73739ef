package reactive

import (
	"github.com/vango-dev/reactor/internal/errors"
)

// Effect is an eager computation: it runs once when created and again
// whenever a value it read during its previous run changes. Effects are
// where the reactive graph meets the outside world.
//
// The rule receives a scope that lives for exactly one run. Signals, memos,
// effects, and cleanups created on it are disposed before the next run and
// when the effect itself is disposed.
type Effect struct {
	n *node
}

// EffectOption is an option for configuring an Effect.
type EffectOption interface {
	isEffectOption()
	applyEffect(n *node)
}

type effectOptionFunc func(*node)

func (f effectOptionFunc) isEffectOption()     {}
func (f effectOptionFunc) applyEffect(n *node) { f(n) }

// WithName sets the failure site the effect reports under. Boundaries key
// their error sets by site, so two effects sharing a name share an entry.
// Default: "effect-<id>".
func WithName(site string) EffectOption {
	return effectOptionFunc(func(n *node) {
		n.name = site
	})
}

// CreateEffect creates an effect owned by s. Outside a batch or flush the
// effect runs before CreateEffect returns and the error of that first
// flush is returned alongside the effect; inside one it is queued.
//
// Example:
//
//	reactive.CreateEffect(s, func(run *reactive.Scope) error {
//	    fmt.Println("Count is:", count.Get())
//	    reactive.OnCleanup(run, func() { fmt.Println("Cleanup") })
//	    return nil
//	})
func CreateEffect(s *Scope, rule func(*Scope) error, opts ...EffectOption) (*Effect, error) {
	if s.disposed {
		return nil, errors.New(errors.CodeScopeDisposed).WithDetail("cannot create an effect")
	}

	rt := s.rt
	n := &node{
		rt:     rt,
		seq:    rt.nextSeq(),
		kind:   KindEffect,
		owner:  s,
		state:  stateDirty,
		effect: rule,
	}
	for _, opt := range opts {
		opt.applyEffect(n)
	}
	n.id = rt.alloc(n)
	s.adoptNode(n)

	rt.enqueue(n)
	return &Effect{n: n}, rt.maybeFlush()
}

// Dispose stops the effect: its edges are dropped, its run scope is
// disposed (running per-run cleanups) and its boundary entry, if any, is
// removed.
func (e *Effect) Dispose() {
	if e.n.disposed {
		return
	}
	rt := e.n.rt
	err := rt.deferFlush(func() {
		e.n.owner.removeNode(e.n)
		e.n.dispose()
	})
	if err != nil {
		rt.logger.Warn("reactive: flush after effect dispose failed", "site", e.n.site(), "error", err)
	}
}

// IsDisposed reports whether the effect has been disposed.
func (e *Effect) IsDisposed() bool {
	return e.n.disposed
}

// Site returns the failure site of the effect.
func (e *Effect) Site() string {
	return e.n.site()
}

// Dependencies returns the number of sources read by the last run.
func (e *Effect) Dependencies() int {
	return len(e.n.deps)
}

// Failed reports whether the last run of the effect failed.
func (e *Effect) Failed() bool {
	return e.n.failed
}
