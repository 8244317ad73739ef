package reactive

import (
	"strconv"
	"time"
)

// NodeKind distinguishes the two kinds of computation node.
type NodeKind uint8

const (
	// KindDerived is a pure, lazily evaluated, memoized computation.
	KindDerived NodeKind = iota + 1

	// KindEffect is an eager computation with no readers of its own.
	KindEffect
)

// String returns a human-readable name for the kind.
func (k NodeKind) String() string {
	switch k {
	case KindDerived:
		return "derived"
	case KindEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// nodeState is the cache state of a node.
type nodeState uint8

const (
	// stateClean: the cached result is current.
	stateClean nodeState = iota
	// stateCheck: an upstream derived node may have changed.
	stateCheck
	// stateDirty: a direct dependency changed; the node must re-run.
	stateDirty
)

// source is the subscribable half of a signal or derived node.
type source struct {
	seq     uint64
	version uint64
	height  int

	// subs are weak references to subscribed nodes.
	subs []NodeID

	// node is the derived node producing this source, nil for signals.
	node *node

	disposed bool
}

// subscribe adds id to the subscribers, deduplicating.
func (s *source) subscribe(id NodeID) {
	for _, existing := range s.subs {
		if existing == id {
			return
		}
	}
	s.subs = append(s.subs, id)
}

// unsubscribe removes id from the subscribers.
func (s *source) unsubscribe(id NodeID) {
	for i, existing := range s.subs {
		if existing == id {
			// Order doesn't matter; swap with last.
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

// node is a computation: either derived (memo) or effect.
type node struct {
	rt   *Runtime
	id   NodeID
	seq  uint64
	kind NodeKind
	name string

	owner *Scope

	// deps are the sources read during the most recent run.
	deps []*source

	state  nodeState
	height int

	// ran is false until the first successful run completes. A derived
	// node whose rule failed is reset to false so the next read retries.
	ran bool

	// failed records that the last attempt to run an effect failed.
	failed bool

	running bool
	queued  bool

	// rerun records that an effect invalidated itself while running.
	rerun bool
	// coalesced is set while an effect performs its single coalesced re-run.
	coalesced bool

	// causes are the effects whose runs led to this effect being queued
	// during the current flush.
	causes map[NodeID]struct{}

	disposed bool

	// Derived variant.
	out     *source
	compute func() (changed bool)

	// Effect variant.
	effect   func(*Scope) error
	runScope *Scope
}

// site returns the failure-site identifier of the node.
func (n *node) site() string {
	if n.name != "" {
		return n.name
	}
	return n.kind.String() + "-" + strconv.FormatUint(n.seq, 10)
}

// addDep records src as a dependency of n for the current run.
func (n *node) addDep(src *source) {
	for _, d := range n.deps {
		if d == src {
			return
		}
	}
	n.deps = append(n.deps, src)
	src.subscribe(n.id)
}

// clearDeps drops every edge recorded by the previous run.
func (n *node) clearDeps() {
	for _, d := range n.deps {
		d.unsubscribe(n.id)
	}
	n.deps = n.deps[:0]
}

// removeDep drops a single edge; used when src is disposed.
func (n *node) removeDep(src *source) {
	for i, d := range n.deps {
		if d == src {
			n.deps = append(n.deps[:i], n.deps[i+1:]...)
			return
		}
	}
}

// updateHeight recomputes the node's topological height from its
// dependencies. Signals have height 0.
func (n *node) updateHeight() {
	h := 0
	for _, d := range n.deps {
		if d.height >= h {
			h = d.height + 1
		}
	}
	if h == 0 {
		h = 1
	}
	n.height = h
	if n.out != nil {
		n.out.height = h
	}
}

// stale raises the node's state and propagates "check" downstream. It is
// the only place where effects are queued as a consequence of a write.
func (n *node) stale(state nodeState) {
	if n.disposed {
		return
	}
	if n.running {
		// Invalidated by its own run.
		if n.kind == KindDerived {
			panic(cycleError(n.site(), "derived computation invalidated a value it depends on"))
		}
		if n.coalesced {
			panic(cycleError(n.site(), "effect keeps invalidating itself"))
		}
		n.rerun = true
		return
	}
	if n.state >= state {
		return
	}
	if n.kind == KindEffect {
		// enqueueStale panics on a causal cycle; the state is raised only
		// once the effect is actually queued.
		n.rt.enqueueStale(n)
		n.state = state
		return
	}
	wasClean := n.state == stateClean
	n.state = state
	if wasClean {
		n.rt.markSubs(n.out, stateCheck)
	}
}

// update brings a derived node up to date, recomputing it if needed.
func (n *node) update() {
	if n.running {
		panic(cycleError(n.site(), "derived computation read itself while evaluating"))
	}
	if n.disposed {
		return
	}
	if n.state == stateCheck {
		n.rt.settleSources(n)
	}
	if n.state == stateDirty || !n.ran {
		n.recompute()
	}
	n.state = stateClean
}

// recompute runs a derived node's rule with fresh dependency tracking.
func (n *node) recompute() {
	rt := n.rt
	start := time.Now()

	n.running = true
	n.state = stateClean
	n.clearDeps()
	rt.push(n)

	ok := false
	defer func() {
		rt.pop()
		n.running = false
		if !ok {
			// Clean but without a valid value: the next read retries and
			// new writes to the dependencies read so far still propagate.
			n.state = stateClean
			n.ran = false
		}
	}()

	changed := n.compute()
	ok = true
	n.ran = true
	rt.countRun(KindDerived, time.Since(start))
	n.updateHeight()

	if changed {
		n.out.version++
		rt.forSubs(n.out, func(sub *node) {
			if sub.state == stateCheck {
				sub.state = stateDirty
			}
		})
	}
}

// dispose detaches the node from the graph and frees its arena slot.
func (n *node) dispose() {
	if n.disposed {
		return
	}
	n.disposed = true
	n.clearDeps()
	if n.runScope != nil {
		n.runScope.Dispose()
		n.runScope = nil
	}
	if n.out != nil {
		n.out.disposed = true
		n.out.subs = nil
	}
	if n.kind == KindEffect {
		if b := n.owner.nearestBoundary(); b != nil {
			b.clear(n.site())
		}
	}
	n.rt.release(n.id)
}
