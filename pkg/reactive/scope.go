package reactive

import "sync/atomic"

var scopeIDCounter atomic.Uint64

// Scope owns reactive primitives. When a Scope is disposed, all signals,
// memos, effects, and child scopes it contains are also disposed.
//
// Scopes form a hierarchy mirroring the component tree: each component
// renders into a child of its parent's scope. Context bindings and error
// boundaries are found by walking this hierarchy upwards.
type Scope struct {
	rt *Runtime
	id uint64

	// parent is nil for a root scope.
	parent   *Scope
	children []*Scope

	nodes   []*node
	sources []*source

	// cleanups are manual cleanup functions registered via OnCleanup.
	cleanups []func()

	// slots are context bindings, newest last.
	slots []contextSlot

	// boundary is set on the guarded scope of a Boundary.
	boundary *Boundary

	disposed bool
}

// NewScope creates a root scope.
func (rt *Runtime) NewScope() *Scope {
	return &Scope{
		rt: rt,
		id: scopeIDCounter.Add(1),
	}
}

// NewChild creates a scope owned by s. A child of a disposed scope is
// created already disposed.
func (s *Scope) NewChild() *Scope {
	child := &Scope{
		rt:     s.rt,
		id:     scopeIDCounter.Add(1),
		parent: s,
	}
	if s.disposed {
		child.disposed = true
		return child
	}
	s.children = append(s.children, child)
	return child
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Runtime returns the runtime the scope belongs to.
func (s *Scope) Runtime() *Runtime {
	return s.rt
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed returns true if this scope has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed
}

// Children returns the number of live child scopes.
func (s *Scope) Children() int {
	return len(s.children)
}

func (s *Scope) adoptNode(n *node) {
	if s.disposed {
		n.dispose()
		return
	}
	s.nodes = append(s.nodes, n)
}

func (s *Scope) adoptSource(src *source) {
	if s.disposed {
		src.disposed = true
		return
	}
	s.sources = append(s.sources, src)
}

func (s *Scope) removeNode(n *node) {
	for i, existing := range s.nodes {
		if existing == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// nearestBoundary returns the closest boundary guarding s.
func (s *Scope) nearestBoundary() *Boundary {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.boundary != nil {
			return cur.boundary
		}
	}
	return nil
}

// OnCleanup registers fn to run when s is disposed. On a disposed scope
// fn runs immediately.
func OnCleanup(s *Scope, fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Dispose cleans up the scope and everything it owns: child scopes in
// reverse creation order, then computation nodes, then signals, then
// cleanup functions in reverse registration order. Writes performed by
// cleanups are batched and flushed once disposal completes.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	rt := s.rt
	if err := rt.deferFlush(s.dispose); err != nil {
		rt.logger.Warn("reactive: flush after dispose failed", "scope", s.id, "error", err)
	}
}

func (s *Scope) dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].dispose()
	}

	nodes := s.nodes
	s.nodes = nil
	for _, n := range nodes {
		n.dispose()
	}

	sources := s.sources
	s.sources = nil
	for _, src := range sources {
		src.disposed = true
		for _, id := range src.subs {
			if n := s.rt.lookup(id); n != nil {
				n.removeDep(src)
			}
		}
		src.subs = nil
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		s.runCleanup(cleanups[i])
	}

	s.slots = nil
}

// runCleanup runs fn, logging instead of propagating a panic so that the
// remaining cleanups still run.
func (s *Scope) runCleanup(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.rt.logger.Error("reactive: cleanup panicked", "scope", s.id, "panic", r)
		}
	}()
	fn()
}
