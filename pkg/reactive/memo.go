package reactive

// Memo is a cached computation that automatically tracks its dependencies.
// When any dependency changes, the memo is invalidated and will recompute
// on the next read.
//
// Memos are lazy: they only compute their value when read.
// If multiple signals change before a read, the memo only recomputes once.
// When a recomputation produces a value equal to the cached one, the
// memo's own subscribers are not re-run.
type Memo[T any] struct {
	n *node

	// value is the cached computed value.
	value T

	// equal is the equality function for determining value changes.
	equal func(T, T) bool
}

// NewMemo creates a new memo owned by s. The rule is not run until the
// memo is first read.
func NewMemo[T any](s *Scope, rule func() T) *Memo[T] {
	rt := s.rt
	m := &Memo[T]{}
	n := &node{
		rt:    rt,
		seq:   rt.nextSeq(),
		kind:  KindDerived,
		owner: s,
		state: stateDirty,
	}
	n.out = &source{seq: n.seq, node: n}
	n.compute = func() bool {
		next := rule()
		changed := !n.ran || !m.equals(m.value, next)
		m.value = next
		return changed
	}
	n.id = rt.alloc(n)
	s.adoptNode(n)
	m.n = n
	return m
}

// Get returns the memo's value, recomputing if necessary, and subscribes
// the running computation. A panic of the rule (or ErrCycleDetected)
// propagates to the caller; use TryGet to receive it as an error.
func (m *Memo[T]) Get() T {
	// Subscribe even when the rule panics, so the reader re-runs once the
	// memo's inputs change.
	defer m.n.rt.track(m.n.out)
	m.n.update()
	return m.value
}

// Peek returns the memo's value without subscribing.
// Still triggers recomputation if the value is stale.
func (m *Memo[T]) Peek() T {
	m.n.update()
	return m.value
}

// TryGet is Get with failures returned as an error.
func (m *Memo[T]) TryGet() (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(m.n.site(), r)
		}
	}()
	return m.Get(), nil
}

// WithEquals configures the memo with a custom equality function.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

// WithName sets the site used in errors raised by this memo.
func (m *Memo[T]) WithName(name string) *Memo[T] {
	m.n.name = name
	return m
}

// Version returns the number of times the computed value changed.
func (m *Memo[T]) Version() uint64 {
	return m.n.out.version
}

// Dependencies returns the number of sources read by the last run.
func (m *Memo[T]) Dependencies() int {
	return len(m.n.deps)
}

// Dispose detaches the memo from the graph.
func (m *Memo[T]) Dispose() {
	m.n.owner.removeNode(m.n)
	m.n.dispose()
}

// equals checks if two values are equal.
func (m *Memo[T]) equals(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}

// Derive returns a read handle over rule without caching: every read
// re-evaluates rule in the caller's tracking context. This is the
// lightweight "derived signal" for cheap computations.
func Derive[T any](rule func() T) Read[T] {
	return rule
}
