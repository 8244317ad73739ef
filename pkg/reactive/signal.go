package reactive

import "reflect"

// Signal is a reactive value container.
// Reading a Signal's value while a computation runs (memo evaluation or
// effect execution) subscribes that computation to the signal; writing a
// different value re-runs it.
type Signal[T any] struct {
	rt  *Runtime
	src *source

	// value is the current signal value.
	value T

	// equal is the equality function used to determine if the value changed.
	// If nil, uses default equality checking.
	equal func(T, T) bool
}

// NewSignal creates a new signal owned by s, at version 0.
func NewSignal[T any](s *Scope, initial T) *Signal[T] {
	rt := s.rt
	sig := &Signal[T]{
		rt:    rt,
		src:   &source{seq: rt.nextSeq()},
		value: initial,
	}
	s.adoptSource(sig.src)
	return sig
}

// Get returns the current value and subscribes the running computation.
func (s *Signal[T]) Get() T {
	s.rt.track(s.src)
	return s.value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Set updates the signal's value. If the new value equals the current
// one nothing happens. Otherwise the version is bumped, dependents are
// invalidated, and, outside a batch or flush, the affected effects run
// before Set returns. The returned error is the flush error.
func (s *Signal[T]) Set(value T) error {
	if s.src.disposed {
		s.rt.logger.Debug("reactive: write to disposed signal ignored", "signal", s.src.seq)
		return nil
	}
	if s.equals(s.value, value) {
		return nil
	}
	s.value = value
	return s.rt.sourceChanged(s.src)
}

// Update reads, transforms and writes the value with the same change
// detection as Set.
func (s *Signal[T]) Update(fn func(T) T) error {
	return s.Set(fn(s.value))
}

// WithEquals returns the signal configured with a custom equality function.
// This is useful for custom types where reflect.DeepEqual is too expensive
// or has incorrect semantics.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// Version returns the number of changes the signal has seen.
func (s *Signal[T]) Version() uint64 {
	return s.src.version
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.src.seq
}

// Subscribers returns the number of live computations subscribed.
func (s *Signal[T]) Subscribers() int {
	n := 0
	for _, id := range s.src.subs {
		if s.rt.lookup(id) != nil {
			n++
		}
	}
	return n
}

// Disposed reports whether the owning scope has been disposed.
func (s *Signal[T]) Disposed() bool {
	return s.src.disposed
}

// equals checks if two values are equal using the configured equality function.
func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// Read is the read half of a signal.
type Read[T any] func() T

// Write is the write half of a signal.
type Write[T any] struct {
	sig *Signal[T]
}

// Set writes v.
func (w Write[T]) Set(v T) error {
	return w.sig.Set(v)
}

// Update applies fn to the current value.
func (w Write[T]) Update(fn func(T) T) error {
	return w.sig.Update(fn)
}

// CreateSignal creates a signal and returns separate read and write
// handles, for passing write access down a tree without read access or
// the other way round.
func CreateSignal[T any](s *Scope, initial T) (Read[T], Write[T]) {
	sig := NewSignal(s, initial)
	return sig.Get, Write[T]{sig: sig}
}

// defaultEquals provides type-appropriate equality checking.
// Uses == for common comparable types and reflect.DeepEqual for others.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		// Fall back to reflect.DeepEqual for slices, maps, structs, etc.
		return reflect.DeepEqual(a, b)
	}
}
