package reactive

import (
	"reflect"

	"github.com/vango-dev/reactor/internal/errors"
)

// contextSlot is one binding appended to a scope. Slots are never
// mutated; providing the same key again appends a newer slot.
type contextSlot struct {
	key   any
	value any
}

// Context is a type-safe key for passing a value down the scope tree
// without threading it through every component.
//
// Example:
//
//	var ThemeCtx = reactive.NewContext[string]("theme")
//
//	ThemeCtx.Provide(root, "dark")
//	theme := ThemeCtx.UseOr(child, "light")
type Context[T any] struct {
	name string
}

// NewContext creates a new context key. Each call creates a distinct key,
// even for the same T and name.
func NewContext[T any](name string) *Context[T] {
	return &Context[T]{name: name}
}

// Name returns the context name used in errors.
func (c *Context[T]) Name() string {
	return c.name
}

// Provide binds v to c on s. Descendants of s (and s itself) see v until
// a nearer binding shadows it.
func (c *Context[T]) Provide(s *Scope, v T) {
	s.provide(c, v)
}

// Use returns the value bound to c on the nearest scope, starting at s
// and walking ancestors.
func (c *Context[T]) Use(s *Scope) (T, error) {
	if v, ok := s.lookup(c); ok {
		return v.(T), nil
	}
	var zero T
	return zero, errors.New(errors.CodeContextNotFound).WithDetailf("no %q provided", c.name)
}

// MustUse is Use that panics when no value is bound.
func (c *Context[T]) MustUse(s *Scope) T {
	v, err := c.Use(s)
	if err != nil {
		panic(err)
	}
	return v
}

// UseOr returns the bound value, or def when there is none.
func (c *Context[T]) UseOr(s *Scope, def T) T {
	if v, ok := s.lookup(c); ok {
		return v.(T)
	}
	return def
}

// typeKey keys a context by the Go type of its value.
type typeKey[T any] struct{}

// ProvideContext binds v on s keyed by its type T.
func ProvideContext[T any](s *Scope, v T) {
	s.provide(typeKey[T]{}, v)
}

// UseContext returns the nearest value of type T provided on s or an
// ancestor.
func UseContext[T any](s *Scope) (T, error) {
	if v, ok := s.lookup(typeKey[T]{}); ok {
		return v.(T), nil
	}
	var zero T
	return zero, errors.New(errors.CodeContextNotFound).
		WithDetailf("no value of type %s provided", reflect.TypeFor[T]())
}

func (s *Scope) provide(key, value any) {
	if s.disposed {
		return
	}
	s.slots = append(s.slots, contextSlot{key: key, value: value})
}

// lookup walks s and its ancestors, newest binding first.
func (s *Scope) lookup(key any) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		for i := len(cur.slots) - 1; i >= 0; i-- {
			if cur.slots[i].key == key {
				return cur.slots[i].value, true
			}
		}
	}
	return nil, false
}
