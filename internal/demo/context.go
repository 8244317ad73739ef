package demo

import (
	"github.com/vango-dev/reactor/pkg/reactive"
)

// ContextProvider owns a value and provides its setter to descendants
// through the type-keyed context. Consumers change the value without any
// reference to the provider.
type ContextProvider struct {
	value    *reactive.Signal[int]
	consumer *ContextConsumer
}

// ContextConsumer finds the provided setter on its scope.
type ContextConsumer struct {
	set reactive.Write[int]
}

// NewContextProvider renders the value under "context/" and mounts a
// consumer in a child scope.
func NewContextProvider(s *reactive.Scope, screen *Screen) (*ContextProvider, error) {
	read, write := reactive.CreateSignal(s, 0)
	p := &ContextProvider{}
	reactive.ProvideContext(s, write)

	if _, err := reactive.CreateEffect(s, func(*reactive.Scope) error {
		screen.Setf("context/value", "<p>%d</p>", read())
		return nil
	}, reactive.WithName("context/value")); err != nil {
		return nil, err
	}

	consumer, err := NewContextConsumer(s.NewChild())
	if err != nil {
		return nil, err
	}
	p.consumer = consumer
	return p, nil
}

// NewContextConsumer looks up the setter provided above s.
func NewContextConsumer(s *reactive.Scope) (*ContextConsumer, error) {
	set, err := reactive.UseContext[reactive.Write[int]](s)
	if err != nil {
		return nil, err
	}
	return &ContextConsumer{set: set}, nil
}

// Consumer returns the mounted consumer.
func (p *ContextProvider) Consumer() *ContextConsumer {
	return p.consumer
}

// Increment adds one to the provider's value.
func (c *ContextConsumer) Increment() error {
	return c.set.Update(func(n int) int { return n + 1 })
}
