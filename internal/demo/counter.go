package demo

import (
	"github.com/vango-dev/reactor/pkg/reactive"
)

// ProgressMax is the maximum of the counter's progress bars.
const ProgressMax = 100

// Counter is a button counting its clicks, with a derived double count,
// odd/even class flags and two progress bars.
type Counter struct {
	count  *reactive.Signal[int]
	double *reactive.Memo[int]
}

// NewCounter renders the counter under "counter/".
func NewCounter(s *reactive.Scope, screen *Screen) (*Counter, error) {
	c := &Counter{count: reactive.NewSignal(s, 0)}
	c.double = reactive.NewMemo(s, func() int { return c.count.Get() * 2 }).WithName("double-count")

	if _, err := reactive.CreateEffect(s, func(*reactive.Scope) error {
		n := c.count.Get()
		class := "blue"
		if n%2 == 1 {
			class = "red"
		}
		screen.Setf("counter/button", "Click me: %d [%s]", n, class)
		return nil
	}, reactive.WithName("counter-button")); err != nil {
		return nil, err
	}
	if err := ProgressBar(s, screen, "counter/progress", ProgressMax, c.count.Get); err != nil {
		return nil, err
	}
	if err := ProgressBar(s, screen, "counter/progress-double", ProgressMax, c.double.Get); err != nil {
		return nil, err
	}
	return c, nil
}

// Click increments the count.
func (c *Counter) Click() error {
	return c.count.Update(func(n int) int { return n + 1 })
}

// Count returns the current count without subscribing.
func (c *Counter) Count() int {
	return c.count.Peek()
}

// Double returns the derived double count without subscribing.
func (c *Counter) Double() int {
	return c.double.Peek()
}

// ProgressBar renders progress out of max at id. Values past max are shown
// clamped, as a progress element would.
func ProgressBar(s *reactive.Scope, screen *Screen, id string, max int, progress func() int) error {
	_, err := reactive.CreateEffect(s, func(*reactive.Scope) error {
		v := progress()
		if v > max {
			v = max
		}
		screen.Setf(id, "<progress max=%d value=%d>", max, v)
		return nil
	}, reactive.WithName(id))
	return err
}
