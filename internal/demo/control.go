package demo

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// ShowThreshold is the value above which the show branch switches.
const ShowThreshold = 5

// ControlFlow renders one value through the different ways of choosing
// what to show: if/else, optional content, match, show and rendering
// different element types per branch.
type ControlFlow struct {
	value    *reactive.Signal[int]
	isOdd    *reactive.Memo[bool]
	greater  *reactive.Memo[bool]
	switches int
}

// NewControlFlow renders the value under "control/".
func NewControlFlow(s *reactive.Scope, screen *Screen) (*ControlFlow, error) {
	c := &ControlFlow{value: reactive.NewSignal(s, 0)}
	c.isOdd = reactive.NewMemo(s, func() bool { return c.value.Get()%2 != 0 }).WithName("is-odd")
	c.greater = reactive.NewMemo(s, func() bool { return c.value.Get() > ShowThreshold }).WithName("greater-than-threshold")

	effects := []struct {
		name string
		rule func(*reactive.Scope) error
	}{
		{"control/if-else", func(*reactive.Scope) error {
			if c.isOdd.Get() {
				screen.Setf("control/if-else", "%d is odd", c.value.Get())
			} else {
				screen.Setf("control/if-else", "%d is even", c.value.Get())
			}
			return nil
		}},
		{"control/option", func(*reactive.Scope) error {
			var message string
			if c.isOdd.Get() {
				message = "is odd"
			}
			screen.Set("control/option", withMessage(c.value.Get(), message))
			return nil
		}},
		{"control/option-concise", func(*reactive.Scope) error {
			var message string
			if c.isOdd.Get() {
				message = "Is odd"
			}
			screen.Set("control/option-concise", withMessage(c.value.Get(), message))
			return nil
		}},
		{"control/match", func(*reactive.Scope) error {
			screen.Set("control/match", matchValue(c.value.Get()))
			return nil
		}},
		{"control/show", c.show(screen)},
		{"control/conversion", func(*reactive.Scope) error {
			screen.Set("control/conversion", convertValue(c.value.Get()))
			return nil
		}},
	}
	for _, e := range effects {
		if _, err := reactive.CreateEffect(s, e.rule, reactive.WithName(e.name)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// show only re-runs when the branch changes; each branch renders the value
// from a nested effect owned by the branch's run.
func (c *ControlFlow) show(screen *Screen) func(*reactive.Scope) error {
	return func(run *reactive.Scope) error {
		c.switches++
		greater := c.greater.Get()
		_, err := reactive.CreateEffect(run, func(*reactive.Scope) error {
			if greater {
				screen.Setf("control/show", "%d is greater than %d", c.value.Get(), ShowThreshold)
			} else {
				screen.Setf("control/show", "%d is less than %d", c.value.Get(), ShowThreshold)
			}
			return nil
		}, reactive.WithName("control/show-branch"))
		return err
	}
}

// withMessage renders the value followed by an optional message.
func withMessage(v int, message string) string {
	if message == "" {
		return strconv.Itoa(v)
	}
	return strconv.Itoa(v) + " " + message
}

func matchValue(v int) string {
	switch {
	case v == 0:
		return "Zero"
	case v == 1:
		return "One"
	case v%2 != 0:
		return "Odd"
	default:
		return "Even"
	}
}

func convertValue(v int) string {
	switch v {
	case 1:
		return "<pre>One</pre>"
	case 2:
		return "<p>Two</p>"
	default:
		return fmt.Sprintf("<textarea>%d</textarea>", v)
	}
}

// Increment adds one to the value.
func (c *ControlFlow) Increment() error {
	return c.value.Update(func(n int) int { return n + 1 })
}

// Set replaces the value.
func (c *ControlFlow) Set(v int) error {
	return c.value.Set(v)
}

// Value returns the current value.
func (c *ControlFlow) Value() int {
	return c.value.Peek()
}

// Switches returns the number of times the show branch was rendered.
func (c *ControlFlow) Switches() int {
	return c.switches
}
