package demo

import (
	"github.com/vango-dev/reactor/pkg/reactive"
)

// ControlledInput mirrors every keystroke into the name signal.
type ControlledInput struct {
	name *reactive.Signal[string]
}

// NewControlledInput renders the input under "controlled/".
func NewControlledInput(s *reactive.Scope, screen *Screen) (*ControlledInput, error) {
	c := &ControlledInput{name: reactive.NewSignal(s, "Controlled")}
	_, err := reactive.CreateEffect(s, func(*reactive.Scope) error {
		name := c.name.Get()
		screen.Setf("controlled/input", "<input value=%q>", name)
		screen.Setf("controlled/name", "Name is: %s", name)
		return nil
	}, reactive.WithName("controlled-input"))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Input handles a change of the field's text.
func (c *ControlledInput) Input(text string) error {
	return c.name.Set(text)
}

// Name returns the current name.
func (c *ControlledInput) Name() string {
	return c.name.Peek()
}

// UncontrolledInput leaves the field's text to the element and only reads
// it when the form is submitted.
type UncontrolledInput struct {
	name  *reactive.Signal[string]
	field string
}

// NewUncontrolledInput renders the form under "uncontrolled/".
func NewUncontrolledInput(s *reactive.Scope, screen *Screen) (*UncontrolledInput, error) {
	u := &UncontrolledInput{name: reactive.NewSignal(s, "Uncontrolled")}
	u.field = u.name.Peek()
	_, err := reactive.CreateEffect(s, func(*reactive.Scope) error {
		screen.Setf("uncontrolled/name", "Name is: %s", u.name.Get())
		return nil
	}, reactive.WithName("uncontrolled-input"))
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Type changes the field's text. Nothing re-renders until Submit.
func (u *UncontrolledInput) Type(text string) {
	u.field = text
}

// Submit copies the field's text into the name.
func (u *UncontrolledInput) Submit() error {
	return u.name.Set(u.field)
}

// Name returns the submitted name.
func (u *UncontrolledInput) Name() string {
	return u.name.Peek()
}
