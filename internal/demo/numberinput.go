package demo

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// NumberInput parses its text as an integer inside an error boundary.
// While the text is not a number the boundary's fallback lists the errors
// in place of the value.
type NumberInput struct {
	text     *reactive.Signal[string]
	boundary *reactive.Boundary
	value    int
}

// NewNumberInput renders the input under "number/".
func NewNumberInput(s *reactive.Scope, screen *Screen) (*NumberInput, error) {
	in := &NumberInput{text: reactive.NewSignal(s, "0")}

	if _, err := reactive.CreateEffect(s, func(*reactive.Scope) error {
		screen.Setf("number/input", "<input value=%q>", in.text.Get())
		return nil
	}, reactive.WithName("number/input")); err != nil {
		return nil, err
	}

	b, err := reactive.NewBoundary(s,
		func(gs *reactive.Scope) error {
			_, err := reactive.CreateEffect(gs, func(run *reactive.Scope) error {
				v, err := strconv.Atoi(strings.TrimSpace(in.text.Get()))
				if err != nil {
					return err
				}
				in.value = v
				screen.Setf("number/value", "You entered: %d", v)
				reactive.OnCleanup(run, func() { screen.Delete("number/value") })
				return nil
			}, reactive.WithName("number/value"))
			return err
		},
		func(run *reactive.Scope, errs reactive.ErrorSet) error {
			msgs := make([]string, 0, errs.Len())
			for _, site := range errs.Sites() {
				err, _ := errs.Get(site)
				msgs = append(msgs, errorMessage(err))
			}
			screen.Setf("number/errors", "Not a number! Errors: %s", strings.Join(msgs, "; "))
			reactive.OnCleanup(run, func() { screen.Delete("number/errors") })
			return nil
		})
	if err != nil {
		return nil, err
	}
	in.boundary = b
	return in, nil
}

// errorMessage strips the rule-failure wrapper added by the runtime.
func errorMessage(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Wrapped != nil {
		return e.Wrapped.Error()
	}
	return fmt.Sprint(err)
}

// Input handles a change of the field's text.
func (in *NumberInput) Input(text string) error {
	return in.text.Set(text)
}

// Failing reports whether the boundary is showing its fallback.
func (in *NumberInput) Failing() bool {
	return in.boundary.Errors().Peek().Len() > 0
}

// Value returns the last number parsed successfully.
func (in *NumberInput) Value() int {
	return in.value
}
