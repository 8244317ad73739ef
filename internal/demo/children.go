package demo

import (
	"github.com/vango-dev/reactor/pkg/reactive"
)

// TakesChildren renders a render prop and its children in a scope of its
// own, so whatever they create is released with it.
func TakesChildren(s *reactive.Scope, screen *Screen, renderProp, children func(s *reactive.Scope) string) (*reactive.Scope, error) {
	cs := s.NewChild()
	_, err := reactive.CreateEffect(cs, func(run *reactive.Scope) error {
		screen.Set("children/render-prop", renderProp(run))
		screen.Set("children/children", children(run))
		return nil
	}, reactive.WithName("takes-children"))
	if err != nil {
		return nil, err
	}
	reactive.OnCleanup(cs, func() {
		screen.Delete("children/render-prop")
		screen.Delete("children/children")
	})
	return cs, nil
}
