package keyed

import (
	"github.com/vango-dev/reactor/pkg/reactive"
)

// Sink receives the patches of each reconciliation together with the
// resulting rows. It is where a view layer applies the patches.
type Sink[K comparable, R any] func(patches []Patch[K], rows []Row[K, R]) error

// For keeps a List in step with reactive data. each is read inside an
// effect owned by s; whenever it changes the item keys are reconciled,
// child renders the rows of new keys, and sink, if not nil, receives the
// patches. Rows are owned by s, not by the effect's run, so they survive
// re-runs until their key disappears.
//
// Example:
//
//	list, _, err := keyed.For(s,
//	    counters.Get,
//	    func(c Counter) int { return c.ID },
//	    func(s *reactive.Scope, c Counter, _ int) *reactive.Signal[int] {
//	        return reactive.NewSignal(s, c.Initial)
//	    },
//	    nil)
func For[T any, K comparable, R any](
	s *reactive.Scope,
	each func() []T,
	key func(T) K,
	child func(s *reactive.Scope, item T, index int) R,
	sink Sink[K, R],
	opts ...reactive.EffectOption,
) (*List[K, R], *reactive.Effect, error) {
	var items map[K]T
	list := NewList(s, func(rs *reactive.Scope, k K, index int) R {
		return child(rs, items[k], index)
	})

	effect, err := reactive.CreateEffect(s, func(*reactive.Scope) error {
		data := each()
		keys := make([]K, len(data))
		items = make(map[K]T, len(data))
		for i, item := range data {
			k := key(item)
			keys[i] = k
			items[k] = item
		}

		patches, err := list.Reconcile(keys)
		items = nil
		if err != nil {
			return err
		}
		if sink == nil {
			return nil
		}
		return sink(patches, list.Rows())
	}, opts...)
	if effect == nil {
		return nil, nil, err
	}
	reactive.OnCleanup(s, list.Dispose)
	return list, effect, err
}
