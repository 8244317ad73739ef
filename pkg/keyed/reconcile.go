package keyed

import (
	"fmt"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// Row is one rendered list entry: its key, the scope owning everything
// the row created, and the value the factory returned.
type Row[K comparable, R any] struct {
	Key   K
	Scope *reactive.Scope
	Value R
}

// Factory renders the row for key at index inside the row's fresh scope.
type Factory[K comparable, R any] func(s *reactive.Scope, key K, index int) R

// Reconcile applies Diff(keys of prev, next) to prev. New rows get a fresh
// child scope of parent and are rendered by factory (untracked, so the
// caller's computation does not subscribe to what the row reads), retained
// rows keep their scope and value, and removed rows have their scope
// disposed once every new row rendered.
//
// On error prev is returned unchanged with no scope disposed: a DuplicateKey
// is reported before anything is created, and a factory panic disposes the
// rows created so far and is returned as a rule failure.
func Reconcile[K comparable, R any](parent *reactive.Scope, prev []Row[K, R], next []K, factory Factory[K, R]) ([]Row[K, R], []Patch[K], error) {
	prevKeys := make([]K, len(prev))
	for i, row := range prev {
		prevKeys[i] = row.Key
	}
	patches, err := Diff(prevKeys, next)
	if err != nil {
		return prev, nil, err
	}

	byKey := make(map[K]Row[K, R], len(prev))
	for _, row := range prev {
		byKey[row.Key] = row
	}

	rows := make([]Row[K, R], len(next))
	var created []*reactive.Scope
	for i, key := range next {
		if row, ok := byKey[key]; ok {
			rows[i] = row
			continue
		}
		s := parent.NewChild()
		created = append(created, s)
		value, err := render(s, key, i, factory)
		if err != nil {
			for j := len(created) - 1; j >= 0; j-- {
				created[j].Dispose()
			}
			return prev, nil, err
		}
		rows[i] = Row[K, R]{Key: key, Scope: s, Value: value}
	}

	for _, p := range patches {
		if p.Op == OpRemove {
			byKey[p.Key].Scope.Dispose()
		}
	}
	return rows, patches, nil
}

// render runs factory for one row, turning a panic into an error.
func render[K comparable, R any](s *reactive.Scope, key K, index int, factory Factory[K, R]) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = rowFailure(key, r)
		}
	}()
	s.Runtime().Untracked(func() {
		value = factory(s, key, index)
	})
	return value, nil
}

func rowFailure[K comparable](key K, r any) error {
	site := fmt.Sprintf("row %v", key)
	switch v := r.(type) {
	case *errors.Error:
		return v
	case error:
		return errors.New(errors.CodeRuleFailure).WithSite(site).Wrap(v)
	default:
		return errors.New(errors.CodeRuleFailure).WithSite(site).Wrap(fmt.Errorf("panic: %v", v))
	}
}
