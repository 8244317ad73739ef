package keyed

import (
	"github.com/vango-dev/reactor/pkg/reactive"
)

// List is a keyed list that remembers its rows between reconciliations.
type List[K comparable, R any] struct {
	parent  *reactive.Scope
	factory Factory[K, R]
	rows    []Row[K, R]
}

// NewList creates an empty list whose rows are children of parent.
func NewList[K comparable, R any](parent *reactive.Scope, factory Factory[K, R]) *List[K, R] {
	return &List[K, R]{parent: parent, factory: factory}
}

// Reconcile updates the list to keys and returns the patches applied.
func (l *List[K, R]) Reconcile(keys []K) ([]Patch[K], error) {
	rows, patches, err := Reconcile(l.parent, l.rows, keys, l.factory)
	if err != nil {
		return nil, err
	}
	l.rows = rows
	return patches, nil
}

// Rows returns the current rows in order. The slice must not be modified.
func (l *List[K, R]) Rows() []Row[K, R] {
	return l.rows
}

// Len returns the number of rows.
func (l *List[K, R]) Len() int {
	return len(l.rows)
}

// Keys returns the current keys in order.
func (l *List[K, R]) Keys() []K {
	keys := make([]K, len(l.rows))
	for i, row := range l.rows {
		keys[i] = row.Key
	}
	return keys
}

// Get returns the row for key.
func (l *List[K, R]) Get(key K) (Row[K, R], bool) {
	for _, row := range l.rows {
		if row.Key == key {
			return row, true
		}
	}
	return Row[K, R]{}, false
}

// Dispose removes every row, disposing their scopes.
func (l *List[K, R]) Dispose() {
	for i := len(l.rows) - 1; i >= 0; i-- {
		l.rows[i].Scope.Dispose()
	}
	l.rows = nil
}
