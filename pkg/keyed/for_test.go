package keyed

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vango-dev/reactor/pkg/reactive"
)

type item struct {
	ID    int
	Label string
}

func TestForKeepsRowsAcrossReorders(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewScope()
	items := reactive.NewSignal(s, []item{{1, "a"}, {2, "b"}, {3, "c"}})

	var applied []string
	list, effect, err := For(s,
		items.Get,
		func(it item) int { return it.ID },
		func(rs *reactive.Scope, it item, _ int) *reactive.Signal[string] {
			return reactive.NewSignal(rs, it.Label)
		},
		func(patches []Patch[int], rows []Row[int, *reactive.Signal[string]]) error {
			applied = append(applied, formatPatches(patches))
			return nil
		},
	)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if list.Len() != 3 || effect == nil {
		t.Fatalf("expected 3 rows, got %d", list.Len())
	}

	row2, _ := list.Get(2)
	row2.Value.Set("edited")

	items.Set([]item{{2, "b"}, {3, "c"}, {1, "a"}})
	if got := applied[len(applied)-1]; got != "[MoveRow(1,2)]" {
		t.Errorf("expected one move, got %s", got)
	}
	row2, _ = list.Get(2)
	if row2.Value.Peek() != "edited" {
		t.Errorf("row-local state lost on reorder, got %q", row2.Value.Peek())
	}

	row3, _ := list.Get(3)
	items.Set([]item{{2, "b"}, {1, "a"}})
	if !row3.Scope.IsDisposed() {
		t.Error("removed row should be disposed")
	}
	if fmt.Sprint(list.Keys()) != "[2 1]" {
		t.Errorf("expected [2 1], got %v", list.Keys())
	}
}

func TestForDuplicateKeyIsStructural(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewScope()
	items := reactive.NewSignal(s, []item{{1, "a"}})

	// Even inside a boundary the duplicate key surfaces to the writer.
	b, err := reactive.NewBoundary(s, func(gs *reactive.Scope) error {
		_, _, err := For(gs, items.Get, func(it item) int { return it.ID },
			func(*reactive.Scope, item, int) struct{} { return struct{}{} }, nil)
		return err
	}, nil)
	if err != nil {
		t.Fatalf("NewBoundary: %v", err)
	}

	err = items.Set([]item{{1, "a"}, {1, "b"}})
	if !errors.Is(err, reactive.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if b.HasErrors() {
		t.Error("duplicate key must not be absorbed")
	}
}

func TestForDisposedWithScope(t *testing.T) {
	rt := reactive.NewRuntime()
	root := rt.NewScope()
	s := root.NewChild()
	items := reactive.NewSignal(root, []int{1, 2})

	list, _, _ := For(s, items.Get, func(n int) int { return n },
		func(*reactive.Scope, int, int) int { return 0 }, nil)
	rows := list.Rows()

	s.Dispose()
	for _, row := range rows {
		if !row.Scope.IsDisposed() {
			t.Errorf("row %d should be disposed with its scope", row.Key)
		}
	}
	if items.Subscribers() != 0 {
		t.Errorf("expected 0 subscribers, got %d", items.Subscribers())
	}
}

func TestForFactoryPanicInsideBoundary(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewScope()
	keys := reactive.NewSignal(s, []string{"A", "B"})

	var list *List[string, *reactive.Signal[int]]
	b, err := reactive.NewBoundary(s, func(gs *reactive.Scope) error {
		var err error
		list, _, err = For(gs, keys.Get, func(k string) string { return k },
			func(rs *reactive.Scope, k string, _ int) *reactive.Signal[int] {
				if k == "C" {
					panic("no row for C")
				}
				return reactive.NewSignal(rs, 0)
			}, nil)
		return err
	}, nil)
	if err != nil {
		t.Fatalf("NewBoundary: %v", err)
	}

	rowB, _ := list.Get("B")
	rowB.Value.Set(7)

	if err := keys.Set([]string{"A", "C"}); err != nil {
		t.Fatalf("a failing row should be captured, got %v", err)
	}
	if !b.HasErrors() {
		t.Fatal("expected the boundary to hold the row failure")
	}
	if fmt.Sprint(list.Keys()) != "[A B]" || rowB.Scope.IsDisposed() {
		t.Fatalf("failed update changed the rows: %v, B disposed=%v", list.Keys(), rowB.Scope.IsDisposed())
	}

	if err := keys.Set([]string{"A", "B"}); err != nil {
		t.Fatal(err)
	}
	if b.HasErrors() {
		t.Error("error should clear once the list renders")
	}
	rowB.Value.Set(8)
	if got, _ := list.Get("B"); got.Scope != rowB.Scope || got.Value.Peek() != 8 {
		t.Errorf("row B should be the same live row, got %d", got.Value.Peek())
	}

	// A key that was really removed comes back as a fresh row.
	keys.Set([]string{"A"})
	keys.Set([]string{"A", "B"})
	got, _ := list.Get("B")
	if got.Scope == rowB.Scope || got.Value.Peek() != 0 {
		t.Errorf("re-added row B should be fresh, got %d", got.Value.Peek())
	}
	if !rowB.Scope.IsDisposed() {
		t.Error("removed row B should be disposed")
	}
}
