package keyed

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// counterRow is a row holding local state, like a per-row counter.
type counterRow struct {
	count *reactive.Signal[int]
}

func counterFactory(created *[]string) Factory[string, counterRow] {
	return func(s *reactive.Scope, key string, _ int) counterRow {
		*created = append(*created, key)
		return counterRow{count: reactive.NewSignal(s, 0)}
	}
}

func TestReconcilePreservesRowState(t *testing.T) {
	rt := reactive.NewRuntime()
	parent := rt.NewScope()

	var created []string
	factory := counterFactory(&created)

	rows, _, err := Reconcile(parent, nil, []string{"A", "B", "C"}, factory)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	rows[1].Value.count.Set(5) // B
	rows[2].Value.count.Set(7) // C
	scopeB := rows[1].Scope

	rows, patches, err := Reconcile(parent, rows, []string{"B", "C", "A"}, factory)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got := formatPatches(patches); got != "[MoveRow(A,2)]" {
		t.Errorf("expected one move, got %s", got)
	}
	if rows[0].Key != "B" || rows[0].Scope != scopeB {
		t.Error("row B lost its identity")
	}
	if rows[0].Value.count.Get() != 5 || rows[1].Value.count.Get() != 7 {
		t.Errorf("row state changed: B=%d C=%d", rows[0].Value.count.Get(), rows[1].Value.count.Get())
	}
	if len(created) != 3 {
		t.Errorf("retained rows should not be re-rendered, created %v", created)
	}
}

func TestReconcileReplacesRow(t *testing.T) {
	rt := reactive.NewRuntime()
	parent := rt.NewScope()

	var created []string
	factory := counterFactory(&created)

	rows, _, _ := Reconcile(parent, nil, []string{"A", "B", "C"}, factory)
	rows[0].Value.count.Set(1)
	rows[2].Value.count.Set(3)
	scopeB := rows[1].Scope

	disposed := false
	reactive.OnCleanup(scopeB, func() { disposed = true })

	rows, patches, err := Reconcile(parent, rows, []string{"A", "D", "C"}, factory)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got := formatPatches(patches); got != "[RemoveRow(B,1) CreateRow(D,1)]" {
		t.Errorf("unexpected patches %s", got)
	}
	if !disposed || !scopeB.IsDisposed() {
		t.Error("removed row's scope should be disposed")
	}
	if rows[1].Value.count.Get() != 0 {
		t.Errorf("D should start fresh, got %d", rows[1].Value.count.Get())
	}
	if rows[0].Value.count.Get() != 1 || rows[2].Value.count.Get() != 3 {
		t.Error("A and C should retain state")
	}
	if rows[1].Scope.Parent() != parent {
		t.Error("new row scope should be a child of parent")
	}
}

func TestReconcileDuplicateKeyLeavesRows(t *testing.T) {
	rt := reactive.NewRuntime()
	parent := rt.NewScope()

	var created []string
	rows, _, _ := Reconcile(parent, nil, []string{"A", "B"}, counterFactory(&created))

	got, patches, err := Reconcile(parent, rows, []string{"A", "A"}, counterFactory(&created))
	if !errors.Is(err, reactive.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if patches != nil || len(got) != 2 || got[1].Scope.IsDisposed() {
		t.Error("rows should be untouched on error")
	}
}

func TestReconcileFactoryPanicLeavesRows(t *testing.T) {
	rt := reactive.NewRuntime()
	parent := rt.NewScope()

	var created []string
	rows, _, _ := Reconcile(parent, nil, []string{"A", "B"}, counterFactory(&created))
	children := parent.Children()

	var scopes []*reactive.Scope
	failing := func(s *reactive.Scope, key string, _ int) counterRow {
		scopes = append(scopes, s)
		if key == "D" {
			panic("cannot render D")
		}
		return counterRow{count: reactive.NewSignal(s, 0)}
	}

	got, patches, err := Reconcile(parent, rows, []string{"C", "D"}, failing)
	if !errors.Is(err, reactive.ErrRuleFailure) {
		t.Fatalf("expected ErrRuleFailure, got %v", err)
	}
	if patches != nil || len(got) != 2 {
		t.Fatalf("expected the previous rows back, got %v %v", got, patches)
	}
	for _, row := range got {
		if row.Scope.IsDisposed() {
			t.Errorf("row %s was disposed by a failed reconcile", row.Key)
		}
	}
	for i, s := range scopes {
		if !s.IsDisposed() {
			t.Errorf("scope of attempted row %d should be disposed", i)
		}
	}
	if parent.Children() != children {
		t.Errorf("expected %d child scopes, got %d", children, parent.Children())
	}
}

func TestReconcileFactoryIsUntracked(t *testing.T) {
	rt := reactive.NewRuntime()
	s := rt.NewScope()
	keys := reactive.NewSignal(s, []string{"A"})
	label := reactive.NewSignal(s, "x")

	runs := 0
	var rows []Row[string, string]
	reactive.CreateEffect(s, func(*reactive.Scope) error {
		runs++
		var err error
		rows, _, err = Reconcile(s, rows, keys.Get(), func(_ *reactive.Scope, k string, _ int) string {
			return k + label.Get()
		})
		return err
	})

	label.Set("y")
	if runs != 1 {
		t.Errorf("reads inside the factory should not subscribe the caller, got %d runs", runs)
	}
	keys.Set([]string{"A", "B"})
	if runs != 2 || rows[1].Value != "By" {
		t.Errorf("expected By after second run, got %d runs, %v", runs, rows)
	}
}

func TestList(t *testing.T) {
	rt := reactive.NewRuntime()
	parent := rt.NewScope()

	list := NewList(parent, func(s *reactive.Scope, k int, index int) string {
		return fmt.Sprintf("row-%d@%d", k, index)
	})

	if _, err := list.Reconcile([]int{1, 2, 3}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if list.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", list.Len())
	}

	patches, _ := list.Reconcile([]int{3, 1})
	if fmt.Sprint(list.Keys()) != "[3 1]" {
		t.Errorf("expected keys [3 1], got %v", list.Keys())
	}
	if stats := Count(patches); stats.Removed != 1 || stats.Moved != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if row, ok := list.Get(3); !ok || row.Value != "row-3@2" {
		t.Errorf("row 3 should keep the value it was created with, got %v", row.Value)
	}

	if _, err := list.Reconcile([]int{1, 1}); !errors.Is(err, reactive.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if list.Len() != 2 {
		t.Error("failed reconcile should not change the list")
	}

	rows := list.Rows()
	list.Dispose()
	if list.Len() != 0 {
		t.Errorf("expected empty list, got %d", list.Len())
	}
	for _, row := range rows {
		if !row.Scope.IsDisposed() {
			t.Errorf("row %d not disposed", row.Key)
		}
	}
}
