package reactive

import (
	"testing"
)

func TestSignalBasic(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()

	count := NewSignal(s, 0)
	if count.Get() != 0 {
		t.Errorf("expected 0, got %d", count.Get())
	}
	if count.Version() != 0 {
		t.Errorf("expected version 0, got %d", count.Version())
	}

	if err := count.Set(5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if count.Get() != 5 {
		t.Errorf("expected 5, got %d", count.Get())
	}
	if count.Version() != 1 {
		t.Errorf("expected version 1, got %d", count.Version())
	}
}

func TestSignalUpdate(t *testing.T) {
	rt := NewRuntime()
	count := NewSignal(rt.NewScope(), 10)

	count.Update(func(n int) int { return n + 5 })
	if count.Peek() != 15 {
		t.Errorf("expected 15, got %d", count.Peek())
	}

	// Identity update is not a change.
	count.Update(func(n int) int { return n })
	if count.Version() != 1 {
		t.Errorf("expected version 1, got %d", count.Version())
	}
}

func TestSignalEqualWriteDoesNotRerun(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	count := NewSignal(s, 1)

	runs := 0
	CreateEffect(s, func(*Scope) error {
		_ = count.Get()
		runs++
		return nil
	})
	if runs != 1 {
		t.Fatalf("expected 1 run, got %d", runs)
	}

	count.Set(2)
	if runs != 2 {
		t.Fatalf("expected 2 runs, got %d", runs)
	}

	for i := 0; i < 5; i++ {
		count.Set(2)
	}
	if runs != 2 {
		t.Errorf("equal writes should not re-run dependents, got %d runs", runs)
	}
	if count.Version() != 1 {
		t.Errorf("expected version 1, got %d", count.Version())
	}
}

func TestSignalPeekDoesNotSubscribe(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	count := NewSignal(s, 1)

	runs := 0
	CreateEffect(s, func(*Scope) error {
		_ = count.Peek()
		runs++
		return nil
	})

	count.Set(2)
	if runs != 1 {
		t.Errorf("Peek should not subscribe, got %d runs", runs)
	}
	if count.Subscribers() != 0 {
		t.Errorf("expected 0 subscribers, got %d", count.Subscribers())
	}
}

func TestSignalWithEquals(t *testing.T) {
	type user struct {
		ID   int
		Name string
	}

	rt := NewRuntime()
	s := rt.NewScope()
	u := NewSignal(s, user{ID: 1, Name: "a"}).WithEquals(func(a, b user) bool {
		return a.ID == b.ID
	})

	runs := 0
	CreateEffect(s, func(*Scope) error {
		_ = u.Get()
		runs++
		return nil
	})

	u.Set(user{ID: 1, Name: "b"})
	if runs != 1 {
		t.Errorf("same ID should be equal, got %d runs", runs)
	}

	u.Set(user{ID: 2, Name: "b"})
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestSignalSliceEquality(t *testing.T) {
	rt := NewRuntime()
	items := NewSignal(rt.NewScope(), []string{"a", "b"})

	items.Set([]string{"a", "b"})
	if items.Version() != 0 {
		t.Errorf("deep-equal slice should not change the version, got %d", items.Version())
	}

	items.Set([]string{"a", "b", "c"})
	if items.Version() != 1 {
		t.Errorf("expected version 1, got %d", items.Version())
	}
}

func TestCreateSignal(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	count, setCount := CreateSignal(s, 0)

	seen := []int{}
	CreateEffect(s, func(*Scope) error {
		seen = append(seen, count())
		return nil
	})

	setCount.Set(3)
	setCount.Update(func(n int) int { return n * 2 })

	want := []int{0, 3, 6}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("run %d: expected %d, got %d", i, want[i], seen[i])
		}
	}
}

func TestSignalWriteAfterDispose(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	count := NewSignal(s, 1)
	s.Dispose()

	if err := count.Set(2); err != nil {
		t.Errorf("write to disposed signal should be ignored, got %v", err)
	}
	if count.Peek() != 1 {
		t.Errorf("expected 1, got %d", count.Peek())
	}
	if !count.Disposed() {
		t.Error("expected signal to be disposed")
	}
}

func TestDefaultEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int equal", 1, 1, true},
		{"int different", 1, 2, false},
		{"string equal", "a", "a", true},
		{"string different", "a", "b", false},
		{"bool", true, false, false},
		{"float64", 1.5, 1.5, true},
		{"slice equal", []int{1, 2}, []int{1, 2}, true},
		{"slice different", []int{1, 2}, []int{2, 1}, false},
		{"map equal", map[string]int{"a": 1}, map[string]int{"a": 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := defaultEquals(tt.a, tt.b); got != tt.want {
				t.Errorf("defaultEquals(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
