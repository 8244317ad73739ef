package reactive

import (
	"errors"
	"strings"
	"testing"
)

func TestMemoLazy(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	count := NewSignal(s, 5)

	computations := 0
	doubled := NewMemo(s, func() int {
		computations++
		return count.Get() * 2
	})

	if computations != 0 {
		t.Fatalf("memo should not compute before it is read, got %d", computations)
	}

	if doubled.Get() != 10 {
		t.Errorf("expected 10, got %d", doubled.Get())
	}
	if computations != 1 {
		t.Errorf("expected 1 computation, got %d", computations)
	}

	// Second read uses cache
	_ = doubled.Get()
	if computations != 1 {
		t.Errorf("expected still 1 computation (cached), got %d", computations)
	}

	// Writes without reads do not recompute.
	count.Set(6)
	count.Set(7)
	if computations != 1 {
		t.Errorf("expected no recomputation before read, got %d", computations)
	}
	if doubled.Get() != 14 {
		t.Errorf("expected 14, got %d", doubled.Get())
	}
	if computations != 2 {
		t.Errorf("expected 2 computations, got %d", computations)
	}
}

func TestMemoChain(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	count := NewSignal(s, 2)
	doubled := NewMemo(s, func() int { return count.Get() * 2 })
	quadrupled := NewMemo(s, func() int { return doubled.Get() * 2 })

	if quadrupled.Get() != 8 {
		t.Errorf("expected 8, got %d", quadrupled.Get())
	}

	count.Set(3)
	if quadrupled.Get() != 12 {
		t.Errorf("expected 12, got %d", quadrupled.Get())
	}
}

func TestMemoEqualValueStopsPropagation(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	count := NewSignal(s, 0)

	parityRuns := 0
	parity := NewMemo(s, func() bool {
		parityRuns++
		return count.Get()%2 == 0
	})

	effectRuns := 0
	CreateEffect(s, func(*Scope) error {
		_ = parity.Get()
		effectRuns++
		return nil
	})

	count.Set(2)
	if parityRuns != 2 {
		t.Errorf("memo should recompute, got %d runs", parityRuns)
	}
	if effectRuns != 1 {
		t.Errorf("unchanged memo should not re-run its subscribers, got %d runs", effectRuns)
	}

	count.Set(3)
	if effectRuns != 2 {
		t.Errorf("expected 2 effect runs, got %d", effectRuns)
	}
	if parity.Version() != 1 {
		t.Errorf("expected memo version 1, got %d", parity.Version())
	}
}

func TestMemoRecomputesOncePerBatch(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	a := NewSignal(s, 1)
	b := NewSignal(s, 2)

	computations := 0
	sum := NewMemo(s, func() int {
		computations++
		return a.Get() + b.Get()
	})

	var seen []int
	CreateEffect(s, func(*Scope) error {
		seen = append(seen, sum.Get())
		return nil
	})

	rt.Batch(func() {
		for i := 0; i < 10; i++ {
			a.Set(i)
			b.Set(i * 10)
		}
	})

	if computations != 2 {
		t.Errorf("expected 2 computations, got %d", computations)
	}
	if len(seen) != 2 || seen[1] != 99 {
		t.Errorf("expected [3 99], got %v", seen)
	}
}

func TestMemoDynamicDependencies(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	useA := NewSignal(s, true)
	a := NewSignal(s, "a")
	b := NewSignal(s, "b")

	computations := 0
	pick := NewMemo(s, func() string {
		computations++
		if useA.Get() {
			return a.Get()
		}
		return b.Get()
	})

	if pick.Get() != "a" {
		t.Fatalf("expected a, got %s", pick.Get())
	}
	if pick.Dependencies() != 2 {
		t.Errorf("expected 2 dependencies, got %d", pick.Dependencies())
	}
	if b.Subscribers() != 0 {
		t.Errorf("b should have no subscribers, got %d", b.Subscribers())
	}

	useA.Set(false)
	if pick.Get() != "b" {
		t.Fatalf("expected b, got %s", pick.Get())
	}
	if a.Subscribers() != 0 {
		t.Errorf("stale edge to a was kept")
	}

	before := computations
	a.Set("a2")
	_ = pick.Get()
	if computations != before {
		t.Errorf("write to a dropped dependency recomputed the memo")
	}
}

func TestMemoReadingItselfIsCycle(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()

	var self *Memo[int]
	self = NewMemo(s, func() int {
		return self.Get() + 1
	})

	_, err := self.TryGet()
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
	if !IsStructural(err) {
		t.Error("cycle should be structural")
	}
}

func TestMemoWritingItsDependencyIsCycle(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	count := NewSignal(s, 0)

	m := NewMemo(s, func() int {
		n := count.Get()
		count.Set(n + 1)
		return n
	})

	_, err := m.TryGet()
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestMemoPanicRetriedOnNextRead(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	n := NewSignal(s, -1)

	m := NewMemo(s, func() int {
		v := n.Get()
		if v < 0 {
			panic("negative")
		}
		return v
	}).WithName("abs")

	_, err := m.TryGet()
	if !errors.Is(err, ErrRuleFailure) {
		t.Fatalf("expected ErrRuleFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "negative") {
		t.Errorf("expected panic value in error, got %v", err)
	}

	n.Set(4)
	v, err := m.TryGet()
	if err != nil || v != 4 {
		t.Errorf("expected 4, nil; got %d, %v", v, err)
	}
}

func TestMemoPeekDoesNotSubscribe(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	count := NewSignal(s, 1)
	doubled := NewMemo(s, func() int { return count.Get() * 2 })

	runs := 0
	CreateEffect(s, func(*Scope) error {
		_ = doubled.Peek()
		runs++
		return nil
	})

	count.Set(2)
	if runs != 1 {
		t.Errorf("Peek should not subscribe, got %d runs", runs)
	}
	if doubled.Peek() != 4 {
		t.Errorf("expected 4, got %d", doubled.Peek())
	}
}

func TestDerive(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewScope()
	count := NewSignal(s, 2)
	double := Derive(func() int { return count.Get() * 2 })

	var seen []int
	CreateEffect(s, func(*Scope) error {
		seen = append(seen, double())
		return nil
	})

	count.Set(5)
	if len(seen) != 2 || seen[1] != 10 {
		t.Errorf("expected [4 10], got %v", seen)
	}
}
