// Package reactive provides the fine-grained reactive core of reactor.
//
// Dependencies are tracked automatically at runtime: reading a signal or
// memo while a computation runs subscribes that computation to it, and
// writing a signal re-runs exactly the computations whose inputs changed.
//
// # Core Types
//
// Every primitive belongs to a Scope, and every Scope belongs to a Runtime:
//
//	rt := reactive.NewRuntime()
//	root := rt.NewScope()
//	defer root.Dispose()
//
// Signal[T] is a reactive value container:
//
//	count := reactive.NewSignal(root, 0)
//	value := count.Get()  // Read (subscribes the running computation)
//	count.Set(5)          // Write (re-runs dependents)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived computation. It is lazy: it recomputes only
// when read after one of its dependencies changed, and it stops
// propagation when the recomputed value equals the cached one:
//
//	doubled := reactive.NewMemo(root, func() int { return count.Get() * 2 })
//
// Effects run side effects eagerly when dependencies change. The rule
// receives a per-run scope that is disposed before the next run:
//
//	reactive.CreateEffect(root, func(s *reactive.Scope) error {
//	    fmt.Println("Count is:", count.Get())
//	    reactive.OnCleanup(s, func() { /* cleanup */ })
//	    return nil
//	})
//
// # Batching
//
// Multiple signal updates can be batched into a single flush:
//
//	err := rt.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// # Errors
//
// Structural failures (ErrCycleDetected) abort the flush and are returned
// to the caller of Set, Update, Batch or Flush. Failures of effect rules are
// absorbed by the nearest enclosing Boundary and exposed as an ErrorSet
// signal; with no boundary they abort the flush as well.
//
// # Thread Safety
//
// A Runtime is single-threaded. All reads, writes and flushes of one
// runtime must happen on one goroutine at a time; callers that share a
// runtime across goroutines serialize access themselves.
package reactive
