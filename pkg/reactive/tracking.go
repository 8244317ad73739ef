package reactive

// The active-computation stack lives on the Runtime rather than in
// goroutine-local state: a runtime is single-threaded, so whichever node
// is on top of its stack is the one that reads are attributed to.

// push makes n the active tracker. A nil entry disables tracking.
func (rt *Runtime) push(n *node) {
	rt.stack = append(rt.stack, n)
}

// pop removes the active tracker.
func (rt *Runtime) pop() {
	rt.stack[len(rt.stack)-1] = nil
	rt.stack = rt.stack[:len(rt.stack)-1]
}

// active returns the node reads are currently attributed to, if any.
func (rt *Runtime) active() *node {
	if len(rt.stack) == 0 {
		return nil
	}
	return rt.stack[len(rt.stack)-1]
}

// track records an edge from the active node to src.
func (rt *Runtime) track(src *source) {
	n := rt.active()
	if n == nil || n.disposed || src.disposed || src.node == n {
		return
	}
	n.addDep(src)
}

// Untracked runs fn without attributing reads to the running computation.
//
// Example:
//
//	rt.Untracked(func() {
//	    // Reading count here won't subscribe the current effect
//	    fmt.Println("Current value:", count.Get())
//	})
func (rt *Runtime) Untracked(fn func()) {
	rt.push(nil)
	defer rt.pop()
	fn()
}

// Tracking reports whether reads are currently being recorded.
func (rt *Runtime) Tracking() bool {
	return rt.active() != nil
}
