package reactive

// Batch groups writes into a single flush. Batches can be nested; the
// flush runs when the outermost batch completes and its error is
// returned.
//
// Example:
//
//	err := rt.Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
func (rt *Runtime) Batch(fn func()) (err error) {
	rt.batchDepth++
	defer func() {
		rt.batchDepth--
		if rt.batchDepth == 0 {
			err = rt.flush()
		}
	}()
	fn()
	return nil
}

// Flush runs every queued effect. It is only needed to resume effects
// left queued by a flush that aborted on an unabsorbed rule failure;
// writes flush on their own.
func (rt *Runtime) Flush() error {
	if rt.batchDepth > 0 {
		return nil
	}
	return rt.flush()
}

// maybeFlush flushes unless a batch is open or a flush is already running.
func (rt *Runtime) maybeFlush() error {
	if rt.batchDepth > 0 || rt.flushing {
		return nil
	}
	return rt.flush()
}

// deferFlush runs fn with flushing suspended and flushes afterwards.
func (rt *Runtime) deferFlush(fn func()) error {
	rt.batchDepth++
	func() {
		defer func() { rt.batchDepth-- }()
		fn()
	}()
	return rt.maybeFlush()
}
