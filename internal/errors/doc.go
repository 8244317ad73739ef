// Package errors provides structured, coded errors for the reactor engine.
//
// Every failure the engine surfaces carries a stable code that maps to a
// registered template:
//
//   - structural: graph malformations (cycles, duplicate list keys). These
//     are never absorbed by an error boundary.
//   - lookup: missing context bindings, use of disposed scopes.
//   - rule: a user-supplied computation returned an error or panicked.
//   - config: invalid configuration files.
//
// # Usage
//
//	err := errors.New(errors.CodeCycleDetected).
//	    WithSite("effect-12").
//	    WithDetail("effect re-entered its own run")
//
//	if errors.IsStructural(err) {
//	    fmt.Println(err.Format())
//	}
//
// Two *Error values match under the standard library's errors.Is when
// they carry the same code, so registered sentinels can be compared
// directly against errors returned by the engine.
package errors
