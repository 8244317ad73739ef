package reactive

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/reactor/internal/errors"
)

// Sentinel errors. Errors returned by the engine match these with
// errors.Is.
var (
	// ErrCycleDetected is returned when a computation invalidates itself,
	// directly or through a chain of effects, within one flush.
	ErrCycleDetected = errors.New(errors.CodeCycleDetected)

	// ErrDuplicateKey is returned when a keyed list is reconciled with a
	// non-unique key.
	ErrDuplicateKey = errors.New(errors.CodeDuplicateKey)

	// ErrContextNotFound is returned when a context is used with no
	// binding on the scope or any ancestor.
	ErrContextNotFound = errors.New(errors.CodeContextNotFound)

	// ErrRuleFailure wraps an error returned (or a panic raised) by a
	// user-supplied computation.
	ErrRuleFailure = errors.New(errors.CodeRuleFailure)

	// ErrScopeDisposed is returned when creating primitives on a disposed
	// scope.
	ErrScopeDisposed = errors.New(errors.CodeScopeDisposed)
)

// IsStructural reports whether err describes a malformed graph. Boundaries
// never absorb structural errors.
func IsStructural(err error) bool {
	return errors.IsStructural(err)
}

func cycleError(site, detail string) *errors.Error {
	return errors.New(errors.CodeCycleDetected).WithSite(site).WithDetail(detail)
}

// ruleFailure wraps err as a rule failure at site unless it already
// carries a code.
func ruleFailure(site string, err error) error {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	return errors.New(errors.CodeRuleFailure).WithSite(site).Wrap(err)
}

// recovered converts a recovered panic value into an error.
func recovered(site string, r any) error {
	switch v := r.(type) {
	case *errors.Error:
		return v
	case error:
		return ruleFailure(site, v)
	default:
		return errors.New(errors.CodeRuleFailure).WithSite(site).Wrap(fmt.Errorf("panic: %v", v))
	}
}
