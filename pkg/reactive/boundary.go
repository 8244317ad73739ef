package reactive

import (
	stderrors "errors"
	"reflect"
	"sort"
	"strconv"
)

// ChildrenSite is the failure site under which a Boundary records an
// error returned by its children function.
const ChildrenSite = "children"

// ErrorSet maps failure sites to the error each one last reported. An
// ErrorSet held by a boundary is never modified; every change produces a
// new set.
type ErrorSet map[string]error

// Len returns the number of failing sites.
func (s ErrorSet) Len() int {
	return len(s)
}

// Sites returns the failing sites in sorted order.
func (s ErrorSet) Sites() []string {
	sites := make([]string, 0, len(s))
	for site := range s {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

// Get returns the error recorded for site.
func (s ErrorSet) Get(site string) (error, bool) {
	err, ok := s[site]
	return err, ok
}

// Err joins every error in site order, or returns nil for an empty set.
func (s ErrorSet) Err() error {
	if len(s) == 0 {
		return nil
	}
	errs := make([]error, 0, len(s))
	for _, site := range s.Sites() {
		errs = append(errs, s[site])
	}
	return stderrors.Join(errs...)
}

// Clone returns a copy of the set.
func (s ErrorSet) Clone() ErrorSet {
	c := make(ErrorSet, len(s))
	for site, err := range s {
		c[site] = err
	}
	return c
}

func sameErrors(a, b ErrorSet) bool {
	if len(a) != len(b) {
		return false
	}
	for site, err := range a {
		other, ok := b[site]
		if !ok || !sameError(other, err) {
			return false
		}
	}
	return true
}

// sameError reports whether a and b are the same error value. Errors of
// types that cannot be compared (slice-based multi-errors, or structs
// holding one) are never the same.
func sameError(a, b error) (same bool) {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta == nil {
		return true
	}
	if !ta.Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// Boundary guards a subtree of scopes. Rule failures of effects owned by
// the subtree are recorded in the boundary's error set instead of
// aborting the flush, and a fallback effect runs while the set is not
// empty. Each site's entry is removed when that site next runs
// successfully or is disposed, so the set always describes the sites that
// are currently failing.
//
// Structural errors (ErrCycleDetected, ErrDuplicateKey) are never
// absorbed.
type Boundary struct {
	rt       *Runtime
	guarded  *Scope
	errors   *Signal[ErrorSet]
	fallback *Effect
}

// NewBoundary creates a boundary under parent. children runs once in the
// guarded scope; the effects it creates, and everything they create,
// report failures to the boundary. fallback runs in an effect owned by
// parent whenever the error set is non-empty and receives a copy of it.
//
// The returned error is the error of the flush that ran the children,
// which can only be a structural error or a failure the boundary could
// not absorb.
func NewBoundary(parent *Scope, children func(s *Scope) error, fallback func(s *Scope, errs ErrorSet) error) (*Boundary, error) {
	if parent.disposed {
		return nil, ErrScopeDisposed
	}
	rt := parent.rt
	b := &Boundary{
		rt:     rt,
		errors: NewSignal(parent, ErrorSet{}).WithEquals(sameErrors),
	}

	var createErr error
	err := rt.Batch(func() {
		if fallback != nil {
			b.fallback, createErr = CreateEffect(parent, func(run *Scope) error {
				errs := b.errors.Get()
				if errs.Len() == 0 {
					return nil
				}
				return fallback(run, errs.Clone())
			}, WithName("boundary-fallback-"+strconv.FormatUint(b.errors.ID(), 10)))
			if createErr != nil {
				return
			}
		}

		b.guarded = parent.NewChild()
		b.guarded.boundary = b
		if cerr := b.runChildren(children); cerr != nil {
			if IsStructural(cerr) {
				createErr = cerr
				return
			}
			b.capture(ChildrenSite, cerr)
		}
	})
	if createErr != nil {
		return b, createErr
	}
	return b, err
}

func (b *Boundary) runChildren(children func(s *Scope) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(ChildrenSite, r)
		}
	}()
	b.rt.Untracked(func() {
		err = ruleFailure(ChildrenSite, children(b.guarded))
	})
	return err
}

// Scope returns the guarded scope.
func (b *Boundary) Scope() *Scope {
	return b.guarded
}

// Errors returns the signal holding the current error set.
func (b *Boundary) Errors() *Signal[ErrorSet] {
	return b.errors
}

// HasErrors reports whether any guarded site is failing. The read is
// tracked.
func (b *Boundary) HasErrors() bool {
	return b.errors.Get().Len() > 0
}

// Reset empties the error set.
func (b *Boundary) Reset() error {
	return b.errors.Set(ErrorSet{})
}

// Dispose disposes the guarded subtree and the fallback effect.
func (b *Boundary) Dispose() {
	err := b.rt.deferFlush(func() {
		if b.fallback != nil {
			b.fallback.Dispose()
		}
		if b.guarded != nil {
			b.guarded.Dispose()
		}
	})
	if err != nil {
		b.rt.logger.Warn("reactive: flush after boundary dispose failed", "error", err)
	}
}

// capture records err for site.
func (b *Boundary) capture(site string, err error) {
	cur := b.errors.Peek()
	if existing, ok := cur[site]; ok && sameError(existing, err) {
		return
	}
	next := cur.Clone()
	next[site] = err
	b.set(next)
}

// clear removes the entry for site, if any.
func (b *Boundary) clear(site string) {
	cur := b.errors.Peek()
	if _, ok := cur[site]; !ok {
		return
	}
	next := cur.Clone()
	delete(next, site)
	b.set(next)
}

func (b *Boundary) set(errs ErrorSet) {
	if err := b.errors.Set(errs); err != nil {
		b.rt.logger.Warn("reactive: boundary update failed", "error", err)
	}
}
