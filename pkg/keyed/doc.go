// Package keyed reconciles keyed lists.
//
// Diff maps a previous sequence of unique keys to a new one with the
// smallest set of row operations: keys that keep their relative order
// (the longest increasing subsequence of their previous positions) are
// left alone, other retained keys are moved, new keys are created and
// missing keys are removed.
//
// Reconcile and List apply such a diff to rows that each own a
// reactive.Scope, so the state a row created (its signals, memos and
// effects) survives reordering and is disposed only when the row is
// removed. For binds a List to reactive data through an effect.
package keyed
