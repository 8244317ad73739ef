// Package demo expresses the reactive UI demo on the engine.
//
// Each component owns signals, memos and effects on a scope, and renders
// into a Screen: a flat, ordered set of text lines standing in for the
// view layer. Actions (button clicks, text input, form submits) are
// methods that write signals; effects bring the Screen up to date.
//
// App assembles every component and exposes the actions by name so the
// CLI and the inspector can drive them.
package demo
