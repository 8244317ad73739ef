package demo

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// App is the whole demo mounted on one runtime.
type App struct {
	rt     *reactive.Runtime
	root   *reactive.Scope
	screen *Screen
	logger *slog.Logger

	Counter      *Counter
	Static       *StaticList
	List         *DynamicList
	Table        *Table
	Controlled   *ControlledInput
	Uncontrolled *UncontrolledInput
	Control      *ControlFlow
	Number       *NumberInput
	Context      *ContextProvider

	actions map[string]Action
}

// Action is a named demo mutation. arg is the action's argument, if any:
// an index, an id or text.
type Action func(arg string) error

// Snapshot is the JSON-encodable state of an App.
type Snapshot struct {
	Lines     []Line   `json:"lines"`
	Writes    int      `json:"writes"`
	LiveNodes int      `json:"live_nodes"`
	ListIDs   []int    `json:"list_ids"`
	Table     []Entry  `json:"table"`
	Actions   []string `json:"actions"`
}

// NewApp mounts every component on a root scope of rt. recorder, if not
// nil, receives the patch counts of the lists.
func NewApp(rt *reactive.Runtime, cfg config.DemoConfig, recorder PatchRecorder) (*App, error) {
	a := &App{
		rt:     rt,
		root:   rt.NewScope(),
		screen: NewScreen(),
		logger: rt.Logger(),
	}
	if err := a.mount(cfg, recorder); err != nil {
		a.root.Dispose()
		return nil, err
	}
	a.registerActions()
	a.logger.Debug("demo mounted", "live_nodes", rt.LiveNodes(), "lines", len(a.screen.Lines("")))
	return a, nil
}

func (a *App) mount(cfg config.DemoConfig, recorder PatchRecorder) error {
	var err error
	s := a.root
	if a.Counter, err = NewCounter(s, a.screen); err != nil {
		return fmt.Errorf("counter: %w", err)
	}
	if a.Static, err = NewStaticList(s, a.screen); err != nil {
		return fmt.Errorf("static list: %w", err)
	}
	if a.List, err = NewDynamicList(s, a.screen, cfg.InitialLength, recorder); err != nil {
		return fmt.Errorf("dynamic list: %w", err)
	}
	if a.Table, err = NewTable(s, a.screen, recorder); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if a.Controlled, err = NewControlledInput(s, a.screen); err != nil {
		return fmt.Errorf("controlled input: %w", err)
	}
	if a.Uncontrolled, err = NewUncontrolledInput(s, a.screen); err != nil {
		return fmt.Errorf("uncontrolled input: %w", err)
	}
	if a.Control, err = NewControlFlow(s, a.screen); err != nil {
		return fmt.Errorf("control flow: %w", err)
	}
	if a.Number, err = NewNumberInput(s, a.screen); err != nil {
		return fmt.Errorf("number input: %w", err)
	}
	if a.Context, err = NewContextProvider(s.NewChild(), a.screen); err != nil {
		return fmt.Errorf("context: %w", err)
	}
	_, err = TakesChildren(s, a.screen,
		func(*reactive.Scope) string { return "<p>Hello there</p>" },
		func(*reactive.Scope) string { return "<p>General Kenobi</p>" })
	if err != nil {
		return fmt.Errorf("takes children: %w", err)
	}
	return nil
}

func (a *App) registerActions() {
	a.actions = map[string]Action{
		"counter.click": func(string) error { return a.Counter.Click() },
		"static.click": func(arg string) error {
			i, err := intArg(arg)
			if err != nil {
				return err
			}
			return a.Static.Click(i)
		},
		"list.add": func(string) error {
			_, err := a.List.Add()
			return err
		},
		"list.remove": func(arg string) error {
			id, err := intArg(arg)
			if err != nil {
				return err
			}
			return a.List.Remove(id)
		},
		"list.increment": func(arg string) error {
			id, err := intArg(arg)
			if err != nil {
				return err
			}
			return a.List.Increment(id)
		},
		"table.update":      func(string) error { return a.Table.UpdateValues() },
		"controlled.input":  a.Controlled.Input,
		"uncontrolled.type": func(arg string) error { a.Uncontrolled.Type(arg); return nil },
		"uncontrolled.submit": func(string) error {
			return a.Uncontrolled.Submit()
		},
		"control.increment": func(string) error { return a.Control.Increment() },
		"control.set": func(arg string) error {
			v, err := intArg(arg)
			if err != nil {
				return err
			}
			return a.Control.Set(v)
		},
		"number.input":      a.Number.Input,
		"context.increment": func(string) error { return a.Context.Consumer().Increment() },
	}
}

func intArg(arg string) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("argument %q is not an integer", arg)
	}
	return v, nil
}

// Actions returns the names of the available actions, sorted.
func (a *App) Actions() []string {
	names := make([]string, 0, len(a.actions))
	for name := range a.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrUnknownAction is returned by Do for a name that is not an action.
var ErrUnknownAction = stderrors.New("unknown demo action")

// Do runs the named action. Failures of the runtime (cycles, duplicate
// keys, uncaught rule failures) are returned as they are.
func (a *App) Do(name, arg string) error {
	action, ok := a.actions[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownAction, name)
	}
	err := action(arg)
	if err != nil {
		a.logger.Warn("demo action failed", "action", name, "arg", arg, "error", err,
			"category", errors.CategoryOf(err))
		return err
	}
	a.logger.Debug("demo action", "action", name, "arg", arg, "writes", a.screen.Writes())
	return nil
}

// Screen returns the rendered screen.
func (a *App) Screen() *Screen {
	return a.screen
}

// Runtime returns the runtime the app is mounted on.
func (a *App) Runtime() *reactive.Runtime {
	return a.rt
}

// Snapshot captures the current state.
func (a *App) Snapshot() Snapshot {
	return Snapshot{
		Lines:     a.screen.Lines(""),
		Writes:    a.screen.Writes(),
		LiveNodes: a.rt.LiveNodes(),
		ListIDs:   a.List.IDs(),
		Table:     a.Table.Data(),
		Actions:   a.Actions(),
	}
}

// Dispose unmounts everything.
func (a *App) Dispose() {
	a.root.Dispose()
}
