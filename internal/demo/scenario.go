package demo

import (
	"fmt"
	"io"
)

// Step is one action of a scenario.
type Step struct {
	Action string
	Arg    string
}

// Scenario is a scripted walk through one part of the demo.
type Scenario struct {
	Name   string
	Title  string
	Prefix string
	Steps  []Step
}

// Scenarios lists the scripted walks, in display order.
var Scenarios = []Scenario{
	{
		Name: "counter", Title: "Counter and progress bars", Prefix: "counter/",
		Steps: []Step{{Action: "counter.click"}, {Action: "counter.click"}, {Action: "counter.click"}},
	},
	{
		Name: "list", Title: "Static and dynamic lists",
		Steps: []Step{
			{Action: "static.click", Arg: "2"},
			{Action: "list.add"},
			{Action: "list.increment", Arg: "0"},
			{Action: "list.remove", Arg: "1"},
		},
	},
	{
		Name: "table", Title: "Iterating over complex data", Prefix: "table/",
		Steps: []Step{{Action: "table.update"}, {Action: "table.update"}},
	},
	{
		Name: "input", Title: "Controlled and uncontrolled inputs",
		Steps: []Step{
			{Action: "controlled.input", Arg: "Ferris"},
			{Action: "uncontrolled.type", Arg: "Gopher"},
			{Action: "uncontrolled.submit"},
		},
	},
	{
		Name: "control", Title: "Control flow", Prefix: "control/",
		Steps: []Step{
			{Action: "control.increment"},
			{Action: "control.increment"},
			{Action: "control.set", Arg: "7"},
		},
	},
	{
		Name: "errors", Title: "Error handling", Prefix: "number/",
		Steps: []Step{
			{Action: "number.input", Arg: "42"},
			{Action: "number.input", Arg: "4x2"},
			{Action: "number.input", Arg: "7"},
		},
	},
	{
		Name: "context", Title: "Context provider and consumer", Prefix: "context/",
		Steps: []Step{{Action: "context.increment"}, {Action: "context.increment"}},
	},
}

// LookupScenario returns the scenario with the given name.
func LookupScenario(name string) (Scenario, bool) {
	for _, sc := range Scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return Scenario{}, false
}

// Run performs the scenario's steps on app, printing the lines under the
// scenario's prefix before the first step and after every step. Lines
// under "list/" and "static/" are shown for the list scenario, and the
// input lines for the input scenario.
func (sc Scenario) Run(app *App, w io.Writer) error {
	fmt.Fprintf(w, "== %s\n", sc.Title)
	if err := sc.render(app, w); err != nil {
		return err
	}
	for _, step := range sc.Steps {
		if step.Arg != "" {
			fmt.Fprintf(w, "> %s %s\n", step.Action, step.Arg)
		} else {
			fmt.Fprintf(w, "> %s\n", step.Action)
		}
		if err := app.Do(step.Action, step.Arg); err != nil {
			return fmt.Errorf("%s: %w", step.Action, err)
		}
		if err := sc.render(app, w); err != nil {
			return err
		}
	}
	return nil
}

func (sc Scenario) render(app *App, w io.Writer) error {
	for _, prefix := range sc.prefixes() {
		if err := app.Screen().Render(w, prefix); err != nil {
			return err
		}
	}
	return nil
}

func (sc Scenario) prefixes() []string {
	switch sc.Name {
	case "list":
		return []string{"static/", "list/"}
	case "input":
		return []string{"controlled/", "uncontrolled/"}
	}
	return []string{sc.Prefix}
}
