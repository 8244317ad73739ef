package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/demo"
)

func demoCmd(opts *rootOptions) *cobra.Command {
	names := make([]string, 0, len(demo.Scenarios)+1)
	for _, sc := range demo.Scenarios {
		names = append(names, sc.Name)
	}
	names = append(names, "all")

	cmd := &cobra.Command{
		Use:       "demo [" + strings.Join(names, "|") + "]",
		Short:     "Walk through the demo components",
		ValidArgs: names,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		Long: `Mount the demo components on a fresh runtime and run scripted
actions against them, printing what each component renders after
every step.

Examples:
  reactor demo
  reactor demo list
  reactor demo errors --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "all"
			if len(args) == 1 {
				name = args[0]
			}
			return runDemo(opts, name)
		},
	}
	return cmd
}

func runDemo(opts *rootOptions, name string) error {
	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.close()

	app, err := demo.NewApp(env.runtime, env.cfg.Demo, env.patchRecorder())
	if err != nil {
		return err
	}
	defer app.Dispose()

	scenarios := demo.Scenarios
	if name != "all" {
		sc, ok := demo.LookupScenario(name)
		if !ok {
			return fmt.Errorf("unknown scenario %q", name)
		}
		scenarios = []demo.Scenario{sc}
	}

	printBanner()
	fmt.Println()
	for _, sc := range scenarios {
		if err := sc.Run(app, os.Stdout); err != nil {
			return err
		}
		fmt.Println()
	}

	success("%d scenario(s) done", len(scenarios))
	info("live nodes: %d, screen writes: %d", env.runtime.LiveNodes(), app.Screen().Writes())
	return nil
}
