package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/orchestrator"
)

// demoScenarios walk through the routing patterns one message at a time.
var demoScenarios = []struct {
	title   string
	message string
}{
	{"Schedule a meeting", "Schedule meeting Monday 10am with Alice"},
	{"Alert the team + create ticket", "Server down! Alert team. Create ticket for John"},
	{"Smart delegation with auto-message", "I'm late. Tell Rithvik to reschedule my 2pm"},
	{"Multiple actions in one message", "API crashed! Search status, alert team, create ticket for Dana"},
	{"Query the calendar", "What meetings do I have?"},
	{"Find an expert", "Who knows devops?"},
}

// newDemoCmd creates the `opsclaw demo` command.
func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the canned walkthrough scenarios",
		Long: `Route a fixed sequence of example commands and print each step trace.
Seeds nothing: run "opsclaw contacts seed" first for the full effect.`,
		RunE: runDemo,
	}
}

func runDemo(cmd *cobra.Command, _ []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := buildLogger(cmd, cfg, true)

	sys, err := buildSystem(cfg, logger, delivery.NewSimulated(logger), true)
	if err != nil {
		return err
	}
	defer sys.Close()

	sess := &orchestrator.Session{UserID: "demo"}
	ctx := context.Background()

	for i, scenario := range demoScenarios {
		fmt.Printf("\n📍 STEP %d: %s\n", i+1, scenario.title)
		fmt.Println("──────────────────────────────────────────────────")
		fmt.Printf("User says: %q\n\n", scenario.message)

		resp, err := sys.orch.Route(ctx, sess, scenario.message)
		if err != nil {
			return err
		}
		for _, line := range resp.Lines {
			fmt.Println("  " + line)
		}
		fmt.Printf("\n  (%d agent task(s))\n", resp.TotalTasks)
	}

	fmt.Println()
	return nil
}
