package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/router"
)

// newRouteCmd creates the `opsclaw route` command for one-shot routing.
func newRouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route <message>",
		Short: "Route a single message and print the step trace",
		Long: `Route one natural-language message through the dispatcher and print
the agents' step-by-step trace.

Examples:
  opsclaw route "Tell John to fix the login bug"
  opsclaw route --trace "Schedule meeting with Alice at 3pm tomorrow"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRoute,
	}

	cmd.Flags().Bool("trace", false, "print the semantic pipeline trace as JSON")
	return cmd
}

func runRoute(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")

	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := buildLogger(cmd, cfg, true)

	// ── Pipeline trace mode ──
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		result := router.Process(message, time.Now())
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode trace: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	sys, err := buildSystem(cfg, logger, delivery.NewSimulated(logger), true)
	if err != nil {
		return err
	}
	defer sys.Close()

	resp, err := sys.orch.Route(context.Background(), nil, message)
	if err != nil {
		return err
	}
	for _, line := range resp.Lines {
		fmt.Println(line)
	}
	return nil
}
