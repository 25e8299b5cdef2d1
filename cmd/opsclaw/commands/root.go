// Package commands implements the opsclaw CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/agents"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/audit"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/config"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/directory"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/orchestrator"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

// Version is stamped by the build.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "opsclaw",
	Short: "Natural-language operations copilot",
	Long: `OpsClaw routes free-text commands to specialized agents: calendar,
alerts, tickets, messaging, expert search and outbound calls.

Examples:
  opsclaw route "Schedule meeting with Alice at 3pm"
  opsclaw chat
  opsclaw serve --config ./opsclaw.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to opsclaw.yaml")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newRouteCmd(),
		newChatCmd(),
		newServeCmd(),
		newContactsCmd(),
		newDemoCmd(),
		newConfigCmd(),
	)
}

// resolveConfig loads the config from --config or the default locations.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		for _, candidate := range defaultConfigPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func defaultConfigPaths() []string {
	paths := []string{"./opsclaw.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".opsclaw", "opsclaw.yaml"))
	}
	return paths
}

// buildLogger configures slog from the config and the --verbose flag.
// quiet raises the floor to warnings for interactive modes.
func buildLogger(cmd *cobra.Command, cfg *config.Config, quiet bool) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

	level := slog.LevelInfo
	if quiet {
		level = slog.LevelWarn
	}
	if verbose || cfg.Log.Level == "debug" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

// system bundles the assembled collaborators for one CLI invocation.
type system struct {
	orch  *orchestrator.Orchestrator
	st    *store.Store
	dir   *directory.Directory
	audit *audit.Log
}

// Close releases held resources.
func (s *system) Close() {
	if s.audit != nil {
		_ = s.audit.Close()
	}
}

// buildSystem assembles the store, directory, agents and orchestrator on top
// of the given deliverer. The audit log is best effort: a failure to open it
// disables routing history but not routing.
func buildSystem(cfg *config.Config, logger *slog.Logger, deliver delivery.Deliverer, withAudit bool) (*system, error) {
	st, err := store.Open(cfg.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	dir := directory.New(st)

	var auditLog *audit.Log
	if withAudit {
		auditLog, err = audit.Open(cfg.AuditDB, logger)
		if err != nil {
			logger.Warn("audit log unavailable", "error", err)
			auditLog = nil
		}
	}

	config.ResolvePhoneAPIKey(cfg, logger)

	orch := orchestrator.New(orchestrator.Deps{
		Calendar:  agents.NewCalendar(st, logger),
		Alerter:   agents.NewAlerter(st, dir, deliver, logger),
		Ticketer:  agents.NewTicketer(st, logger),
		Messenger: agents.NewMessenger(st, dir, deliver, logger),
		Searcher:  agents.NewSearcher(st, dir, logger),
		Delegator: agents.NewDelegator(st, logger),
		Phone:     agents.NewPhone(cfg.Phone, logger),
		Directory: dir,
		Audit:     auditLog,
		Logger:    logger,
	})

	return &system{orch: orch, st: st, dir: dir, audit: auditLog}, nil
}
