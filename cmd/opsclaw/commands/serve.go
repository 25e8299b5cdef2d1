package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/channels"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/channels/discord"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/orchestrator"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/scheduler"
)

// newServeCmd creates the `opsclaw serve` command that starts the daemon.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the daemon with chat channels",
		Long: `Start OpsClaw as a daemon: connect the enabled chat channels, route
every incoming command through the agents, reply with the step trace, and
fire due reminders on a schedule.

Examples:
  opsclaw serve
  opsclaw serve --config ./opsclaw.yaml`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ── Load config ──
	cfg, configPath, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// ── Configure logger ──
	logger := buildLogger(cmd, cfg, false)
	if configPath != "" {
		logger.Info("config loaded", "path", configPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Register channels ──
	mgr := channels.NewManager(logger)

	if cfg.Discord.Enabled && cfg.Discord.Token != "" {
		dc := discord.New(discord.Config{
			Token:        cfg.Discord.Token,
			Trigger:      cfg.Discord.Trigger,
			RespondToDMs: cfg.Discord.RespondToDMs,
		}, logger)
		if err := mgr.Register(dc); err != nil {
			logger.Error("failed to register Discord", "error", err)
		} else {
			logger.Info("Discord channel registered")
		}
	}

	// ── Build the routing system on top of channel delivery ──
	deliver := delivery.NewChannelDeliverer(mgr, nil, logger)
	for name, id := range cfg.Broadcast {
		deliver.BroadcastTargets[name] = id
	}

	sys, err := buildSystem(cfg, logger, deliver, true)
	if err != nil {
		return err
	}
	defer sys.Close()
	deliver.SetDirectory(sys.dir)

	// ── Start channels ──
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start channels: %w", err)
	}

	// ── Start reminder scheduler ──
	var reminders *scheduler.Scheduler
	if cfg.Reminders.Enabled {
		reminders = scheduler.New(sys.st, deliver, logger)
		if err := reminders.Start(ctx, cfg.Reminders.Spec); err != nil {
			logger.Error("failed to start reminder scheduler", "error", err)
			reminders = nil
		}
	}

	// ── Route incoming messages ──
	sessions := map[string]*orchestrator.Session{}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range mgr.Messages() {
			sess, ok := sessions[msg.From]
			if !ok {
				sess = &orchestrator.Session{UserID: msg.From}
				sessions[msg.From] = sess
			}

			resp, err := sys.orch.Route(ctx, sess, msg.Content)
			if err != nil {
				logger.Error("routing failed", "from", msg.From, "error", err)
				continue
			}

			reply := strings.Join(resp.Lines, "\n")
			if reply == "" {
				continue
			}
			if err := mgr.Send(ctx, msg.Channel, msg.ChatID, reply); err != nil {
				logger.Warn("reply failed", "channel", msg.Channel, "error", err)
			}
		}
	}()

	logger.Info("OpsClaw running. Press Ctrl+C to stop.",
		"channels", mgr.Connected(),
		"data_dir", cfg.DataDir,
	)

	// ── Wait for shutdown ──
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")

	done := make(chan struct{})
	go func() {
		if reminders != nil {
			reminders.Stop()
		}
		cancel()
		mgr.Stop()
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out after 10s, forcing exit")
	}
	return nil
}
