package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/orchestrator"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/router"
)

// newChatCmd creates the `opsclaw chat` command for an interactive session.
func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the router via terminal",
		Long: `Start an interactive session with the command router. Pass a message
as argument for a single response, or run without arguments for a REPL.

Follow-ups like "prioritize this" act on your previous message, so meeting
conflicts can be overridden conversationally.

Interactive features:
  ↑/↓ arrows  — navigate command history
  Ctrl+R      — reverse history search
  Tab         — autocomplete commands

Examples:
  opsclaw chat "What meetings do I have?"
  opsclaw chat                              # interactive mode`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// ── Configure logger (quiet for chat mode) ──
	logger := buildLogger(cmd, cfg, true)

	sys, err := buildSystem(cfg, logger, delivery.NewSimulated(logger), true)
	if err != nil {
		return err
	}
	defer sys.Close()

	sess := &orchestrator.Session{UserID: "cli"}

	// ── Single message mode ──
	if len(args) > 0 {
		resp, err := sys.orch.Route(context.Background(), sess, args[0])
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(resp.Lines, "\n"))
		return nil
	}

	return runInteractiveChat(sys, sess)
}

// chatCompleter provides tab-completion for REPL commands.
func chatCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("/quit"),
		readline.PcItem("/exit"),
		readline.PcItem("/help"),
		readline.PcItem("/contacts"),
		readline.PcItem("/meetings"),
		readline.PcItem("/history"),
		readline.PcItem("/trace"),
		readline.PcItem("/clear"),
	)
}

// historyFile returns the path to the readline history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".opsclaw")
	_ = os.MkdirAll(dir, 0o700)
	return filepath.Join(dir, "chat_history")
}

// runInteractiveChat runs the REPL with readline support.
func runInteractiveChat(sys *system, sess *orchestrator.Session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "\033[36mops>\033[0m ",
		HistoryFile:       historyFile(),
		HistoryLimit:      1000,
		AutoComplete:      chatCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Println()
	fmt.Println("  \033[1mOpsClaw\033[0m — Interactive Command Router")
	fmt.Println("  ─────────────────────────────────────")
	fmt.Println("  Type a command and press Enter.")
	fmt.Println()
	fmt.Println("  \033[2mTry: Tell John to fix the login bug\033[0m")
	fmt.Println("  \033[2m     Schedule meeting with Alice at 3pm\033[0m")
	fmt.Println("  \033[2m     What meetings do I have?\033[0m")
	fmt.Println()
	fmt.Println("  \033[2mCommands: /help, /contacts, /quit\033[0m")
	fmt.Println()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Println("\n  Bye!")
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		switch strings.ToLower(strings.Fields(input)[0]) {
		case "/quit", "/exit", "/q":
			fmt.Println("  Bye!")
			return nil

		case "/clear":
			sess.LastMessage = ""
			fmt.Println("  \033[33m[conversation cleared]\033[0m")
			fmt.Println()
			continue

		case "/contacts":
			contacts, err := sys.dir.Contacts()
			if err != nil {
				fmt.Printf("  \033[31m%v\033[0m\n\n", err)
				continue
			}
			if len(contacts) == 0 {
				fmt.Println("  No contacts. Run: opsclaw contacts seed")
				fmt.Println()
				continue
			}
			for _, c := range contacts {
				fmt.Printf("  \033[36m%-12s\033[0m %-16s %s\n", c.Name, c.Role, strings.Join(c.Expertise, ", "))
			}
			fmt.Println()
			continue

		case "/meetings":
			input = "What meetings do I have?"

		case "/trace":
			rest := strings.TrimSpace(strings.TrimPrefix(input, "/trace"))
			if rest == "" {
				fmt.Println("  Usage: /trace <message>")
				fmt.Println()
				continue
			}
			result := router.Process(rest, time.Now())
			out, err := json.MarshalIndent(result, "  ", "  ")
			if err != nil {
				fmt.Printf("  \033[31m%v\033[0m\n\n", err)
				continue
			}
			fmt.Println("  " + string(out))
			fmt.Println()
			continue

		case "/history":
			if sys.audit == nil {
				fmt.Println("  Routing history unavailable (audit log not open).")
				fmt.Println()
				continue
			}
			entries, err := sys.audit.Recent(context.Background(), 10)
			if err != nil {
				fmt.Printf("  \033[31m%v\033[0m\n\n", err)
				continue
			}
			if len(entries) == 0 {
				fmt.Println("  No routed messages yet.")
			}
			for _, e := range entries {
				fmt.Printf("  \033[2m%s\033[0m  %-14s %s\n",
					e.CreatedAt.Format("15:04:05"), e.Pattern, e.Input)
			}
			fmt.Println()
			continue

		case "/help":
			fmt.Println("  /contacts   list the team directory")
			fmt.Println("  /meetings   list scheduled meetings")
			fmt.Println("  /history    show recently routed messages")
			fmt.Println("  /trace      show the pipeline trace for a message")
			fmt.Println("  /clear      forget the previous message")
			fmt.Println("  /quit       exit")
			fmt.Println()
			continue
		}

		resp, err := sys.orch.Route(context.Background(), sess, input)
		if err != nil {
			fmt.Printf("  \033[31m%v\033[0m\n\n", err)
			continue
		}
		for _, respLine := range resp.Lines {
			fmt.Println("  " + respLine)
		}
		fmt.Println()
	}
}
