// Command opsclaw is the operations copilot CLI: it routes natural-language
// commands to specialized agents over a local JSON data directory, optionally
// serving chat channels as a daemon.
package main

import (
	"fmt"
	"os"

	"github.com/jholhewres/opsclaw/cmd/opsclaw/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
