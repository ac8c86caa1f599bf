package cli

import (
	"os"

	"golang.org/x/term"

	"github.com/semmy-space/kgl/internal/config"
)

// Globals holds global flags available to all commands
type Globals struct {
	Output  string `help:"Output format" default:"auto" enum:"json,plain,rich,auto" short:"o" env:"KGL_OUTPUT"`
	Verbose bool   `help:"Log transport decisions to stderr" short:"v" env:"KGL_VERBOSE"`
	NoInput bool   `help:"Disable interactive prompts (fail instead)" env:"KGL_NO_INPUT"`
	CLIPath string `help:"Path to the kaggle CLI binary" name:"cli-path" env:"KGL_CLI_PATH"`
	APIBase string `help:"Kaggle API root URL" name:"api-base" env:"KGL_API_BASE"`
	NoCLI   bool   `help:"Skip the kaggle CLI and call the HTTP API directly" name:"no-cli" env:"KGL_NO_CLI"`
}

// ResolvedOutput returns the effective output mode.
// Flag/env > config default_output > TTY detection (rich on a terminal, plain otherwise).
func (g *Globals) ResolvedOutput(cfg *config.Config) string {
	if g.Output != "" && g.Output != "auto" {
		return g.Output
	}
	if cfg != nil && cfg.DefaultOutput != "" && cfg.DefaultOutput != "auto" {
		return cfg.DefaultOutput
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "rich"
	}

	return "plain"
}

// Interactive reports whether prompts may be shown
func (g *Globals) Interactive() bool {
	return !g.NoInput && term.IsTerminal(int(os.Stdin.Fd()))
}
