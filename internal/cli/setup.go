package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/semmy-space/kgl/internal/auth"
	"github.com/semmy-space/kgl/internal/config"
	"github.com/semmy-space/kgl/internal/kaggle"
	"github.com/semmy-space/kgl/internal/output"
	"github.com/semmy-space/kgl/internal/secrets"
)

// SetupCmd implements the interactive setup wizard
type SetupCmd struct{}

// Run executes the setup wizard
func (cmd *SetupCmd) Run(ctx context.Context, cfg *config.Config, sp *ServiceProvider, globals *Globals) error {
	if !globals.Interactive() {
		return &output.CLIError{
			Message:  "setup needs an interactive terminal",
			ExitCode: output.ExitUsage,
			Hint:     "Use: kgl auth login --file ~/.kaggle/kaggle.json",
		}
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  kgl - Kaggle CLI Setup\n")
	fmt.Fprintf(os.Stderr, "  ======================\n\n")

	// Step 1: optional kaggle CLI
	fmt.Fprintf(os.Stderr, "  Step 1: Kaggle command-line tool (optional)\n\n")
	binary := cfg.CLIPath
	if binary == "" {
		binary = kaggle.DefaultCLIBinary
	}
	if found, err := exec.LookPath(binary); err == nil {
		fmt.Fprintf(os.Stderr, "    Found %s\n\n", found)
	} else {
		fmt.Fprintf(os.Stderr, "    %q not found; listings will use the HTTP API.\n", binary)
		path := prompt(reader, "    Path to kaggle binary [skip]: ")
		if path != "" {
			if err := cfg.Set("cli_path", path); err != nil {
				return &output.CLIError{
					Message:  fmt.Sprintf("Failed to save config: %v", err),
					ExitCode: output.ExitConfigError,
				}
			}
		}
		fmt.Fprintln(os.Stderr)
	}

	// Step 2: API token
	store, err := openStore(sp)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "  Step 2: Kaggle API token\n\n")
	fmt.Fprintf(os.Stderr, "    Create one at https://www.kaggle.com/settings (API > Create New Token)\n\n")

	var creds auth.Credentials
	home, _ := os.UserHomeDir()
	tokenFile := filepath.Join(home, ".kaggle", "kaggle.json")
	if _, statErr := os.Stat(tokenFile); statErr == nil &&
		strings.ToLower(prompt(reader, fmt.Sprintf("    Import %s? [Y/n]: ", tokenFile))) != "n" {
		creds, err = auth.ImportTokenFile(store, tokenFile)
	} else {
		creds, _, err = auth.SignIn(ctx, store, sp.lookupEnv, sp.Prompter())
	}
	if err != nil {
		return toCLIError(err)
	}

	// Step 3: verify
	fmt.Fprintf(os.Stderr, "\n  Step 3: Checking access\n\n")
	a := sp.Fetcher().Check(ctx)
	if !a.Available {
		return &output.CLIError{
			Message:  a.Error,
			ExitCode: output.ExitAuth,
			Hint:     "Re-run: kgl auth login",
		}
	}

	fmt.Fprintf(os.Stderr, "  Setup complete!\n\n")
	fmt.Fprintf(os.Stderr, "    User:        %s\n", creds.Username)
	fmt.Fprintf(os.Stderr, "    Transport:   %s\n", a.Version)
	fmt.Fprintf(os.Stderr, "    Credentials: %s\n", secrets.DetectBackend())
	fmt.Fprintf(os.Stderr, "    Config:      %s\n\n", cfg.Path())
	fmt.Fprintf(os.Stderr, "  Try it out:\n\n")
	fmt.Fprintf(os.Stderr, "    kgl kernels list\n")
	fmt.Fprintf(os.Stderr, "    kgl datasets list -s titanic\n\n")

	return nil
}

// prompt prints a prompt and reads a line of input
func prompt(reader *bufio.Reader, text string) string {
	fmt.Fprint(os.Stderr, text)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
