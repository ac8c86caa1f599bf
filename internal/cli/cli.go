package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/kgl/internal/config"
	"github.com/semmy-space/kgl/internal/logging"
	"github.com/semmy-space/kgl/internal/output"
)

// Version is stamped by main and sent in the User-Agent
var Version = "dev"

// FormatterProvider wraps the formatter interface for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
}

// CLI is the root command structure
type CLI struct {
	Globals

	Auth         AuthCmd         `cmd:"" help:"Manage the stored Kaggle API token"`
	Kernels      KernelsCmd      `cmd:"" help:"Kernel (notebook) operations"`
	Datasets     DatasetsCmd     `cmd:"" help:"Dataset operations"`
	Competitions CompetitionsCmd `cmd:"" help:"Competition operations"`
	Ls           LsCmd           `cmd:"" help:"Shortcuts for listing resources"`
	Setup        SetupCmd        `cmd:"" help:"Interactive first-run setup"`
	Config       ConfigCmd       `cmd:"" help:"Configuration commands"`
	Schema       SchemaCmd       `cmd:"" help:"Print the command tree as JSON"`
	Version      VersionCmd      `cmd:"" help:"Show version information"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
}

// AfterApply runs once flags are parsed. It loads config, builds the
// formatter, logger and service provider, and binds them for Run methods.
func (c *CLI) AfterApply(ctx *kong.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitConfigError,
			Hint:     "Check " + config.ConfigPath(),
			Err:      err,
		}
	}

	formatter := &FormatterProvider{
		Formatter: output.New(c.ResolvedOutput(cfg)),
	}
	logger := logging.New(os.Stderr, c.Verbose)

	ctx.Bind(cfg)
	ctx.Bind(formatter)
	ctx.Bind(&c.Globals)
	ctx.Bind(logger)
	ctx.Bind(NewServiceProvider(cfg, &c.Globals, logger))

	return nil
}

// AuthCmd holds authentication subcommands
type AuthCmd struct {
	Login  AuthLoginCmd  `cmd:"" help:"Store a Kaggle API token"`
	Logout AuthLogoutCmd `cmd:"" help:"Remove the stored API token"`
	Status AuthStatusCmd `cmd:"" help:"Show where credentials come from and whether they work"`
}

// KernelsCmd holds kernel subcommands
type KernelsCmd struct {
	List   KernelsListCmd   `cmd:"" help:"List your kernels"`
	Pull   KernelsPullCmd   `cmd:"" help:"Download a kernel's source and metadata"`
	Push   KernelsPushCmd   `cmd:"" help:"Upload a kernel directory and start a run"`
	Status KernelsStatusCmd `cmd:"" help:"Show the latest run status"`
	Output KernelsOutputCmd `cmd:"" help:"Download the output of the latest run"`
	Open   KernelsOpenCmd   `cmd:"" help:"Open a kernel in the browser"`
}

// DatasetsCmd holds dataset subcommands
type DatasetsCmd struct {
	List     DatasetsListCmd     `cmd:"" help:"List datasets"`
	Files    DatasetsFilesCmd    `cmd:"" help:"List the files of a dataset"`
	Download DatasetsDownloadCmd `cmd:"" help:"Download a dataset"`
	Open     DatasetsOpenCmd     `cmd:"" help:"Open a dataset in the browser"`
}

// CompetitionsCmd holds competition subcommands
type CompetitionsCmd struct {
	List   CompetitionsListCmd   `cmd:"" help:"List competitions"`
	Submit CompetitionsSubmitCmd `cmd:"" help:"Submit a predictions file"`
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd        `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd        `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd      `cmd:"" help:"Remove a configuration value"`
	List  ConfigListConfigCmd `cmd:"" name:"list" help:"List all configuration values"`
	Path  ConfigPathCmd       `cmd:"" help:"Show config file path"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Fprintf(ctx.Stdout, "kgl version %s\n", Version)
	return nil
}
