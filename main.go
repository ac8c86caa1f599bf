package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/kgl/internal/cli"
	"github.com/semmy-space/kgl/internal/output"
)

var (
	version = "dev"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliInstance := &cli.CLI{}
	parser := kong.Must(cliInstance,
		kong.Name("kgl"),
		kong.Description("Kaggle from the terminal: kernels, datasets and competitions"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	// Answers shell completion requests and exits when COMP_LINE is set
	kongplete.Complete(parser,
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
		kongplete.WithPredictor("dir", complete.PredictDirs("*")),
	)

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		return output.Report(output.New("plain"), toUsage(err))
	}

	if err := kctx.Run(); err != nil {
		return output.Report(output.New(cliInstance.ResolvedOutput(nil)), err)
	}
	return output.ExitOK
}

// toUsage marks parse errors so they exit with ExitUsage
func toUsage(err error) error {
	if _, ok := err.(*output.CLIError); ok {
		return err
	}
	if _, ok := err.(*kong.ParseError); ok {
		return &output.CLIError{Message: err.Error(), ExitCode: output.ExitUsage, Err: err}
	}
	return err
}
