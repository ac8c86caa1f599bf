package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/semmy-space/kgl/internal/config"
	"github.com/semmy-space/kgl/internal/kaggle"
	"github.com/semmy-space/kgl/internal/output"
	"github.com/semmy-space/kgl/pkg/browser"
)

var kernelColumns = []output.Column{
	{Name: "Ref", Key: "ref"},
	{Name: "Title", Key: "title", Width: 40},
	{Name: "Author", Key: "author"},
	{Name: "Last Run", Key: "lastruntime"},
	{Name: "Votes", Key: "totalvotes"},
}

// KernelsListCmd lists the caller's kernels
type KernelsListCmd struct {
	Page     int `help:"Page number" default:"1"`
	PageSize int `help:"Results per page (default: page_size config or 20)" name:"page-size"`
}

// Run executes the list command
func (cmd *KernelsListCmd) Run(ctx context.Context, cfg *config.Config, sp *ServiceProvider, fp *FormatterProvider) error {
	records, err := sp.Fetcher().ListMyKernels(ctx, cmd.Page, pageSize(cfg, cmd.PageSize))
	if err != nil {
		return toCLIError(err)
	}
	return fp.Formatter.PrintList(records, kernelColumns)
}

// KernelsPullCmd downloads a kernel into a directory
type KernelsPullCmd struct {
	Ref  string `arg:"" help:"Kernel reference (owner/slug)"`
	Path string `help:"Target directory (default: <download_dir>/<slug>)" short:"p" type:"path" predictor:"dir"`
}

// Run executes the pull command
func (cmd *KernelsPullCmd) Run(ctx context.Context, cfg *config.Config, sp *ServiceProvider, fp *FormatterProvider) error {
	ref, err := parseRef(cmd.Ref)
	if err != nil {
		return err
	}

	written, err := sp.Fetcher().PullKernel(ctx, ref, targetDir(cfg, cmd.Path, ref.Slug))
	if err != nil {
		return toCLIError(err)
	}

	for _, path := range written {
		fp.Formatter.PrintMessage(path)
	}
	return nil
}

// KernelsPushCmd uploads a kernel directory
type KernelsPushCmd struct {
	Dir string `arg:"" optional:"" default:"." help:"Kernel directory containing kernel-metadata.json" type:"path" predictor:"dir"`
}

type pushResult struct {
	Ref     string `json:"ref"`
	URL     string `json:"url"`
	Version int    `json:"version"`
}

// Run executes the push command
func (cmd *KernelsPushCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	run, err := sp.Fetcher().PushKernel(ctx, cmd.Dir)
	if err != nil {
		return toCLIError(err)
	}

	for _, tags := range [][]string{run.InvalidTags, run.InvalidDatasets, run.InvalidKernels, run.InvalidCompetitions} {
		for _, t := range tags {
			fmt.Fprintf(os.Stderr, "Warning: ignored invalid source or tag: %s\n", t)
		}
	}

	return fp.Formatter.Print(pushResult{Ref: run.Ref, URL: run.URL, Version: run.VersionNumber})
}

// KernelsStatusCmd shows the status of the latest run
type KernelsStatusCmd struct {
	Ref     string        `arg:"" help:"Kernel reference (owner/slug)"`
	Wait    bool          `help:"Poll until the run finishes" short:"w"`
	Timeout time.Duration `help:"Maximum time to wait" default:"1h"`
}

// Run executes the status command
func (cmd *KernelsStatusCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	ref, err := parseRef(cmd.Ref)
	if err != nil {
		return err
	}

	var status *kaggle.KernelStatus
	if cmd.Wait {
		opts := kaggle.DefaultWaitOptions()
		opts.MaxWait = cmd.Timeout
		opts.OnPoll = func(s kaggle.KernelStatus) {
			fmt.Fprintf(os.Stderr, "%s  %s\n", time.Now().Format(time.TimeOnly), s.Status)
		}
		status, err = sp.Fetcher().WaitForKernel(ctx, ref, opts)
	} else {
		status, err = sp.Fetcher().KernelStatus(ctx, ref)
	}
	if err != nil {
		return toCLIError(err)
	}

	if err := fp.Formatter.Print(*status); err != nil {
		return err
	}
	if status.Status == kaggle.KernelStatusError {
		return &output.CLIError{
			Message:  fmt.Sprintf("kernel run failed: %s", status.FailureMessage),
			ExitCode: output.ExitGeneral,
		}
	}
	return nil
}

// KernelsOutputCmd downloads the output archive of the latest run
type KernelsOutputCmd struct {
	Ref   string `arg:"" help:"Kernel reference (owner/slug)"`
	Path  string `help:"Target directory (default: <download_dir>/<slug>)" short:"p" type:"path" predictor:"dir"`
	Unzip bool   `help:"Extract the archive after download"`
}

// Run executes the output command
func (cmd *KernelsOutputCmd) Run(ctx context.Context, cfg *config.Config, sp *ServiceProvider, fp *FormatterProvider) error {
	ref, err := parseRef(cmd.Ref)
	if err != nil {
		return err
	}

	dir := targetDir(cfg, cmd.Path, ref.Slug)
	dest, err := sp.Fetcher().DownloadKernelOutput(ctx, ref, dir)
	if err != nil {
		return toCLIError(err)
	}
	return reportDownload(fp, dest, dir, cmd.Unzip)
}

// KernelsOpenCmd opens a kernel page in the browser
type KernelsOpenCmd struct {
	Ref string `arg:"" help:"Kernel reference (owner/slug)"`
}

// Run executes the open command
func (cmd *KernelsOpenCmd) Run(fp *FormatterProvider) error {
	ref, err := parseRef(cmd.Ref)
	if err != nil {
		return err
	}
	return openURL(fp, kaggle.KernelURL(ref.String()))
}

// reportDownload prints the downloaded file, extracting it first when asked.
func reportDownload(fp *FormatterProvider, dest, dir string, unzip bool) error {
	if !unzip {
		fp.Formatter.PrintMessage(dest)
		return nil
	}

	files, extracted, err := kaggle.Unzip(dest, dir)
	if err != nil {
		return &output.CLIError{Message: err.Error(), ExitCode: output.ExitGeneral, Err: err}
	}
	if !extracted {
		fp.Formatter.PrintMessage(dest)
		return nil
	}
	if err := os.Remove(dest); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not remove %s: %v\n", dest, err)
	}
	for _, f := range files {
		fp.Formatter.PrintMessage(f)
	}
	return nil
}

func openURL(fp *FormatterProvider, url string) error {
	fp.Formatter.PrintMessage(url)
	if err := browser.Open(url); err != nil {
		fmt.Fprintf(os.Stderr, "Could not open browser: %v\n", err)
	}
	return nil
}
