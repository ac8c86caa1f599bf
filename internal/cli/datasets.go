package cli

import (
	"context"

	"github.com/semmy-space/kgl/internal/config"
	"github.com/semmy-space/kgl/internal/kaggle"
	"github.com/semmy-space/kgl/internal/output"
)

var datasetColumns = []output.Column{
	{Name: "Ref", Key: "ref"},
	{Name: "Title", Key: "title", Width: 40},
	{Name: "Size", Key: "size"},
	{Name: "Updated", Key: "lastupdated"},
	{Name: "Downloads", Key: "downloadcount"},
	{Name: "Votes", Key: "votecount"},
}

// DatasetsListCmd lists datasets
type DatasetsListCmd struct {
	Search string `help:"Search terms" short:"s"`
	Page   int    `help:"Page number" default:"1"`
}

// Run executes the list command
func (cmd *DatasetsListCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	records, err := sp.Fetcher().ListDatasets(ctx, cmd.Search, cmd.Page)
	if err != nil {
		return toCLIError(err)
	}
	return fp.Formatter.PrintList(records, datasetColumns)
}

// DatasetsFilesCmd lists the files in a dataset
type DatasetsFilesCmd struct {
	Ref string `arg:"" help:"Dataset reference (owner/slug)"`
}

type datasetFileRow struct {
	Name    string `json:"name"`
	Size    string `json:"size"`
	Bytes   int64  `json:"bytes"`
	Created string `json:"created"`
}

// Run executes the files command
func (cmd *DatasetsFilesCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	ref, err := parseRef(cmd.Ref)
	if err != nil {
		return err
	}

	files, err := sp.Fetcher().ListDatasetFiles(ctx, ref)
	if err != nil {
		return toCLIError(err)
	}

	rows := make([]datasetFileRow, len(files))
	for i, f := range files {
		rows[i] = datasetFileRow{Name: f.Name, Size: formatBytes(f.TotalBytes), Bytes: f.TotalBytes, Created: f.CreationDate}
	}
	return fp.Formatter.PrintList(rows, []output.Column{
		{Name: "Name", Key: "Name"},
		{Name: "Size", Key: "Size"},
		{Name: "Created", Key: "Created"},
	})
}

// DatasetsDownloadCmd downloads a dataset archive or its files one by one
type DatasetsDownloadCmd struct {
	Ref   string `arg:"" help:"Dataset reference (owner/slug)"`
	Path  string `help:"Target directory (default: <download_dir>/<slug>)" short:"p" type:"path" predictor:"dir"`
	Files bool   `help:"Download each file separately instead of the archive"`
	Unzip bool   `help:"Extract the archive after download"`
}

// Run executes the download command
func (cmd *DatasetsDownloadCmd) Run(ctx context.Context, cfg *config.Config, sp *ServiceProvider, fp *FormatterProvider) error {
	ref, err := parseRef(cmd.Ref)
	if err != nil {
		return err
	}
	dir := targetDir(cfg, cmd.Path, ref.Slug)

	if cmd.Files {
		written, err := sp.Fetcher().DownloadDatasetFiles(ctx, ref, dir)
		for _, path := range written {
			fp.Formatter.PrintMessage(path)
		}
		return toCLIError(err)
	}

	dest, err := sp.Fetcher().DownloadDataset(ctx, ref, dir)
	if err != nil {
		return toCLIError(err)
	}
	return reportDownload(fp, dest, dir, cmd.Unzip)
}

// DatasetsOpenCmd opens a dataset page in the browser
type DatasetsOpenCmd struct {
	Ref string `arg:"" help:"Dataset reference (owner/slug)"`
}

// Run executes the open command
func (cmd *DatasetsOpenCmd) Run(fp *FormatterProvider) error {
	ref, err := parseRef(cmd.Ref)
	if err != nil {
		return err
	}
	return openURL(fp, kaggle.DatasetURL(ref.String()))
}
