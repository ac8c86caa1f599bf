package kaggle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
)

// DownloadDataset streams the whole dataset archive to dir/<slug>.zip
func (c *Client) DownloadDataset(ctx context.Context, ref Ref, dir string) (string, error) {
	dest := filepath.Join(dir, ref.Slug+".zip")
	apiPath := path.Join("datasets/download", ref.Owner, ref.Slug)
	if err := c.download(ctx, apiPath, nil, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// ListDatasetFiles lists the files of a dataset
func (c *Client) ListDatasetFiles(ctx context.Context, ref Ref) ([]DatasetFile, error) {
	apiPath := path.Join("datasets/list", ref.Owner, ref.Slug, "files")
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	resp, err := c.Do(ctx, http.MethodGet, apiPath, nil, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Older API versions return a bare array
	var files []DatasetFile
	if err := json.Unmarshal(body, &files); err == nil {
		return files, nil
	}
	var wrapped datasetFilesResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, &DecodeError{Format: "json", Err: err}
	}
	return wrapped.DatasetFiles, nil
}

// DownloadDatasetFile streams one dataset file to dir/<name>
func (c *Client) DownloadDatasetFile(ctx context.Context, ref Ref, name, dir string) (string, error) {
	dest := filepath.Join(dir, filepath.FromSlash(path.Clean("/" + name))[1:])
	apiPath := path.Join("datasets/download", ref.Owner, ref.Slug, url.PathEscape(name))
	if err := c.download(ctx, apiPath, nil, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// DownloadDatasetFiles downloads every file of a dataset, one at a time.
// If file k fails, files 1..k-1 stay on disk and the error names file k.
func (c *Client) DownloadDatasetFiles(ctx context.Context, ref Ref, dir string) ([]string, error) {
	op := "download dataset files " + ref.String()

	files, err := c.ListDatasetFiles(ctx, ref)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	written := make([]string, 0, len(files))
	for _, file := range files {
		dest, err := c.DownloadDatasetFile(ctx, ref, file.Name, dir)
		if err != nil {
			return written, &TransportError{Op: op, File: file.Name, Err: err}
		}
		written = append(written, dest)
	}
	return written, nil
}

// DownloadDataset downloads the archive of ref into dir
func (f *Fetcher) DownloadDataset(ctx context.Context, ref Ref, dir string) (string, error) {
	var dest string
	err := f.withClient(ctx, "download dataset "+ref.String(), func(c *Client) error {
		var err error
		dest, err = c.DownloadDataset(ctx, ref, dir)
		return err
	})
	return dest, err
}

// ListDatasetFiles lists the files of ref
func (f *Fetcher) ListDatasetFiles(ctx context.Context, ref Ref) ([]DatasetFile, error) {
	var files []DatasetFile
	err := f.withClient(ctx, "list dataset files "+ref.String(), func(c *Client) error {
		var err error
		files, err = c.ListDatasetFiles(ctx, ref)
		return err
	})
	return files, err
}

// DownloadDatasetFiles downloads each file of ref into dir sequentially
func (f *Fetcher) DownloadDatasetFiles(ctx context.Context, ref Ref, dir string) ([]string, error) {
	var written []string
	err := f.withClient(ctx, "download dataset files "+ref.String(), func(c *Client) error {
		var err error
		written, err = c.DownloadDatasetFiles(ctx, ref, dir)
		return err
	})
	return written, err
}
