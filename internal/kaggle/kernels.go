package kaggle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PullKernel fetches a kernel's metadata and source into dir.
// It returns the paths written.
func (c *Client) PullKernel(ctx context.Context, ref Ref, dir string) ([]string, error) {
	query := url.Values{
		"userName":   {ref.Owner},
		"kernelSlug": {ref.Slug},
		"language":   {"all"},
		"kernelType": {"all"},
	}

	var pull PullResponse
	if err := c.getJSON(ctx, "kernels/pull", query, &pull); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	var written []string

	metaPath := filepath.Join(dir, KernelMetadataFile)
	var meta bytes.Buffer
	if len(pull.Metadata) == 0 || json.Indent(&meta, pull.Metadata, "", "  ") != nil {
		meta.Reset()
		meta.WriteString("null")
	}
	if err := os.WriteFile(metaPath, meta.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", metaPath, err)
	}
	written = append(written, metaPath)

	if pull.Blob != nil {
		name := filepath.Base(pull.Blob.Name)
		if name == "" || name == "." || name == string(filepath.Separator) {
			name = "notebook.ipynb"
		}
		srcPath := filepath.Join(dir, name)
		if err := os.WriteFile(srcPath, []byte(pull.Blob.Source), 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", srcPath, err)
		}
		written = append(written, srcPath)
	}

	return written, nil
}

// kernelDir is a validated local kernel directory
type kernelDir struct {
	metadata   json.RawMessage
	sourcePath string
}

// inspectKernelDir checks that dir has a metadata file and exactly one source file.
func inspectKernelDir(dir string) (*kernelDir, error) {
	metaPath := filepath.Join(dir, KernelMetadataFile)
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MalformedArtifactError{Path: dir, Reason: KernelMetadataFile + " not found"}
		}
		return nil, fmt.Errorf("read %s: %w", metaPath, err)
	}
	if !json.Valid(raw) {
		return nil, &MalformedArtifactError{Path: dir, Reason: KernelMetadataFile + " is not valid JSON"}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var sources []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isSourceFile(e.Name()) {
			sources = append(sources, e.Name())
		}
	}
	sort.Strings(sources)

	switch len(sources) {
	case 0:
		return nil, &MalformedArtifactError{
			Path:   dir,
			Reason: "no source file found (" + strings.Join(SourceExtensions, ", ") + ")",
		}
	case 1:
		return &kernelDir{metadata: raw, sourcePath: filepath.Join(dir, sources[0])}, nil
	default:
		return nil, &MalformedArtifactError{
			Path:   dir,
			Reason: "multiple source files: " + strings.Join(sources, ", "),
		}
	}
}

func isSourceFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// PushKernel uploads the metadata and source file found in dir.
func (c *Client) PushKernel(ctx context.Context, dir string) (*KernelRun, error) {
	kd, err := inspectKernelDir(dir)
	if err != nil {
		return nil, err
	}

	// Re-encode compactly so the form field carries a single JSON line
	var meta bytes.Buffer
	if err := json.Compact(&meta, kd.metadata); err != nil {
		return nil, &MalformedArtifactError{Path: dir, Reason: err.Error()}
	}

	resp, err := c.postMultipart(ctx, "kernels/push", func(mw *multipart.Writer) error {
		if err := mw.WriteField("text", meta.String()); err != nil {
			return err
		}
		return writeFilePart(mw, "blob", kd.sourcePath)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp)
	}

	var run KernelRun
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return nil, &DecodeError{Format: "json", Err: err}
	}
	if run.Error != "" {
		return &run, &APIError{StatusCode: resp.StatusCode, Message: "push rejected: " + run.Error}
	}
	return &run, nil
}

// KernelStatus fetches the latest run status of a kernel
func (c *Client) KernelStatus(ctx context.Context, ref Ref) (*KernelStatus, error) {
	query := url.Values{
		"userName":   {ref.Owner},
		"kernelSlug": {ref.Slug},
	}
	var status KernelStatus
	if err := c.getJSON(ctx, "kernels/status", query, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DownloadKernelOutput streams a kernel's output archive to dir/output.zip
func (c *Client) DownloadKernelOutput(ctx context.Context, ref Ref, dir string) (string, error) {
	query := url.Values{
		"userName":   {ref.Owner},
		"kernelSlug": {ref.Slug},
	}
	dest := filepath.Join(dir, "output.zip")
	if err := c.download(ctx, "kernels/output", query, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// postMultipart streams a multipart body produced by write to path.
func (c *Client) postMultipart(ctx context.Context, path string, write func(*multipart.Writer) error) (*http.Response, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := write(mw)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	resp, err := c.Do(ctx, http.MethodPost, path, nil, pr, mw.FormDataContentType())
	if err != nil {
		// Unblock the writer goroutine
		pr.CloseWithError(err)
		return nil, err
	}
	return resp, nil
}

func writeFilePart(mw *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file %s: %w", path, err)
	}
	defer file.Close()

	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

// Fetcher wrappers: each resolves credentials and uses a fresh client.

// PullKernel pulls ref into dir
func (f *Fetcher) PullKernel(ctx context.Context, ref Ref, dir string) ([]string, error) {
	var written []string
	err := f.withClient(ctx, "pull kernel "+ref.String(), func(c *Client) error {
		var err error
		written, err = c.PullKernel(ctx, ref, dir)
		return err
	})
	return written, err
}

// PushKernel pushes the kernel in dir
func (f *Fetcher) PushKernel(ctx context.Context, dir string) (*KernelRun, error) {
	// Local preconditions fail before any credential lookup
	if _, err := inspectKernelDir(dir); err != nil {
		return nil, err
	}

	var run *KernelRun
	err := f.withClient(ctx, "push kernel", func(c *Client) error {
		var err error
		run, err = c.PushKernel(ctx, dir)
		return err
	})
	return run, err
}

// KernelStatus fetches the status of ref
func (f *Fetcher) KernelStatus(ctx context.Context, ref Ref) (*KernelStatus, error) {
	var status *KernelStatus
	err := f.withClient(ctx, "kernel status "+ref.String(), func(c *Client) error {
		var err error
		status, err = c.KernelStatus(ctx, ref)
		return err
	})
	return status, err
}

// WaitForKernel polls the status of ref until the run finishes
func (f *Fetcher) WaitForKernel(ctx context.Context, ref Ref, opts WaitOptions) (*KernelStatus, error) {
	var status *KernelStatus
	err := f.withClient(ctx, "wait for kernel "+ref.String(), func(c *Client) error {
		var err error
		status, err = c.WaitForKernel(ctx, ref, opts)
		return err
	})
	return status, err
}

// DownloadKernelOutput downloads the output archive of ref into dir
func (f *Fetcher) DownloadKernelOutput(ctx context.Context, ref Ref, dir string) (string, error) {
	var dest string
	err := f.withClient(ctx, "download kernel output "+ref.String(), func(c *Client) error {
		var err error
		dest, err = c.DownloadKernelOutput(ctx, ref, dir)
		return err
	})
	return dest, err
}
