package kaggle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// download streams a GET response body to dest, creating parent
// directories and overwriting an existing file.
func (c *Client) download(ctx context.Context, path string, query url.Values, dest string) error {
	resp, err := c.Do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseErrorResponse(resp)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file %s: %w", dest, err)
	}

	// Stream response to file
	_, err = io.Copy(file, resp.Body)
	closeErr := file.Close()

	if err != nil {
		// Best-effort cleanup of partial download
		os.Remove(dest)
		return fmt.Errorf("download failed: %w", err)
	}

	if closeErr != nil {
		return fmt.Errorf("close file: %w", closeErr)
	}

	return nil
}
