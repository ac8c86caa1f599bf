package kaggle

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
)

// Submit uploads a submission file to a competition with a description.
func (c *Client) Submit(ctx context.Context, competition, filePath, message string) (*SubmitResult, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("submission file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("submission file %s is a directory", filePath)
	}

	apiPath := "competitions/submissions/submit/" + url.PathEscape(competition)
	resp, err := c.postMultipart(ctx, apiPath, func(mw *multipart.Writer) error {
		if err := writeFilePart(mw, "blobs", filePath); err != nil {
			return err
		}
		return mw.WriteField("submissionDescription", message)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp)
	}

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &DecodeError{Format: "json", Err: err}
	}
	return &result, nil
}

// Submit uploads filePath to competition
func (f *Fetcher) Submit(ctx context.Context, competition, filePath, message string) (*SubmitResult, error) {
	var result *SubmitResult
	err := f.withClient(ctx, "submit to "+competition, func(c *Client) error {
		var err error
		result, err = c.Submit(ctx, competition, filePath, message)
		return err
	})
	return result, err
}
