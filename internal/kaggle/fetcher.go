package kaggle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/semmy-space/kgl/internal/auth"
)

// CredentialResolver yields credentials for one operation.
type CredentialResolver interface {
	Resolve(ctx context.Context) (auth.Credentials, error)
}

var errCLIDisabled = errors.New("cli transport disabled")

// Fetcher runs listing operations over the CLI first and the HTTP API second,
// and single-item operations over the HTTP API. It holds no credentials:
// every call resolves them again.
type Fetcher struct {
	resolver  CredentialResolver
	runner    Runner
	clientCfg ClientConfig
	logger    *slog.Logger
}

// NewFetcher creates a Fetcher. A nil runner disables the CLI path.
func NewFetcher(resolver CredentialResolver, runner Runner, clientCfg ClientConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fetcher{
		resolver:  resolver,
		runner:    runner,
		clientCfg: clientCfg,
		logger:    logger,
	}
}

type attemptOutcome int

const (
	attemptOK attemptOutcome = iota
	// attemptFailed: process could not run, exited non-zero, or printed undecodable CSV
	attemptFailed
	// attemptUnusable: CSV parsed but has no ref column
	attemptUnusable
)

// attempt is the result of the primary (CLI) transport
type attempt struct {
	outcome attemptOutcome
	records []Record
	err     error
}

// List runs q over the CLI, falling back to the API once if the CLI attempt
// failed or produced unusable output. Results are never mixed.
func (f *Fetcher) List(ctx context.Context, q *ListQuery) ([]Record, error) {
	creds, err := f.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	op := q.Operation()
	primary := f.tryCLI(ctx, q, creds)

	switch primary.outcome {
	case attemptOK:
		f.logger.Info("listed via cli", "op", op, "count", len(primary.records))
		return primary.records, nil
	case attemptUnusable:
		f.logger.Info("cli output unusable, falling back to api", "op", op, "reason", primary.err)
	case attemptFailed:
		f.logger.Info("cli attempt failed, falling back to api", "op", op, "reason", primary.err)
	}

	records, err := NewClient(f.clientCfg, creds).List(ctx, q)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	f.logger.Info("listed via api", "op", op, "count", len(records))
	return records, nil
}

func (f *Fetcher) tryCLI(ctx context.Context, q *ListQuery, creds auth.Credentials) attempt {
	if f.runner == nil {
		return attempt{outcome: attemptFailed, err: errCLIDisabled}
	}

	args := q.CLIArgs()
	f.logger.Debug("running cli", "args", strings.Join(args, " "))

	result, err := f.runner.Run(ctx, args, creds.Env())
	if err != nil {
		return attempt{outcome: attemptFailed, err: err}
	}
	if result.Code != 0 {
		return attempt{outcome: attemptFailed, err: exitError(result)}
	}

	table, err := ParseCSV(result.Stdout)
	if err != nil {
		return attempt{outcome: attemptFailed, err: err}
	}
	// Nothing at all printed is a valid empty listing
	if len(table.Header) == 0 {
		return attempt{outcome: attemptOK, records: []Record{}}
	}
	if !table.HasColumn("ref") {
		return attempt{outcome: attemptUnusable, err: ErrUnusableOutput}
	}
	return attempt{outcome: attemptOK, records: usableRecords(table.Rows)}
}

func exitError(result ExecResult) error {
	msg := strings.TrimSpace(result.Stderr)
	if msg == "" {
		return fmt.Errorf("exit code %d", result.Code)
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return fmt.Errorf("exit code %d: %s", result.Code, msg)
}

// ListMyKernels lists the caller's kernels
func (f *Fetcher) ListMyKernels(ctx context.Context, page, pageSize int) ([]Record, error) {
	return f.List(ctx, NewListQuery(ResourceKernels).Mine().Page(page).PageSize(pageSize))
}

// ListDatasets lists public datasets, optionally filtered by search
func (f *Fetcher) ListDatasets(ctx context.Context, search string, page int) ([]Record, error) {
	return f.List(ctx, NewListQuery(ResourceDatasets).Search(search).Page(page))
}

// ListCompetitions lists competitions, optionally filtered by search
func (f *Fetcher) ListCompetitions(ctx context.Context, search string, page int) ([]Record, error) {
	return f.List(ctx, NewListQuery(ResourceCompetitions).Search(search).Page(page))
}

// List fetches one page of a listing from the API
func (c *Client) List(ctx context.Context, q *ListQuery) ([]Record, error) {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	resp, err := c.Do(ctx, http.MethodGet, q.APIPath(), q.APIValues(), nil, "")
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
	return recordsFromJSON(body)
}

// withClient resolves credentials and runs fn against a fresh API client.
// Errors are wrapped with the operation name unless already wrapped.
func (f *Fetcher) withClient(ctx context.Context, op string, fn func(*Client) error) error {
	creds, err := f.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	if err := fn(NewClient(f.clientCfg, creds)); err != nil {
		var transportErr *TransportError
		var artifactErr *MalformedArtifactError
		if errors.As(err, &transportErr) || errors.As(err, &artifactErr) {
			return err
		}
		return &TransportError{Op: op, Err: err}
	}
	return nil
}

// Availability reports which transport can serve requests.
type Availability struct {
	Available bool
	Transport string // "cli" or "api"
	Version   string
	Error     string
}

// Check probes the CLI and then the API, mirroring the listing fallback order.
func (f *Fetcher) Check(ctx context.Context) Availability {
	creds, credErr := f.resolver.Resolve(ctx)

	if f.runner != nil {
		version, err := f.runner.Run(ctx, []string{"--version"}, nil)
		if err == nil && version.Code == 0 {
			if credErr != nil {
				return Availability{Error: credErr.Error()}
			}
			probe, err := f.runner.Run(ctx, []string{ResourceCompetitions, "list", "--page-size", "1"}, creds.Env())
			if err == nil && probe.Code == 0 {
				return Availability{
					Available: true,
					Transport: "cli",
					Version:   "Kaggle CLI " + strings.TrimSpace(version.Stdout),
				}
			}
			f.logger.Info("cli probe failed, checking api", "err", err, "code", probe.Code)
		} else {
			f.logger.Info("cli not available, checking api", "err", err)
		}
	}

	if credErr != nil {
		return Availability{Error: credErr.Error()}
	}
	if err := NewClient(f.clientCfg, creds).TestAuthentication(ctx); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return Availability{Transport: "api", Error: "invalid Kaggle credentials, check your username and API key"}
		}
		return Availability{Transport: "api", Error: fmt.Sprintf("error connecting to Kaggle: %v", err)}
	}
	return Availability{Available: true, Transport: "api", Version: "Kaggle API (direct)"}
}
