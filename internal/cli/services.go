package cli

import (
	"log/slog"
	"sync"

	"github.com/semmy-space/kgl/internal/auth"
	"github.com/semmy-space/kgl/internal/config"
	"github.com/semmy-space/kgl/internal/kaggle"
	"github.com/semmy-space/kgl/internal/secrets"
)

// ServiceProvider lazily creates the secret store and the fetcher.
type ServiceProvider struct {
	cfg     *config.Config
	globals *Globals
	logger  *slog.Logger

	// swapped in tests
	newStore    func() (secrets.Store, error)
	prompter    func() auth.Prompter
	runner      func() kaggle.Runner
	lookupEnv   auth.LookupEnv
	interactive func() bool

	storeOnce sync.Once
	store     secrets.Store
	storeErr  error

	fetcherOnce sync.Once
	fetcher     *kaggle.Fetcher
}

// NewServiceProvider creates a ServiceProvider with the given config.
func NewServiceProvider(cfg *config.Config, globals *Globals, logger *slog.Logger) *ServiceProvider {
	sp := &ServiceProvider{
		cfg:         cfg,
		globals:     globals,
		logger:      logger,
		newStore:    secrets.NewStore,
		interactive: globals.Interactive,
	}
	sp.prompter = func() auth.Prompter { return auth.NewTerminalPrompter() }
	sp.runner = sp.execRunner
	return sp
}

// Store returns the secret store, opening it on first call.
func (sp *ServiceProvider) Store() (secrets.Store, error) {
	sp.storeOnce.Do(func() {
		sp.store, sp.storeErr = sp.newStore()
	})
	return sp.store, sp.storeErr
}

// Prompter returns the terminal prompter, or nil when prompts are disabled.
func (sp *ServiceProvider) Prompter() auth.Prompter {
	if !sp.interactive() {
		return nil
	}
	return sp.prompter()
}

// Resolver builds the credential chain: secret store, KAGGLE_TOKEN_JSON,
// KAGGLE_USERNAME/KAGGLE_KEY, then a prompt when interactive.
// An unavailable secret store is skipped with a warning.
func (sp *ServiceProvider) Resolver() *auth.Resolver {
	var getter auth.SecretGetter
	store, err := sp.Store()
	if err != nil {
		sp.logger.Warn("secret store unavailable, using environment only", "err", err)
	} else {
		getter = store
	}
	return auth.NewResolver(auth.DefaultSources(getter, sp.lookupEnv, sp.Prompter())...)
}

// ClientConfig returns HTTP client settings: flag > config > default.
func (sp *ServiceProvider) ClientConfig() kaggle.ClientConfig {
	cc := kaggle.DefaultClientConfig()
	cc.UserAgent = "kgl/" + Version
	switch {
	case sp.globals.APIBase != "":
		cc.BaseURL = sp.globals.APIBase
	case sp.cfg.APIBase != "":
		cc.BaseURL = sp.cfg.APIBase
	}
	return cc
}

func (sp *ServiceProvider) execRunner() kaggle.Runner {
	if sp.globals.NoCLI {
		return nil
	}
	binary := sp.globals.CLIPath
	if binary == "" {
		binary = sp.cfg.CLIPath
	}
	return kaggle.NewExecRunner(binary)
}

// Fetcher returns the dual-transport fetcher, creating it on first call.
func (sp *ServiceProvider) Fetcher() *kaggle.Fetcher {
	sp.fetcherOnce.Do(func() {
		sp.fetcher = kaggle.NewFetcher(sp.Resolver(), sp.runner(), sp.ClientConfig(), sp.logger)
	})
	return sp.fetcher
}
