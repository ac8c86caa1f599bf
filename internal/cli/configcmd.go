package cli

import (
	"fmt"
	"os"

	"github.com/semmy-space/kgl/internal/config"
	"github.com/semmy-space/kgl/internal/output"
)

// ConfigGetCmd implements config get command
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get (e.g., api_base, page_size)"`
}

// Run executes the get command
func (cmd *ConfigGetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	value, err := cfg.Get(cmd.Key)
	if err != nil {
		return &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitNotFound,
		}
	}

	fp.Formatter.PrintMessage(value)
	return nil
}

// ConfigSetCmd implements config set command
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key to set"`
	Value string `arg:"" help:"Value to set"`
}

// Run executes the set command
func (cmd *ConfigSetCmd) Run(cfg *config.Config) error {
	if _, ok := config.KeySpecs[cmd.Key]; !ok {
		return &output.CLIError{
			Message:  fmt.Sprintf("Unknown config key: %s", cmd.Key),
			ExitCode: output.ExitUsage,
			Hint:     "Run: kgl config list",
		}
	}
	if err := config.Validate(cmd.Key, cmd.Value); err != nil {
		return &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitUsage,
		}
	}

	if err := cfg.Set(cmd.Key, cmd.Value); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to set config: %v", err),
			ExitCode: output.ExitConfigError,
		}
	}

	fmt.Fprintf(os.Stderr, "Set %s = %s\n", cmd.Key, cmd.Value)
	return nil
}

// ConfigUnsetCmd implements config unset command
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to remove"`
}

// Run executes the unset command
func (cmd *ConfigUnsetCmd) Run(cfg *config.Config) error {
	if _, err := cfg.Get(cmd.Key); err != nil {
		return &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitUsage,
		}
	}

	if err := cfg.Unset(cmd.Key); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to unset config: %v", err),
			ExitCode: output.ExitConfigError,
		}
	}

	fmt.Fprintf(os.Stderr, "Unset %s\n", cmd.Key)
	return nil
}

// ConfigListConfigCmd implements config list command
type ConfigListConfigCmd struct{}

type configItem struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Run executes the list command
func (cmd *ConfigListConfigCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	var items []configItem
	for _, kv := range cfg.All() {
		items = append(items, configItem{
			Key:         kv[0],
			Value:       kv[1],
			Description: config.KeySpecs[kv[0]].Description,
		})
	}

	return fp.Formatter.PrintList(items, []output.Column{
		{Name: "Key", Key: "Key"},
		{Name: "Value", Key: "Value"},
		{Name: "Description", Key: "Description"},
	})
}

// ConfigPathCmd implements config path command
type ConfigPathCmd struct{}

// Run executes the path command
func (cmd *ConfigPathCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	path := cfg.Path()
	fp.Formatter.PrintMessage(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "(file does not exist yet - will be created on first write)\n")
	}

	return nil
}
