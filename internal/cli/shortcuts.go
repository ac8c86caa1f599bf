package cli

// LsCmd provides desire-path shortcuts for listing resources
// These are aliases to full command paths for faster interactive use
type LsCmd struct {
	Kernels      KernelsListCmd      `cmd:"" help:"List your kernels (shortcut for kernels list)"`
	Datasets     DatasetsListCmd     `cmd:"" help:"List datasets (shortcut for datasets list)"`
	Competitions CompetitionsListCmd `cmd:"" help:"List competitions (shortcut for competitions list)"`
}
