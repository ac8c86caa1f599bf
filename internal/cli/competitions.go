package cli

import (
	"context"

	"github.com/semmy-space/kgl/internal/output"
)

var competitionColumns = []output.Column{
	{Name: "Ref", Key: "ref", Width: 50},
	{Name: "Deadline", Key: "deadline"},
	{Name: "Category", Key: "category"},
	{Name: "Reward", Key: "reward"},
	{Name: "Teams", Key: "teamcount"},
	{Name: "Entered", Key: "userhasentered"},
}

// CompetitionsListCmd lists competitions
type CompetitionsListCmd struct {
	Search string `help:"Search terms" short:"s"`
	Page   int    `help:"Page number" default:"1"`
}

// Run executes the list command
func (cmd *CompetitionsListCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	records, err := sp.Fetcher().ListCompetitions(ctx, cmd.Search, cmd.Page)
	if err != nil {
		return toCLIError(err)
	}
	return fp.Formatter.PrintList(records, competitionColumns)
}

// CompetitionsSubmitCmd uploads a submission file
type CompetitionsSubmitCmd struct {
	Competition string `arg:"" help:"Competition slug (e.g. titanic)"`
	File        string `arg:"" help:"Predictions file" type:"existingfile" predictor:"file"`
	Message     string `help:"Submission description" short:"m" required:""`
}

// Run executes the submit command
func (cmd *CompetitionsSubmitCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	result, err := sp.Fetcher().Submit(ctx, cmd.Competition, cmd.File, cmd.Message)
	if err != nil {
		return toCLIError(err)
	}
	return fp.Formatter.Print(*result)
}
