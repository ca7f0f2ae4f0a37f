package controllers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/mrhelper/internal/domain/commands"
	"github.com/rios0rios0/mrhelper/internal/domain/entities"
)

// ResolveController handles the "resolve" subcommand.
type ResolveController struct {
	command commands.Resolve
	out     io.Writer
}

// NewResolveController creates a new ResolveController writing to stdout.
func NewResolveController(command commands.Resolve) *ResolveController {
	return &ResolveController{command: command, out: os.Stdout}
}

// GetBind returns the Cobra command metadata for the resolve controller.
func (it *ResolveController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "resolve [path]",
		Short: "Show the merge requests related to the Podfile changes",
		Long: `Diff the Podfile against the target branch and print, for every bumped
dependency, the merge request (or commit) that introduced the pinned commit.
Nothing is pushed or created.`,
	}
}

// Execute runs the resolve mode.
func (it *ResolveController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	verbose, _ := cmd.Flags().GetBool("verbose")
	target, _ := cmd.Flags().GetString("target")

	workDir := "."
	if len(args) > 0 {
		workDir = args[0]
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}

	report, err := it.command.Execute(ctx, settings, commands.ResolveOptions{
		WorkDir:      workDir,
		TargetBranch: target,
		Verbose:      verbose,
	})
	if err != nil {
		logger.Errorf("Resolve failed: %v", err)
		return
	}

	renderReport(it.out, report)
}

// AddFlags adds the resolve-specific flags to the given Cobra command.
func (it *ResolveController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("target", "t", "", "Target branch (default: master if it exists on origin, else main)")
}

// renderReport prints one row per dependency; unresolved ones keep an empty URL.
func renderReport(out io.Writer, report *commands.ResolveReport) {
	urls := make(map[entities.DependencyReference]string, len(report.Results))
	for _, result := range report.Results {
		urls[result.Reference] = result.URL
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Repository", "Commit", "URL"})
	for _, ref := range report.References {
		t.AppendRow(table.Row{ref.RepositoryName, ref.CommitHash, urls[ref]})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()

	if report.Description == "" {
		_, _ = fmt.Fprintf(out, "\nNo related merge requests against %s.\n", report.TargetBranch)
		return
	}
	_, _ = fmt.Fprintf(out, "\n%s\n", entities.DescriptionAsText(report.Description))
}
