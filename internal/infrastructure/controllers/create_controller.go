package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/mrhelper/internal/domain/commands"
	"github.com/rios0rios0/mrhelper/internal/domain/entities"
)

// CreateController handles the "create" subcommand.
type CreateController struct {
	command commands.Create
}

// NewCreateController creates a new CreateController.
func NewCreateController(command commands.Create) *CreateController {
	return &CreateController{command: command}
}

// GetBind returns the Cobra command metadata for the create controller.
func (it *CreateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "create [path]",
		Short: "Create a merge request for the last commit",
		Long: `Push the last commit of the current branch to a temporary branch and let
GitLab open a merge request for it.

Dependencies bumped in the Podfile are looked up in their own GitLab projects
and the merge requests that introduced the pinned commits are listed in the
description. The author is notified on Feishu when configured.`,
	}
}

// Execute runs the create flow.
func (it *CreateController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	target, _ := cmd.Flags().GetString("target")
	title, _ := cmd.Flags().GetString("title")
	confirmed, _ := cmd.Flags().GetBool("yes")
	mentions, _ := cmd.Flags().GetStringSlice("mention")

	workDir := "."
	if len(args) > 0 {
		workDir = args[0]
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}

	url, err := it.command.Execute(ctx, settings, commands.CreateOptions{
		WorkDir:      workDir,
		TargetBranch: target,
		Title:        title,
		Mentions:     mentions,
		Confirmed:    confirmed,
		DryRun:       dryRun,
		Verbose:      verbose,
	})
	if err != nil {
		logger.Errorf("Create failed: %v", err)
		return
	}
	if url != "" {
		logger.Infof("Merge request: %s", url)
	}
}

// AddFlags adds the create-specific flags to the given Cobra command.
func (it *CreateController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("target", "t", "", "Target branch (default: master if it exists on origin, else main)")
	cmd.Flags().String("title", "", "Merge request title (default: first line of the last commit message)")
	cmd.Flags().StringSliceP("mention", "m", nil, "Configured Feishu users to mention in addition to the default ones")
	cmd.Flags().BoolP("yes", "y", false, "Confirm the last commit is the one to open the merge request for")
}
