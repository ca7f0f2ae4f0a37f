package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
)

const defaultConfigFile = "mrhelper.yaml"

// InitController handles the "init" subcommand.
type InitController struct{}

// NewInitController creates a new InitController.
func NewInitController() *InitController {
	return &InitController{}
}

// GetBind returns the Cobra command metadata for the init controller.
func (it *InitController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "init",
		Short: "Write a starter mrhelper.yaml",
		Long: `Write an example configuration to ./mrhelper.yaml, or to the path given
with --config. An existing file is never overwritten.`,
	}
}

// Execute writes the starter configuration.
func (it *InitController) Execute(cmd *cobra.Command, _ []string) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = defaultConfigFile
	}

	if err := entities.WriteStarterConfig(path); err != nil {
		logger.Errorf("Init failed: %v", err)
		return
	}
	logger.Infof("Config written to %s, fill in the GitLab URL and token", path)
}
