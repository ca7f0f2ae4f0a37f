package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
)

// loadSettings reads the file given by --config or the first one found in the default locations.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		var err error
		cfgPath, err = entities.FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w (specify one with --config or create mrhelper.yaml)", err)
		}
	}

	logger.Debugf("Using config file: %s", cfgPath)
	return entities.NewSettings(cfgPath)
}
