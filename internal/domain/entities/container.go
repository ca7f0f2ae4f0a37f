package entities

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all entity providers with the DIG container.
// Settings are not registered: the config path is only known once a controller parses its flags.
func RegisterProviders(_ *dig.Container) error {
	return nil
}
