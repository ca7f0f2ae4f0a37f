package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	if err := container.Provide(NewCreateCommand); err != nil {
		return err
	}
	if err := container.Provide(NewResolveCommand); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *CreateCommand) Create {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *ResolveCommand) Resolve {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
