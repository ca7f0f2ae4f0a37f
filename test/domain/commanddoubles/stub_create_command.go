//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/mrhelper/internal/domain/commands"
	"github.com/rios0rios0/mrhelper/internal/domain/entities"
)

// StubCreateCommand is a stub implementation of commands.Create.
type StubCreateCommand struct {
	ExecuteCallCount int
	ExecuteURL       string
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOpts         commands.CreateOptions
}

var _ commands.Create = (*StubCreateCommand)(nil)

func (s *StubCreateCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.CreateOptions,
) (string, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	return s.ExecuteURL, s.ExecuteErr
}
