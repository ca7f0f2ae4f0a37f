//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

// SpyNotifierRepository implements repositories.NotifierRepository as a spy.
type SpyNotifierRepository struct {
	NotifyErr error
	Messages  []repositories.MergeRequestMessage
}

var _ repositories.NotifierRepository = (*SpyNotifierRepository)(nil)

func (n *SpyNotifierRepository) Notify(_ context.Context, message repositories.MergeRequestMessage) error {
	n.Messages = append(n.Messages, message)
	return n.NotifyErr
}
