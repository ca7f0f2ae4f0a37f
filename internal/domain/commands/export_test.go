package commands

import "time"

// NormalizeLine exports normalizeLine for testing.
var NormalizeLine = normalizeLine //nolint:gochecknoglobals // test export

// FirstLine exports firstLine for testing.
var FirstLine = firstLine //nolint:gochecknoglobals // test export

// WithRetryDelay shortens the merge request lookup delay for testing.
func (it *CreateCommand) WithRetryDelay(delay time.Duration) *CreateCommand {
	it.retryDelay = delay
	return it
}

// WithClock fixes the time used for temporary branch names.
func (it *CreateCommand) WithClock(now func() time.Time) *CreateCommand {
	it.now = now
	return it
}
