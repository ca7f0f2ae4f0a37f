package entities

import "errors"

var (
	// ErrProjectNotFound is returned when a repository name cannot be mapped to a GitLab project.
	ErrProjectNotFound = errors.New("project not found")

	// ErrDiffUnavailable is returned when the diff target ref is missing after a fetch.
	ErrDiffUnavailable = errors.New("target branch is not available on the remote")

	// ErrUncommittedChanges is returned when the working tree is dirty.
	ErrUncommittedChanges = errors.New("repository has uncommitted changes")

	// ErrMergeRequestNotFound is returned when the pushed merge request cannot be located.
	ErrMergeRequestNotFound = errors.New("merge request was not created")

	// ErrNotConfirmed is returned when the create flow is run without confirmation.
	ErrNotConfirmed = errors.New("merge request creation not confirmed, re-run with --yes")
)
