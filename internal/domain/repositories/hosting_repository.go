package repositories

import (
	"context"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
)

// HostingRepository abstracts the GitLab REST API.
type HostingRepository interface {
	// ListProjects returns every project accessible to the token owner.
	ListProjects(ctx context.Context) ([]entities.Project, error)

	// SearchProjects returns the projects whose name matches the keyword.
	SearchProjects(ctx context.Context, keyword string) ([]entities.Project, error)

	// ListMergedMergeRequests returns all merged merge requests of a project,
	// most recently updated first.
	ListMergedMergeRequests(ctx context.Context, project entities.Project) ([]entities.MergeRequest, error)

	// ListMergeRequestCommits returns the commits of a merge request.
	ListMergeRequestCommits(
		ctx context.Context,
		project entities.Project,
		mr entities.MergeRequest,
	) ([]entities.Commit, error)

	// GetCommitURL returns the web URL of a single commit.
	GetCommitURL(ctx context.Context, project entities.Project, sha string) (string, error)

	// ListOpenMergeRequests returns the opened merge requests whose source branch matches.
	ListOpenMergeRequests(
		ctx context.Context,
		project entities.Project,
		sourceBranch string,
	) ([]entities.MergeRequest, error)

	// UpdateMergeRequest changes the description and appends labels.
	UpdateMergeRequest(
		ctx context.Context,
		project entities.Project,
		mr entities.MergeRequest,
		update entities.MergeRequestUpdate,
	) error

	ListLabels(ctx context.Context, project entities.Project) ([]entities.Label, error)
	CreateLabel(ctx context.Context, project entities.Project, label entities.Label) error
}
