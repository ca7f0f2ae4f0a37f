package gitlab

import (
	"context"
	"errors"
	"fmt"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

const (
	perPage = 100

	stateMerged = "merged"
	stateOpened = "opened"
	orderByDate = "updated_at"
)

var errClientNotInitialized = errors.New("gitlab client not initialized")

var _ repositories.HostingRepository = (*GitLabHostingRepository)(nil)

// GitLabHostingRepository implements repositories.HostingRepository for GitLab.
type GitLabHostingRepository struct {
	client *gl.Client
}

// NewHostingRepository creates a GitLab client for the instance at baseURL.
func NewHostingRepository(baseURL, token string) (repositories.HostingRepository, error) {
	options := []gl.ClientOptionFunc{}
	if baseURL != "" {
		options = append(options, gl.WithBaseURL(baseURL))
	}
	client, err := gl.NewClient(token, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}
	return &GitLabHostingRepository{client: client}, nil
}

// ListProjects lists every project visible to the token owner.
func (p *GitLabHostingRepository) ListProjects(ctx context.Context) ([]entities.Project, error) {
	return p.listProjects(ctx, &gl.ListProjectsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		Simple:      gl.Ptr(true),
	})
}

func (p *GitLabHostingRepository) SearchProjects(
	ctx context.Context,
	keyword string,
) ([]entities.Project, error) {
	return p.listProjects(ctx, &gl.ListProjectsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		Search:      gl.Ptr(keyword),
		Simple:      gl.Ptr(true),
	})
}

func (p *GitLabHostingRepository) listProjects(
	ctx context.Context,
	opts *gl.ListProjectsOptions,
) ([]entities.Project, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	var allProjects []entities.Project
	for {
		projects, resp, err := p.client.Projects.ListProjects(opts, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}

		for _, proj := range projects {
			allProjects = append(allProjects, entities.Project{
				ID:                proj.ID,
				Name:              proj.Name,
				PathWithNamespace: proj.PathWithNamespace,
				WebURL:            proj.WebURL,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allProjects, nil
}

// ListMergedMergeRequests lists all merged merge requests, most recently updated first.
func (p *GitLabHostingRepository) ListMergedMergeRequests(
	ctx context.Context,
	project entities.Project,
) ([]entities.MergeRequest, error) {
	return p.listMergeRequests(ctx, project, &gl.ListProjectMergeRequestsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		State:       gl.Ptr(stateMerged),
		OrderBy:     gl.Ptr(orderByDate),
	})
}

func (p *GitLabHostingRepository) ListOpenMergeRequests(
	ctx context.Context,
	project entities.Project,
	sourceBranch string,
) ([]entities.MergeRequest, error) {
	return p.listMergeRequests(ctx, project, &gl.ListProjectMergeRequestsOptions{
		ListOptions:  gl.ListOptions{PerPage: perPage},
		State:        gl.Ptr(stateOpened),
		OrderBy:      gl.Ptr(orderByDate),
		SourceBranch: gl.Ptr(sourceBranch),
	})
}

func (p *GitLabHostingRepository) listMergeRequests(
	ctx context.Context,
	project entities.Project,
	opts *gl.ListProjectMergeRequestsOptions,
) ([]entities.MergeRequest, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	var allMRs []entities.MergeRequest
	for {
		mrs, resp, err := p.client.MergeRequests.ListProjectMergeRequests(
			project.ID, opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list merge requests: %w", err)
		}

		for _, mr := range mrs {
			allMRs = append(allMRs, entities.MergeRequest{
				IID:          mr.IID,
				Title:        mr.Title,
				WebURL:       mr.WebURL,
				State:        mr.State,
				SourceBranch: mr.SourceBranch,
				Labels:       []string(mr.Labels),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allMRs, nil
}

func (p *GitLabHostingRepository) ListMergeRequestCommits(
	ctx context.Context,
	project entities.Project,
	mr entities.MergeRequest,
) ([]entities.Commit, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	var allCommits []entities.Commit
	opts := &gl.GetMergeRequestCommitsOptions{ListOptions: gl.ListOptions{PerPage: perPage}}
	for {
		commits, resp, err := p.client.MergeRequests.GetMergeRequestCommits(
			project.ID, mr.IID, opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits of !%d: %w", mr.IID, err)
		}

		for _, commit := range commits {
			allCommits = append(allCommits, entities.Commit{
				ID:         commit.ID,
				Title:      commit.Title,
				Message:    commit.Message,
				AuthorName: commit.AuthorName,
				WebURL:     commit.WebURL,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allCommits, nil
}

func (p *GitLabHostingRepository) GetCommitURL(
	ctx context.Context,
	project entities.Project,
	sha string,
) (string, error) {
	if p.client == nil {
		return "", errClientNotInitialized
	}

	commit, _, err := p.client.Commits.GetCommit(project.ID, sha, nil, gl.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get commit %s: %w", sha, err)
	}
	return commit.WebURL, nil
}

func (p *GitLabHostingRepository) UpdateMergeRequest(
	ctx context.Context,
	project entities.Project,
	mr entities.MergeRequest,
	update entities.MergeRequestUpdate,
) error {
	if p.client == nil {
		return errClientNotInitialized
	}

	opts := &gl.UpdateMergeRequestOptions{
		Description: gl.Ptr(update.Description),
	}
	if len(update.AddLabels) > 0 {
		opts.AddLabels = gl.Ptr(gl.LabelOptions(update.AddLabels))
	}

	_, _, err := p.client.MergeRequests.UpdateMergeRequest(project.ID, mr.IID, opts, gl.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to update merge request !%d: %w", mr.IID, err)
	}
	return nil
}

func (p *GitLabHostingRepository) ListLabels(
	ctx context.Context,
	project entities.Project,
) ([]entities.Label, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	var allLabels []entities.Label
	opts := &gl.ListLabelsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
	}
	for {
		labels, resp, err := p.client.Labels.ListLabels(project.ID, opts, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}

		for _, label := range labels {
			allLabels = append(allLabels, entities.Label{
				Name:        label.Name,
				Description: label.Description,
				Color:       label.Color,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allLabels, nil
}

func (p *GitLabHostingRepository) CreateLabel(
	ctx context.Context,
	project entities.Project,
	label entities.Label,
) error {
	if p.client == nil {
		return errClientNotInitialized
	}

	_, _, err := p.client.Labels.CreateLabel(project.ID, &gl.CreateLabelOptions{
		Name:        gl.Ptr(label.Name),
		Color:       gl.Ptr(label.Color),
		Description: gl.Ptr(label.Description),
	}, gl.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to create label %s: %w", label.Name, err)
	}
	return nil
}
