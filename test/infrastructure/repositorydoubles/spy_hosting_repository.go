//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

// SpyHostingRepository implements repositories.HostingRepository as a configurable spy.
// It is safe for concurrent use, since resolver workers call it in parallel.
type SpyHostingRepository struct {
	mu sync.Mutex

	// --- ListProjects ---
	Projects          []entities.Project
	ListProjectsErr   error
	ListProjectsCalls int

	// --- SearchProjects ---
	SearchResults    map[string][]entities.Project // keyword -> projects
	SearchErr        error
	SearchedKeywords []string

	// --- ListMergedMergeRequests ---
	MergedMRs      map[int64][]entities.MergeRequest // project ID -> merge requests
	MergedErrs     map[int64]error
	MergedDelays   map[int64]time.Duration
	MergedProjects []int64
	InFlight       int
	MaxInFlight    int

	// --- ListMergeRequestCommits ---
	MRCommits    map[string][]entities.Commit // merge request web URL -> commits
	MRCommitsErr error
	CommitsCalls int

	// --- GetCommitURL ---
	CommitURLErr  error
	CommitLookups []string

	// --- ListOpenMergeRequests ---
	OpenMRs        []entities.MergeRequest
	OpenMRsErr     error
	OpenMRsDelayed int // number of calls answered with no merge request first
	OpenMRsCalls   int

	// --- UpdateMergeRequest ---
	UpdateErr     error
	UpdatedMRs    []entities.MergeRequest
	UpdateInputs  []entities.MergeRequestUpdate

	// --- ListLabels / CreateLabel ---
	Labels         []entities.Label
	ListLabelsErr  error
	CreateLabelErr error
	CreatedLabels  []entities.Label
}

var _ repositories.HostingRepository = (*SpyHostingRepository)(nil)

func (s *SpyHostingRepository) ListProjects(_ context.Context) ([]entities.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListProjectsCalls++
	return s.Projects, s.ListProjectsErr
}

func (s *SpyHostingRepository) SearchProjects(_ context.Context, keyword string) ([]entities.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SearchedKeywords = append(s.SearchedKeywords, keyword)
	if s.SearchErr != nil {
		return nil, s.SearchErr
	}
	return s.SearchResults[keyword], nil
}

func (s *SpyHostingRepository) ListMergedMergeRequests(
	_ context.Context, project entities.Project,
) ([]entities.MergeRequest, error) {
	s.mu.Lock()
	s.MergedProjects = append(s.MergedProjects, project.ID)
	s.InFlight++
	if s.InFlight > s.MaxInFlight {
		s.MaxInFlight = s.InFlight
	}
	delay := s.MergedDelays[project.ID]
	s.mu.Unlock()

	time.Sleep(delay)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.InFlight--
	if err := s.MergedErrs[project.ID]; err != nil {
		return nil, err
	}
	return s.MergedMRs[project.ID], nil
}

func (s *SpyHostingRepository) ListMergeRequestCommits(
	_ context.Context, _ entities.Project, mr entities.MergeRequest,
) ([]entities.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CommitsCalls++
	if s.MRCommitsErr != nil {
		return nil, s.MRCommitsErr
	}
	return s.MRCommits[mr.WebURL], nil
}

// GetCommitURL answers <project web URL>/-/commit/<sha>, like GitLab does.
func (s *SpyHostingRepository) GetCommitURL(
	_ context.Context, project entities.Project, sha string,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CommitLookups = append(s.CommitLookups, sha)
	if s.CommitURLErr != nil {
		return "", s.CommitURLErr
	}
	return fmt.Sprintf("%s/-/commit/%s", project.WebURL, sha), nil
}

func (s *SpyHostingRepository) ListOpenMergeRequests(
	_ context.Context, _ entities.Project, _ string,
) ([]entities.MergeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.OpenMRsCalls++
	if s.OpenMRsErr != nil {
		return nil, s.OpenMRsErr
	}
	if s.OpenMRsCalls <= s.OpenMRsDelayed {
		return nil, nil
	}
	return s.OpenMRs, nil
}

func (s *SpyHostingRepository) UpdateMergeRequest(
	_ context.Context, _ entities.Project, mr entities.MergeRequest, update entities.MergeRequestUpdate,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedMRs = append(s.UpdatedMRs, mr)
	s.UpdateInputs = append(s.UpdateInputs, update)
	return s.UpdateErr
}

func (s *SpyHostingRepository) ListLabels(_ context.Context, _ entities.Project) ([]entities.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Labels, s.ListLabelsErr
}

func (s *SpyHostingRepository) CreateLabel(_ context.Context, _ entities.Project, label entities.Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateLabelErr != nil {
		return s.CreateLabelErr
	}
	s.CreatedLabels = append(s.CreatedLabels, label)
	return nil
}
