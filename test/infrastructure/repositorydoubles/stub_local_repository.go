//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"errors"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

// StubLocalRepository implements repositories.LocalRepository with canned answers.
type StubLocalRepository struct {
	WorkDir        string
	Dirty          bool
	Branch         string
	Commit         *entities.Commit
	Origin         string
	User           string
	FetchErr       error
	RemoteBranches map[string]bool
	Lines          []string
	LinesErr       error
	RebaseErr      error
	CreateErr      error
	PushErr        error

	// spy: calls received
	FetchCalls      int
	RebasedOnto     []string
	DiffedFiles     []string
	CreatedBranches []string
	CheckedOut      []string
	DeletedBranches []string
	Pushes          []entities.PushInput
}

var _ repositories.LocalRepository = (*StubLocalRepository)(nil)

func (s *StubLocalRepository) Dir() string { return s.WorkDir }
func (s *StubLocalRepository) IsDirty() (bool, error) { return s.Dirty, nil }
func (s *StubLocalRepository) UserName() string { return s.User }

func (s *StubLocalRepository) CurrentBranch() (string, error) { return s.Branch, nil }

func (s *StubLocalRepository) LastCommit() (*entities.Commit, error) {
	if s.Commit == nil {
		return &entities.Commit{ID: "0000000", Message: "initial commit"}, nil
	}
	return s.Commit, nil
}

func (s *StubLocalRepository) OriginURL() (string, error) {
	if s.Origin == "" {
		return "", errors.New("remote not found")
	}
	return s.Origin, nil
}

func (s *StubLocalRepository) Fetch(_ context.Context) error {
	s.FetchCalls++
	return s.FetchErr
}

func (s *StubLocalRepository) HasRemoteBranch(branch string) bool {
	return s.RemoteBranches[branch]
}

func (s *StubLocalRepository) ChangedLines(_, fileName string) ([]string, error) {
	s.DiffedFiles = append(s.DiffedFiles, fileName)
	return s.Lines, s.LinesErr
}

func (s *StubLocalRepository) Rebase(_ context.Context, targetBranch string) error {
	s.RebasedOnto = append(s.RebasedOnto, targetBranch)
	return s.RebaseErr
}

func (s *StubLocalRepository) CreateBranch(name string) error {
	s.CreatedBranches = append(s.CreatedBranches, name)
	return s.CreateErr
}

func (s *StubLocalRepository) Checkout(name string) error {
	s.CheckedOut = append(s.CheckedOut, name)
	return nil
}

func (s *StubLocalRepository) DeleteBranch(name string) error {
	s.DeletedBranches = append(s.DeletedBranches, name)
	return nil
}

func (s *StubLocalRepository) PushMergeRequest(_ context.Context, input entities.PushInput) error {
	s.Pushes = append(s.Pushes, input)
	return s.PushErr
}

// StubLocalRepositoryOpener always opens the same StubLocalRepository.
type StubLocalRepositoryOpener struct {
	Repository *StubLocalRepository
	OpenErr    error
	OpenedDirs []string
}

var _ repositories.LocalRepositoryOpener = (*StubLocalRepositoryOpener)(nil)

func (o *StubLocalRepositoryOpener) Open(dir string) (repositories.LocalRepository, error) {
	o.OpenedDirs = append(o.OpenedDirs, dir)
	if o.OpenErr != nil {
		return nil, o.OpenErr
	}
	return o.Repository, nil
}
