package repositories

import (
	"context"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
)

// LocalRepository abstracts the Git checkout mrhelper runs in.
type LocalRepository interface {
	// Dir returns the working tree root.
	Dir() string

	IsDirty() (bool, error)
	CurrentBranch() (string, error)
	LastCommit() (*entities.Commit, error)
	OriginURL() (string, error)
	UserName() string

	// Fetch updates every remote.
	Fetch(ctx context.Context) error

	// HasRemoteBranch reports whether origin/<branch> exists locally.
	HasRemoteBranch(branch string) bool

	// ChangedLines returns the lines added to fileName between origin/<targetBranch> and HEAD.
	ChangedLines(targetBranch, fileName string) ([]string, error)

	Rebase(ctx context.Context, targetBranch string) error
	CreateBranch(name string) error
	Checkout(name string) error
	DeleteBranch(name string) error

	// PushMergeRequest pushes the branch and asks GitLab to open a merge request for it.
	PushMergeRequest(ctx context.Context, input entities.PushInput) error
}

// LocalRepositoryOpener opens the Git repository containing dir.
type LocalRepositoryOpener interface {
	Open(dir string) (LocalRepository, error)
}
