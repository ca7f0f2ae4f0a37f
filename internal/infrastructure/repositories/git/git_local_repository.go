package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

const remoteOrigin = "origin"

var errDetachedHead = errors.New("HEAD is not on a branch")

// Opener opens local repositories with go-git.
type Opener struct{}

// NewOpener creates a new Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open opens the repository containing dir, searching parent directories.
func (o *Opener) Open(dir string) (repositories.LocalRepository, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %q: %w", dir, err)
	}
	return NewGitLocalRepository(repo)
}

// GitLocalRepository implements repositories.LocalRepository. Local reads go
// through go-git; fetch, rebase and push shell out to git so that the user's
// credential helpers and SSH setup apply.
type GitLocalRepository struct {
	repo *gogit.Repository
	dir  string
}

var _ repositories.LocalRepository = (*GitLocalRepository)(nil)

// NewGitLocalRepository wraps an opened go-git repository.
func NewGitLocalRepository(repo *gogit.Repository) (*GitLocalRepository, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	return &GitLocalRepository{
		repo: repo,
		dir:  worktree.Filesystem.Root(),
	}, nil
}

func (r *GitLocalRepository) Dir() string { return r.dir }

// IsDirty reports modified, staged or untracked files.
func (r *GitLocalRepository) IsDirty() (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := worktree.Status()
	if err != nil {
		return false, err
	}
	return !status.IsClean(), nil
}

func (r *GitLocalRepository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", err
	}
	if !head.Name().IsBranch() {
		return "", errDetachedHead
	}
	return head.Name().Short(), nil
}

func (r *GitLocalRepository) LastCommit() (*entities.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, err
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}
	return &entities.Commit{
		ID:           commit.Hash.String(),
		Title:        strings.TrimSpace(strings.SplitN(commit.Message, "\n", 2)[0]), //nolint:mnd // title and body
		Message:      commit.Message,
		AuthorName:   commit.Author.Name,
		AuthoredDate: commit.Author.When,
	}, nil
}

func (r *GitLocalRepository) OriginURL() (string, error) {
	remote, err := r.repo.Remote(remoteOrigin)
	if err != nil {
		return "", err
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL", remoteOrigin)
	}
	return urls[0], nil
}

// UserName returns user.name from the repository or global git config.
func (r *GitLocalRepository) UserName() string {
	for _, scope := range []config.Scope{config.LocalScope, config.GlobalScope} {
		cfg, err := r.repo.ConfigScoped(scope)
		if err == nil && cfg.User.Name != "" {
			return cfg.User.Name
		}
	}
	return ""
}

func (r *GitLocalRepository) Fetch(ctx context.Context) error {
	_, err := r.run(ctx, "fetch", "--all", "--quiet")
	return err
}

func (r *GitLocalRepository) HasRemoteBranch(branch string) bool {
	_, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remoteOrigin, branch), true)
	return err == nil
}

// ChangedLines returns the lines added to any file named fileName on the
// current branch since it forked from origin/<targetBranch>, in patch order.
// Changes made on the target after the fork point are not reported.
func (r *GitLocalRepository) ChangedLines(targetBranch, fileName string) ([]string, error) {
	targetRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remoteOrigin, targetBranch), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s", entities.ErrDiffUnavailable, remoteOrigin, targetBranch)
	}
	targetCommit, err := r.repo.CommitObject(targetRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", remoteOrigin, targetBranch, err)
	}

	head, err := r.repo.Head()
	if err != nil {
		return nil, err
	}
	headCommit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}

	baseCommit, err := mergeBase(targetCommit, headCommit)
	if err != nil {
		return nil, fmt.Errorf("failed to find the merge base with %s/%s: %w", remoteOrigin, targetBranch, err)
	}

	patch, err := baseCommit.Patch(headCommit)
	if err != nil {
		return nil, fmt.Errorf("failed to diff against %s/%s: %w", remoteOrigin, targetBranch, err)
	}

	var lines []string
	for _, filePatch := range patch.FilePatches() {
		from, to := filePatch.Files()
		if !isNamed(from, fileName) && !isNamed(to, fileName) {
			continue
		}
		lines = append(lines, addedLines(filePatch)...)
	}
	logger.Debugf("[git] %d lines added to %s since %s/%s", len(lines), fileName, remoteOrigin, targetBranch)
	return lines, nil
}

func (r *GitLocalRepository) Rebase(ctx context.Context, targetBranch string) error {
	if _, err := r.run(ctx, "rebase", remoteOrigin+"/"+targetBranch); err != nil {
		if _, abortErr := r.run(ctx, "rebase", "--abort"); abortErr != nil {
			logger.Debugf("[git] rebase --abort: %v", abortErr)
		}
		return err
	}
	return nil
}

// CreateBranch creates name at HEAD and checks it out.
func (r *GitLocalRepository) CreateBranch(name string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	return worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
		Keep:   true,
	})
}

func (r *GitLocalRepository) Checkout(name string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	return worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	})
}

func (r *GitLocalRepository) DeleteBranch(name string) error {
	return r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(name))
}

// PushMergeRequest pushes the branch with GitLab push options, which open the
// merge request even when the user cannot create one through the API.
func (r *GitLocalRepository) PushMergeRequest(ctx context.Context, input entities.PushInput) error {
	_, err := r.run(ctx, pushArguments(input)...)
	return err
}

func pushArguments(input entities.PushInput) []string {
	return []string{
		"push",
		"-o", "merge_request.create",
		"-o", "merge_request.target=" + input.TargetBranch,
		"-o", "merge_request.title=" + input.Title,
		"--set-upstream", input.Remote, input.SourceBranch,
	}
}

func (r *GitLocalRepository) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", args[0], err, strings.TrimSpace(string(output)))
	}
	logger.Debugf("[git] git %s\n%s", strings.Join(args, " "), output)
	return string(output), nil
}

// mergeBase returns the best common ancestor of target and head, or target
// when the histories are unrelated.
func mergeBase(target, head *object.Commit) (*object.Commit, error) {
	bases, err := target.MergeBase(head)
	if err != nil {
		return nil, err
	}
	if len(bases) == 0 {
		return target, nil
	}
	return bases[0], nil
}

func isNamed(file diff.File, name string) bool {
	return file != nil && path.Base(file.Path()) == name
}

func addedLines(filePatch diff.FilePatch) []string {
	var lines []string
	for _, chunk := range filePatch.Chunks() {
		if chunk.Type() != diff.Add {
			continue
		}
		for _, line := range strings.Split(chunk.Content(), "\n") {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

