package commands

import (
	"context"
	"fmt"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/mrhelper/internal/infrastructure/repositories"
)

const (
	hostingGitLab  = "gitlab"
	notifierFeishu = "feishu"
	remoteOrigin   = "origin"
)

// workspace bundles the collaborators of a single run: the local checkout,
// the GitLab project it belongs to and the related merge request resolver.
type workspace struct {
	local    repositories.LocalRepository
	hosting  repositories.HostingRepository
	project  entities.Project
	repoName string
	manifest string
	resolver *RelatedMergeRequestResolver
}

// openWorkspace opens the repository containing workDir and resolves its GitLab project.
func openWorkspace(
	ctx context.Context,
	settings *entities.Settings,
	registry *infraRepos.ProviderRegistry,
	opener repositories.LocalRepositoryOpener,
	manifests repositories.ManifestRepository,
	workDir string,
) (*workspace, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	local, err := opener.Open(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	hosting, err := registry.GetHosting(hostingGitLab, settings.GitLab.URL, settings.GitLab.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create hosting client: %w", err)
	}

	projects, err := LoadProjectResolver(ctx, hosting)
	if err != nil {
		return nil, err
	}

	repoName := localRepositoryName(local)
	project, err := projects.Resolve(ctx, repoName)
	if err != nil {
		return nil, err
	}
	logger.Infof("Repository %s is GitLab project %s", repoName, project.PathWithNamespace)

	extractor := NewDependencyExtractor(manifests, absDir, settings.Manifest)
	return &workspace{
		local:    local,
		hosting:  hosting,
		project:  project,
		repoName: repoName,
		manifest: settings.Manifest,
		resolver: NewRelatedMergeRequestResolver(extractor, projects, hosting, settings.MaxWorkers),
	}, nil
}

// localRepositoryName prefers the name in the origin URL over the directory name.
func localRepositoryName(local repositories.LocalRepository) string {
	if originURL, err := local.OriginURL(); err == nil {
		if name := entities.RepositoryNameFromURL(originURL); name != "" {
			logger.Debugf("Repository name %q taken from the origin URL", name)
			return name
		}
	}
	name := filepath.Base(local.Dir())
	logger.Debugf("Repository name %q taken from the working tree", name)
	return name
}

// defaultTargetBranch mirrors the usual GitLab default: master when the
// remote has one, main otherwise.
func defaultTargetBranch(local repositories.LocalRepository) string {
	if local.HasRemoteBranch("master") {
		return "master"
	}
	return "main"
}

// fetchTarget fetches the remotes and checks that origin/<target> exists.
// A missing target is entities.ErrDiffUnavailable.
func (w *workspace) fetchTarget(ctx context.Context, target string) error {
	if err := w.local.Fetch(ctx); err != nil {
		return fmt.Errorf("failed to fetch remotes: %w", err)
	}
	if !w.local.HasRemoteBranch(target) {
		return fmt.Errorf("%w: %s/%s", entities.ErrDiffUnavailable, remoteOrigin, target)
	}
	return nil
}

// relatedDescription diffs the manifest against origin/<target> and resolves
// the bumped dependencies into a description fragment.
func (w *workspace) relatedDescription(ctx context.Context, target string) (string, error) {
	lines, err := w.local.ChangedLines(target, w.manifest)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", w.manifest, err)
	}
	logger.Debugf("%d changed lines in %s", len(lines), w.manifest)
	return w.resolver.Resolve(ctx, lines)
}
