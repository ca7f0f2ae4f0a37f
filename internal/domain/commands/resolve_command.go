package commands

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/mrhelper/internal/infrastructure/repositories"
)

// Resolve is the interface for the resolve command.
type Resolve interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ResolveOptions) (*ResolveReport, error)
}

// ResolveOptions holds runtime options for a resolve run.
type ResolveOptions struct {
	WorkDir      string
	TargetBranch string
	Verbose      bool
}

// ResolveReport is what a merge request created from the current branch would reference.
type ResolveReport struct {
	TargetBranch string
	References   []entities.DependencyReference
	Results      []entities.ResolutionResult // completion order
	Description  string
}

// ResolveCommand runs the related merge request lookup without touching
// branches or creating anything.
type ResolveCommand struct {
	registry  *infraRepos.ProviderRegistry
	opener    repositories.LocalRepositoryOpener
	manifests repositories.ManifestRepository
}

// NewResolveCommand creates a new ResolveCommand.
func NewResolveCommand(
	registry *infraRepos.ProviderRegistry,
	opener repositories.LocalRepositoryOpener,
	manifests repositories.ManifestRepository,
) *ResolveCommand {
	return &ResolveCommand{
		registry:  registry,
		opener:    opener,
		manifests: manifests,
	}
}

// Execute diffs the manifest against the target branch and resolves every bumped dependency.
func (it *ResolveCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ResolveOptions,
) (*ResolveReport, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	ws, err := openWorkspace(ctx, settings, it.registry, it.opener, it.manifests, opts.WorkDir)
	if err != nil {
		return nil, err
	}

	target := strings.TrimPrefix(opts.TargetBranch, remoteOrigin+"/")
	if target == "" {
		target = defaultTargetBranch(ws.local)
	}
	if fetchErr := ws.fetchTarget(ctx, target); fetchErr != nil {
		return nil, fetchErr
	}

	lines, err := ws.local.ChangedLines(target, ws.manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s: %w", ws.manifest, err)
	}

	refs := ws.resolver.extractor.ExtractAll(lines)
	results, err := ws.resolver.ResolveReferences(ctx, refs)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(results))
	for _, result := range results {
		urls = append(urls, result.URL)
	}

	return &ResolveReport{
		TargetBranch: target,
		References:   refs,
		Results:      results,
		Description:  entities.BuildRelatedDescription(urls),
	}, nil
}
