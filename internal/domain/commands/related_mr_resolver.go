package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

// RelatedMergeRequestResolver finds, for every dependency bumped in a
// manifest diff, the merged merge request that introduced the pinned commit.
//
// Projects are resolved sequentially, then one worker per dependency searches
// its project. Workers are never cancelled and never retry: a worker whose
// GitLab call fails contributes nothing, so its row is missing from the
// description. A hung call stalls Resolve.
type RelatedMergeRequestResolver struct {
	extractor  *DependencyExtractor
	projects   *ProjectResolver
	hosting    repositories.HostingRepository
	maxWorkers int
}

// NewRelatedMergeRequestResolver creates a resolver. maxWorkers bounds the
// number of concurrent workers; zero means one worker per dependency.
func NewRelatedMergeRequestResolver(
	extractor *DependencyExtractor,
	projects *ProjectResolver,
	hosting repositories.HostingRepository,
	maxWorkers int,
) *RelatedMergeRequestResolver {
	return &RelatedMergeRequestResolver{
		extractor:  extractor,
		projects:   projects,
		hosting:    hosting,
		maxWorkers: maxWorkers,
	}
}

// lookupJob is the input of a single worker.
type lookupJob struct {
	reference entities.DependencyReference
	project   entities.Project
}

// Resolve turns changed manifest lines into a merge request description
// fragment. The order of the rows is the order in which workers finished.
func (it *RelatedMergeRequestResolver) Resolve(ctx context.Context, lines []string) (string, error) {
	results, err := it.ResolveReferences(ctx, it.extractor.ExtractAll(lines))
	if err != nil {
		return "", err
	}

	urls := make([]string, 0, len(results))
	for _, result := range results {
		urls = append(urls, result.URL)
	}
	return entities.BuildRelatedDescription(urls), nil
}

// ResolveReferences resolves every non-empty reference and returns the
// results in completion order. Only project resolution errors are returned.
func (it *RelatedMergeRequestResolver) ResolveReferences(
	ctx context.Context,
	refs []entities.DependencyReference,
) ([]entities.ResolutionResult, error) {
	jobs := make([]lookupJob, 0, len(refs))
	for _, ref := range refs {
		if ref.IsEmpty() {
			continue
		}
		project, err := it.projects.Resolve(ctx, ref.RepositoryName)
		if err != nil {
			return nil, err
		}
		logger.Debugf("[resolver] %s resolved to project %d", ref.RepositoryName, project.ID)
		jobs = append(jobs, lookupJob{reference: ref, project: project})
	}

	collection := newResultCollection(len(jobs))

	var group errgroup.Group
	if it.maxWorkers > 0 {
		group.SetLimit(it.maxWorkers)
	}
	for _, job := range jobs {
		group.Go(func() error {
			it.lookup(ctx, job, collection)
			return nil
		})
	}
	_ = group.Wait() // workers never return errors

	results := collection.Drain()
	logger.Infof("[resolver] %d of %d dependencies resolved", len(results), len(jobs))
	return results, nil
}

// lookup pushes the merged merge request containing the commit or, when no
// merge request contains it, the commit itself.
func (it *RelatedMergeRequestResolver) lookup(
	ctx context.Context,
	job lookupJob,
	collection *resultCollection,
) {
	name := job.reference.RepositoryName
	hash := job.reference.CommitHash

	mrs, err := it.hosting.ListMergedMergeRequests(ctx, job.project)
	if err != nil {
		logger.Warnf("[resolver] %s: failed to list merge requests: %v", name, err)
		return
	}

	for _, mr := range mrs {
		commits, commitsErr := it.hosting.ListMergeRequestCommits(ctx, job.project, mr)
		if commitsErr != nil {
			logger.Warnf("[resolver] %s: failed to list commits of !%d: %v", name, mr.IID, commitsErr)
			return
		}
		for _, commit := range commits {
			if commit.ID == hash {
				logger.Debugf("[resolver] %s@%s found in %s", name, hash, mr.WebURL)
				collection.Push(entities.ResolutionResult{Reference: job.reference, URL: mr.WebURL})
				return
			}
		}
	}

	url, err := it.hosting.GetCommitURL(ctx, job.project, hash)
	if err != nil {
		logger.Warnf("[resolver] %s: failed to get commit %s: %v", name, hash, err)
		return
	}
	logger.Debugf("[resolver] %s@%s is not part of a merged merge request", name, hash)
	collection.Push(entities.ResolutionResult{Reference: job.reference, URL: url})
}
