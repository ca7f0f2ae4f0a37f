package commands

import (
	"context"
	"fmt"
	"sync"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

// ProjectResolver maps repository names to GitLab projects. It scans the
// project list fetched at startup and falls back to a remote search; search
// results are remembered so a name is searched at most once per run.
type ProjectResolver struct {
	hosting repositories.HostingRepository

	mu       sync.RWMutex
	projects []entities.Project
	searched map[string]entities.Project
	searches singleflight.Group
}

// NewProjectResolver creates a resolver over an already fetched project list.
func NewProjectResolver(
	hosting repositories.HostingRepository,
	projects []entities.Project,
) *ProjectResolver {
	return &ProjectResolver{
		hosting:  hosting,
		projects: projects,
		searched: make(map[string]entities.Project),
	}
}

// LoadProjectResolver fetches every accessible project and returns a resolver over them.
func LoadProjectResolver(
	ctx context.Context,
	hosting repositories.HostingRepository,
) (*ProjectResolver, error) {
	projects, err := hosting.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	logger.Debugf("[projects] %d accessible projects", len(projects))
	return NewProjectResolver(hosting, projects), nil
}

// Resolve returns the project named name. A remote search with no results
// is reported as entities.ErrProjectNotFound.
func (it *ProjectResolver) Resolve(ctx context.Context, name string) (entities.Project, error) {
	if project, ok := it.lookup(name); ok {
		logger.Debugf("[projects] found %q in the project list", name)
		return project, nil
	}

	logger.Debugf("[projects] %q not in the project list, searching", name)
	value, err, _ := it.searches.Do(name, func() (any, error) {
		if project, ok := it.lookup(name); ok {
			return project, nil
		}
		found, searchErr := it.hosting.SearchProjects(ctx, name)
		if searchErr != nil {
			return entities.Project{}, fmt.Errorf("failed to search project %q: %w", name, searchErr)
		}
		if len(found) == 0 {
			return entities.Project{}, fmt.Errorf("%w: %q", entities.ErrProjectNotFound, name)
		}
		it.remember(name, found[0])
		return found[0], nil
	})
	if err != nil {
		return entities.Project{}, err
	}
	return value.(entities.Project), nil
}

func (it *ProjectResolver) lookup(name string) (entities.Project, bool) {
	it.mu.RLock()
	defer it.mu.RUnlock()
	for _, project := range it.projects {
		if project.Name == name {
			return project, true
		}
	}
	project, ok := it.searched[name]
	return project, ok
}

// remember keys a search result by the searched name, which may differ from
// the name GitLab returned.
func (it *ProjectResolver) remember(name string, project entities.Project) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.searched[name] = project
}
