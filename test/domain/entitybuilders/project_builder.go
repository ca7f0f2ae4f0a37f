//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
)

// ProjectBuilder helps create test GitLab projects with a fluent interface.
// The path and web URL are derived from the name unless set explicitly.
type ProjectBuilder struct {
	*testkit.BaseBuilder
	id        int64
	name      string
	namespace string
	webURL    string
}

// NewProjectBuilder creates a new project builder with sensible defaults.
func NewProjectBuilder() *ProjectBuilder {
	return &ProjectBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		id:          1,
		name:        "test-project",
		namespace:   "ios",
	}
}

// WithID sets the project ID.
func (b *ProjectBuilder) WithID(id int64) *ProjectBuilder {
	b.id = id
	return b
}

// WithName sets the project name.
func (b *ProjectBuilder) WithName(name string) *ProjectBuilder {
	b.name = name
	return b
}

// WithNamespace sets the group the project lives in.
func (b *ProjectBuilder) WithNamespace(namespace string) *ProjectBuilder {
	b.namespace = namespace
	return b
}

// WithWebURL overrides the derived web URL.
func (b *ProjectBuilder) WithWebURL(url string) *ProjectBuilder {
	b.webURL = url
	return b
}

// Build creates the project (satisfies testkit.Builder interface).
func (b *ProjectBuilder) Build() interface{} {
	return b.BuildProject()
}

// BuildProject creates the project with a concrete return type.
func (b *ProjectBuilder) BuildProject() entities.Project {
	path := b.namespace + "/" + b.name
	webURL := b.webURL
	if webURL == "" {
		webURL = "https://gitlab.example.com/" + path
	}
	return entities.Project{
		ID:                b.id,
		Name:              b.name,
		PathWithNamespace: path,
		WebURL:            webURL,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ProjectBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.id = 1
	b.name = "test-project"
	b.namespace = "ios"
	b.webURL = ""
	return b
}

// Clone creates a deep copy of the ProjectBuilder.
func (b *ProjectBuilder) Clone() testkit.Builder {
	return &ProjectBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		id:          b.id,
		name:        b.name,
		namespace:   b.namespace,
		webURL:      b.webURL,
	}
}
