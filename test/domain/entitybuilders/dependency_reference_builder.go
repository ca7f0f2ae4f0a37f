//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
)

const (
	defaultRepositoryName = "Foo"
	defaultCommitHash     = "abc123"
)

// DependencyReferenceBuilder helps create test dependency references with a fluent interface.
type DependencyReferenceBuilder struct {
	*testkit.BaseBuilder
	repositoryName string
	commitHash     string
}

// NewDependencyReferenceBuilder creates a new builder with sensible defaults.
func NewDependencyReferenceBuilder() *DependencyReferenceBuilder {
	return &DependencyReferenceBuilder{
		BaseBuilder:    testkit.NewBaseBuilder(),
		repositoryName: defaultRepositoryName,
		commitHash:     defaultCommitHash,
	}
}

// WithRepositoryName sets the repository name.
func (b *DependencyReferenceBuilder) WithRepositoryName(name string) *DependencyReferenceBuilder {
	b.repositoryName = name
	return b
}

// WithCommitHash sets the pinned commit.
func (b *DependencyReferenceBuilder) WithCommitHash(hash string) *DependencyReferenceBuilder {
	b.commitHash = hash
	return b
}

// Build creates the reference (satisfies testkit.Builder interface).
func (b *DependencyReferenceBuilder) Build() interface{} {
	return b.BuildReference()
}

// BuildReference creates the reference with a concrete return type.
func (b *DependencyReferenceBuilder) BuildReference() entities.DependencyReference {
	return entities.DependencyReference{
		RepositoryName: b.repositoryName,
		CommitHash:     b.commitHash,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyReferenceBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.repositoryName = defaultRepositoryName
	b.commitHash = defaultCommitHash
	return b
}

// Clone creates a deep copy of the DependencyReferenceBuilder.
func (b *DependencyReferenceBuilder) Clone() testkit.Builder {
	return &DependencyReferenceBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		repositoryName: b.repositoryName,
		commitHash:     b.commitHash,
	}
}
