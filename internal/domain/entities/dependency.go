package entities

// DependencyReference is a (repository name, commit hash) pair extracted from
// a single changed manifest line. Both fields empty means the line did not
// reference a dependency.
type DependencyReference struct {
	RepositoryName string
	CommitHash     string
}

// IsEmpty reports whether the reference is missing either field.
func (r DependencyReference) IsEmpty() bool {
	return r.RepositoryName == "" || r.CommitHash == ""
}

// ResolutionResult links a reference to the URL that introduced its commit:
// a merge request web URL or, as a fallback, the commit web URL.
type ResolutionResult struct {
	Reference DependencyReference
	URL       string
}
