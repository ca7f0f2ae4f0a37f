package entities

import (
	"strings"
)

// RepositoryNameFromURL derives a repository name from a clone URL: its last
// path segment with a ".git" suffix stripped.
// "git@host:group/Foo.git" and "https://host/group/Foo" both yield "Foo".
func RepositoryNameFromURL(rawURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}
