package commands

import (
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/mrhelper/internal/domain/entities"
	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

const methodMarker = "def"

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	commitPattern     = regexp.MustCompile(`:commit=>"(.+?)"`)
	gitPattern        = regexp.MustCompile(`:git=>"(.+?)"`)
	quotedPattern     = regexp.MustCompile(`"(.+?)"`)
)

// DependencyExtractor turns changed manifest lines into dependency references.
//
// Two Podfile styles are understood:
//
//	pod 'Foo', :git => 'git@host:group/Foo.git', :commit => 'abc123'
//
// and a commit returned by a method defined in the Podfile itself:
//
//	def foo_commit
//	  'abc123'
//	end
//	pod 'Foo', :git => 'git@host:group/Foo.git', :commit => foo_commit
//
// The second style needs the Podfile on disk, found by walking up from workDir.
type DependencyExtractor struct {
	manifests repositories.ManifestRepository
	workDir   string
	companion string
}

// NewDependencyExtractor creates an extractor that resolves indirect references
// through the companion manifest named companion.
func NewDependencyExtractor(
	manifests repositories.ManifestRepository,
	workDir, companion string,
) *DependencyExtractor {
	return &DependencyExtractor{
		manifests: manifests,
		workDir:   workDir,
		companion: companion,
	}
}

// ExtractAll extracts a reference from every line and drops the empty ones.
func (it *DependencyExtractor) ExtractAll(lines []string) []entities.DependencyReference {
	var refs []entities.DependencyReference
	for _, line := range lines {
		ref := it.Extract(line)
		if ref.IsEmpty() {
			continue
		}
		logger.Debugf("[extractor] %s@%s", ref.RepositoryName, ref.CommitHash)
		refs = append(refs, ref)
	}
	return refs
}

// Extract parses a single changed line. Lines that reference no dependency,
// or whose indirect lookup fails, yield an empty reference.
func (it *DependencyExtractor) Extract(line string) entities.DependencyReference {
	normalized := normalizeLine(line)
	if strings.Contains(normalized, "commit") {
		return extractInline(normalized)
	}
	return it.extractIndirect(normalized)
}

func normalizeLine(line string) string {
	return strings.ReplaceAll(whitespacePattern.ReplaceAllString(line, ""), "'", `"`)
}

func extractInline(normalized string) entities.DependencyReference {
	commit := firstGroup(commitPattern, normalized)
	url := firstGroup(gitPattern, normalized)
	if commit == "" || url == "" {
		return entities.DependencyReference{}
	}
	return entities.DependencyReference{
		RepositoryName: entities.RepositoryNameFromURL(url),
		CommitHash:     commit,
	}
}

func (it *DependencyExtractor) extractIndirect(normalized string) entities.DependencyReference {
	path := it.manifests.FindUpwards(it.workDir, it.companion)
	if path == "" {
		return entities.DependencyReference{}
	}

	commit := firstGroup(quotedPattern, normalized)
	if commit == "" {
		return entities.DependencyReference{}
	}

	lines, err := it.manifests.ReadLines(path)
	if err != nil {
		logger.Debugf("[extractor] failed to read %q: %v", path, err)
		return entities.DependencyReference{}
	}

	method := findMethodReturning(lines, commit)
	if method == "" {
		return entities.DependencyReference{}
	}

	for _, line := range lines {
		if !strings.Contains(line, method) {
			continue
		}
		if url := firstGroup(gitPattern, normalizeLine(line)); url != "" {
			return entities.DependencyReference{
				RepositoryName: entities.RepositoryNameFromURL(url),
				CommitHash:     commit,
			}
		}
	}
	return entities.DependencyReference{}
}

// findMethodReturning returns the name of the method whose body starts with
// the line holding commit, or "" if there is none.
func findMethodReturning(lines []string, commit string) string {
	for i := 1; i < len(lines); i++ {
		if !strings.Contains(lines[i], commit) || !strings.Contains(lines[i-1], methodMarker) {
			continue
		}
		method := strings.Replace(lines[i-1], methodMarker, "", 1)
		return whitespacePattern.ReplaceAllString(method, "")
	}
	return ""
}

func firstGroup(pattern *regexp.Regexp, s string) string {
	match := pattern.FindStringSubmatch(s)
	if len(match) < 2 { //nolint:mnd // full match plus one group
		return ""
	}
	return match[1]
}
