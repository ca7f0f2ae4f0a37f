package repositories

// ManifestRepository gives read access to manifest files on disk.
type ManifestRepository interface {
	// FindUpwards looks for name in startDir and each of its parents and
	// returns the first match, or "" when there is none.
	FindUpwards(startDir, name string) string

	// ReadLines returns the file content split into lines without terminators.
	ReadLines(path string) ([]string, error)
}
