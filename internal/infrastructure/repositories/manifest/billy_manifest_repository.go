package manifest

import (
	"bufio"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

// BillyManifestRepository implements repositories.ManifestRepository on top
// of a billy filesystem. Paths are absolute within that filesystem.
type BillyManifestRepository struct {
	fs billy.Filesystem
}

var _ repositories.ManifestRepository = (*BillyManifestRepository)(nil)

// NewBillyManifestRepository creates a manifest repository over fs.
func NewBillyManifestRepository(fs billy.Filesystem) *BillyManifestRepository {
	return &BillyManifestRepository{fs: fs}
}

// NewOSManifestRepository creates a manifest repository over the host filesystem.
func NewOSManifestRepository() *BillyManifestRepository {
	return NewBillyManifestRepository(osfs.New("/"))
}

func (r *BillyManifestRepository) FindUpwards(startDir, name string) string {
	dir := filepath.Clean(startDir)
	for {
		candidate := filepath.Join(dir, name)
		if info, err := r.fs.Stat(candidate); err == nil && !info.IsDir() {
			logger.Debugf("[manifest] found %s", candidate)
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (r *BillyManifestRepository) ReadLines(path string) ([]string, error) {
	file, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, scanErr)
	}
	return lines, nil
}
