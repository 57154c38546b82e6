package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/eddy/internal/tags"
)

// fileInfo holds information about a discovered music file.
type fileInfo struct {
	path  string
	mtime time.Time
}

// discoverFiles walks the given sources and returns all music files found.
// A source may also be a single music file.
func (l *Library) discoverFiles(ctx context.Context, sources []string) ([]fileInfo, error) {
	var files []fileInfo
	for _, src := range sources {
		src = filepath.Clean(src)
		err := filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Keep scanning the rest of the tree
			if walkErr != nil {
				log.Debug().Err(walkErr).Str("path", path).Msg("Skipping unreadable path")
				return nil
			}
			if d.IsDir() {
				if path != src && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !tags.IsMusicFile(path) {
				return nil
			}

			info, infoErr := d.Info()
			if infoErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}

			files = append(files, fileInfo{path: path, mtime: info.ModTime()})
			if len(files)%100 == 0 {
				l.report(Progress{Phase: PhaseScanning, Current: len(files)})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// underAny reports whether path lies in one of the sources.
func underAny(path string, sources []string) bool {
	for _, src := range sources {
		src = filepath.Clean(src)
		if path == src {
			return true
		}
		rel, err := filepath.Rel(src, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
