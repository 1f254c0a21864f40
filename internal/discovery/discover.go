package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Discover finds SQL scripts under rootPath. A directory is walked
// recursively; a single file is returned as is, whatever its extension.
func Discover(fs afero.Fs, rootPath string) ([]ScriptFile, error) {
	root := filepath.Clean(rootPath)

	info, err := fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path not found: %s", root)
		}
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return []ScriptFile{{
			Path:         root,
			RelativePath: filepath.Base(root),
			ModTime:      info.ModTime(),
		}}, nil
	}

	var files []ScriptFile
	err = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip directories we can't access
			if os.IsPermission(err) {
				return nil
			}
			return err
		}

		if info.IsDir() || !IsScript(info.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		files = append(files, ScriptFile{
			Path:         path,
			RelativePath: relPath,
			ModTime:      info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}
