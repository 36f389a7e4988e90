// Package assets enumerates replacement recordings on disk.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"slidevox/internal/services"
)

// Source lists candidate recordings below a directory.
type Source interface {
	List(dir, pattern string) ([]string, error)
}

// DirSource walks the local filesystem.
type DirSource struct{}

// List returns every regular file below dir whose base name matches pattern,
// in lexical path order. A missing directory is reported as ErrNotFound.
func (DirSource) List(dir, pattern string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "", "list assets", fmt.Sprintf("Asset directory %s does not exist", dir), err)
		}
		return nil, services.Wrap(services.ErrStorage, "", "list assets", "Stat asset directory", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrNotFound, "", "list assets", fmt.Sprintf("%s is not a directory", dir), nil)
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "list assets", "Invalid asset pattern", err)
	}

	var out []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "", "list assets", "Walk asset directory", err)
	}
	sort.Strings(out)
	return out, nil
}
