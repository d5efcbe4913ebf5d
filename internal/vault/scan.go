package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

// Scan walks the vault directory and returns the relative paths of all
// markdown notes, sorted by the walk order of filepath.WalkDir. Hidden
// files and directories (dot-prefixed) are skipped, as are non-markdown
// files.
func Scan(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: vault directory %s", domain.ErrNotFound, root)
		}
		return nil, fmt.Errorf("stat vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %s is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !isMarkdown(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}
	return paths, nil
}

// LoadNote reads and parses a single note from the vault.
func LoadNote(root, relPath string) (Note, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		if os.IsNotExist(err) {
			return Note{}, fmt.Errorf("%w: note %s", domain.ErrNotFound, relPath)
		}
		return Note{}, fmt.Errorf("read note %s: %w", relPath, err)
	}
	return ParseNote(relPath, data), nil
}

// isHidden reports whether a file or directory name is dot-prefixed.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isMarkdown reports whether the file name has a markdown extension.
func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}
