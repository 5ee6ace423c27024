package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local is a filesystem-backed Adapter rooted at a directory.
type Local struct {
	root string
}

// NewLocal returns an Adapter over the given directory.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) List(ctx context.Context, prefix string) ([]string, error) {
	start := filepath.Join(l.root, filepath.FromSlash(prefix))
	var names []string

	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return nil
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not list %s: %w", start, err)
	}

	sort.Strings(names)
	return names, nil
}

func (l *Local) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.abs(name))
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", name, err)
	}
	return data, nil
}

func (l *Local) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := l.abs(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	return nil
}

func (l *Local) abs(name string) string {
	return filepath.Join(l.root, filepath.FromSlash(strings.TrimPrefix(name, "/")))
}
