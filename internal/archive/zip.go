// Package archive unpacks uploaded ZIP bundles into the batch input
// directory. Studies often arrive as one archive per patient visit.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

const extractWorkers = 4

// ExtractAll unpacks every *.zip under zipDir into its own subdirectory of
// outDir, named after the archive. An archive whose target directory already
// exists is assumed extracted and skipped, which makes re-runs cheap. A bad
// archive is logged and skipped rather than failing the batch.
func ExtractAll(ctx context.Context, zipDir, outDir string, log *slog.Logger) error {
	archives, err := filepath.Glob(filepath.Join(zipDir, "*.zip"))
	if err != nil {
		return fmt.Errorf("could not list archives in %s: %w", zipDir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(extractWorkers)

	for _, path := range archives {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			target := filepath.Join(outDir, name)
			if _, err := os.Stat(target); err == nil {
				log.Debug("archive already extracted", "archive", name)
				return nil
			}

			if err := extractOne(path, target); err != nil {
				log.Warn("skipping unreadable archive", "archive", name, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func extractOne(path, target string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("could not open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	dest := filepath.Join(target, filepath.FromSlash(f.Name))
	// Reject member paths that escape the target directory.
	if !strings.HasPrefix(dest, filepath.Clean(target)+string(os.PathSeparator)) {
		return fmt.Errorf("archive member escapes target: %s", f.Name)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("could not create member directory: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("could not open member %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", dest, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("could not extract %s: %w", f.Name, err)
	}
	return nil
}
