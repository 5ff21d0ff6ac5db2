// Package archive packs function source trees into deployable zip
// artifacts.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// Packer zips function source trees into temporary artifacts.
type Packer struct {
	logger *slog.Logger
}

// NewPacker creates a packer.
func NewPacker(logger *slog.Logger) *Packer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Packer{logger: logger.With("component", "archive")}
}

// Pack zips the source tree at sourceDir into a temp file and returns its
// path. Bytecode caches and hidden entries are left out. The caller owns
// the returned file.
func (p *Packer) Pack(sourceDir string) (string, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return "", fmt.Errorf("function source %s: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("function source %s is not a directory", sourceDir)
	}

	tmp, err := os.CreateTemp("", "funcdeploy-*.zip")
	if err != nil {
		return "", fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer tmp.Close()

	zw := zip.NewWriter(tmp)
	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if name == "__pycache__" || (strings.HasPrefix(name, ".") && path != sourceDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to pack %s: %w", sourceDir, err)
	}
	if err := zw.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to finalize artifact: %w", err)
	}

	size, err := tmp.Seek(0, io.SeekEnd)
	if err == nil {
		p.logger.Debug("packed artifact",
			"source", sourceDir,
			"artifact", tmp.Name(),
			"size", humanize.Bytes(uint64(size)),
		)
	}
	return tmp.Name(), nil
}
