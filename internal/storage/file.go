package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fredrikhr/restview/internal/errdef"
)

// FileProvider stores each blob as a file under a single directory.
// Names are sanitized to their base component and deduplicated with a
// numeric suffix so concurrent sessions never clobber each other's
// payloads.
type FileProvider struct {
	dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

func (p *FileProvider) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errdef.Wrap(errdef.CodeStorage, err, "write blob")
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", errdef.Wrap(errdef.CodeFilesystem, err, "create storage dir")
	}

	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "response.bin"
	}
	path, err := uniquePath(filepath.Join(p.dir, base))
	if err != nil {
		return "", errdef.Wrap(errdef.CodeFilesystem, err, "resolve blob path")
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return "", errdef.Wrap(errdef.CodeFilesystem, err, "write blob %q", base)
	}
	return path, nil
}

func (p *FileProvider) Read(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeStorage, err, "read blob")
	}
	data, err := os.ReadFile(uri)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "read blob %q", uri)
	}
	return data, nil
}

func (p *FileProvider) Delete(ctx context.Context, uri string) {
	if ctx.Err() != nil {
		return
	}
	_ = os.Remove(uri)
}

func uniquePath(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	for i := 1; i < 1000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not create unique path for %s", path)
}

// write to temp file then rename so readers never see partial data.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".restview-blob-*.tmp")
	if err != nil {
		return err
	}

	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		closeErr := tmp.Close()
		if closeErr != nil {
			return errors.Join(err, closeErr)
		}
		return err
	}

	if err := tmp.Chmod(perm); err != nil {
		closeErr := tmp.Close()
		if closeErr != nil {
			return errors.Join(err, closeErr)
		}
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}
