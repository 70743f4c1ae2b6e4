package printing

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hotelagreement/backend/internal/domain/agreement"
)

// AssetSource provides read access to template and font assets by name
type AssetSource interface {
	// Exists reports whether the named asset is present
	Exists(ctx context.Context, name string) (bool, error)
	// Open returns the asset content; a missing asset yields a ResourceNotFound error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FileSystemAssets reads assets from a local directory
type FileSystemAssets struct {
	root string
}

// NewFileSystemAssets creates an asset source rooted at dir.
// Absolute asset names are used as-is; relative names resolve against dir.
func NewFileSystemAssets(dir string) *FileSystemAssets {
	return &FileSystemAssets{root: dir}
}

// Root returns the asset directory
func (a *FileSystemAssets) Root() string {
	return a.root
}

func (a *FileSystemAssets) resolve(name string) string {
	if filepath.IsAbs(name) || a.root == "" {
		return filepath.Clean(name)
	}
	return filepath.Join(a.root, name)
}

// Exists reports whether the asset is a regular file
func (a *FileSystemAssets) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if name == "" {
		return false, nil
	}
	info, err := os.Stat(a.resolve(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Open opens the asset for reading
func (a *FileSystemAssets) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(a.resolve(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, agreement.NewResourceNotFound("asset not found: "+name, err)
		}
		return nil, err
	}
	return f, nil
}

// readAsset reads a whole asset into memory
func readAsset(ctx context.Context, src AssetSource, name string) ([]byte, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Ensure FileSystemAssets implements AssetSource
var _ AssetSource = (*FileSystemAssets)(nil)
