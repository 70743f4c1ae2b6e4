package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotelagreement/backend/internal/domain/agreement"
	"go.uber.org/zap"
)

// OutputStorage hands out unique write locations for exported documents
type OutputStorage interface {
	// Allocate reserves a unique location for a new document
	Allocate(ctx context.Context, format agreement.DocumentFormat) (*Allocation, error)
	// Get opens a document by its relative path
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes a document
	Delete(ctx context.Context, path string) error
	// CleanupOlderThan removes documents older than the specified duration
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// Allocation is a unique write location
type Allocation struct {
	// Path is relative to the storage base
	Path string
	// FullPath is the file system path to write to
	FullPath string
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for exported documents
	// Default: ALL_AGREEMENTS
	BasePath string
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemStorage stores exported documents on the local file system
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewFileSystemStorage creates a new file system based output storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}

	// Set defaults
	if config.BasePath == "" {
		config.BasePath = "ALL_AGREEMENTS"
	}

	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, agreement.NewExportFailure(
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{
		config: config,
		logger: logger,
		now:    time.Now,
	}, nil
}

// BasePath returns the storage root
func (s *FileSystemStorage) BasePath() string {
	return s.config.BasePath
}

// Allocate returns a fresh location {base}/{year}/{month}/{uuid}.{ext}.
// The file is not created; two allocations never share a path.
func (s *FileSystemStorage) Allocate(ctx context.Context, format agreement.DocumentFormat) (*Allocation, error) {
	select {
	case <-ctx.Done():
		return nil, agreement.NewExportFailure("operation cancelled", ctx.Err())
	default:
	}

	if !format.IsValid() {
		return nil, agreement.NewError(agreement.ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported document format: %s", format), nil)
	}

	now := s.now()
	rel := filepath.Join(
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		uuid.NewString()+"."+format.Extension(),
	)
	full := filepath.Join(s.config.BasePath, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, agreement.NewExportFailure("failed to create directory", err)
	}

	return &Allocation{Path: rel, FullPath: full}, nil
}

// Get opens a document by its relative path
func (s *FileSystemStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, agreement.NewExportFailure("operation cancelled", ctx.Err())
	default:
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, agreement.NewResourceNotFound("document not found", err)
		}
		return nil, agreement.NewExportFailure("failed to open document", err)
	}

	return file, nil
}

// Delete removes a document
func (s *FileSystemStorage) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return agreement.NewExportFailure("operation cancelled", ctx.Err())
	default:
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // Already deleted, not an error
		}
		return agreement.NewExportFailure("failed to delete document", err)
	}

	s.logger.Debug("document deleted", zap.String("path", path))
	return nil
}

// resolve maps a relative path to a file system path under the base directory
func (s *FileSystemStorage) resolve(path string) (string, error) {
	cleanPath := filepath.Clean(path)
	if path == "" || filepath.IsAbs(cleanPath) || containsDotDot(path) {
		s.logger.Warn("blocked potentially malicious path",
			zap.String("path", path),
			zap.String("cleanPath", cleanPath))
		return "", agreement.NewExportFailure("invalid path", nil)
	}

	fullPath := filepath.Join(s.config.BasePath, cleanPath)

	absBase, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return "", agreement.NewExportFailure("failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", agreement.NewExportFailure("failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked",
			zap.String("path", path),
			zap.String("absPath", absPath),
			zap.String("absBase", absBase))
		return "", agreement.NewExportFailure("invalid path", nil)
	}

	return fullPath, nil
}

// CleanupOlderThan removes documents and abandoned temp files older than age
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := s.now().Add(-age)
	deletedCount := 0

	err := filepath.Walk(s.config.BasePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() || !isOutputFile(path) {
			return nil
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				deletedCount++
				s.logger.Debug("deleted old document", zap.String("path", path))
			}
		}

		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return deletedCount, agreement.NewExportFailure("cleanup walk failed", err)
	}

	s.logger.Info("cleanup completed",
		zap.Int("deleted", deletedCount),
		zap.Duration("age", age))

	return deletedCount, nil
}

// isOutputFile matches exported documents and temp files left by interrupted writes
func isOutputFile(path string) bool {
	base := filepath.Base(path)
	if strings.Contains(base, ".tmp-") {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	return agreement.DocumentFormat(ext).IsValid()
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// Ensure FileSystemStorage implements OutputStorage
var _ OutputStorage = (*FileSystemStorage)(nil)
