// Package filestorage persists uploaded lesson content on disk
package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/selimk/learnhub/internal/pkg/logger"
)

// Storage defines the interface for file storage operations
type Storage interface {
	// Save writes the stream to the given relative path and returns the
	// number of bytes written
	Save(relPath string, r io.Reader) (int64, error)

	// Delete removes a file from storage. Deleting a missing file is not
	// an error.
	Delete(relPath string) error
}

// LocalStorage stores files under a directory on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage rooted at basePath
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// clean resolves a relative file path inside the storage root. Rejects
// absolute paths and anything that climbs out of the root.
func (ls *LocalStorage) clean(relPath string) string {
	relPath = strings.TrimLeft(relPath, "/")
	cleaned := filepath.Clean(relPath)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.Join(ls.basePath, cleaned)
}

// Save writes the stream to relPath, creating parent directories as needed
func (ls *LocalStorage) Save(relPath string, r io.Reader) (int64, error) {
	dstPath := ls.clean(relPath)
	if dstPath == "" {
		return 0, fmt.Errorf("invalid file path: %s", relPath)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return 0, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, r)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write uploaded file content")
		// Remove the partially written file
		_ = os.Remove(dstPath)
		return 0, fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("path", relPath).Int64("bytes", written).Msg("File saved successfully")
	return written, nil
}

// Delete removes a file from storage
func (ls *LocalStorage) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}

	physicalPath := ls.clean(relPath)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", relPath)
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}
