package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/bmvt/backend/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
	now      func() time.Time
}

// NewLocalStorage creates a new LocalStorage rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath, now: time.Now}, nil
}

// BasePath is the directory served at /uploads.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Save copies the upload to <basePath>/<resource>/<generated name>.
func (ls *LocalStorage) Save(_ context.Context, resource string, fileHeader *multipart.FileHeader) (*StoredFile, error) {
	if fileHeader == nil {
		return nil, errors.New("no file")
	}
	if !ValidResource(resource) {
		return nil, fmt.Errorf("invalid resource %q", resource)
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(ls.basePath, resource)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// O_EXCL plus a millisecond bump keeps two uploads with the same name apart.
	now := ls.now()
	var (
		name string
		dst  *os.File
	)
	for attempt := 0; attempt < 5; attempt++ {
		name = GenerateName(now.Add(time.Duration(attempt)*time.Millisecond), fileHeader.Filename)
		dst, err = os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil || !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	if err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(dst.Name())
		logger.Error().Err(err).Str("path", dst.Name()).Msg("Failed to copy uploaded file content")
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	stored := &StoredFile{
		Name:         name,
		OriginalName: fileHeader.Filename,
		PublicPath:   PublicPath(resource, name),
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Size:         size,
	}
	logger.Debug().Str("filename", fileHeader.Filename).Str("public_path", stored.PublicPath).Msg("File saved")
	return stored, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (ls *LocalStorage) Remove(_ context.Context, publicPath string) error {
	key, ok := ObjectKey(publicPath)
	if !ok {
		return nil
	}

	physicalPath := filepath.Join(ls.basePath, filepath.FromSlash(key))
	if err := os.Remove(physicalPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Debug().Str("path", physicalPath).Msg("File deleted")
	return nil
}
