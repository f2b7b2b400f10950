package filestorage

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
)

// ErrNotFound is returned by Open when the object does not exist.
var ErrNotFound = errors.New("file not found")

// StoredFile represents information about a stored file
type StoredFile struct {
	Name         string // generated file name, <unix-ms>_<base><ext>
	OriginalName string
	PublicPath   string // /uploads/<resource>/<name>
	ContentType  string
	Size         int64
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save stores the upload under resource and returns its public path.
	Save(ctx context.Context, resource string, fileHeader *multipart.FileHeader) (*StoredFile, error)

	// Remove deletes the file behind a public path. Missing files and
	// paths outside /uploads/ are ignored.
	Remove(ctx context.Context, publicPath string) error
}

// ObjectReader is implemented by backends whose files are not served
// straight from disk.
type ObjectReader interface {
	Open(ctx context.Context, publicPath string) (io.ReadCloser, string, error)
}
