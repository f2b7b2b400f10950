package services

import (
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/filestorage"
)

// fakeFileStore records saved and removed public paths.
type fakeFileStore struct {
	mu      sync.Mutex
	saved   []string
	removed []string
	failOn  string
}

func (f *fakeFileStore) Save(_ context.Context, resource string, fh *multipart.FileHeader) (*filestorage.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && fh.Filename == f.failOn {
		return nil, errors.New("disk full")
	}
	name := "1700000000000_" + strings.ReplaceAll(fh.Filename, " ", "_")
	stored := &filestorage.StoredFile{
		Name:         name,
		OriginalName: fh.Filename,
		PublicPath:   filestorage.PublicPath(resource, name),
		ContentType:  fh.Header.Get("Content-Type"),
		Size:         fh.Size,
	}
	f.saved = append(f.saved, stored.PublicPath)
	return stored, nil
}

func (f *fakeFileStore) Remove(_ context.Context, publicPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, publicPath)
	return nil
}

// recordingCleaner collects the paths handed over for removal.
type recordingCleaner struct {
	mu    sync.Mutex
	paths []string
}

func (c *recordingCleaner) Cleanup(_ context.Context, paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		if p != "" {
			c.paths = append(c.paths, p)
		}
	}
}

func (c *recordingCleaner) cleaned() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func fileHeader(name, contentType string) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Header:   textproto.MIMEHeader{"Content-Type": {contentType}},
		Size:     42,
	}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func strPtr(s string) *string { return &s }

// requireAppError asserts the sentinel behind err and its user message.
func requireAppError(t *testing.T, err error, sentinel error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	msg, ok := apperrors.Message(err)
	require.True(t, ok, "error %v carries no message", err)
	assert.Equal(t, message, msg)
}

type staticUsers map[int64]*models.User

func (u staticUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, db.ErrNotFound
}

func TestNotFoundMapsMissingRows(t *testing.T) {
	err := notFound(errors.Join(errors.New("error retrieving flight"), db.ErrNotFound), "Vol introuvable")
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Vol introuvable")

	other := errors.New("connection reset")
	assert.Same(t, other, notFound(other, "Vol introuvable"))
	assert.NoError(t, notFound(nil, "Vol introuvable"))
}

func TestSaveUploadWithoutFile(t *testing.T) {
	store := &fakeFileStore{}
	path, err := saveUpload(context.Background(), store, ResourceVols, nil)
	require.NoError(t, err)
	assert.Nil(t, path)
	assert.Empty(t, store.saved)
}

func TestActorName(t *testing.T) {
	users := staticUsers{7: {ID: 7, Name: "Awa Diop"}}
	ctx := context.Background()

	assert.Equal(t, "Awa Diop", actorName(ctx, users, &Actor{ID: 7}))
	assert.Equal(t, "", actorName(ctx, users, &Actor{ID: 8}))
	assert.Equal(t, "", actorName(ctx, users, nil))
}
