package services

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/cleanup"
	"github.com/bmvt/backend/internal/pkg/filestorage"
)

// Upload resources, one directory each under /uploads.
const (
	ResourcePelerins = "pelerins"
	ResourceVols     = "vols"
	ResourceChambres = "chambres"
	ResourceChat     = "chat"
)

const msgPassportTooLong = "Passeport trop long (max 30 caractères)."

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   int64
	Role enums.RoleType
}

// UserLookup resolves the display name of the caller.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// actorName returns the caller's name, or "" when unknown.
func actorName(ctx context.Context, users UserLookup, actor *Actor) string {
	if actor == nil || actor.ID == 0 || users == nil {
		return ""
	}
	u, err := users.GetByID(ctx, actor.ID)
	if err != nil {
		return ""
	}
	return u.Name
}

// notFound translates db.ErrNotFound into a 404 carrying message.
func notFound(err error, message string) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperrors.NewResourceNotFoundError(message)
	}
	return err
}

// saveUpload stores fh under resource and returns its public path, or nil
// when there is no file.
func saveUpload(ctx context.Context, store filestorage.FileStorage, resource string, fh *multipart.FileHeader) (*string, error) {
	if fh == nil {
		return nil, nil
	}
	stored, err := store.Save(ctx, resource, fh)
	if err != nil {
		return nil, err
	}
	return &stored.PublicPath, nil
}

// discard removes files written for a request that then failed.
func discard(ctx context.Context, cleaner cleanup.Cleaner, paths ...*string) {
	var list []string
	for _, p := range paths {
		if p != nil {
			list = append(list, *p)
		}
	}
	if len(list) > 0 {
		cleaner.Cleanup(ctx, list...)
	}
}
