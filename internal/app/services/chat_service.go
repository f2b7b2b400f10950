package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/app/repositories"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/cleanup"
	"github.com/bmvt/backend/internal/pkg/filestorage"
	"github.com/bmvt/backend/internal/pkg/helpers"
	"github.com/bmvt/backend/internal/pkg/validation"
)

const (
	chatDefaultLimit = 50
	chatMaxLimit     = 200
)

// ChatStore is the persistence needed by ChatService.
type ChatStore interface {
	List(ctx context.Context, f repositories.ChatListFilter) ([]models.ChatMessage, int64, error)
	GetByID(ctx context.Context, id int64) (*models.ChatMessage, error)
	Create(ctx context.Context, m *models.ChatMessage) error
	Update(ctx context.Context, m *models.ChatMessage) error
	SoftDelete(ctx context.Context, id int64, now time.Time) ([]models.Attachment, int64, error)
}

// ChatPublisher fans events out to the open chat streams.
type ChatPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// ChatService manages chat messages and notifies the channel streams.
type ChatService interface {
	ListMessages(ctx context.Context, q dto.ChatListQuery) ([]models.ChatMessage, int64, error)
	GetMessage(ctx context.Context, id int64) (*models.ChatMessage, error)
	CreateMessage(ctx context.Context, actor *Actor, in dto.ChatMessageInput, files []*multipart.FileHeader) (*models.ChatMessage, error)
	UpdateMessage(ctx context.Context, id int64, in dto.ChatUpdateInput, files []*multipart.FileHeader) (*models.ChatMessage, error)
	DeleteMessage(ctx context.Context, id int64) (int64, error)
}

type chatServiceImpl struct {
	repo      ChatStore
	users     UserLookup
	store     filestorage.FileStorage
	cleaner   cleanup.Cleaner
	publisher ChatPublisher
	published *prometheus.CounterVec
	now       func() time.Time
	logger    zerolog.Logger
}

// NewChatService creates a new ChatService. published may be nil.
func NewChatService(
	repo ChatStore,
	users UserLookup,
	store filestorage.FileStorage,
	cleaner cleanup.Cleaner,
	publisher ChatPublisher,
	published *prometheus.CounterVec,
	logger zerolog.Logger,
) ChatService {
	return &chatServiceImpl{
		repo:      repo,
		users:     users,
		store:     store,
		cleaner:   cleaner,
		publisher: publisher,
		published: published,
		now:       time.Now,
		logger:    logger,
	}
}

func validChannel(channel string) bool {
	return enums.Channel(channel).Valid()
}

// ListMessages returns the latest live messages of a channel, oldest first.
func (s *chatServiceImpl) ListMessages(ctx context.Context, q dto.ChatListQuery) ([]models.ChatMessage, int64, error) {
	channel := strings.TrimSpace(q.Channel)
	if !validChannel(channel) {
		return nil, 0, apperrors.NewBadRequestError("Paramètre 'channel' invalide.")
	}
	return s.repo.List(ctx, repositories.ChatListFilter{
		Channel: channel,
		Limit:   helpers.ClampLimit(q.Limit, chatDefaultLimit, chatMaxLimit),
		AfterID: max(q.AfterID, 0),
		Search:  q.Search,
	})
}

func (s *chatServiceImpl) GetMessage(ctx context.Context, id int64) (*models.ChatMessage, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgIntrouvable)
	}
	return m, nil
}

// saveAttachments stores every upload under the chat resource. On failure
// the files already written are removed.
func (s *chatServiceImpl) saveAttachments(ctx context.Context, files []*multipart.FileHeader) ([]models.Attachment, error) {
	if len(files) > validation.ChatMaxFiles {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Trop de fichiers (max %d).", validation.ChatMaxFiles))
	}
	attachments := make([]models.Attachment, 0, len(files))
	for _, fh := range files {
		stored, err := s.store.Save(ctx, ResourceChat, fh)
		if err != nil {
			s.cleaner.Cleanup(ctx, attachmentPaths(attachments)...)
			return nil, err
		}
		attachments = append(attachments, models.Attachment{
			ID:   filestorage.NameWithoutExt(stored.Name),
			Name: stored.OriginalName,
			Type: filestorage.AttachmentType(stored.ContentType),
			URL:  stored.PublicPath,
		})
	}
	return attachments, nil
}

func attachmentPaths(attachments []models.Attachment) []string {
	m := models.ChatMessage{Attachments: attachments}
	return m.AttachmentPaths()
}

// CreateMessage stores a message and announces it with message:new. The
// author name defaults to the caller's name.
func (s *chatServiceImpl) CreateMessage(ctx context.Context, actor *Actor, in dto.ChatMessageInput, files []*multipart.FileHeader) (*models.ChatMessage, error) {
	channel := strings.TrimSpace(in.Channel)
	if !validChannel(channel) {
		return nil, apperrors.NewBadRequestError("Channel invalide.")
	}

	// Resolve the author from the body, then the caller
	authorName := strings.TrimSpace(in.AuthorName)
	if authorName == "" {
		authorName = actorName(ctx, s.users, actor)
	}
	if authorName == "" {
		return nil, apperrors.NewBadRequestError("authorName requis.")
	}
	authorID := in.AuthorID
	if authorID == nil && actor != nil && actor.ID > 0 {
		authorID = &actor.ID
	}

	text := helpers.NullIfBlank(in.Text)
	if text == nil && len(files) == 0 {
		return nil, apperrors.NewBadRequestError("Message vide.")
	}

	attachments, err := s.saveAttachments(ctx, files)
	if err != nil {
		return nil, err
	}

	// Persist, then announce to subscribers
	m := &models.ChatMessage{
		Channel:     channel,
		AuthorID:    authorID,
		AuthorName:  authorName,
		Text:        text,
		ReplyToID:   in.ReplyToID,
		Attachments: attachments,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		s.cleaner.Cleanup(ctx, attachmentPaths(attachments)...)
		return nil, err
	}

	s.publish(ctx, m.Channel, dto.ChatFrame{Type: enums.ChatEventNew, Item: m})
	return m, nil
}

// UpdateMessage edits the text and appends the new files, or replaces the
// previous attachments when asked to.
func (s *chatServiceImpl) UpdateMessage(ctx context.Context, id int64, in dto.ChatUpdateInput, files []*multipart.FileHeader) (*models.ChatMessage, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgIntrouvable)
	}
	if current.DeletedAt != nil {
		return nil, apperrors.NewBadRequestError("Message supprimé.")
	}

	added, err := s.saveAttachments(ctx, files)
	if err != nil {
		return nil, err
	}

	m := *current
	if in.Text != nil {
		m.Text = helpers.NullIfBlank(*in.Text)
	}
	// Append by default, replace on request
	var superseded []string
	if in.ReplaceAttachments {
		superseded = current.AttachmentPaths()
		m.Attachments = added
	} else {
		m.Attachments = append(append([]models.Attachment{}, current.Attachments...), added...)
	}

	if err := s.repo.Update(ctx, &m); err != nil {
		s.cleaner.Cleanup(ctx, attachmentPaths(added)...)
		return nil, notFound(err, msgIntrouvable)
	}
	s.cleaner.Cleanup(ctx, superseded...)

	s.publish(ctx, m.Channel, dto.ChatFrame{Type: enums.ChatEventUpdate, Item: &m})
	return &m, nil
}

// DeleteMessage soft-deletes a message, removes its files and announces
// message:delete. It returns the number of affected rows.
func (s *chatServiceImpl) DeleteMessage(ctx context.Context, id int64) (int64, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, notFound(err, msgIntrouvable)
	}
	if current.DeletedAt != nil {
		return 0, apperrors.NewBadRequestError("Déjà supprimé.")
	}

	// Text stays, files go
	previous, affected, err := s.repo.SoftDelete(ctx, id, s.now())
	switch {
	case errors.Is(err, repositories.ErrAlreadyDeleted):
		return 0, apperrors.NewBadRequestError("Déjà supprimé.")
	case err != nil:
		return 0, notFound(err, msgIntrouvable)
	}
	s.cleaner.Cleanup(ctx, attachmentPaths(previous)...)

	if affected > 0 {
		s.publish(ctx, current.Channel, dto.ChatFrame{Type: enums.ChatEventDelete, ID: id})
	}
	return affected, nil
}

func (s *chatServiceImpl) publish(ctx context.Context, channel string, frame dto.ChatFrame) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, channel, frame); err != nil {
		s.logger.Warn().Err(err).Str("channel", channel).Str("type", string(frame.Type)).Msg("Failed to publish chat event")
		return
	}
	if s.published != nil {
		s.published.WithLabelValues(channel, string(frame.Type)).Inc()
	}
}
