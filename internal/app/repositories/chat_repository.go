package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/helpers"
)

// ChatListFilter selects the messages of one channel.
type ChatListFilter struct {
	Channel string
	Limit   int
	AfterID int64
	Search  string
}

// ChatRepository handles database operations for chat messages
type ChatRepository struct {
	db db.Executor
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(ex db.Executor) *ChatRepository {
	return &ChatRepository{db: ex}
}

func chatFilter(f ChatListFilter) squirrel.And {
	cond := squirrel.And{
		squirrel.Eq{"channel": f.Channel},
		squirrel.Eq{"deleted_at": nil},
	}
	if f.AfterID > 0 {
		cond = append(cond, squirrel.Gt{"id": f.AfterID})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		cond = append(cond, ilikeAny(helpers.Contains(s), "text", "author_name"))
	}
	return cond
}

// chatListQuery selects the latest rows and re-orders them ascending.
func chatListQuery(f ChatListFilter) squirrel.SelectBuilder {
	latest := psql.Select("*").From("chat_messages").
		Where(chatFilter(f)).
		OrderBy("id DESC").
		Limit(uint64(f.Limit))
	return psql.Select("*").FromSelect(latest, "latest").OrderBy("id ASC")
}

// List returns the latest messages of a channel in ascending id order,
// with the count of every matching message.
func (r *ChatRepository) List(ctx context.Context, f ChatListFilter) ([]models.ChatMessage, int64, error) {
	items, err := db.SelectBuilt[models.ChatMessage](ctx, r.db, chatListQuery(f))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing chat messages: %w", err)
	}
	total, err := db.Count(ctx, r.db, psql.Select("COUNT(*)").From("chat_messages").Where(chatFilter(f)))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting chat messages: %w", err)
	}
	return items, total, nil
}

// GetByID retrieves a message by its ID, deleted or not.
func (r *ChatRepository) GetByID(ctx context.Context, id int64) (*models.ChatMessage, error) {
	item, err := db.GetBuilt[models.ChatMessage](ctx, r.db, psql.Select("*").From("chat_messages").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("error retrieving chat message: %w", err)
	}
	return item, nil
}

func attachmentsJSON(a []models.Attachment) (string, error) {
	if a == nil {
		a = []models.Attachment{}
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Create inserts a new chat message into the database
func (r *ChatRepository) Create(ctx context.Context, m *models.ChatMessage) error {
	attachments, err := attachmentsJSON(m.Attachments)
	if err != nil {
		return err
	}
	q := psql.Insert("chat_messages").
		Columns("channel", "author_id", "author_name", "text", "reply_to_id", "attachments").
		Values(m.Channel, m.AuthorID, m.AuthorName, m.Text, m.ReplyToID, squirrel.Expr("?::jsonb", attachments)).
		Suffix("RETURNING *")

	created, err := db.GetBuilt[models.ChatMessage](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error creating chat message: %w", err)
	}
	*m = *created
	return nil
}

// Update writes text and attachments of a live message and stamps edited_at.
// A deleted or missing message yields db.ErrNotFound.
func (r *ChatRepository) Update(ctx context.Context, m *models.ChatMessage) error {
	attachments, err := attachmentsJSON(m.Attachments)
	if err != nil {
		return err
	}
	q := psql.Update("chat_messages").
		Set("text", m.Text).
		Set("attachments", squirrel.Expr("?::jsonb", attachments)).
		Set("edited_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": m.ID, "deleted_at": nil}).
		Suffix("RETURNING *")

	updated, err := db.GetBuilt[models.ChatMessage](ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("error updating chat message: %w", err)
	}
	*m = *updated
	return nil
}

// SoftDelete marks a message deleted and clears its attachments inside one
// transaction holding the row lock. It returns the attachments the message
// held and the number of affected rows.
func (r *ChatRepository) SoftDelete(ctx context.Context, id int64, now time.Time) ([]models.Attachment, int64, error) {
	var (
		previous []models.Attachment
		affected int64
	)
	err := r.db.WithTx(ctx, func(ctx context.Context, tx db.Executor) error {
		current, err := db.GetBuilt[models.ChatMessage](ctx, tx,
			psql.Select("*").From("chat_messages").Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
		if err != nil {
			return err
		}
		if current.DeletedAt != nil {
			return ErrAlreadyDeleted
		}

		res, err := db.ExecuteBuilt(ctx, tx, softDeleteQuery(id, now))
		if err != nil {
			return err
		}
		previous = current.Attachments
		affected = res.RowsAffected
		return nil
	})
	if errors.Is(err, ErrAlreadyDeleted) || errors.Is(err, db.ErrNotFound) {
		return nil, 0, err
	}
	if err != nil {
		return nil, 0, fmt.Errorf("error deleting chat message: %w", err)
	}
	return previous, affected, nil
}

// softDeleteQuery marks the message deleted and drops its attachments.
// The text stays in place.
func softDeleteQuery(id int64, now time.Time) squirrel.UpdateBuilder {
	return psql.Update("chat_messages").
		Set("deleted_at", now).
		Set("attachments", squirrel.Expr("'[]'::jsonb")).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id})
}
