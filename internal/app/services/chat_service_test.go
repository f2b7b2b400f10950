package services

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto"
	"github.com/bmvt/backend/internal/app/repositories"
	"github.com/bmvt/backend/internal/db"
	"github.com/bmvt/backend/internal/pkg/apperrors"
	"github.com/bmvt/backend/internal/pkg/sse"
)

type memoryChat struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.ChatMessage
}

func newMemoryChat() *memoryChat {
	return &memoryChat{rows: map[int64]*models.ChatMessage{}}
}

func (m *memoryChat) List(_ context.Context, f repositories.ChatListFilter) ([]models.ChatMessage, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChatMessage
	for id := int64(1); id <= m.nextID; id++ {
		r, ok := m.rows[id]
		if ok && r.Channel == f.Channel && r.DeletedAt == nil && id > f.AfterID {
			out = append(out, *r)
		}
	}
	total := int64(len(out))
	if len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out, total, nil
}

func (m *memoryChat) GetByID(_ context.Context, id int64) (*models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memoryChat) Create(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.ID = m.nextID
	if msg.Attachments == nil {
		msg.Attachments = []models.Attachment{}
	}
	cp := *msg
	m.rows[msg.ID] = &cp
	return nil
}

func (m *memoryChat) Update(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[msg.ID]
	if !ok || r.DeletedAt != nil {
		return db.ErrNotFound
	}
	now := time.Now()
	msg.EditedAt = &now
	cp := *msg
	m.rows[msg.ID] = &cp
	return nil
}

func (m *memoryChat) SoftDelete(_ context.Context, id int64, now time.Time) ([]models.Attachment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, 0, db.ErrNotFound
	}
	if r.DeletedAt != nil {
		return nil, 0, repositories.ErrAlreadyDeleted
	}
	previous := r.Attachments
	r.DeletedAt = &now
	r.Attachments = []models.Attachment{}
	return previous, 1, nil
}

type chatFixture struct {
	svc       ChatService
	repo      *memoryChat
	store     *fakeFileStore
	cleaner   *recordingCleaner
	hub       *sse.Hub
	published *prometheus.CounterVec
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		repo:    newMemoryChat(),
		store:   &fakeFileStore{},
		cleaner: &recordingCleaner{},
		hub:     sse.NewHub(sse.Config{Channels: []string{"intra", "encadreurs"}, BufferSize: 8}, zerolog.Nop()),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_chat_events_published_total",
		}, []string{"channel", "type"}),
	}
	t.Cleanup(f.hub.Close)
	users := staticUsers{4: {ID: 4, Name: "Awa Diop"}}
	f.svc = NewChatService(f.repo, users, f.store, f.cleaner, f.hub, f.published, zerolog.Nop())
	return f
}

func subscribe(t *testing.T, hub *sse.Hub, channel string) *sse.Subscriber {
	t.Helper()
	sub, err := hub.Subscribe(channel)
	require.NoError(t, err)
	ready := <-sub.Events()
	require.Equal(t, "ready", ready.Name)
	return sub
}

func nextFrame(t *testing.T, sub *sse.Subscriber) dto.ChatFrame {
	t.Helper()
	select {
	case ev := <-sub.Events():
		var frame dto.ChatFrame
		require.NoError(t, json.Unmarshal([]byte(ev.Data), &frame))
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return dto.ChatFrame{}
	}
}

func assertNoFrame(t *testing.T, sub *sse.Subscriber) {
	t.Helper()
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected frame %+v", ev)
	default:
	}
}

func TestCreateMessageNotifiesOnlyItsChannel(t *testing.T) {
	f := newChatFixture(t)
	intra := subscribe(t, f.hub, "intra")
	encadreurs := subscribe(t, f.hub, "encadreurs")

	msg, err := f.svc.CreateMessage(context.Background(), &Actor{ID: 4}, dto.ChatMessageInput{
		Channel: "intra", Text: " Bonjour ",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Awa Diop", msg.AuthorName)
	assert.Equal(t, int64(4), *msg.AuthorID)
	assert.Equal(t, "Bonjour", *msg.Text)

	frame := nextFrame(t, intra)
	assert.Equal(t, "message:new", string(frame.Type))
	require.NotNil(t, frame.Item)
	assert.Equal(t, msg.ID, frame.Item.ID)
	assertNoFrame(t, encadreurs)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.published.WithLabelValues("intra", "message:new")))
}

func TestCreateMessageValidation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateMessage(ctx, nil, dto.ChatMessageInput{Channel: "general", AuthorName: "A", Text: "x"}, nil)
	requireAppError(t, err, apperrors.ErrValidationFailed, "Channel invalide.")

	_, err = f.svc.CreateMessage(ctx, nil, dto.ChatMessageInput{Channel: "intra", Text: "x"}, nil)
	requireAppError(t, err, apperrors.ErrValidationFailed, "authorName requis.")

	_, err = f.svc.CreateMessage(ctx, nil, dto.ChatMessageInput{Channel: "intra", AuthorName: "A", Text: "   "}, nil)
	requireAppError(t, err, apperrors.ErrValidationFailed, "Message vide.")
}

func TestCreateMessageWithAttachments(t *testing.T) {
	f := newChatFixture(t)

	msg, err := f.svc.CreateMessage(context.Background(), nil, dto.ChatMessageInput{Channel: "encadreurs", AuthorName: "Moussa"},
		[]*multipart.FileHeader{fileHeader("plan vol.pdf", "application/pdf"), fileHeader("photo.jpg", "image/jpeg")})
	require.NoError(t, err)
	assert.Nil(t, msg.Text)
	require.Len(t, msg.Attachments, 2)
	assert.Equal(t, models.Attachment{
		ID:   "1700000000000_plan_vol",
		Name: "plan vol.pdf",
		Type: "file",
		URL:  "/uploads/chat/1700000000000_plan_vol.pdf",
	}, msg.Attachments[0])
	assert.Equal(t, "image", msg.Attachments[1].Type)
}

func TestCreateMessageRejectsTooManyFiles(t *testing.T) {
	f := newChatFixture(t)
	files := make([]*multipart.FileHeader, 11)
	for i := range files {
		files[i] = fileHeader("f.txt", "text/plain")
	}
	_, err := f.svc.CreateMessage(context.Background(), nil, dto.ChatMessageInput{Channel: "intra", AuthorName: "A"}, files)
	requireAppError(t, err, apperrors.ErrValidationFailed, "Trop de fichiers (max 10).")
	assert.Empty(t, f.store.saved)
}

func TestUpdateMessageAttachments(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	msg, err := f.svc.CreateMessage(ctx, nil, dto.ChatMessageInput{Channel: "intra", AuthorName: "A"},
		[]*multipart.FileHeader{fileHeader("a.png", "image/png")})
	require.NoError(t, err)

	appended, err := f.svc.UpdateMessage(ctx, msg.ID, dto.ChatUpdateInput{}, []*multipart.FileHeader{fileHeader("b.png", "image/png")})
	require.NoError(t, err)
	assert.Len(t, appended.Attachments, 2)
	assert.NotNil(t, appended.EditedAt)
	assert.Empty(t, f.cleaner.cleaned())

	sub := subscribe(t, f.hub, "intra")
	text := "Corrigé"
	replaced, err := f.svc.UpdateMessage(ctx, msg.ID, dto.ChatUpdateInput{Text: &text, ReplaceAttachments: true},
		[]*multipart.FileHeader{fileHeader("c.png", "image/png")})
	require.NoError(t, err)
	assert.Equal(t, "Corrigé", *replaced.Text)
	require.Len(t, replaced.Attachments, 1)
	assert.Equal(t, "/uploads/chat/1700000000000_c.png", replaced.Attachments[0].URL)
	assert.ElementsMatch(t, []string{"/uploads/chat/1700000000000_a.png", "/uploads/chat/1700000000000_b.png"}, f.cleaner.cleaned())

	frame := nextFrame(t, sub)
	assert.Equal(t, "message:update", string(frame.Type))
}

func TestDeleteMessage(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	msg, err := f.svc.CreateMessage(ctx, nil, dto.ChatMessageInput{Channel: "intra", AuthorName: "A", Text: "x"},
		[]*multipart.FileHeader{fileHeader("a.png", "image/png")})
	require.NoError(t, err)
	sub := subscribe(t, f.hub, "intra")

	affected, err := f.svc.DeleteMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, []string{"/uploads/chat/1700000000000_a.png"}, f.cleaner.cleaned())

	frame := nextFrame(t, sub)
	assert.Equal(t, "message:delete", string(frame.Type))
	assert.Equal(t, msg.ID, frame.ID)
	assert.Nil(t, frame.Item)

	items, total, err := f.svc.ListMessages(ctx, dto.ChatListQuery{Channel: "intra"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	_, err = f.svc.DeleteMessage(ctx, msg.ID)
	requireAppError(t, err, apperrors.ErrValidationFailed, "Déjà supprimé.")

	_, err = f.svc.UpdateMessage(ctx, msg.ID, dto.ChatUpdateInput{}, nil)
	requireAppError(t, err, apperrors.ErrValidationFailed, "Message supprimé.")

	_, err = f.svc.DeleteMessage(ctx, 999)
	requireAppError(t, err, apperrors.ErrResourceNotFound, "Introuvable")
}

func TestListMessages(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	for _, text := range []string{"un", "deux", "trois"} {
		_, err := f.svc.CreateMessage(ctx, nil, dto.ChatMessageInput{Channel: "intra", AuthorName: "A", Text: text}, nil)
		require.NoError(t, err)
	}

	items, total, err := f.svc.ListMessages(ctx, dto.ChatListQuery{Channel: "intra", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, "deux", *items[0].Text)
	assert.Equal(t, "trois", *items[1].Text)

	_, _, err = f.svc.ListMessages(ctx, dto.ChatListQuery{Channel: "nope"})
	requireAppError(t, err, apperrors.ErrValidationFailed, "Paramètre 'channel' invalide.")
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) error { return errors.New("closed") }

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	published := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_chat_published"}, []string{"channel", "type"})
	svc := NewChatService(newMemoryChat(), nil, &fakeFileStore{}, &recordingCleaner{}, failingPublisher{}, published, zerolog.Nop())

	_, err := svc.CreateMessage(context.Background(), nil, dto.ChatMessageInput{Channel: "intra", AuthorName: "A", Text: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.CollectAndCount(published))
}
