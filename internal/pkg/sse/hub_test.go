package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(Config{Channels: []string{"intra", "encadreurs"}, BufferSize: 4, Heartbeat: time.Hour}, zerolog.Nop())
}

func receive(t *testing.T, sub *Subscriber) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func assertSilent(t *testing.T, sub *Subscriber) {
	t.Helper()
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeEmitsReady(t *testing.T) {
	hub := newTestHub(t)

	sub, err := hub.Subscribe("intra")
	require.NoError(t, err)
	assert.Equal(t, readyEvent, receive(t, sub))
	assert.Equal(t, 1, hub.Count("intra"))

	_, err = hub.Subscribe("general")
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func TestPublishIsScopedToChannel(t *testing.T) {
	hub := newTestHub(t)
	intra, _ := hub.Subscribe("intra")
	enc, _ := hub.Subscribe("encadreurs")
	receive(t, intra)
	receive(t, enc)

	require.NoError(t, hub.Publish(context.Background(), "intra", map[string]any{"type": "message:new", "id": 1}))

	ev := receive(t, intra)
	assert.Empty(t, ev.Name)
	assert.JSONEq(t, `{"type":"message:new","id":1}`, ev.Data)
	assertSilent(t, enc)
}

func TestPublishToAllChannels(t *testing.T) {
	hub := newTestHub(t)
	intra, _ := hub.Subscribe("intra")
	enc, _ := hub.Subscribe("encadreurs")
	receive(t, intra)
	receive(t, enc)

	require.NoError(t, hub.Publish(context.Background(), "", map[string]string{"type": "x"}))
	receive(t, intra)
	receive(t, enc)
}

func TestFullBufferDropsOnlyForSlowSubscriber(t *testing.T) {
	hub := newTestHub(t)
	slow, _ := hub.Subscribe("intra")
	fast, _ := hub.Subscribe("intra")
	receive(t, fast)

	// slow still holds the ready frame, so three more fill its buffer of four
	for i := 0; i < 5; i++ {
		require.NoError(t, hub.Publish(context.Background(), "intra", i))
		receive(t, fast)
	}

	assert.Len(t, slow.Events(), 4)
}

func TestUnsubscribeClosesAndNotifies(t *testing.T) {
	hub := newTestHub(t)
	counts := map[string]int{}
	hub.SetObserver(func(channel string, count int) { counts[channel] = count })

	sub, _ := hub.Subscribe("intra")
	assert.Equal(t, 1, counts["intra"])

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	assert.Equal(t, 0, counts["intra"])
	assert.Equal(t, 0, hub.Count("intra"))

	receive(t, sub)
	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestRunSendsHeartbeatAndClosesOnCancel(t *testing.T) {
	hub := NewHub(Config{Channels: []string{"intra"}, Heartbeat: 10 * time.Millisecond}, zerolog.Nop())
	sub, _ := hub.Subscribe("intra")
	receive(t, sub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()

	assert.Equal(t, pingEvent, receive(t, sub))
	cancel()
	<-done

	_, err := hub.Subscribe("intra")
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestServeWritesFrames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := newTestHub(t)
	sub, err := hub.Subscribe("intra")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/chat/stream?channel=intra", nil).WithContext(ctx)

	require.NoError(t, hub.Publish(context.Background(), "intra", map[string]any{"type": "message:new"}))

	done := make(chan struct{})
	go func() {
		Serve(c, hub, sub)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(sub.Events()) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event:ready")
	assert.Contains(t, body, `{"ok":true}`)
	assert.Contains(t, body, `{"type":"message:new"}`)
	assert.Less(t, strings.Index(body, "ready"), strings.Index(body, "message:new"))
	assert.Equal(t, 0, hub.Count("intra"))
}

func TestRedisBrokerRelaysBetweenHubs(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	a := newTestHub(t)
	b := newTestHub(t)
	brokerA := NewRedisBroker(client, "chat:test", zerolog.Nop())
	brokerB := NewRedisBroker(client, "chat:test", zerolog.Nop())
	a.SetBroker(brokerA)
	b.SetBroker(brokerB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = brokerA.Run(ctx, a.DeliverRemote) }()
	go func() { _ = brokerB.Run(ctx, b.DeliverRemote) }()
	<-brokerA.Ready()
	<-brokerB.Ready()

	onA, _ := a.Subscribe("intra")
	onB, _ := b.Subscribe("intra")
	receive(t, onA)
	receive(t, onB)

	require.NoError(t, a.Publish(ctx, "intra", map[string]any{"type": "message:delete", "id": 7}))

	assert.JSONEq(t, `{"type":"message:delete","id":7}`, receive(t, onA).Data)
	assert.JSONEq(t, `{"type":"message:delete","id":7}`, receive(t, onB).Data)
	// the origin hub ignores its own relayed copy
	assertSilent(t, onA)
}
