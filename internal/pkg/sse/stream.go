package sse

import (
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// Serve streams the subscriber's frames until the client goes away or the
// hub closes the subscription.
func Serve(c *gin.Context, hub *Hub, sub *Subscriber) {
	defer hub.Unsubscribe(sub)

	w := c.Writer
	header := w.Header()
	header.Set("Content-Type", "text/event-stream; charset=utf-8")
	header.Set("Cache-Control", "no-cache, no-transform")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := sse.Encode(w, sse.Event{Event: ev.Name, Data: ev.Data}); err != nil {
				return
			}
			w.Flush()
		}
	}
}
