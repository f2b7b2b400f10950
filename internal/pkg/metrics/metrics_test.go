package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorsExposed(t *testing.T) {
	m := New()
	m.HTTPRequests.WithLabelValues("GET", "/api/vols", "200").Inc()
	m.SSESubscribers.WithLabelValues("intra").Set(2)
	m.CleanupFailures.Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SSESubscribers.WithLabelValues("intra")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CleanupFailures))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(body, `bmvt_http_requests_total{method="GET",route="/api/vols",status="200"} 1`))
	assert.True(t, strings.Contains(body, "bmvt_chat_stream_subscribers"))
}
