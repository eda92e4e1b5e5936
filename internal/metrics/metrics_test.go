package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromCounters(t *testing.T) {
	p := NewProm("melodia")

	p.ObservePublish("published", 0.2)
	p.ObservePublish("image_write", 0.1)
	p.ObservePublish("image_write", 0.1)
	p.IncCompensation("audio-objects", "deleted")
	p.IncCompensation("audio-objects", "failed")

	assert.Equal(t, 1.0, testutil.ToFloat64(p.publishes.WithLabelValues("published")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.publishes.WithLabelValues("image_write")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.compensations.WithLabelValues("audio-objects", "failed")))
}

func TestPromHandler(t *testing.T) {
	p := NewProm("melodia")
	p.ObservePublish("published", 0.05)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `melodia_publish_total{outcome="published"} 1`)
	assert.Contains(t, string(body), "melodia_publish_duration_seconds_bucket")
}

func TestNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		Noop{}.ObservePublish("published", 1)
		Noop{}.IncCompensation("image-objects", "deleted")
	})
}
