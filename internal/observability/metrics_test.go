package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequestAndError(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("/api/users/:id", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/users/:id", "GET", 200, 20*time.Millisecond)
	m.RecordError("/api/users/:id", "GET", "NOT_FOUND")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/users/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("GET", "/api/users/:id", "NOT_FOUND")))
}

func TestTrackInFlight(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	done := m.TrackInFlight()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
}

func TestObserveStoreClassifiesErrors(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	notFound := errors.New("not found")

	_ = m.ObserveStore("users.get", func() error { return notFound }, notFound)
	_ = m.ObserveStore("users.create", func() error { return &pgconn.PgError{Code: "23505"} })
	err := m.ObserveStore("users.list", func() error { return errors.New("dial tcp: connection refused") })

	assert.Error(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("users.get", "unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("users.create", "unique_violation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("users.list", "connection")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordAuth("login", "ok")
	m.RecordEvent("user_created")
	m.TrackInFlight()()
	assert.NoError(t, m.ObserveStore("op", func() error { return nil }))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordAuth("login", "success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "account_service_auth_attempts_total")
}
