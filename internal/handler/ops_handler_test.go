package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/internal/service"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type fakeContactSrv struct {
	req models.ContactRequest
	ip  string
}

func (f *fakeContactSrv) Submit(_ context.Context, req models.ContactRequest, ip string) (*models.ContactMessage, error) {
	f.req = req
	f.ip = ip
	return &models.ContactMessage{ID: 1, Name: req.Name, Email: req.Email, Message: req.Message}, nil
}

func TestContactHandlerSubmit(t *testing.T) {
	srv := &fakeContactSrv{}
	handler := NewContactHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/contact", nil, nil)
	withJSONBody(c, http.MethodPost, "/contact", `{"name":"Ada","email":"ada@example.com","message":"Hello"}`)
	handler.Submit(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeEnvelope(t, rec).Data["success"])
	assert.Equal(t, "Ada", srv.req.Name)
}

func TestMetricsHandlerReadiness(t *testing.T) {
	handler := NewMetricsHandler(nil, stubPinger{})
	c, rec := newTestContext(http.MethodGet, "/ready", nil, nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	handler = NewMetricsHandler(nil, stubPinger{err: errors.New("connection refused")})
	c, rec = newTestContext(http.MethodGet, "/ready", nil, nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unreachable")
}

func TestMetricsHandlerSnapshotAndPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordAchievements(2)
	handler := NewMetricsHandler(metrics, stubPinger{})

	c, rec := newTestContext(http.MethodGet, "/api/admin/metrics", nil, nil)
	handler.Snapshot(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeEnvelope(t, rec).Data["achievements_awarded"])

	c, rec = newTestContext(http.MethodGet, "/metrics", nil, nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "achievements_awarded_total"))
}

func TestMetricsHandlerDisabled(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)

	c, rec := newTestContext(http.MethodGet, "/metrics", nil, nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/ready", nil, nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
