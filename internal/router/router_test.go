package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/innouni-api/internal/handler"
	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/internal/service"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := t[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrTokenInvalid, "")
	}
	return claims, nil
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func testEngine(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := tokenTable{
		"student": {UserID: 7, Role: models.RoleStudent},
		"teacher": {UserID: 50, Role: models.RoleTeacher},
		"admin":   {UserID: 1, Role: models.RoleAdmin},
	}
	metrics := service.NewMetricsService()
	handlers := Handlers{
		Auth:      handler.NewAuthHandler(nil),
		Dashboard: handler.NewDashboardHandler(nil),
		Student:   handler.NewStudentHandler(nil),
		Teacher:   handler.NewTeacherHandler(nil),
		Material:  handler.NewMaterialHandler(nil),
		Contact:   handler.NewContactHandler(nil),
		Metrics:   handler.NewMetricsHandler(metrics, okPinger{}),
	}
	return New(opts, handlers, Dependencies{Tokens: tokens, Observer: metrics})
}

func call(engine *gin.Engine, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouterGates(t *testing.T) {
	engine := testEngine(t, Options{APIPrefix: "/api", EnforceOwnership: true, MetricsEnabled: true})

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health is open", http.MethodGet, "/health", "", http.StatusOK},
		{"ready pings the database", http.MethodGet, "/ready", "", http.StatusOK},
		{"prometheus exposed", http.MethodGet, "/metrics", "", http.StatusOK},
		{"profile needs a token", http.MethodGet, "/api/auth/profile", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/auth/verify", "forged", http.StatusUnauthorized},
		{"teacher blocked from student area", http.MethodPost, "/api/student/courses/1/enroll", "teacher", http.StatusForbidden},
		{"student blocked from teacher area", http.MethodPost, "/api/teacher/courses", "student", http.StatusForbidden},
		{"student blocked from admin area", http.MethodGet, "/api/admin/metrics", "student", http.StatusForbidden},
		{"admin snapshot", http.MethodGet, "/api/admin/metrics", "admin", http.StatusOK},
		{"dashboard of another user", http.MethodGet, "/api/dashboard/stats/8", "student", http.StatusForbidden},
		{"dashboard without token", http.MethodGet, "/api/dashboard/stats/7", "", http.StatusUnauthorized},
		{"teacher dashboard of another teacher", http.MethodGet, "/api/teacher/dashboard/51", "teacher", http.StatusForbidden},
		{"route of another user", http.MethodGet, "/api/dashboard/8/route", "student", http.StatusForbidden},
		{"course materials need a token", http.MethodGet, "/api/courses/1/materials", "", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/nowhere", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, call(engine, tc.method, tc.path, tc.token))
		})
	}
}

func TestRouterOptionalSurfaces(t *testing.T) {
	engine := testEngine(t, Options{APIPrefix: "v2/"})

	assert.Equal(t, http.StatusNotFound, call(engine, http.MethodGet, "/metrics", ""))
	assert.Equal(t, http.StatusNotFound, call(engine, http.MethodGet, "/docs/index.html", ""))
	assert.Equal(t, http.StatusUnauthorized, call(engine, http.MethodGet, "/v2/auth/profile", ""))
}

func TestAPIPrefix(t *testing.T) {
	assert.Equal(t, "/api", apiPrefix(""))
	assert.Equal(t, "/api", apiPrefix("/"))
	assert.Equal(t, "/v1", apiPrefix("v1/"))
}
