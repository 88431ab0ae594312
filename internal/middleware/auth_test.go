package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/pkg/middleware/requestid"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return claims, nil
}

var tokens = stubValidator{
	"student": {UserID: 7, Role: models.RoleStudent},
	"teacher": {UserID: 50, Role: models.RoleTeacher},
	"admin":   {UserID: 1, Role: models.RoleAdmin},
}

type errorBody struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func perform(t *testing.T, router *gin.Engine, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		return rec.Code, ""
	}
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body.Error.Code
}

func gatedRouter(gates ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(tokens)}, gates...)
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/resource/:userId", handlers...)
	return router
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	router := gatedRouter()

	status, code := perform(t, router, "/resource/7", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", code)

	req := httptest.NewRequest(http.MethodGet, "/resource/7", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	status, code = perform(t, router, "/resource/7", "forged")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_INVALID", code)

	status, _ = perform(t, router, "/resource/7", "student")
	assert.Equal(t, http.StatusOK, status)
}

func TestRoleGates(t *testing.T) {
	cases := []struct {
		name  string
		gate  gin.HandlerFunc
		token string
		want  int
	}{
		{"student passes student gate", StudentOnly(), "student", http.StatusOK},
		{"teacher blocked by student gate", StudentOnly(), "teacher", http.StatusForbidden},
		{"admin blocked by student gate", StudentOnly(), "admin", http.StatusForbidden},
		{"teacher passes teacher gate", TeacherOrAdmin(), "teacher", http.StatusOK},
		{"admin passes teacher gate", TeacherOrAdmin(), "admin", http.StatusOK},
		{"student blocked by teacher gate", TeacherOrAdmin(), "student", http.StatusForbidden},
		{"admin passes admin gate", AdminOnly(), "admin", http.StatusOK},
		{"teacher blocked by admin gate", AdminOnly(), "teacher", http.StatusForbidden},
		{"any role passes authenticated gate", Authenticated(), "student", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := perform(t, gatedRouter(tc.gate), "/resource/7", tc.token)
			assert.Equal(t, tc.want, status)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", code)
			}
		})
	}
}

func TestSelfOrAdmin(t *testing.T) {
	router := gatedRouter(SelfOrAdmin("userId"))

	status, _ := perform(t, router, "/resource/7", "student")
	assert.Equal(t, http.StatusOK, status)

	status, code := perform(t, router, "/resource/8", "student")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", code)

	status, _ = perform(t, router, "/resource/8", "admin")
	assert.Equal(t, http.StatusOK, status)

	status, code = perform(t, router, "/resource/abc", "student")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", code)
}

func TestOptionalJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/open", OptionalJWT(tokens), func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if ok {
			c.String(http.StatusOK, claims.Role.DashboardKind())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	for token, want := range map[string]string{"": "anonymous", "forged": "anonymous", "teacher": "teacher"} {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Body.String())
	}
}

type recordingAudit struct {
	logs []models.AuditLog
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, *log)
	return nil
}

func TestAuditRecordsSuccessfulWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := &recordingAudit{}
	router := gin.New()
	router.POST("/courses/:courseId", JWT(tokens), Audit(audit, nil, "COURSE_UPDATE", "course"), func(c *gin.Context) {
		if c.Query("fail") != "" {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/courses/3", "/courses/3?fail=1"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer teacher")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, audit.logs, 1)
	entry := audit.logs[0]
	assert.Equal(t, "COURSE_UPDATE", entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, int64(50), *entry.UserID)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "3", *entry.ResourceID)
}

func TestAuditPrefersExplicitResource(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := &recordingAudit{}
	router := gin.New()
	router.POST("/courses", JWT(tokens), Audit(audit, nil, "COURSE_CREATE", "course"), func(c *gin.Context) {
		SetAuditResource(c, 91)
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/courses", nil)
	req.Header.Set("Authorization", "Bearer teacher")
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, audit.logs, 1)
	require.NotNil(t, audit.logs[0].ResourceID)
	assert.Equal(t, "91", *audit.logs[0].ResourceID)
	assert.Contains(t, string(audit.logs[0].NewValues), `"route":"/courses"`)
}

type observedRequest struct {
	method, path string
	status       int
}

type recordingObserver struct {
	seen []observedRequest
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.seen = append(r.seen, observedRequest{method: method, path: path, status: status})
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(requestid.Middleware(), Metrics(observer), WithResponseMeta())
	router.GET("/courses/:courseId", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/courses/42", nil)
	req.Header.Set("X-Request-ID", "req-42")
	router.ServeHTTP(rec, req)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere/1", nil))

	require.Len(t, observer.seen, 2)
	assert.Equal(t, observedRequest{method: http.MethodGet, path: "/courses/:courseId", status: http.StatusOK}, observer.seen[0])
	assert.Equal(t, "unmatched", observer.seen[1].path)
	assert.Equal(t, http.StatusNotFound, observer.seen[1].status)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, "req-42", meta["request_id"])
}
