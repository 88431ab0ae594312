package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/pkg/middleware/requestid"
)

const auditResourceKey = "audit_resource_id"

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SetAuditResource names the row a write touched, for routes whose path carries no ID (creates).
func SetAuditResource(c *gin.Context, id int64) {
	c.Set(auditResourceKey, strconv.FormatInt(id, 10))
}

// Audit writes one audit_logs row for each successful (< 400) request on the route.
// Recording failures are logged and never change the response.
func Audit(recorder AuditRecorder, logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() >= 400 || recorder == nil {
			return
		}

		var actor int64
		if claims, ok := CurrentClaims(c); ok {
			actor = claims.UserID
		}
		entry := models.NewAuditLog(actor, action, resource).
			About(auditResourceID(c)).
			From(c.ClientIP(), c.Request.UserAgent()).
			Describe(map[string]interface{}{
				"route":      c.FullPath(),
				"method":     c.Request.Method,
				"status":     c.Writer.Status(),
				"request_id": requestid.Value(c),
			})

		if err := recorder.CreateAuditLog(context.WithoutCancel(c.Request.Context()), entry); err != nil {
			logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
		}
	}
}

func auditResourceID(c *gin.Context) string {
	if v, ok := c.Get(auditResourceKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	for _, p := range c.Params {
		switch p.Key {
		case "courseId", "taskId", "groupId", "materialId":
			return p.Value
		}
	}
	return ""
}
