package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecell-kiet/recruitment-api/internal/models"
)

type actionLogWriter interface {
	CreateActionLog(ctx context.Context, log *models.AdminActionLog) error
}

// Audit records an admin action log entry after mutating requests complete.
// Reads pass through untouched.
func Audit(logs actionLogWriter, action, resource string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}

		entry := &models.AdminActionLog{
			Action:     action,
			Resource:   resource,
			Endpoint:   c.FullPath(),
			Method:     c.Request.Method,
			Status:     "success",
			StatusCode: c.Writer.Status(),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			entry.Status = "failure"
		}
		if claims, ok := CurrentClaims(c); ok {
			entry.AdminID = &claims.SubjectID
			entry.AdminEmail = &claims.Email
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}

		// request handling must not block on the audit write
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		go func() {
			defer cancel()
			if err := logs.CreateActionLog(ctx, entry); err != nil {
				logger.Warn("failed to write action log",
					zap.String("action", action),
					zap.Error(err))
			}
		}()
	}
}
