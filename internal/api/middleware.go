package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dndsim/internal/auth"
)

const userIDKey = "userID"

// RequestLogger tags every request with an id and logs method, path,
// status and latency through zap.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()
		c.Set("requestID", requestID)

		c.Next()

		log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// CORS allows the configured origins. Preflight requests short-circuit
// with 204.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] || allowed["*"] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// AuthRequired verifies the bearer token and stores the user id in the
// context. Each failure reason is logged distinctly but the response body
// is identical for all of them.
func AuthRequired(tokens *auth.TokenManager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			rejectUnauthorized(c, log, auth.ErrTokenMissing)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			rejectUnauthorized(c, log, auth.ErrTokenMalformed)
			return
		}

		userID, err := tokens.Verify(parts[1])
		if err != nil {
			rejectUnauthorized(c, log, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func rejectUnauthorized(c *gin.Context, log *zap.Logger, reason error) {
	log.Info("rejected request",
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", reason.Error()),
	)
	fail(c, http.StatusUnauthorized, "unauthorized", "invalid or missing authentication token")
	c.Abort()
}

// currentUserID returns the authenticated user id set by AuthRequired.
func currentUserID(c *gin.Context) uint {
	id, _ := c.Get(userIDKey)
	userID, _ := id.(uint)
	return userID
}
