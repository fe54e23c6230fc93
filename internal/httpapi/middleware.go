package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/muhammadolammi/interviewmate/internal/auth"
	"github.com/muhammadolammi/interviewmate/internal/logger"
)

// Authenticator resolves a bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
}

type AuthMiddleware struct {
	log  *logger.Logger
	auth Authenticator
}

func NewAuthMiddleware(log *logger.Logger, a Authenticator) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), auth: a}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": auth.MsgLoginRequired, "code": "unauthorized"},
			})
			return
		}
		p, err := am.auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			status, code, msg := classify(err)
			am.log.Debug("authentication rejected", "code", code, "err", err)
			c.AbortWithStatusJSON(status, gin.H{
				"error": gin.H{"message": msg, "code": code},
			})
			return
		}
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	// EventSource cannot set headers, so streams pass the token in the query.
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	return auth.BearerToken(c.GetHeader("Authorization"))
}

func principal(c *gin.Context) auth.Principal {
	p, _ := auth.FromContext(c.Request.Context())
	return p
}

func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	})
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if p, ok := auth.FromContext(c.Request.Context()); ok {
			fields = append(fields, "user_id", p.UserID)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
