package middleware

import (
	"net/http"
	"time"

	"analytics-service/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	UserIDHeader    = "X-User-ID"
	VisitorIDKey    = "visitor_id"
)

// RequestID propagates X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger returns a Gin middleware that emits a structured log line
// for every HTTP request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if rid := c.GetString(logger.RequestIDKey); rid != "" {
			fields = append(fields, zap.String(logger.RequestIDKey, rid))
		}
		if vid := c.GetString(VisitorIDKey); vid != "" {
			fields = append(fields, zap.String(VisitorIDKey, vid))
		}

		switch {
		case status >= 500:
			log.Error("http_request", fields...)
		case status >= 400:
			log.Warn("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}

// VisitorCookie identifies the browser across requests. A visitor without
// the cookie gets a new random id.
type VisitorCookie struct {
	Name   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

// Visitor stores the visitor id under VisitorIDKey.
func Visitor(cfg VisitorCookie) gin.HandlerFunc {
	if cfg.Name == "" {
		cfg.Name = "analytics_visitor"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 365 * 24 * time.Hour
	}

	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.Name)
		if _, perr := uuid.Parse(id); err != nil || perr != nil {
			id = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cfg.Name,
				Value:    id,
				Path:     "/",
				Domain:   cfg.Domain,
				MaxAge:   int(cfg.MaxAge / time.Second),
				Secure:   cfg.Secure,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(VisitorIDKey, id)
		c.Next()
	}
}
