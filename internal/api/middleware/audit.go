package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	ContextIPAddress = "ip_address"
	ContextUserAgent = "user_agent"
)

// RequestLogger records the client of every request in the context and logs
// the request once it has been served.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// X-Forwarded-For first, for proxies
		ipAddress := c.GetHeader("X-Forwarded-For")
		if ipAddress == "" {
			ipAddress = c.GetHeader("X-Real-IP")
		}
		if ipAddress == "" {
			ipAddress = c.ClientIP()
		}
		if idx := strings.Index(ipAddress, ","); idx != -1 {
			ipAddress = strings.TrimSpace(ipAddress[:idx])
		}
		userAgent := c.GetHeader("User-Agent")

		c.Set(ContextIPAddress, ipAddress)
		c.Set(ContextUserAgent, userAgent)

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip_address", ipAddress,
			"user_agent", userAgent,
		}
		if operator, ok := GetOperator(c); ok {
			attrs = append(attrs, "operator", operator)
		}

		ctx := c.Request.Context()
		switch {
		case len(c.Errors) > 0:
			logger.ErrorContext(ctx, "request failed", append(attrs, "error", c.Errors.String())...)
		case c.Writer.Status() >= 500:
			logger.ErrorContext(ctx, "request served", attrs...)
		default:
			logger.InfoContext(ctx, "request served", attrs...)
		}
	}
}

func GetIPAddress(c *gin.Context) string {
	val, exists := c.Get(ContextIPAddress)
	if !exists {
		return ""
	}
	if ip, ok := val.(string); ok {
		return ip
	}
	return ""
}

func GetUserAgent(c *gin.Context) string {
	val, exists := c.Get(ContextUserAgent)
	if !exists {
		return ""
	}
	if ua, ok := val.(string); ok {
		return ua
	}
	return ""
}
