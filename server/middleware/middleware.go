package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey ключ для request ID в контексте
type RequestIDKey struct{}

// SetRequestID устанавливает request ID в контекст
func SetRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, reqID)
}

// GetRequestID извлекает request ID из контекста
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	reqID, ok := ctx.Value(RequestIDKey{}).(string)
	if !ok {
		return ""
	}
	return reqID
}

// RequestID добавляет уникальный request ID к каждому запросу
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Set("request_id", reqID)
		c.Request = c.Request.WithContext(SetRequestID(c.Request.Context(), reqID))
		c.Header("X-Request-ID", reqID)

		c.Next()
	}
}

// CORS добавляет CORS заголовки
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Gzip включает сжатие ответов
func Gzip() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed)
}

// Logger логирует запросы структурированно через slog
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
			"request_id", GetRequestID(c.Request.Context()),
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			slog.Error("HTTP request", attrs...)
		case c.Writer.Status() >= http.StatusBadRequest:
			slog.Warn("HTTP request", attrs...)
		default:
			slog.Info("HTTP request", attrs...)
		}
	}
}

// Recovery перехватывает паники в обработчиках и возвращает 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic in handler",
					"recovered", r,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c.Request.Context()),
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Внутренняя ошибка сервера",
				})
			}
		}()
		c.Next()
	}
}

// BodyLimit ограничивает размер тела запроса. При превышении лимита
// возвращает 413 с максимальным размером, как ожидает фронтенд загрузки.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":    "Файл слишком большой. Максимальный размер: " + formatMB(maxBytes) + " MB",
				"max_size": maxBytes,
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func formatMB(bytes int64) string {
	mb := bytes / (1024 * 1024)
	if mb < 1 {
		mb = 1
	}
	return strconv.FormatInt(mb, 10)
}
