package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/actor"
	"marketplace/internal/logger"
	"marketplace/internal/uuid"
)

const requestIDKey = "requestID"

// Verbs derived from the HTTP method for request log lines.
const (
	verbCreate   = "create"
	verbUpdate   = "update"
	verbDelete   = "delete"
	verbRetrieve = "retrieve"
	verbUnknown  = "unknown"
)

func classifyMethod(method string) string {
	switch method {
	case http.MethodPost:
		return verbCreate
	case http.MethodPut, http.MethodPatch:
		return verbUpdate
	case http.MethodDelete:
		return verbDelete
	case http.MethodGet, http.MethodHead:
		return verbRetrieve
	}
	return verbUnknown
}

// RequestLogging returns a Gin middleware that logs each request twice: once
// on entry with the actor, and once on exit with the action verb and outcome.
// It must run after Authenticate so the actor is resolved.
//
// Logging is best-effort. A panic inside the logger is recovered and never
// reaches the handler chain. A handler panic is logged as a failed request
// with status 500 and re-raised for Recovery.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(actor.WithRequestID(c.Request.Context(), requestID))

		a, _ := actor.FromContext(c.Request.Context())
		actorID := actor.LogID(a)

		safeLog(func() {
			logger.Get().Infow("request started",
				"request_id", requestID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"actor", actorID,
				"client_ip", c.ClientIP(),
			)
		})

		finished := func(status int) {
			safeLog(func() {
				success := status >= http.StatusOK && status < http.StatusMultipleChoices
				outcome := "failure"
				if success {
					outcome = "success"
				}
				logger.Get().Infow("request finished",
					"request_id", requestID,
					"action", classifyMethod(c.Request.Method),
					"path", c.Request.URL.Path,
					"actor", actorID,
					"status", status,
					"success", success,
					"outcome", outcome,
					"latency_ms", time.Since(start).Milliseconds(),
				)
			})
		}

		defer func() {
			if err := recover(); err != nil {
				finished(http.StatusInternalServerError)
				panic(err)
			}
			finished(c.Writer.Status())
		}()

		c.Next()
	}
}

func safeLog(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
