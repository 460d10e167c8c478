package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// RequestIDKey is the Locals key holding the request ID.
const RequestIDKey = "requestid"

// RequestID tags every request with a UUID, echoed in X-Request-ID.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: RequestIDKey,
	})
}

// AccessLog writes one line per request. Must be installed after RequestID.
func AccessLog() fiber.Handler {
	return logger.New(logger.Config{
		Format: "[${time}] ${locals:" + RequestIDKey + "} ${status} - ${latency} ${method} ${path}\n",
	})
}

// GetRequestID returns the current request's ID, or "" outside RequestID.
func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(RequestIDKey).(string)
	return id
}
