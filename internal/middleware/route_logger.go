package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs request entry and exit with the trace ID, status and duration.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		l := log.With().Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).Logger()
		start := time.Now()
		l.Debug().Msg("request started")

		err := c.Next()

		ev := l.Info()
		if c.Response().StatusCode() >= fiber.StatusInternalServerError || err != nil {
			ev = l.Warn().Err(err)
		}
		ev.Int("status", c.Response().StatusCode()).
			Int64("ms", time.Since(start).Milliseconds()).
			Msg("request finished")
		return err
	}
}
