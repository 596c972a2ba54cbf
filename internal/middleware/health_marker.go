package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys shared by the marker and the health collector.
const (
	KeyReqTotal  = "health:api:req_total"
	KeyReqErrors = "health:api:req_errors"
	KeyResTime   = "health:api:res_time_total"
	KeyResCount  = "health:api:res_count"
	KeyStartTime = "health:api:start_time"
	KeyLastReq   = "health:api:last_request"
	KeyErrorLog  = "health:api:error_log"

	errorLogSize = 50
)

// HealthKeys lists every key the marker writes.
var HealthKeys = []string{KeyReqTotal, KeyReqErrors, KeyResTime, KeyResCount, KeyStartTime, KeyLastReq, KeyErrorLog}

// HealthMarker records request stats in Redis (skips /, /health*, /metrics, favicon).
// 5xx responses are also pushed onto a capped error log.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || path == "/metrics" || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		ctx := c.UserContext()
		start := time.Now()
		b, _ := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		pipe := rdb.Pipeline()
		pipe.Set(ctx, KeyLastReq, b, 0)
		pipe.Incr(ctx, KeyReqTotal)
		_, _ = pipe.Exec(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		pipe = rdb.Pipeline()
		pipe.Incr(ctx, KeyResCount)
		pipe.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds()))
		if status >= fiber.StatusInternalServerError {
			entry, _ := json.Marshal(map[string]interface{}{
				"time":     time.Now(),
				"path":     path,
				"method":   c.Method(),
				"status":   status,
				"trace_id": GetTraceID(c),
			})
			pipe.Incr(ctx, KeyReqErrors)
			pipe.LPush(ctx, KeyErrorLog, entry)
			pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
		}
		_, _ = pipe.Exec(ctx)
		return err
	}
}
