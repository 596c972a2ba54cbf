// Package health collects dependency status and the request counters written
// by middleware.HealthMarker.
package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"bondbook-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DBPinger is satisfied by the database handle wrapper in cmd/api.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to DBPinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Report struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	HeapMB        int    `json:"heapMb"`
	Goroutines    int    `json:"goroutines"`
	Platform      string `json:"platform"`
	GoVersion     string `json:"goVersion"`
}

type TrafficInfo struct {
	TotalRequests   int                    `json:"totalRequests"`
	SuccessCount    int                    `json:"successCount"`
	FailedCount     int                    `json:"failedCount"`
	SuccessRate     string                 `json:"successRate"`
	AvgResponseTime string                 `json:"avgResponseTime"`
	LastRequest     map[string]interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

func ping(ctx context.Context, f func(context.Context) error) DepStatus {
	start := time.Now()
	if err := f(ctx); err != nil {
		log.Warn().Err(err).Msg("health ping failed")
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// Collect gathers database and Redis status plus traffic counters. Either
// dependency may be nil and is then reported as disconnected.
func Collect(ctx context.Context, rdb *redis.Client, db DBPinger) Report {
	out := Report{
		Dependencies: map[string]DepStatus{
			"database": {Status: "disconnected"},
			"redis":    {Status: "disconnected"},
		},
		Traffic: TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"},
	}
	if db != nil {
		out.Dependencies["database"] = ping(ctx, db.Ping)
	}

	startMs := time.Now().UnixMilli()
	if rdb != nil {
		dep := ping(ctx, func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		out.Dependencies["redis"] = dep
		if dep.Status == "connected" {
			startMs = readTraffic(ctx, rdb, &out.Traffic, startMs)
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	out.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		HeapMB:        int(m.HeapInuse / 1024 / 1024),
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	out.Status = "issue"
	if out.Dependencies["database"].Status == "connected" && out.Dependencies["redis"].Status == "connected" {
		out.Status = "ok"
	}
	return out
}

func readTraffic(ctx context.Context, rdb *redis.Client, t *TrafficInfo, startMs int64) int64 {
	vals, err := rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq).Result()
	if err != nil {
		return startMs
	}
	s := func(i int) string {
		v, _ := vals[i].(string)
		return v
	}

	if st, err := strconv.ParseInt(s(4), 10, 64); err == nil {
		startMs = st
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startMs, 0)
	}
	t.TotalRequests, _ = strconv.Atoi(s(0))
	t.FailedCount, _ = strconv.Atoi(s(1))
	t.SuccessCount = t.TotalRequests - t.FailedCount
	if t.TotalRequests > 0 {
		t.SuccessRate = strconv.FormatFloat(float64(t.SuccessCount)/float64(t.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(s(2), 64)
	if count, _ := strconv.Atoi(s(3)); count > 0 {
		t.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if last := s(5); last != "" {
		_ = json.Unmarshal([]byte(last), &t.LastRequest)
	}
	return startMs
}

// Reset clears the counters and restarts the uptime clock.
func Reset(ctx context.Context, rdb *redis.Client) error {
	if err := rdb.Del(ctx, middleware.HealthKeys...).Err(); err != nil {
		return err
	}
	return rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err()
}

// RecentErrors returns up to 50 entries from the error log, newest first.
func RecentErrors(ctx context.Context, rdb *redis.Client) ([]map[string]interface{}, error) {
	entries, err := rdb.LRange(ctx, middleware.KeyErrorLog, 0, 49).Result()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		var m map[string]interface{}
		if json.Unmarshal([]byte(e), &m) == nil {
			out = append(out, m)
		}
	}
	return out, nil
}
