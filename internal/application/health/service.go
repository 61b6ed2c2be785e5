package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"ledger-backend/internal/ledger"
	"ledger-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional. If nil, the database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// StatsSource reports ledger totals. *ledger.Ledger satisfies it.
type StatsSource interface {
	Stats() ledger.Stats
}

// Report is the shape served by /health/json and embedded in the dashboard.
type Report struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Ledger       *ledger.Stats        `json:"ledger"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	HeapMB        int    `json:"heapMb"`
	AllocMB       int    `json:"allocMb"`
	Goroutines    int    `json:"goroutines"`
	Platform      string `json:"platform"`
	GoVersion     string `json:"goVersion"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime string      `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// Collector gathers the health report from Redis counters, the database and the ledger.
type Collector struct {
	Rdb    *redis.Client
	DB     DBPinger
	Ledger StatsSource
}

func (c *Collector) Collect(ctx context.Context) Report {
	r := Report{
		Dependencies: make(map[string]DepStatus, 2),
		Traffic:      TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"},
	}
	r.Dependencies["database"] = c.pingDB()

	startMs := time.Now().UnixMilli()
	redisDep := DepStatus{Status: "disconnected"}
	if c.Rdb != nil {
		redisDep = timed(func() error { return c.Rdb.Ping(ctx).Err() })
		if redisDep.Status == "connected" {
			r.Traffic, startMs = c.traffic(ctx, startMs)
		}
	}
	r.Dependencies["redis"] = redisDep

	if c.Ledger != nil {
		st := c.Ledger.Stats()
		r.Ledger = &st
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.Runtime = RuntimeInfo{
		UptimeSeconds: max((time.Now().UnixMilli()-startMs)/1000, 0),
		HeapMB:        int(m.HeapInuse / 1024 / 1024),
		AllocMB:       int(m.Alloc / 1024 / 1024),
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	r.Status = "issue"
	if r.Dependencies["database"].Status == "connected" && redisDep.Status == "connected" {
		r.Status = "ok"
	}
	return r
}

func (c *Collector) pingDB() DepStatus {
	if c.DB == nil {
		return DepStatus{Status: "disconnected"}
	}
	return timed(c.DB.Ping)
}

func timed(ping func() error) DepStatus {
	start := time.Now()
	if err := ping(); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// traffic reads the counters kept by middleware.HealthMarker. The start time
// is seeded on first read.
func (c *Collector) traffic(ctx context.Context, startMs int64) (TrafficInfo, int64) {
	vals, _ := c.Rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
	).Result()
	get := func(i int) string {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				return s
			}
		}
		return ""
	}

	if s := get(4); s != "" {
		if t, err := strconv.ParseInt(s, 10, 64); err == nil {
			startMs = t
		}
	} else {
		c.Rdb.Set(ctx, middleware.KeyStartTime, startMs, 0)
	}

	t := TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"}
	t.TotalRequests, _ = strconv.Atoi(get(0))
	t.FailedCount, _ = strconv.Atoi(get(1))
	t.SuccessCount = t.TotalRequests - t.FailedCount
	if t.TotalRequests > 0 {
		t.SuccessRate = strconv.FormatFloat(float64(t.SuccessCount)/float64(t.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(get(2), 64)
	if n, _ := strconv.Atoi(get(3)); n > 0 {
		t.AvgResponseTime = strconv.FormatFloat(timeSum/float64(n), 'f', 2, 64)
	}
	if s := get(5); s != "" {
		var last map[string]interface{}
		if json.Unmarshal([]byte(s), &last) == nil {
			t.LastRequest = last
		}
	}
	return t, startMs
}
