package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"estate-marketplace/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Dependency states.
const (
	StateConnected     = "connected"
	StateDisconnected  = "disconnected"
	StateError         = "error"
	StateReachable     = "reachable"
	StateUnreachable   = "unreachable"
	StateNotConfigured = "not_configured"
)

const backendPingTimeout = 3 * time.Second

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// CollectResult is the /health/json body.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	CPU           CPUInfo    `json:"cpu"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	RSS      int `json:"rss"`
	HeapUsed int `json:"heapUsed"`
}

type CPUInfo struct {
	LoadAvg []string `json:"loadAvg"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

func timed(fn func() error) (*int64, error) {
	start := time.Now()
	if err := fn(); err != nil {
		return nil, err
	}
	ms := time.Since(start).Milliseconds()
	return &ms, nil
}

func checkDB(db DBPinger) DepStatus {
	if db == nil {
		return DepStatus{Status: StateDisconnected}
	}
	ms, err := timed(db.Ping)
	if err != nil {
		return DepStatus{Status: StateError}
	}
	return DepStatus{Status: StateConnected, PingMs: ms}
}

// readTraffic loads the counters written by middleware.HealthMarker. It also returns the
// recorded start time, seeding it on first use.
func readTraffic(ctx context.Context, rdb *redis.Client) (TrafficInfo, int64) {
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startMs := time.Now().UnixMilli()

	vals, _ := rdb.MGet(ctx,
		middleware.KeyReqTotal,
		middleware.KeyReqErrors,
		middleware.KeyResTime,
		middleware.KeyResCount,
		middleware.KeyStartTime,
		middleware.KeyLastReq,
	).Result()
	str := func(i int) string {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				return s
			}
		}
		return ""
	}

	if t, err := strconv.ParseInt(str(4), 10, 64); err == nil {
		startMs = t
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(str(0))
	stats.FailedCount, _ = strconv.Atoi(str(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	if count, _ := strconv.Atoi(str(3)); count > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if last := str(5); last != "" {
		var lastReq map[string]interface{}
		_ = json.Unmarshal([]byte(last), &lastReq)
		stats.LastRequest = lastReq
	}
	return stats, startMs
}

// checkBackend reports whether the property backend answers at all. Any HTTP status counts.
func checkBackend(ctx context.Context, url string) DepStatus {
	if url == "" {
		return DepStatus{Status: StateNotConfigured}
	}
	ctx, cancel := context.WithTimeout(ctx, backendPingTimeout)
	defer cancel()
	ms, err := timed(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	})
	if err != nil {
		return DepStatus{Status: StateUnreachable}
	}
	return DepStatus{Status: StateReachable, PingMs: ms}
}

// CollectHealth gathers health data from Redis, the optional DB, and the property backend.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger, backendURL string) CollectResult {
	result := CollectResult{Dependencies: make(map[string]DepStatus)}

	dbDep := checkDB(db)
	result.Dependencies["database"] = dbDep

	redisDep := DepStatus{Status: StateDisconnected}
	result.Traffic = TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startMs := time.Now().UnixMilli()
	if rdb != nil {
		ms, err := timed(func() error { return rdb.Ping(ctx).Err() })
		if err != nil {
			redisDep = DepStatus{Status: StateError}
		} else {
			redisDep = DepStatus{Status: StateConnected, PingMs: ms}
			result.Traffic, startMs = readTraffic(ctx, rdb)
		}
	}
	result.Dependencies["redis"] = redisDep

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptimeSec := (time.Now().UnixMilli() - startMs) / 1000
	if uptimeSec < 0 {
		uptimeSec = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptimeSec,
		Memory:        MemoryInfo{RSS: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		CPU:           CPUInfo{LoadAvg: []string{"0.00", "0.00", "0.00"}},
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	backendDep := checkBackend(ctx, backendURL)
	result.Dependencies["backend"] = backendDep

	// Drafts live in Redis or the DB; one of them has to be up.
	storeUp := dbDep.Status == StateConnected || redisDep.Status == StateConnected
	if storeUp && backendDep.Status != StateUnreachable {
		result.Status = "ok"
	} else {
		result.Status = "issue"
	}
	return result
}
