// README: Runner checks for the radar API; environment, HTTP contract, websocket flow, and throughput.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"crowdradar/internal/modules/radar"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	nearby := fmt.Sprintf("%s/api/venues/nearby?lat=%v&lng=%v", base, r.cfg.Lat, r.cfg.Lng)
	reports := fmt.Sprintf("%s/api/venues/%s/reports", base, r.cfg.VenueID)
	return []TestCase{
		{
			Name: "Env: Postgres venues table",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "dsn not configured"}
				}
				var exists bool
				err := r.db.QueryRow(ctx,
					"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", "venues",
				).Scan(&exists)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if !exists {
					return Result{Status: "FAIL", Note: "missing table: venues (run venue-seed)"}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Env: Redis venue index",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				n, err := r.redis.ZCard(ctx, "venues:geo").Result()
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("indexed=%d", n)}
			},
		},
		httpCase("API: health", http.MethodGet, base+"/health", nil, []int{200}),
		httpCase("API: nearby", http.MethodGet, nearby, nil, []int{200}),
		httpCase("API: nearby without coordinates -> 400", http.MethodGet, base+"/api/venues/nearby", nil, []int{400}),
		httpCase("API: report level 7 -> 400", http.MethodPost, reports, map[string]any{"level": 7}, []int{400}),
		httpCase("API: report level 5", http.MethodPost, reports, map[string]any{"level": 5}, []int{202, 404}),
		httpCase("API: area status", http.MethodGet, base+"/api/area/status", nil, []int{200}),
		{
			Name: "WS: first location yields refresh then snapshot",
			Run:  func(ctx context.Context, r *Runner) Result { return wsFlow(ctx, r) },
		},
		{
			Name: "Load: nearby throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return load(ctx, r, http.MethodGet, nearby, nil)
			},
		},
		{
			Name: "Load: report throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return load(ctx, r, http.MethodPost, reports, map[string]any{"level": 2})
			},
		},
	}
}

func httpCase(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			status, err := r.do(ctx, method, url, body)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			res := Result{Latency: time.Since(start), Note: fmt.Sprintf("status=%d", status)}
			if contains(okStatuses, status) {
				res.Status = "PASS"
			} else {
				res.Status = "FAIL"
			}
			return res
		},
	}
}

func (r *Runner) do(ctx context.Context, method, url string, body any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}

func wsFlow(ctx context.Context, r *Runner) Result {
	url := "ws" + strings.TrimPrefix(r.cfg.BaseURL, "http") + "/ws/radar"
	start := time.Now()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	if err := conn.WriteJSON(map[string]any{"type": "location", "lat": r.cfg.Lat, "lng": r.cfg.Lng}); err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	want := []radar.MessageType{radar.MessageRefresh, radar.MessageSnapshot}
	points := 0
	for len(want) > 0 {
		var m radar.Message
		if err := conn.ReadJSON(&m); err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
		if m.Type == radar.MessageArea {
			continue
		}
		if m.Type != want[0] {
			return Result{Status: "FAIL", Note: fmt.Sprintf("got %s, want %s", m.Type, want[0])}
		}
		points = len(m.Points)
		want = want[1:]
	}
	return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("points=%d", points)}
}

func load(ctx context.Context, r *Runner, method, url string, payload any) Result {
	if r.cfg.Duration <= 0 {
		return Result{Status: "SKIP", Note: "duration=0"}
	}
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				_, err := r.do(ctx, method, url, payload)
				mu.Lock()
				if err != nil {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}
