package venue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"crowdradar/internal/types"
)

func newIntegrationStore(t *testing.T) (*Store, context.Context) {
	dsn := os.Getenv("RADAR_DB_DSN")
	redisAddr := os.Getenv("RADAR_REDIS_ADDR")
	if dsn == "" || redisAddr == "" {
		t.Skip("RADAR_DB_DSN or RADAR_REDIS_ADDR not set; skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(db.Close)
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	t.Cleanup(func() { rdb.Close() })

	store := NewStore(db, rdb)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return store, ctx
}

func TestStore_UpsertQueryAndReport(t *testing.T) {
	store, ctx := newIntegrationStore(t)

	suffix := time.Now().UnixNano()
	near := Venue{
		ID:       types.ID(fmt.Sprintf("test-near-%d", suffix)),
		Name:     "Twosome Place",
		Location: types.Point{Lat: 37.4985, Lng: 127.0260},
		Trend:    make([]int, 24),
	}
	far := Venue{
		ID:       types.ID(fmt.Sprintf("test-far-%d", suffix)),
		Name:     "Seoul City Hall Cafe",
		Location: types.Point{Lat: 37.5665, Lng: 126.9780},
	}
	for _, v := range []Venue{near, far} {
		if err := store.Upsert(ctx, v); err != nil {
			t.Fatalf("upsert %s: %v", v.ID, err)
		}
	}

	reportedAt := time.Now().UTC().Truncate(time.Second)
	if err := store.UpdateReport(ctx, near.ID, 5, reportedAt); err != nil {
		t.Fatalf("update report: %v", err)
	}

	points, err := store.QueryNearby(ctx, types.Point{Lat: 37.4979, Lng: 127.0276}, 1000)
	if err != nil {
		t.Fatalf("query nearby: %v", err)
	}
	var found bool
	for _, p := range points {
		if p.ID == far.ID {
			t.Errorf("venue 8km away returned within 1km")
		}
		if p.ID != near.ID {
			continue
		}
		found = true
		if p.ReportValue == nil || *p.ReportValue != 5 {
			t.Errorf("report = %v, want 5", p.ReportValue)
		}
		if p.ReportedAt == nil || !p.ReportedAt.Equal(reportedAt) {
			t.Errorf("reported at = %v, want %v", p.ReportedAt, reportedAt)
		}
		if len(p.HourlyTrend) != 24 {
			t.Errorf("trend length = %d", len(p.HourlyTrend))
		}
	}
	if !found {
		t.Fatal("nearby venue not returned")
	}
}

func TestStore_UpdateReportUnknownVenue(t *testing.T) {
	store, ctx := newIntegrationStore(t)
	err := store.UpdateReport(ctx, "does-not-exist", 5, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
