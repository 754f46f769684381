// README: Venue store backed by PostgreSQL rows and a Redis GEO index for radius queries.
package venue

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"crowdradar/internal/modules/busyness"
	"crowdradar/internal/types"
)

const venueGeoKey = "venues:geo"

// Schema creates the venues table. Applied by venue-seed.
const Schema = `
CREATE TABLE IF NOT EXISTS venues (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    lat              DOUBLE PRECISION,
    lng              DOUBLE PRECISION,
    current_report   INTEGER,
    last_reported_at TIMESTAMPTZ,
    busyness_trend   INTEGER[]
)`

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	return err
}

// QueryNearby returns the venues within radiusM meters of p. Candidates come
// from the GEO index, rows from Postgres. Venues indexed but missing from
// Postgres are skipped.
func (s *Store) QueryNearby(ctx context.Context, p types.Point, radiusM float64) ([]busyness.PointOfInterest, error) {
	ids, err := s.redis.GeoSearch(ctx, venueGeoKey, &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusM,
		RadiusUnit: "m",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geo search: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, lat, lng, current_report, last_reported_at, busyness_trend
		FROM venues
		WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("load venues: %w", err)
	}
	defer rows.Close()

	var out []busyness.PointOfInterest
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPoint(row pgx.Row) (busyness.PointOfInterest, error) {
	var (
		p          busyness.PointOfInterest
		lat, lng   *float64
		report     *int
		reportedAt *time.Time
		trend      []int
	)
	if err := row.Scan(&p.ID, &p.Name, &lat, &lng, &report, &reportedAt, &trend); err != nil {
		return p, fmt.Errorf("scan venue: %w", err)
	}
	if lat != nil && lng != nil {
		p.Location = &types.Point{Lat: *lat, Lng: *lng}
	}
	p.ReportValue = report
	p.ReportedAt = reportedAt
	p.HourlyTrend = trend
	return p, nil
}

// Upsert writes the venue row and its GEO index entry. Existing reports are
// kept unless v carries a seed level.
func (s *Store) Upsert(ctx context.Context, v Venue) error {
	var seed *int
	var seededAt *time.Time
	if v.Seed > 0 {
		lvl, now := v.Seed, time.Now().UTC()
		seed, seededAt = &lvl, &now
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO venues (id, name, lat, lng, current_report, last_reported_at, busyness_trend)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			current_report = COALESCE(EXCLUDED.current_report, venues.current_report),
			last_reported_at = COALESCE(EXCLUDED.last_reported_at, venues.last_reported_at),
			busyness_trend = COALESCE(EXCLUDED.busyness_trend, venues.busyness_trend)`,
		string(v.ID), v.Name, v.Location.Lat, v.Location.Lng, seed, seededAt, v.Trend,
	)
	if err != nil {
		return fmt.Errorf("upsert venue %s: %w", v.ID, err)
	}
	return s.index(ctx, v.ID, v.Location)
}

// UpdateReport overwrites the current report of a venue. Last writer wins.
func (s *Store) UpdateReport(ctx context.Context, id types.ID, level int, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE venues SET current_report = $2, last_reported_at = $3
		WHERE id = $1`, string(id), level, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetTrend(ctx context.Context, id types.ID, trend []int) error {
	tag, err := s.db.Exec(ctx, `UPDATE venues SET busyness_trend = $2 WHERE id = $1`, string(id), trend)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RebuildIndex re-adds every venue with coordinates to the GEO index and
// returns how many were indexed.
func (s *Store) RebuildIndex(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx, `SELECT id, lat, lng FROM venues WHERE lat IS NOT NULL AND lng IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var locs []*redis.GeoLocation
	for rows.Next() {
		var id string
		var lat, lng float64
		if err := rows.Scan(&id, &lat, &lng); err != nil {
			return 0, err
		}
		locs = append(locs, &redis.GeoLocation{Name: id, Latitude: lat, Longitude: lng})
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(locs) == 0 {
		return 0, nil
	}
	if err := s.redis.GeoAdd(ctx, venueGeoKey, locs...).Err(); err != nil {
		return 0, err
	}
	return len(locs), nil
}

func (s *Store) index(ctx context.Context, id types.ID, p types.Point) error {
	return s.redis.GeoAdd(ctx, venueGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
}
