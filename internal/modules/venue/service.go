// README: Venue service answers nearby queries for the radar and seeds venues.
package venue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crowdradar/internal/config"
	"crowdradar/internal/metrics"
	"crowdradar/internal/modules/busyness"
	"crowdradar/internal/modules/location"
	"crowdradar/internal/types"
)

var (
	ErrNotFound         = errors.New("venue not found")
	ErrStoreQueryFailed = errors.New("venue store query failed")
	ErrBadRequest       = errors.New("bad request")
)

// PointStore is the read side of the venue store.
type PointStore interface {
	QueryNearby(ctx context.Context, p types.Point, radiusM float64) ([]busyness.PointOfInterest, error)
}

type Service struct {
	store PointStore
	cfg   config.RadarConfig
}

func NewService(store PointStore, cfg config.RadarConfig) *Service {
	return &Service{store: store, cfg: cfg}
}

// Nearby returns the raw venues around p, closest first. Any store failure
// is wrapped in ErrStoreQueryFailed. Records without a location are passed
// through so the reconciler can drop and count them.
func (s *Service) Nearby(ctx context.Context, p types.Point) ([]busyness.PointOfInterest, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: coordinate out of range", ErrBadRequest)
	}
	start := time.Now()
	points, err := s.store.QueryNearby(ctx, p, s.cfg.NearbyRadiusM)
	metrics.FetchDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreQueryFailed, err)
	}
	location.SortByDistance(points, func(v busyness.PointOfInterest) float64 {
		if v.Location == nil {
			return 0
		}
		return location.Distance(p, *v.Location)
	})
	return points, nil
}
