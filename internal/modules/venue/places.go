// README: Google Places nearby search used to seed cafes around a point.
package venue

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"crowdradar/internal/types"
)

const pageTokenDelay = 2 * time.Second

// PlacesSource discovers venues through the Google Places API.
type PlacesSource struct {
	client *maps.Client
}

func NewPlacesSource(apiKey string) (*PlacesSource, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesSource{client: client}, nil
}

// Nearby returns the cafes within radiusM meters of center, keyed by place
// ID. Follows result pages until the API stops returning a token.
func (s *PlacesSource) Nearby(ctx context.Context, center types.Point, radiusM uint) ([]Venue, error) {
	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: center.Lat, Lng: center.Lng},
		Radius:   radiusM,
		Type:     maps.PlaceTypeCafe,
		Language: "en",
	}

	seen := make(map[string]bool)
	var out []Venue
	for {
		resp, err := s.client.NearbySearch(ctx, req)
		if err != nil {
			return out, fmt.Errorf("places api error: %w", err)
		}
		for _, r := range resp.Results {
			if r.PlaceID == "" || seen[r.PlaceID] {
				continue
			}
			seen[r.PlaceID] = true
			out = append(out, Venue{
				ID:   types.ID(r.PlaceID),
				Name: r.Name,
				Location: types.Point{
					Lat: r.Geometry.Location.Lat,
					Lng: r.Geometry.Location.Lng,
				},
			})
		}
		if resp.NextPageToken == "" {
			break
		}
		// Page tokens take a moment to become valid.
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(pageTokenDelay):
		}
		req = &maps.NearbySearchRequest{PageToken: resp.NextPageToken}
	}
	return out, nil
}
