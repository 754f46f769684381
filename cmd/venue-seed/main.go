// README: Seeds venues from the demo set or Google Places, imports trends, and rebuilds the GEO index.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"crowdradar/internal/config"
	"crowdradar/internal/infra"
	"crowdradar/internal/modules/location"
	"crowdradar/internal/modules/venue"
	"crowdradar/internal/notify"
	"crowdradar/internal/types"
)

type seedConfig struct {
	Lat       float64
	Lng       float64
	RadiusM   uint
	Demo      bool
	Places    bool
	TrendFile string
	BarsFile  string
	Reindex   bool
	Timeout   time.Duration
}

func main() {
	cfg, err := config.Load()
	log := infra.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	var sc seedConfig
	flag.Float64Var(&sc.Lat, "lat", location.FallbackCenter.Lat, "Search center latitude")
	flag.Float64Var(&sc.Lng, "lng", location.FallbackCenter.Lng, "Search center longitude")
	flag.UintVar(&sc.RadiusM, "radius", 1000, "Places search radius in meters")
	flag.BoolVar(&sc.Demo, "demo", false, "Seed the built-in Gangnam demo cafes")
	flag.BoolVar(&sc.Places, "places", false, "Seed cafes from Google Places (needs GOOGLE_MAPS_API_KEY)")
	flag.StringVar(&sc.TrendFile, "trends", "", "JSON file mapping venue id to popular-times days")
	flag.StringVar(&sc.BarsFile, "bars", "", "JSON file mapping venue id to one popular-times graph, bars from 06:00")
	flag.BoolVar(&sc.Reindex, "reindex", false, "Rebuild the Redis GEO index from Postgres")
	flag.DurationVar(&sc.Timeout, "timeout", 2*time.Minute, "Total timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), sc.Timeout)
	defer cancel()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()
	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	store := venue.NewStore(dbPool, redisClient)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	var venues []venue.Venue
	if sc.Demo {
		venues = append(venues, venue.DemoVenues()...)
	}
	if sc.Places {
		if cfg.Maps.APIKey == "" {
			log.Fatal("GOOGLE_MAPS_API_KEY is required for -places")
		}
		places, err := venue.NewPlacesSource(cfg.Maps.APIKey)
		if err != nil {
			log.Fatal(err)
		}
		found, err := places.Nearby(ctx, types.Point{Lat: sc.Lat, Lng: sc.Lng}, sc.RadiusM)
		if err != nil {
			log.WithError(err).Warn("places search stopped early")
		}
		log.Infof("places returned %d cafes", len(found))
		venues = append(venues, found...)
	}

	changed := upsertAll(ctx, store, venues, log) > 0

	if sc.TrendFile != "" {
		n, err := importTrends(ctx, store, sc.TrendFile, venue.AverageWeeklyTrend, log)
		if err != nil {
			log.Fatalf("import trends: %v", err)
		}
		changed = changed || n > 0
	}
	if sc.BarsFile != "" {
		fromBars := func(bars []int) ([]int, error) { return venue.TrendFromBars(bars), nil }
		n, err := importTrends(ctx, store, sc.BarsFile, fromBars, log)
		if err != nil {
			log.Fatalf("import bars: %v", err)
		}
		changed = changed || n > 0
	}

	if sc.Reindex {
		n, err := store.RebuildIndex(ctx)
		if err != nil {
			log.Fatalf("rebuild index: %v", err)
		}
		log.Infof("indexed %d venues", n)
	}

	if changed {
		announce(ctx, cfg.NATS.URL, log)
	}
}

// venueWriter is the part of venue.Store the seeder writes through.
type venueWriter interface {
	Upsert(ctx context.Context, v venue.Venue) error
	SetTrend(ctx context.Context, id types.ID, trend []int) error
}

// upsertAll writes venues and returns how many were stored.
func upsertAll(ctx context.Context, store venueWriter, venues []venue.Venue, log logrus.FieldLogger) int {
	n := 0
	for _, v := range venues {
		if err := store.Upsert(ctx, v); err != nil {
			log.WithError(err).WithField("venue", v.ID).Error("upsert failed")
			continue
		}
		n++
	}
	if len(venues) > 0 {
		log.Infof("upserted %d of %d venues", n, len(venues))
	}
	return n
}

// importTrends reads a JSON object keyed by venue id, converts each value
// with build and stores the resulting trend. Days files hold
// {"<id>": [[24 percentages], ...]}; bars files hold {"<id>": [percentages]}.
func importTrends[T any](ctx context.Context, store venueWriter, path string, build func(T) ([]int, error), log logrus.FieldLogger) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var byVenue map[string]T
	if err := json.Unmarshal(raw, &byVenue); err != nil {
		return 0, err
	}
	n := 0
	for id, in := range byVenue {
		trend, err := build(in)
		if err != nil {
			log.WithError(err).WithField("venue", id).Warn("skipping trend")
			continue
		}
		if err := store.SetTrend(ctx, types.ID(id), trend); err != nil {
			log.WithError(err).WithField("venue", id).Warn("store trend")
			continue
		}
		n++
	}
	log.Infof("imported %d trends from %s", n, path)
	return n, nil
}

// announce tells running radar servers to re-fetch. Best effort.
func announce(ctx context.Context, url string, log logrus.FieldLogger) {
	nc, err := infra.NewNATS(url, log)
	if err != nil {
		log.WithError(err).Warn("skipping change notification")
		return
	}
	defer nc.Close()
	if err := notify.NewBus(nc).PublishChanged(ctx); err != nil {
		log.WithError(err).Warn("publish change")
		return
	}
	if err := nc.Flush(); err != nil {
		log.WithError(err).Warn("flush change notification")
	}
}
