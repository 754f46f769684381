// README: Entry point; loads config, wires stores and services, starts HTTP server, area poller, and change fan-out.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"crowdradar/internal/config"
	httptransport "crowdradar/internal/http"
	"crowdradar/internal/infra"
	"crowdradar/internal/metrics"
	"crowdradar/internal/modules/area"
	"crowdradar/internal/modules/radar"
	"crowdradar/internal/modules/report"
	"crowdradar/internal/modules/venue"
	"crowdradar/internal/notify"
)

func main() {
	cfg, err := config.Load()
	log := infra.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	natsConn, err := infra.NewNATS(cfg.NATS.URL, log)
	if err != nil {
		log.Fatal(err)
	}
	defer natsConn.Close()
	bus := notify.NewBus(natsConn)

	venueStore := venue.NewStore(dbPool, redisClient)
	venueSvc := venue.NewService(venueStore, cfg.Radar)

	reportSvc := report.NewService(report.NewIngestor(), venueStore, bus, log.WithField("prefix", "report"))

	hub := radar.NewHub()
	radarSvc := radar.NewService(venueSvc, hub, cfg.Radar, log.WithField("prefix", "radar"))

	unsubscribe, err := bus.SubscribeChanged(hub.NotifyChanged)
	if err != nil {
		log.Fatal(err)
	}
	defer unsubscribe()

	if cfg.Area.SeoulAPIKey == "" {
		log.Warn("SEOUL_API_KEY not set; area status will use backup data")
	}
	feed := area.NewSeoulFeed(cfg.Area.SeoulAPIKey, log.WithField("prefix", "feed"))
	feed.OnFailure = func(error) { metrics.FeedFailuresTotal.Inc() }
	areaSvc := area.NewService(feed, area.NewStore(redisClient), cfg.Area, log.WithField("prefix", "area"))
	go areaSvc.RunPoller(ctx, hub.BroadcastArea)

	server := httptransport.NewServer(cfg.HTTP.Addr, cfg.HTTP.CORSOrigins, httptransport.RouterDeps{
		Nearby:   radarSvc,
		Reports:  reportSvc,
		Area:     areaSvc,
		Sessions: radarSvc,
		Log:      log.WithField("prefix", "http"),
	})

	log.Infof("crowdradar listening on %s", cfg.HTTP.Addr)
	if err := server.Run(ctx); err != nil {
		log.Fatal(err)
	}
	log.Info("shut down")
}
