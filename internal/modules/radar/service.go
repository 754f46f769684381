// README: Radar service resolves one-shot nearby views and opens viewer sessions.
package radar

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"crowdradar/internal/config"
	"crowdradar/internal/metrics"
	"crowdradar/internal/modules/snapshot"
	"crowdradar/internal/types"
)

type Service struct {
	fetcher Fetcher
	hub     *Hub
	cfg     config.RadarConfig
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewService(fetcher Fetcher, hub *Hub, cfg config.RadarConfig, log logrus.FieldLogger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Service{fetcher: fetcher, hub: hub, cfg: cfg, log: log, now: time.Now}
}

// Nearby fetches and resolves the venues around p without keeping any state.
// Fetch errors are returned unchanged.
func (s *Service) Nearby(ctx context.Context, p types.Point) (snapshot.Result, error) {
	points, err := s.fetcher.Nearby(ctx, p)
	if err != nil {
		return snapshot.Result{}, err
	}
	res := snapshot.Reconcile(nil, points, s.now().In(s.cfg.Location))
	for _, err := range res.Dropped {
		metrics.MalformedPointsTotal.Inc()
		s.log.WithError(err).Warn("dropping malformed point")
	}
	return res, nil
}

// OpenSession creates a session registered with the hub. The caller runs it
// and must call the returned close func when Run returns.
func (s *Service) OpenSession() (*Session, func()) {
	sess := NewSession(s.fetcher, s.cfg, s.log)
	s.hub.Register(sess)
	return sess, func() { s.hub.Unregister(sess.ID) }
}
