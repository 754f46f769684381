// README: Area status service polls the population feed and serves the cached readout.
package area

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"crowdradar/internal/config"
)

// Cache holds the last classified status per area.
type Cache interface {
	Get(ctx context.Context, area string) (Status, bool, error)
	Put(ctx context.Context, st Status) error
}

type Service struct {
	feed  Feed
	cache Cache
	cfg   config.AreaConfig
	log   logrus.FieldLogger
	now   func() time.Time

	mu   sync.RWMutex
	last *Status
}

func NewService(feed Feed, cache Cache, cfg config.AreaConfig, log logrus.FieldLogger) *Service {
	if cfg.Name == "" {
		cfg.Name = DefaultArea
	}
	return &Service{feed: feed, cache: cache, cfg: cfg, log: log, now: time.Now}
}

// Refresh polls the feed once, classifies the reading and caches it. Cache
// write failures are logged; the fresh status is still returned.
func (s *Service) Refresh(ctx context.Context) Status {
	st := FromFeed(s.feed.Fetch(ctx, s.cfg.Name))
	st.Area = s.cfg.Name
	st.ObservedAt = s.now().UTC()
	s.mu.Lock()
	s.last = &st
	s.mu.Unlock()
	if err := s.cache.Put(ctx, st); err != nil {
		s.log.WithError(err).WithField("area", st.Area).Warn("cache area status")
	}
	return st
}

// Current serves the cached status and polls the feed on a miss. When the
// cache cannot be read the last reading taken by this process is served,
// and the feed is only polled if there is none yet.
func (s *Service) Current(ctx context.Context) Status {
	st, ok, err := s.cache.Get(ctx, s.cfg.Name)
	if err != nil {
		s.log.WithError(err).Warn("read cached area status")
		if last, ok := s.lastReading(); ok {
			return last
		}
	}
	if ok {
		return st
	}
	return s.Refresh(ctx)
}

func (s *Service) lastReading() (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Status{}, false
	}
	return *s.last, true
}

// RunPoller refreshes the status every PollInterval until ctx is done and
// hands each reading to onUpdate, which may be nil.
func (s *Service) RunPoller(ctx context.Context, onUpdate func(Status)) {
	interval := s.cfg.PollInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st := s.Refresh(ctx)
		if onUpdate != nil {
			onUpdate(st)
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
