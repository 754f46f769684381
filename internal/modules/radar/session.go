// README: Viewer session event loop owning the refresh policy, request sequencer, and snapshot.
package radar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crowdradar/internal/config"
	"crowdradar/internal/metrics"
	"crowdradar/internal/modules/area"
	"crowdradar/internal/modules/busyness"
	"crowdradar/internal/modules/location"
	"crowdradar/internal/modules/snapshot"
	"crowdradar/internal/types"
)

var ErrSessionClosed = errors.New("session closed")

// staleNotice is what the viewer sees for a failed fetch; the cause stays in the log.
const staleNotice = "nearby venues temporarily unavailable"

// Fetcher is the nearby venue query.
type Fetcher interface {
	Nearby(ctx context.Context, p types.Point) ([]busyness.PointOfInterest, error)
}

const outBuffer = 32

// Session serves one viewer. Run is the only goroutine that touches the
// policy, sequencer and snapshot; everything else reaches it through events.
type Session struct {
	ID types.ID

	fetcher Fetcher
	cfg     config.RadarConfig
	log     logrus.FieldLogger
	now     func() time.Time

	events  chan event
	changed chan struct{}
	area    chan area.Status
	out     chan Message
	done    chan struct{}

	// Owned by Run.
	ctx     context.Context
	policy  *location.RefreshPolicy
	seq     snapshot.Sequencer
	snap    snapshot.Snapshot
	raw     []busyness.PointOfInterest
	fetched bool
}

func NewSession(fetcher Fetcher, cfg config.RadarConfig, log logrus.FieldLogger) *Session {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	id := types.ID(uuid.NewString())
	return &Session{
		ID:      id,
		fetcher: fetcher,
		cfg:     cfg,
		log:     log.WithField("session", id),
		now:     time.Now,
		events:  make(chan event, outBuffer),
		changed: make(chan struct{}, 1),
		area:    make(chan area.Status, 1),
		out:     make(chan Message, outBuffer),
		done:    make(chan struct{}),
		policy:  location.NewRefreshPolicy(),
	}
}

// Out streams the messages to deliver to the viewer. It is closed when Run
// returns.
func (s *Session) Out() <-chan Message { return s.out }

// Observe queues a viewer location. Ticks are handled in call order, so
// callers must deliver them from a single goroutine.
func (s *Session) Observe(ctx context.Context, loc types.Point) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.events <- locationEvent{loc: loc}:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NotifyChanged asks the session to re-fetch at its last refresh point.
// Never blocks; signals arriving before the pending one is handled coalesce.
func (s *Session) NotifyChanged() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// PushArea queues an area status for the viewer, replacing any undelivered one.
func (s *Session) PushArea(st area.Status) {
	for {
		select {
		case s.area <- st:
			return
		default:
		}
		select {
		case <-s.area:
		default:
		}
	}
}

// Run processes events until ctx is done. The viewer track is reset and Out
// is closed on return.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(s.out)
	defer close(s.done)
	defer s.policy.Reset()
	s.ctx = ctx

	interval := s.cfg.ResolveInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			switch e := ev.(type) {
			case locationEvent:
				s.handleLocation(e.loc)
			case fetchDoneEvent:
				s.handleFetchDone(e)
			}
		case <-s.changed:
			if ref, ok := s.policy.LastRefresh(); ok {
				s.fetch(ref, TriggerChanged)
			}
		case st := <-s.area:
			s.emit(Message{Type: MessageArea, Area: &st})
		case <-ticker.C:
			s.reresolve()
		}
	}
}

func (s *Session) handleLocation(loc types.Point) {
	if !loc.Valid() {
		s.emit(Message{Type: MessageError, Error: fmt.Sprintf("location out of range: %v,%v", loc.Lat, loc.Lng)})
		return
	}
	ref, ok := s.policy.Observe(loc)
	if !ok {
		return
	}
	metrics.RefreshesTotal.Inc()
	at := ref.Location
	s.emit(Message{Type: MessageRefresh, Location: &at, MovedM: ref.Moved})
	s.fetch(ref.Location, TriggerMove)
}

// fetch runs the query off the loop and posts the completion back as an event.
func (s *Session) fetch(p types.Point, trigger Trigger) {
	seq := s.seq.Next()
	metrics.FetchesTotal.WithLabelValues(string(trigger)).Inc()
	ctx := s.ctx
	go func() {
		points, err := s.fetcher.Nearby(ctx, p)
		select {
		case s.events <- fetchDoneEvent{seq: seq, trigger: trigger, points: points, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (s *Session) handleFetchDone(e fetchDoneEvent) {
	log := s.log.WithFields(logrus.Fields{"seq": e.seq, "trigger": e.trigger})
	if e.seq <= s.seq.Applied() {
		metrics.StaleFetchesTotal.Inc()
		log.Debug("dropping stale fetch completion")
		return
	}
	if e.err != nil {
		metrics.FetchFailuresTotal.Inc()
		log.WithError(e.err).Warn("nearby fetch failed, keeping previous snapshot")
		s.emit(Message{Type: MessageStale, Seq: e.seq, Error: staleNotice})
		return
	}
	if !s.seq.Apply(e.seq) {
		metrics.StaleFetchesTotal.Inc()
		return
	}
	s.raw = e.points
	s.fetched = true
	s.apply(e.seq, true)
}

// reresolve re-runs resolution over the last batch so reports age into
// trend values without a new fetch. Nothing is sent if nothing changed.
func (s *Session) reresolve() {
	if !s.fetched {
		return
	}
	s.apply(s.seq.Applied(), false)
}

func (s *Session) apply(seq uint64, always bool) {
	res := snapshot.Reconcile(s.snap, s.raw, s.now().In(s.cfg.Location))
	for _, err := range res.Dropped {
		metrics.MalformedPointsTotal.Inc()
		s.log.WithError(err).Warn("dropping malformed point")
	}
	s.snap = res.Snapshot
	if !always && res.Diff.Empty() {
		return
	}
	diff := res.Diff
	s.emit(Message{Type: MessageSnapshot, Seq: seq, Points: res.Snapshot.Points(), Diff: &diff})
}

func (s *Session) emit(m Message) {
	select {
	case s.out <- m:
	case <-s.ctx.Done():
	}
}
