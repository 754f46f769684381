package radar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"crowdradar/internal/config"
	"crowdradar/internal/modules/area"
	"crowdradar/internal/modules/busyness"
	"crowdradar/internal/types"
)

func TestHub_RegisterReceivesLastArea(t *testing.T) {
	h := NewHub()
	h.BroadcastArea(area.Classify(75000))

	s := newTestSession(newGatedFetcher())
	h.Register(s)
	defer h.Unregister(s.ID)

	select {
	case st := <-s.area:
		if st.Label != area.LabelBusy {
			t.Errorf("label = %s, want BUSY", st.Label)
		}
	default:
		t.Fatal("new session did not receive the last area status")
	}
}

func TestHub_FanOut(t *testing.T) {
	h := NewHub()
	a := newTestSession(newGatedFetcher())
	b := newTestSession(newGatedFetcher())
	h.Register(a)
	h.Register(b)
	if h.Len() != 2 {
		t.Fatalf("Len = %d", h.Len())
	}

	h.NotifyChanged()
	h.NotifyChanged() // coalesces
	for _, s := range []*Session{a, b} {
		if len(s.changed) != 1 {
			t.Errorf("session %s pending changes = %d, want 1", s.ID, len(s.changed))
		}
	}

	h.BroadcastArea(area.Classify(20000))
	h.BroadcastArea(area.Classify(95000))
	for _, s := range []*Session{a, b} {
		if st := <-s.area; st.Label != area.LabelVeryBusy {
			t.Errorf("session %s area = %s, want latest VERY_BUSY", s.ID, st.Label)
		}
	}

	h.Unregister(a.ID)
	h.Unregister(a.ID)
	if h.Len() != 1 {
		t.Errorf("Len after unregister = %d", h.Len())
	}
}

type staticFetcher struct {
	points []busyness.PointOfInterest
	err    error
}

func (f staticFetcher) Nearby(ctx context.Context, p types.Point) ([]busyness.PointOfInterest, error) {
	return f.points, f.err
}

func TestService_Nearby(t *testing.T) {
	log, _ := test.NewNullLogger()
	f := staticFetcher{points: []busyness.PointOfInterest{
		reported("twosome", twosome, 5, 10*time.Minute),
		{ID: "broken"},
	}}
	svc := NewService(f, NewHub(), config.RadarConfig{Location: kst}, log)
	svc.now = func() time.Time { return sessNow }

	res, err := svc.Nearby(context.Background(), viewer)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(res.Snapshot) != 1 || res.Snapshot["twosome"].Busyness != 5 || len(res.Dropped) != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestService_NearbyError(t *testing.T) {
	log, _ := test.NewNullLogger()
	cause := errors.New("store down")
	svc := NewService(staticFetcher{err: cause}, NewHub(), config.RadarConfig{}, log)
	if _, err := svc.Nearby(context.Background(), viewer); !errors.Is(err, cause) {
		t.Errorf("expected fetch error, got %v", err)
	}
}

func TestService_OpenSession(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub()
	svc := NewService(staticFetcher{}, hub, config.RadarConfig{}, log)
	s, closeFn := svc.OpenSession()
	if s == nil || hub.Len() != 1 {
		t.Fatal("session not registered")
	}
	closeFn()
	if hub.Len() != 0 {
		t.Error("session not unregistered")
	}
}
