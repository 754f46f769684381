package location

import (
	"testing"

	"crowdradar/internal/types"
)

var gangnam = types.Point{Lat: 37.4979, Lng: 127.0276}

func TestRefreshPolicy_FirstObservationRefreshes(t *testing.T) {
	p := NewRefreshPolicy()
	if p.State() != StateIdle {
		t.Fatalf("expected idle before first observation, got %s", p.State())
	}

	ev, ok := p.Observe(gangnam)
	if !ok {
		t.Fatal("expected refresh on first observation")
	}
	if ev.Location != gangnam {
		t.Errorf("refresh location = %v, want %v", ev.Location, gangnam)
	}
	if p.State() != StateTracking {
		t.Errorf("expected tracking after first observation, got %s", p.State())
	}
	ref, ok := p.LastRefresh()
	if !ok || ref != gangnam {
		t.Errorf("LastRefresh = %v (%v), want %v", ref, ok, gangnam)
	}
}

func TestRefreshPolicy_ThresholdSequence(t *testing.T) {
	p := NewRefreshPolicy()
	if _, ok := p.Observe(gangnam); !ok {
		t.Fatal("expected refresh on first observation")
	}

	// 50m from the reference: no refresh, reference unchanged.
	if _, ok := p.Observe(northOf(gangnam, 50)); ok {
		t.Fatal("50m move must not refresh")
	}
	if ref, _ := p.LastRefresh(); ref != gangnam {
		t.Fatalf("reference moved on sub-threshold observation: %v", ref)
	}

	// 150m from the original reference: refresh.
	far := northOf(gangnam, 150)
	ev, ok := p.Observe(far)
	if !ok {
		t.Fatal("150m move must refresh")
	}
	if ev.Location != far {
		t.Errorf("refresh location = %v, want %v", ev.Location, far)
	}
	if ev.Moved < 149 || ev.Moved > 151 {
		t.Errorf("Moved = %f, want ~150", ev.Moved)
	}

	// 60m from the new reference: no refresh.
	if _, ok := p.Observe(northOf(far, 60)); ok {
		t.Fatal("60m move from the new reference must not refresh")
	}
	if ref, _ := p.LastRefresh(); ref != far {
		t.Errorf("reference = %v, want %v", ref, far)
	}
}

func TestRefreshPolicy_AroundThreshold(t *testing.T) {
	p := NewRefreshPolicy()
	p.Observe(gangnam)
	if _, ok := p.Observe(northOf(gangnam, 99.5)); ok {
		t.Error("move below threshold must not refresh")
	}
	if _, ok := p.Observe(northOf(gangnam, 100.5)); !ok {
		t.Error("move above threshold must refresh")
	}
}

// Slow drift: many small steps must refresh once the cumulative distance from
// the reference crosses the threshold, not on each step.
func TestRefreshPolicy_SlowDriftAccumulates(t *testing.T) {
	p := NewRefreshPolicy()
	p.Observe(gangnam)

	refreshes := 0
	for i := 1; i <= 30; i++ {
		if _, ok := p.Observe(northOf(gangnam, float64(i)*7)); ok {
			refreshes++
		}
	}
	// 7m steps over 210m: refresh at 105m, then at 210m.
	if refreshes != 2 {
		t.Errorf("expected 2 refreshes for 210m drift in 7m steps, got %d", refreshes)
	}
}

// A burst of fixes that jitter around one spot must not emit anything after
// the first refresh.
func TestRefreshPolicy_BurstJitter(t *testing.T) {
	p := NewRefreshPolicy()
	p.Observe(gangnam)
	offsets := []float64{5, -3, 12, 40, -20, 80, 99, 0, 60}
	for _, off := range offsets {
		if _, ok := p.Observe(northOf(gangnam, off)); ok {
			t.Fatalf("jitter of %fm must not refresh", off)
		}
	}
	track := p.Track()
	if track.LastKnown == nil || *track.LastKnown != northOf(gangnam, 60) {
		t.Errorf("LastKnown = %v, want latest fix", track.LastKnown)
	}
	if track.LastRefresh == nil || *track.LastRefresh != gangnam {
		t.Errorf("LastRefresh = %v, want %v", track.LastRefresh, gangnam)
	}
}

func TestRefreshPolicy_Reset(t *testing.T) {
	p := NewRefreshPolicy()
	p.Observe(gangnam)
	p.Reset()
	if p.State() != StateIdle {
		t.Fatalf("expected idle after reset, got %s", p.State())
	}
	if _, ok := p.Observe(northOf(gangnam, 10)); !ok {
		t.Error("first observation after reset must refresh")
	}
}
