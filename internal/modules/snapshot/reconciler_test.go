package snapshot

import (
	"errors"
	"testing"
	"time"

	"crowdradar/internal/modules/busyness"
	"crowdradar/internal/types"
)

var now = time.Date(2026, 3, 14, 18, 0, 0, 0, time.FixedZone("KST", 9*60*60))

func point(id string, lat, lng float64) busyness.PointOfInterest {
	loc := types.Point{Lat: lat, Lng: lng}
	return busyness.PointOfInterest{ID: types.ID(id), Name: id, Location: &loc}
}

func withReport(p busyness.PointOfInterest, level int, age time.Duration) busyness.PointOfInterest {
	at := now.Add(-age)
	p.ReportValue = &level
	p.ReportedAt = &at
	return p
}

func TestReconcile_EmptyBatchClearsSnapshot(t *testing.T) {
	prev := Reconcile(nil, []busyness.PointOfInterest{point("a", 37.5, 127.0)}, now).Snapshot

	res := Reconcile(prev, nil, now)
	if len(res.Snapshot) != 0 {
		t.Fatalf("expected empty snapshot, got %v", res.Snapshot)
	}
	if len(res.Diff.Removed) != 1 || res.Diff.Removed[0] != "a" {
		t.Errorf("expected a removed, got %+v", res.Diff)
	}
}

func TestReconcile_TotalReplace(t *testing.T) {
	prev := Reconcile(nil, []busyness.PointOfInterest{
		point("a", 37.4978, 127.0286),
		point("b", 37.4971, 127.0282),
	}, now).Snapshot

	res := Reconcile(prev, []busyness.PointOfInterest{
		withReport(point("b", 37.4971, 127.0282), 9, 5*time.Minute),
		point("c", 37.4992, 127.0295),
	}, now)

	if len(res.Snapshot) != 2 {
		t.Fatalf("expected 2 points, got %d", len(res.Snapshot))
	}
	if _, ok := res.Snapshot["a"]; ok {
		t.Error("point out of range must disappear")
	}
	if got := res.Snapshot["b"].Busyness; got != 9 {
		t.Errorf("b busyness = %d, want 9", got)
	}
	d := res.Diff
	if len(d.Added) != 1 || d.Added[0].ID != "c" {
		t.Errorf("Added = %+v", d.Added)
	}
	if len(d.Updated) != 1 || d.Updated[0].ID != "b" {
		t.Errorf("Updated = %+v", d.Updated)
	}
	if len(d.Removed) != 1 || d.Removed[0] != "a" {
		t.Errorf("Removed = %+v", d.Removed)
	}
}

func TestReconcile_UnchangedPointNotInDiff(t *testing.T) {
	batch := []busyness.PointOfInterest{point("a", 37.5, 127.0)}
	prev := Reconcile(nil, batch, now).Snapshot
	res := Reconcile(prev, batch, now)
	if !res.Diff.Empty() {
		t.Errorf("expected empty diff, got %+v", res.Diff)
	}
}

func TestReconcile_MalformedPointsDropped(t *testing.T) {
	noLoc := busyness.PointOfInterest{ID: "noloc", Name: "no location"}
	noID := point("", 37.5, 127.0)
	badLoc := point("bad", 123, 127.0)

	res := Reconcile(nil, []busyness.PointOfInterest{noLoc, point("ok", 37.5, 127.0), noID, badLoc}, now)

	if len(res.Snapshot) != 1 {
		t.Fatalf("expected only the valid point, got %v", res.Snapshot)
	}
	if _, ok := res.Snapshot["ok"]; !ok {
		t.Error("valid point missing")
	}
	if len(res.Dropped) != 3 {
		t.Fatalf("expected 3 dropped, got %d", len(res.Dropped))
	}
	for _, err := range res.Dropped {
		if !errors.Is(err, ErrMalformedPoint) {
			t.Errorf("dropped error %v does not wrap ErrMalformedPoint", err)
		}
	}
}

func TestReconcile_MissingOptionalFieldsUseDefault(t *testing.T) {
	res := Reconcile(nil, []busyness.PointOfInterest{point("a", 37.5, 127.0)}, now)
	p := res.Snapshot["a"]
	if p.Busyness != busyness.DefaultLevel || p.Band != busyness.BandLow {
		t.Errorf("unexpected resolution: %+v", p)
	}
}

func TestReconcile_DuplicateIDLastWins(t *testing.T) {
	res := Reconcile(nil, []busyness.PointOfInterest{
		withReport(point("a", 37.5, 127.0), 2, time.Minute),
		withReport(point("a", 37.5, 127.0), 9, time.Minute),
	}, now)
	if len(res.Snapshot) != 1 || res.Snapshot["a"].Busyness != 9 {
		t.Errorf("unexpected snapshot: %v", res.Snapshot)
	}
}

// Re-resolving the same batch later ages a fresh report back to the default.
func TestReconcile_ReResolveAgesReports(t *testing.T) {
	batch := []busyness.PointOfInterest{withReport(point("a", 37.5, 127.0), 9, 50*time.Minute)}
	prev := Reconcile(nil, batch, now).Snapshot
	if prev["a"].Busyness != 9 {
		t.Fatalf("expected fresh report, got %+v", prev["a"])
	}
	res := Reconcile(prev, batch, now.Add(15*time.Minute))
	if res.Snapshot["a"].Busyness != busyness.DefaultLevel {
		t.Errorf("expected aged report to fall back, got %+v", res.Snapshot["a"])
	}
	if len(res.Diff.Updated) != 1 {
		t.Errorf("expected one update, got %+v", res.Diff)
	}
}

func TestSnapshot_PointsSorted(t *testing.T) {
	s := Reconcile(nil, []busyness.PointOfInterest{
		point("c", 37.5, 127.0), point("a", 37.5, 127.0), point("b", 37.5, 127.0),
	}, now).Snapshot
	pts := s.Points()
	if len(pts) != 3 || pts[0].ID != "a" || pts[1].ID != "b" || pts[2].ID != "c" {
		t.Errorf("unexpected order: %+v", pts)
	}
}
