// README: Snapshot reconciler replaces the displayed point set from a fetched batch and diffs it.
package snapshot

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"crowdradar/internal/modules/busyness"
	"crowdradar/internal/types"
)

var ErrMalformedPoint = errors.New("malformed point")

// Snapshot is the displayed set of resolved points keyed by point ID.
type Snapshot map[types.ID]busyness.ResolvedPoint

// Points returns the snapshot as a slice ordered by ID.
func (s Snapshot) Points() []busyness.ResolvedPoint {
	out := make([]busyness.ResolvedPoint, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Diff lists what changed between two snapshots.
type Diff struct {
	Added   []busyness.ResolvedPoint `json:"added"`
	Updated []busyness.ResolvedPoint `json:"updated"`
	Removed []types.ID               `json:"removed"`
}

func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

type Result struct {
	Snapshot Snapshot
	Diff     Diff
	// Dropped holds one ErrMalformedPoint-wrapping error per rejected point.
	Dropped []error
}

// Reconcile resolves every point in batch at now and returns the batch as a
// full replacement for prev. Points absent from batch disappear. A point
// without an ID or a valid location is dropped and reported in Dropped; the
// rest of the batch still reconciles. For duplicate IDs the last one wins.
func Reconcile(prev Snapshot, batch []busyness.PointOfInterest, now time.Time) Result {
	next := make(Snapshot, len(batch))
	var dropped []error
	for i, p := range batch {
		if err := validate(p); err != nil {
			dropped = append(dropped, fmt.Errorf("batch[%d] %q: %w", i, p.ID, err))
			continue
		}
		next[p.ID] = busyness.ResolvePoint(p, now)
	}
	return Result{Snapshot: next, Diff: diff(prev, next), Dropped: dropped}
}

func validate(p busyness.PointOfInterest) error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedPoint)
	}
	if p.Location == nil {
		return fmt.Errorf("%w: missing location", ErrMalformedPoint)
	}
	if !p.Location.Valid() {
		return fmt.Errorf("%w: location out of range", ErrMalformedPoint)
	}
	return nil
}

func diff(prev, next Snapshot) Diff {
	var d Diff
	for id, p := range next {
		old, ok := prev[id]
		switch {
		case !ok:
			d.Added = append(d.Added, p)
		case old != p:
			d.Updated = append(d.Updated, p)
		}
	}
	for id := range prev {
		if _, ok := next[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	sort.Slice(d.Added, func(i, j int) bool { return d.Added[i].ID < d.Added[j].ID })
	sort.Slice(d.Updated, func(i, j int) bool { return d.Updated[i].ID < d.Updated[j].ID })
	sort.Slice(d.Removed, func(i, j int) bool { return d.Removed[i] < d.Removed[j] })
	return d
}
