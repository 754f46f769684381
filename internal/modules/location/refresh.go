// README: Proximity refresh policy decides when viewer movement warrants a re-fetch.
package location

import "crowdradar/internal/types"

// RefreshPolicy is a two-state machine (idle, tracking) fed with viewer
// location observations in arrival order. It is owned by a single session
// and is not safe for concurrent use.
type RefreshPolicy struct {
	track Track
}

func NewRefreshPolicy() *RefreshPolicy {
	return &RefreshPolicy{}
}

// Observe records a new viewer location and reports whether a refresh must
// be issued. The first observation always refreshes; afterwards only a move
// of more than RefreshThresholdMeters from the last refresh point does.
// Sub-threshold moves leave the reference point untouched.
func (p *RefreshPolicy) Observe(loc types.Point) (Refresh, bool) {
	known := loc
	p.track.LastKnown = &known

	if p.track.LastRefresh == nil {
		ref := loc
		p.track.LastRefresh = &ref
		return Refresh{Location: loc}, true
	}

	moved := Distance(loc, *p.track.LastRefresh)
	if moved <= RefreshThresholdMeters {
		return Refresh{}, false
	}
	ref := loc
	p.track.LastRefresh = &ref
	return Refresh{Location: loc, Moved: moved}, true
}

func (p *RefreshPolicy) State() State {
	if p.track.LastRefresh == nil {
		return StateIdle
	}
	return StateTracking
}

// Track returns a copy of the current viewer track.
func (p *RefreshPolicy) Track() Track {
	var t Track
	if p.track.LastKnown != nil {
		v := *p.track.LastKnown
		t.LastKnown = &v
	}
	if p.track.LastRefresh != nil {
		v := *p.track.LastRefresh
		t.LastRefresh = &v
	}
	return t
}

// LastRefresh returns the reference point of the last emitted refresh.
func (p *RefreshPolicy) LastRefresh() (types.Point, bool) {
	if p.track.LastRefresh == nil {
		return types.Point{}, false
	}
	return *p.track.LastRefresh, true
}

// Reset drops all track state, returning the policy to idle.
func (p *RefreshPolicy) Reset() {
	p.track = Track{}
}
