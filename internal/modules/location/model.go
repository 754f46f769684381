// README: Viewer track state and refresh events for the proximity refresh policy.
package location

import "crowdradar/internal/types"

// RefreshThresholdMeters is how far a viewer must move from the last refresh
// point before nearby venues are fetched again.
const RefreshThresholdMeters = 100.0

// FallbackCenter is Seoul City Hall, used when a viewer cannot be located.
var FallbackCenter = types.Point{Lat: 37.5665, Lng: 126.9780}

type State string

const (
	StateIdle     State = "idle"
	StateTracking State = "tracking"
)

// Track is the per-session viewer state. LastRefresh only moves when a
// refresh is emitted.
type Track struct {
	LastKnown   *types.Point
	LastRefresh *types.Point
}

// Refresh is emitted when the nearby set must be fetched again at Location.
type Refresh struct {
	Location types.Point
	// Moved is the distance from the previous refresh point; zero for the first.
	Moved float64
}
