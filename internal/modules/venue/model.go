// README: Venue records as stored in Postgres and indexed in Redis GEO.
package venue

import (
	"crowdradar/internal/types"
)

// Venue is a seeded point of interest. Reports are written separately
// through UpdateReport.
type Venue struct {
	ID       types.ID
	Name     string
	Location types.Point
	// Trend is the 24-hour busyness curve; nil when unknown.
	Trend []int
	// Seed is the demo report level applied when seeding; zero for none.
	Seed int
}
