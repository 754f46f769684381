// README: Point-of-interest input records and the resolved view shown on the map.
package busyness

import (
	"time"

	"crowdradar/internal/types"
)

const (
	MinLevel = 0
	MaxLevel = 10

	// TrendHours is the length of an hourly trend curve, one entry per hour of day.
	TrendHours = 24
)

// PointOfInterest is a venue as read from the point store. Optional fields
// are nil when absent.
type PointOfInterest struct {
	ID          types.ID
	Name        string
	Location    *types.Point
	ReportValue *int
	ReportedAt  *time.Time
	HourlyTrend []int
}

type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Source records which resolution rule produced a displayed value.
type Source string

const (
	SourceReport  Source = "report"
	SourceTrend   Source = "trend"
	SourceDefault Source = "default"
)

// ResolvedPoint is the derived, display-ready view of a point of interest.
type ResolvedPoint struct {
	ID       types.ID    `json:"id"`
	Name     string      `json:"name"`
	Location types.Point `json:"location"`
	Busyness int         `json:"busyness"`
	Band     Band        `json:"band"`
	Color    string      `json:"color"`
	Source   Source      `json:"source"`
}
