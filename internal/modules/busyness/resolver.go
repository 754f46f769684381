// README: Busyness resolver picks the displayed value from fresh reports, hourly trends, or the quiet default.
package busyness

import "time"

const (
	// FreshnessWindow is how long a user report overrides the trend.
	FreshnessWindow = 60 * time.Minute
	// DefaultLevel is shown when a point has neither a fresh report nor a trend.
	DefaultLevel = 3
)

// Resolve returns the busyness to display for p at now. now must be in the
// viewer's local time zone since the trend is indexed by wall-clock hour.
// The result depends on now and must not be cached.
func Resolve(p PointOfInterest, now time.Time) int {
	level, _ := resolve(p, now)
	return level
}

func resolve(p PointOfInterest, now time.Time) (int, Source) {
	if p.ReportValue != nil && p.ReportedAt != nil && now.Sub(*p.ReportedAt) < FreshnessWindow {
		return clamp(*p.ReportValue), SourceReport
	}
	if len(p.HourlyTrend) == TrendHours {
		return clamp(p.HourlyTrend[now.Hour()]), SourceTrend
	}
	return DefaultLevel, SourceDefault
}

// ResolvePoint builds the display view of p. The caller must have checked
// that p has a location.
func ResolvePoint(p PointOfInterest, now time.Time) ResolvedPoint {
	level, src := resolve(p, now)
	band := BandFor(level)
	rp := ResolvedPoint{
		ID:       p.ID,
		Name:     p.Name,
		Busyness: level,
		Band:     band,
		Color:    band.Color(),
		Source:   src,
	}
	if p.Location != nil {
		rp.Location = *p.Location
	}
	return rp
}

// BandFor maps a busyness level to its severity band: above 7 is high,
// above 4 is medium, anything else is low.
func BandFor(level int) Band {
	switch {
	case level > 7:
		return BandHigh
	case level > 4:
		return BandMedium
	default:
		return BandLow
	}
}

// Color is the map marker colour for the band.
func (b Band) Color() string {
	switch b {
	case BandHigh:
		return "#ef4444"
	case BandMedium:
		return "#eab308"
	default:
		return "#22c55e"
	}
}

func clamp(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
