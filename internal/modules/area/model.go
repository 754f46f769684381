// README: Area status labels and the population feed envelope.
package area

import "time"

type Label string

const (
	LabelQuiet    Label = "QUIET"
	LabelNormal   Label = "NORMAL"
	LabelBusy     Label = "BUSY"
	LabelVeryBusy Label = "VERY_BUSY"
)

// Status is the area-wide congestion readout shown next to the map.
type Status struct {
	Area       string    `json:"area"`
	Population float64   `json:"population"`
	Label      Label     `json:"label"`
	Advisory   string    `json:"advisory,omitempty"`
	Success    bool      `json:"success"`
	Message    string    `json:"message,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// FeedResult is the payload returned by a population feed. A feed that
// cannot reach its upstream returns FallbackResult instead of an error.
type FeedResult struct {
	Success    bool    `json:"success"`
	Status     Label   `json:"status"`
	Population float64 `json:"population"`
	Message    string  `json:"message"`
}

// FallbackPopulation is the estimate used when the feed is unavailable.
const FallbackPopulation = 40000.0

// FallbackResult is what a feed reports when its upstream is unreachable or
// returns something it cannot parse.
func FallbackResult() FeedResult {
	return FeedResult{
		Success:    false,
		Status:     LabelNormal,
		Population: FallbackPopulation,
		Message:    "Using Backup Data",
	}
}
