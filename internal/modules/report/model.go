// README: Quick-report buckets and the validated report write instruction.
package report

import (
	"time"

	"crowdradar/internal/types"
)

// The three quick-report buttons a viewer can press.
const (
	LevelQuiet  = 2
	LevelNormal = 5
	LevelBusy   = 9
)

// Report is a validated busyness report ready to be written to the venue store.
type Report struct {
	ID          types.ID  `json:"id"`
	PointID     types.ID  `json:"point_id"`
	Level       int       `json:"level"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type SubmitCommand struct {
	PointID types.ID
	Level   int
	// SubmittedAt is optional; ingestion time is used when nil.
	SubmittedAt *time.Time
}

// SubmitResult describes how far a valid report got. Store and notification
// failures are logged and reported here, never retried.
type SubmitResult struct {
	Report    Report
	Stored    bool
	StoreErr  error
	Notified  bool
	NotifyErr error
}
