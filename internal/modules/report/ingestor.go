// README: Report ingestor validates and timestamps user busyness reports.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"crowdradar/internal/types"
)

var (
	ErrInvalidReportValue = errors.New("invalid report value")
	ErrBadRequest         = errors.New("bad request")
)

// MaxClockSkew is how far past the ingestion time a client timestamp may be.
const MaxClockSkew = time.Minute

type Ingestor struct {
	now   func() time.Time
	newID func() types.ID
}

func NewIngestor() *Ingestor {
	return &Ingestor{
		now:   time.Now,
		newID: func() types.ID { return types.ID(uuid.NewString()) },
	}
}

// Ingest validates a report and produces the write instruction for the venue
// store. Level must be one of the quick-report buckets. A zero submittedAt
// is replaced by the ingestion time; one more than MaxClockSkew ahead of it
// is rejected, since a future report would stay fresh until that time.
func (in *Ingestor) Ingest(pointID types.ID, level int, submittedAt time.Time) (Report, error) {
	if pointID == "" {
		return Report{}, fmt.Errorf("%w: point id is required", ErrBadRequest)
	}
	if !ValidLevel(level) {
		return Report{}, fmt.Errorf("%w: %d is not one of %d, %d, %d", ErrInvalidReportValue, level, LevelQuiet, LevelNormal, LevelBusy)
	}
	now := in.now()
	if submittedAt.IsZero() {
		submittedAt = now
	}
	if submittedAt.After(now.Add(MaxClockSkew)) {
		return Report{}, fmt.Errorf("%w: submitted_at %s is in the future", ErrBadRequest, submittedAt.UTC().Format(time.RFC3339))
	}
	return Report{
		ID:          in.newID(),
		PointID:     pointID,
		Level:       level,
		SubmittedAt: submittedAt.UTC(),
	}, nil
}

func ValidLevel(level int) bool {
	switch level {
	case LevelQuiet, LevelNormal, LevelBusy:
		return true
	}
	return false
}
