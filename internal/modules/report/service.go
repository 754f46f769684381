// README: Report service ingests a report, writes it to the venue store, and announces the change.
package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"crowdradar/internal/metrics"
	"crowdradar/internal/types"
)

// Writer is the venue store write used for reports. Last writer wins.
type Writer interface {
	UpdateReport(ctx context.Context, pointID types.ID, level int, at time.Time) error
}

// Notifier announces that venue data changed.
type Notifier interface {
	PublishChanged(ctx context.Context) error
}

type Service struct {
	ingestor *Ingestor
	writer   Writer
	notifier Notifier
	log      logrus.FieldLogger
}

func NewService(ingestor *Ingestor, writer Writer, notifier Notifier, log logrus.FieldLogger) *Service {
	return &Service{ingestor: ingestor, writer: writer, notifier: notifier, log: log}
}

// Submit validates cmd and, on success, writes and announces the report.
// Only validation errors are returned; a failed write skips the
// notification and is surfaced through SubmitResult.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	var at time.Time
	if cmd.SubmittedAt != nil {
		at = *cmd.SubmittedAt
	}
	rep, err := s.ingestor.Ingest(cmd.PointID, cmd.Level, at)
	if err != nil {
		metrics.ReportsTotal.WithLabelValues("rejected").Inc()
		return SubmitResult{}, err
	}
	res := SubmitResult{Report: rep}
	log := s.log.WithFields(logrus.Fields{"report_id": rep.ID, "point_id": rep.PointID, "level": rep.Level})

	if err := s.writer.UpdateReport(ctx, rep.PointID, rep.Level, rep.SubmittedAt); err != nil {
		log.WithError(err).Error("store report")
		metrics.ReportsTotal.WithLabelValues("store_failed").Inc()
		res.StoreErr = err
		return res, nil
	}
	res.Stored = true
	metrics.ReportsTotal.WithLabelValues("accepted").Inc()

	if s.notifier != nil {
		if err := s.notifier.PublishChanged(ctx); err != nil {
			log.WithError(err).Warn("publish venue change")
			res.NotifyErr = err
		} else {
			res.Notified = true
		}
	}
	log.Info("report accepted")
	return res, nil
}
