// README: Classifier turning a population estimate into a status label and advisory.
package area

const (
	veryBusyAbove = 90000.0
	busyAbove     = 70000.0
	quietBelow    = 30000.0

	advisoryCongested = "Warning: high congestion detected"
	advisoryNormal    = "Area status is currently normal"
)

// Classify maps a population estimate to a status. Thresholds are checked
// from most to least severe. Negative estimates are treated as zero.
func Classify(estimate float64) Status {
	if estimate < 0 {
		estimate = 0
	}
	label := LabelNormal
	switch {
	case estimate > veryBusyAbove:
		label = LabelVeryBusy
	case estimate > busyAbove:
		label = LabelBusy
	case estimate < quietBelow:
		label = LabelQuiet
	}
	return Status{
		Population: estimate,
		Label:      label,
		Advisory:   advisoryFor(label),
		Success:    true,
	}
}

// FromFeed converts a feed payload into a status. A successful payload is
// classified from its population; an unsuccessful one is already classified
// by the feed and is passed through unmodified.
func FromFeed(r FeedResult) Status {
	if !r.Success {
		return Status{
			Population: r.Population,
			Label:      r.Status,
			Success:    false,
			Message:    r.Message,
		}
	}
	st := Classify(r.Population)
	st.Message = r.Message
	return st
}

func advisoryFor(l Label) string {
	if l == LabelBusy || l == LabelVeryBusy {
		return advisoryCongested
	}
	return advisoryNormal
}
