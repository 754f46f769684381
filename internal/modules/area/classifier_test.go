package area

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		estimate     float64
		wantLabel    Label
		wantAdvisory string
	}{
		{95000, LabelVeryBusy, "Warning: high congestion detected"},
		{90001, LabelVeryBusy, "Warning: high congestion detected"},
		{90000, LabelBusy, "Warning: high congestion detected"},
		{75000, LabelBusy, "Warning: high congestion detected"},
		{70000, LabelNormal, "Area status is currently normal"},
		{50000, LabelNormal, "Area status is currently normal"},
		{40000, LabelNormal, "Area status is currently normal"},
		{30000, LabelNormal, "Area status is currently normal"},
		{29999, LabelQuiet, "Area status is currently normal"},
		{25000, LabelQuiet, "Area status is currently normal"},
		{0, LabelQuiet, "Area status is currently normal"},
	}
	for _, tt := range tests {
		st := Classify(tt.estimate)
		if st.Label != tt.wantLabel {
			t.Errorf("Classify(%v).Label = %s, want %s", tt.estimate, st.Label, tt.wantLabel)
		}
		if st.Advisory != tt.wantAdvisory {
			t.Errorf("Classify(%v).Advisory = %q, want %q", tt.estimate, st.Advisory, tt.wantAdvisory)
		}
		if st.Population != tt.estimate {
			t.Errorf("Classify(%v).Population = %v", tt.estimate, st.Population)
		}
	}
}

func TestClassify_NegativeEstimate(t *testing.T) {
	st := Classify(-5)
	if st.Population != 0 || st.Label != LabelQuiet {
		t.Errorf("unexpected status for negative estimate: %+v", st)
	}
}

func TestFromFeed_SuccessIsClassified(t *testing.T) {
	st := FromFeed(FeedResult{
		Success:    true,
		Status:     LabelQuiet, // ignored, recomputed from the population
		Population: 80000,
		Message:    "Live Population: 78000 ~ 82000 people",
	})
	if st.Label != LabelBusy || !st.Success {
		t.Errorf("unexpected status: %+v", st)
	}
	if st.Message != "Live Population: 78000 ~ 82000 people" {
		t.Errorf("message not carried: %q", st.Message)
	}
}

func TestFromFeed_FailurePassesThrough(t *testing.T) {
	in := FeedResult{Success: false, Status: LabelBusy, Population: 12345, Message: "upstream says busy"}
	st := FromFeed(in)
	if st.Success || st.Label != LabelBusy || st.Population != 12345 || st.Message != in.Message {
		t.Errorf("failure payload was modified: %+v", st)
	}
	if st.Advisory != "" {
		t.Errorf("advisory must stay empty on passthrough, got %q", st.Advisory)
	}
}

func TestFromFeed_Fallback(t *testing.T) {
	st := FromFeed(FallbackResult())
	if st.Label != LabelNormal || st.Population != 40000 || st.Message != "Using Backup Data" {
		t.Errorf("unexpected fallback status: %+v", st)
	}
	if Classify(FallbackPopulation).Label != LabelNormal {
		t.Error("fallback estimate must classify as NORMAL")
	}
}
