package emotion

import "testing"

func TestTrackerCapsHistory(t *testing.T) {
	tr := NewTracker()
	tags := []string{"happy", "sad", "angry", "calm", "excited", "worried", "joyful"}
	for _, tag := range tags {
		tr.Record(tag)
	}

	history := tr.History()
	if len(history) != 5 {
		t.Fatalf("history length = %d, want 5", len(history))
	}
	if history[0] != "angry" || history[4] != "joyful" {
		t.Errorf("history = %v, want oldest=angry newest=joyful", history)
	}
}

func TestTrackerTrend(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"empty history", nil, TrendStable},
		{"single entry", []string{"happy"}, TrendStable},
		{"improving run", []string{"sad", "happy", "excited", "joyful"}, TrendImproving},
		{"declining run", []string{"happy", "sad", "depressed", "melancholy"}, TrendDeclining},
		{"mixed stays stable", []string{"happy", "sad", "neutral"}, TrendStable},
		{"unknown tags score zero", []string{"confused", "puzzled", "baffled"}, TrendStable},
		{"only last three count", []string{"sad", "sad", "happy", "excited", "joyful"}, TrendImproving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			for _, tag := range tt.tags {
				tr.Record(tag)
			}
			if got := tr.Trend(); got != tt.want {
				t.Errorf("Trend() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	tr := NewTracker()
	tr.Record("happy")

	h := tr.History()
	h[0] = "sad"

	if tr.History()[0] != "happy" {
		t.Error("mutating the returned slice changed the tracker state")
	}
}
