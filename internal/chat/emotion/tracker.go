package emotion

// Trend labels derived from the recent emotion history.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

const (
	historySize = 5
	trendWindow = 3
)

var emotionScores = map[string]int{
	"happy": 3, "excited": 3, "joyful": 3,
	"sad": -2, "depressed": -2, "melancholy": -2,
	"angry": -1, "frustrated": -1, "irritated": -1,
	"anxious": -1, "worried": -1, "fearful": -1,
	"neutral": 0, "calm": 0, "peaceful": 0,
}

// Tracker is a per-connection ring of the most recent emotion tags. It is
// owned by a single connection goroutine and needs no locking.
type Tracker struct {
	history []string
}

func NewTracker() *Tracker {
	return &Tracker{history: make([]string, 0, historySize)}
}

// Record appends an emotion tag, dropping the oldest past the cap.
func (t *Tracker) Record(tag string) {
	t.history = append(t.history, tag)
	if len(t.history) > historySize {
		t.history = t.history[len(t.history)-historySize:]
	}
}

// History returns a copy of the retained tags, oldest first.
func (t *Tracker) History() []string {
	out := make([]string, len(t.history))
	copy(out, t.history)
	return out
}

// Trend averages the scores of the last three tags. Unknown tags score 0.
func (t *Tracker) Trend() string {
	if len(t.history) < 2 {
		return TrendStable
	}

	recent := t.history
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	sum := 0
	for _, tag := range recent {
		sum += emotionScores[tag]
	}
	avg := float64(sum) / float64(len(recent))

	switch {
	case avg > 1:
		return TrendImproving
	case avg < -1:
		return TrendDeclining
	default:
		return TrendStable
	}
}
