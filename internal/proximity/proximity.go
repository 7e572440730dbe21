// internal/proximity/proximity.go
//
// Heat bands for guesses. A guess's distance is taken as a fraction of the
// greatest distance in the universe and bucketed, coldest first.
package proximity

// Band is the discrete proximity classification of a guess.
type Band string

const (
	Cold1   Band = "COLD_1"
	Cold2   Band = "COLD_2"
	Warm1   Band = "WARM_1"
	Warm2   Band = "WARM_2"
	Warm3   Band = "WARM_3"
	Hot     Band = "HOT"
	Correct Band = "CORRECT"
)

// thresholds are evaluated in order; the first whose lower bound the ratio
// reaches wins. Anything below the last bound is Correct.
var thresholds = []struct {
	min  float64
	band Band
}{
	{0.75, Cold1},
	{0.55, Cold2},
	{0.40, Warm1},
	{0.25, Warm2},
	{0.15, Warm3},
	{0.05, Hot},
}

// Classify maps distanceKm to a band relative to maxDistanceKm.
// A zero distance is always Correct. A non-positive maxDistanceKm treats
// every non-zero distance as maximally cold.
func Classify(distanceKm, maxDistanceKm float64) Band {
	if distanceKm <= 0 {
		return Correct
	}
	if maxDistanceKm <= 0 {
		return Cold1
	}
	ratio := distanceKm / maxDistanceKm
	for _, t := range thresholds {
		if ratio >= t.min {
			return t.band
		}
	}
	return Correct
}

// Color is the hex colour the UI paints a band with.
func (b Band) Color() string {
	switch b {
	case Cold1:
		return "#3b82f6"
	case Cold2:
		return "#60a5fa"
	case Warm1:
		return "#facc15"
	case Warm2:
		return "#fb923c"
	case Warm3:
		return "#f97316"
	case Hot:
		return "#ef4444"
	case Correct:
		return "#22c55e"
	}
	return "#9ca3af"
}

// Emoji is the square used for a band in shared results.
func (b Band) Emoji() string {
	switch b {
	case Cold1, Cold2:
		return "🟦"
	case Warm1:
		return "🟨"
	case Warm2, Warm3:
		return "🟧"
	case Hot:
		return "🟥"
	case Correct:
		return "🟩"
	}
	return "⬜"
}
