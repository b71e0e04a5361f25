// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/tuimath/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes problems-per-minute for a session.
func SessionMetrics(score, durationSec int) (perMinute float64) {
	if durationSec <= 0 {
		return 0
	}
	return float64(score) / (float64(durationSec) / 60.0)
}

// Totals summarizes a set of finished sessions.
type Totals struct {
	Sessions     int
	TotalScore   int
	BestScore    int
	AvgScore     float64
	AvgPerMinute float64
}

// Summarize folds session summaries into totals.
func Summarize(sessions []model.SessionSummary) Totals {
	t := Totals{Sessions: len(sessions)}
	if len(sessions) == 0 {
		return t
	}
	var perMinute float64
	for _, s := range sessions {
		t.TotalScore += s.Score
		if s.Score > t.BestScore {
			t.BestScore = s.Score
		}
		perMinute += SessionMetrics(s.Score, s.DurationSec)
	}
	count := float64(len(sessions))
	t.AvgScore = float64(t.TotalScore) / count
	t.AvgPerMinute = perMinute / count
	return t
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample shrinks a series to at most width points by bucket averaging, so
// a sparkline fits the terminal.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		if hi <= lo {
			hi = lo + 1
		}
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
