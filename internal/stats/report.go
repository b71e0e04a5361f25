package stats

import (
	"context"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions  []model.SessionSummary
	Totals    Totals
	Problems  store.ProblemAggregate
	AvgSolve  float64 // average milliseconds per solved problem
	AvgTypos  float64 // average typos per solved problem
	ScoreLine []float64
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, filter model.HistoryFilter) (Report, error) {
	sessions, err := st.ListFinished(ctx, filter)
	if err != nil {
		return Report{}, err
	}

	ids := make([]int64, len(sessions))
	scores := make([]float64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
		scores[i] = float64(s.Score)
	}
	agg, err := st.AggregateProblems(ctx, ids)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Sessions:  sessions,
		Totals:    Summarize(sessions),
		Problems:  agg,
		ScoreLine: scores,
	}
	if agg.Problems > 0 {
		report.AvgSolve = float64(agg.TimeSpentMs) / float64(agg.Problems)
		report.AvgTypos = float64(agg.Typos) / float64(agg.Problems)
	}
	return report, nil
}
