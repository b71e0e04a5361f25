package stats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/store"
)

func seedSessions(t *testing.T, st *store.Store, scores ...int) {
	t.Helper()
	ctx := context.Background()
	for _, score := range scores {
		info, err := st.CreateSession(ctx, true, nil)
		if err != nil {
			t.Fatalf("create session: %v", err)
		}
		for i := 0; i < score; i++ {
			rec := model.ProblemRecord{
				Question:    "2 + 2",
				Answer:      4,
				UserAnswer:  4,
				TimeSpentMs: 2000,
				TypoCount:   1,
			}
			if err := st.SubmitProblem(ctx, info.SessionID, rec); err != nil {
				t.Fatalf("submit problem: %v", err)
			}
		}
		if _, err := st.CompleteSession(ctx, info.SessionID, score); err != nil {
			t.Fatalf("complete session: %v", err)
		}
	}
}

func TestBuildReport(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tuimath.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	seedSessions(t, st, 2, 4, 6)

	report, err := BuildReport(context.Background(), st, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Totals.Sessions != 3 {
		t.Fatalf("expected 3 sessions, got %d", report.Totals.Sessions)
	}
	if report.Totals.BestScore != 6 || report.Totals.AvgScore != 4 {
		t.Fatalf("unexpected totals %+v", report.Totals)
	}
	if report.Problems.Problems != 12 {
		t.Fatalf("expected 12 problems, got %d", report.Problems.Problems)
	}
	if report.AvgSolve != 2000 {
		t.Fatalf("expected 2000ms avg solve, got %f", report.AvgSolve)
	}
	if report.AvgTypos != 1 {
		t.Fatalf("expected 1 typo per problem, got %f", report.AvgTypos)
	}
	want := []float64{2, 4, 6}
	if len(report.ScoreLine) != len(want) {
		t.Fatalf("expected score line %v, got %v", want, report.ScoreLine)
	}
	for i := range want {
		if report.ScoreLine[i] != want[i] {
			t.Fatalf("expected score line %v, got %v", want, report.ScoreLine)
		}
	}
}

func TestBuildReportLastWindow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tuimath.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	seedSessions(t, st, 1, 2, 3, 4)

	report, err := BuildReport(context.Background(), st, model.HistoryFilter{Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Totals.Sessions != 2 {
		t.Fatalf("expected 2 sessions, got %d", report.Totals.Sessions)
	}
	if report.Problems.Problems != 7 {
		t.Fatalf("aggregate should cover only the window, got %d problems", report.Problems.Problems)
	}
}
