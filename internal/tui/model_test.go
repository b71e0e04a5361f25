package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/session"
)

type scriptedSource struct {
	problems []model.Problem
	index    int
}

func (s *scriptedSource) Generate(model.Settings) model.Problem {
	p := s.problems[s.index%len(s.problems)]
	s.index++
	return p
}

type nopService struct{}

func (nopService) CreateSession(context.Context, bool, *int64) (model.SessionInfo, error) {
	return model.SessionInfo{SessionID: 1}, nil
}

func (nopService) SubmitProblem(context.Context, int64, model.ProblemRecord) error {
	return nil
}

func (nopService) CompleteSession(_ context.Context, sessionID int64, finalScore int) (model.Session, error) {
	return model.Session{ID: sessionID, Score: finalScore}, nil
}

func newTestModel(problems ...model.Problem) *Model {
	source := &scriptedSource{problems: problems}
	runner := session.NewRunner(model.DefaultSettings(), source, nil)
	return NewModel(runner, nopService{}, nil)
}

func typeRunes(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestTypingCorrectAnswerAdvances(t *testing.T) {
	m := newTestModel(
		model.Problem{Question: "12 + 35", Answer: 47, Operation: model.OpAddition},
		model.Problem{Question: "2 + 3", Answer: 5, Operation: model.OpAddition},
	)
	typeRunes(m, "47")
	if got := m.runner.Score(); got != 1 {
		t.Fatalf("expected score 1, got %d", got)
	}
	if m.runner.Current().Question != "2 + 3" {
		t.Fatalf("expected next problem, got %q", m.runner.Current().Question)
	}
	if m.input.Value() != "" {
		t.Fatalf("input field should reset, got %q", m.input.Value())
	}
}

func TestNonNumericInputRejected(t *testing.T) {
	m := newTestModel(model.Problem{Question: "1 + 1", Answer: 2, Operation: model.OpAddition})
	typeRunes(m, "a!")
	if m.input.Value() != "" {
		t.Fatalf("non-numeric input should be rejected, got %q", m.input.Value())
	}
	typeRunes(m, "-3")
	if m.input.Value() != "-3" {
		t.Fatalf("leading minus should be allowed, got %q", m.input.Value())
	}
}

func TestEnterClearsWithoutScoring(t *testing.T) {
	m := newTestModel(model.Problem{Question: "1 + 1", Answer: 2, Operation: model.OpAddition})
	typeRunes(m, "5")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.input.Value() != "" {
		t.Fatalf("enter should clear the field, got %q", m.input.Value())
	}
	if m.runner.Score() != 0 {
		t.Fatalf("enter must not score")
	}
}

func TestBackspaceCountsAsTypo(t *testing.T) {
	m := newTestModel(
		model.Problem{Question: "1 + 1", Answer: 2, Operation: model.OpAddition},
		model.Problem{Question: "2 + 2", Answer: 4, Operation: model.OpAddition},
	)
	typeRunes(m, "3")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	typeRunes(m, "2")
	records := m.runner.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].TypoCount != 1 {
		t.Fatalf("expected 1 typo, got %d", records[0].TypoCount)
	}
}

func TestRenderHeaderFormats(t *testing.T) {
	out := renderHeader(12, 85)
	for _, want := range []string{"12 correct", "85s left"} {
		if !strings.Contains(out, want) {
			t.Fatalf("header missing %q: %s", want, out)
		}
	}
}

func TestDrillViewShowsQuestion(t *testing.T) {
	m := newTestModel(model.Problem{Question: "6 × 7", Answer: 42, Operation: model.OpMultiplication})
	if !strings.Contains(m.View(), "6 × 7") {
		t.Fatalf("view missing question: %s", m.View())
	}
}

func TestValidateAnswer(t *testing.T) {
	for _, ok := range []string{"", "-", "-12", "340"} {
		if err := validateAnswer(ok); err != nil {
			t.Fatalf("%q should validate: %v", ok, err)
		}
	}
	for _, bad := range []string{"1-2", "x", "1.5", " 4"} {
		if err := validateAnswer(bad); err == nil {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}
