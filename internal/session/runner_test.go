package session

import (
	"testing"
	"time"

	"github.com/verte-zerg/tuimath/internal/model"
)

// fakeClock is an adjustable now() source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(10000, 0)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// scriptedSource serves a fixed list of problems in order.
type scriptedSource struct {
	problems []model.Problem
	index    int
}

func (s *scriptedSource) Generate(model.Settings) model.Problem {
	p := s.problems[s.index%len(s.problems)]
	s.index++
	return p
}

func additionProblem(question string, answer int) model.Problem {
	return model.Problem{Question: question, Answer: answer, Operation: model.OpAddition}
}

func newTestRunner(problems ...model.Problem) (*Runner, *fakeClock) {
	clock := newFakeClock()
	source := &scriptedSource{problems: problems}
	r := NewRunner(model.DefaultSettings(), source, clock.now)
	r.Start()
	return r, clock
}

func TestRunnerScoresOnFinalMatchOnly(t *testing.T) {
	r, clock := newTestRunner(additionProblem("12 + 35", 47), additionProblem("1 + 1", 2))
	clock.advance(1500 * time.Millisecond)
	// Typing "4" then "47": only the final value matches.
	r.SetInput("4")
	if r.Score() != 0 {
		t.Fatalf("partial input must not score")
	}
	r.SetInput("47")
	if r.Score() != 1 {
		t.Fatalf("expected score 1, got %d", r.Score())
	}
	records := r.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Question != "12 + 35" || rec.Answer != 47 || rec.UserAnswer != 47 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.TimeSpentMs != 1500 {
		t.Fatalf("expected 1500ms spent, got %d", rec.TimeSpentMs)
	}
	if rec.TypoCount != 0 {
		t.Fatalf("expected no typos, got %d", rec.TypoCount)
	}
	if r.Current().Question != "1 + 1" {
		t.Fatalf("expected next problem, got %q", r.Current().Question)
	}
	if r.Input() != "" {
		t.Fatalf("input should reset after a correct answer, got %q", r.Input())
	}
}

func TestRunnerCountsShorteningsAsTypos(t *testing.T) {
	r, _ := newTestRunner(additionProblem("10 + 13", 23), additionProblem("1 + 1", 2))
	// Lengths 1,2,1,2,3,2,3: two shortenings before the match.
	for _, input := range []string{"2", "21", "2", "24", "241", "24", "243"} {
		r.SetInput(input)
	}
	if r.Score() != 0 {
		t.Fatalf("no input matched, score should be 0")
	}
	r.SetInput("23")
	if r.Score() != 1 {
		t.Fatalf("expected score 1, got %d", r.Score())
	}
	// "243" -> "23" is a third shortening.
	if got := r.Records()[0].TypoCount; got != 3 {
		t.Fatalf("expected 3 typos, got %d", got)
	}
}

func TestRunnerTypoCountResetsPerProblem(t *testing.T) {
	r, _ := newTestRunner(additionProblem("1 + 1", 2), additionProblem("2 + 2", 4))
	r.SetInput("3")
	r.SetInput("")
	r.SetInput("2")
	if got := r.Records()[0].TypoCount; got != 1 {
		t.Fatalf("expected 1 typo on first record, got %d", got)
	}
	r.SetInput("4")
	if got := r.Records()[1].TypoCount; got != 0 {
		t.Fatalf("expected fresh typo count on second record, got %d", got)
	}
}

func TestRunnerIgnoresUnparseableInput(t *testing.T) {
	r, _ := newTestRunner(additionProblem("1 + 1", 2))
	r.SetInput("x")
	r.SetInput("2x")
	if r.Score() != 0 || len(r.Records()) != 0 {
		t.Fatalf("unparseable input must not score")
	}
	r.SetInput("2")
	if r.Score() != 1 {
		t.Fatalf("expected score 1 after correct input, got %d", r.Score())
	}
}

func TestRunnerClearInputDoesNotEvaluate(t *testing.T) {
	r, _ := newTestRunner(additionProblem("1 + 1", 2))
	r.SetInput("5")
	r.ClearInput()
	if r.Input() != "" {
		t.Fatalf("expected cleared input")
	}
	if r.Score() != 0 {
		t.Fatalf("clear must not score")
	}
	// The clear itself is not a typo signal.
	r.SetInput("2")
	if got := r.Records()[0].TypoCount; got != 0 {
		t.Fatalf("expected 0 typos after clear, got %d", got)
	}
}

func TestRunnerScoreEqualsBufferLength(t *testing.T) {
	r, clock := newTestRunner(additionProblem("1 + 1", 2), additionProblem("2 + 2", 4))
	for i := 0; i < 10; i++ {
		r.SetInput("9")
		answer := r.Current().Answer
		if answer == 2 {
			r.SetInput("2")
		} else {
			r.SetInput("4")
		}
	}
	clock.advance(Duration + time.Second)
	if !r.Tick() {
		t.Fatalf("expected session to end")
	}
	if r.Score() != len(r.Records()) {
		t.Fatalf("score %d != buffered records %d", r.Score(), len(r.Records()))
	}
	if r.Score() != 10 {
		t.Fatalf("expected 10 correct answers, got %d", r.Score())
	}
}

func TestRunnerEndedIsTerminal(t *testing.T) {
	r, clock := newTestRunner(additionProblem("1 + 1", 2))
	clock.advance(Duration)
	if !r.Tick() {
		t.Fatalf("expected transition to Ended")
	}
	if r.Tick() {
		t.Fatalf("end transition must fire exactly once")
	}
	r.SetInput("2")
	if r.Score() != 0 || len(r.Records()) != 0 {
		t.Fatalf("input after end must not be scored")
	}
	if r.State() != Ended {
		t.Fatalf("expected Ended state")
	}
}

func TestRunnerTickBeforeDeadline(t *testing.T) {
	r, clock := newTestRunner(additionProblem("1 + 1", 2))
	clock.advance(Duration - time.Second)
	if r.Tick() {
		t.Fatalf("session should still be running")
	}
	if r.State() != Running {
		t.Fatalf("expected Running state")
	}
	if got := r.Remaining(); got != time.Second {
		t.Fatalf("expected 1s remaining, got %v", got)
	}
}

func TestRunnerStartIsIdempotent(t *testing.T) {
	r, _ := newTestRunner(additionProblem("1 + 1", 2), additionProblem("2 + 2", 4))
	first := r.Current()
	r.Start()
	if r.Current() != first {
		t.Fatalf("second Start must not draw a new problem")
	}
}
