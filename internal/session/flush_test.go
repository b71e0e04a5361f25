package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/verte-zerg/tuimath/internal/model"
)

// fakeService records flush calls and can fail at a chosen submission.
type fakeService struct {
	created      int
	gotDefault   bool
	gotUserID    *int64
	submitted    []model.ProblemRecord
	completed    bool
	finalScore   int
	failAtSubmit int // 1-based; 0 means never fail
}

func (s *fakeService) CreateSession(_ context.Context, isDefault bool, userID *int64) (model.SessionInfo, error) {
	s.created++
	s.gotDefault = isDefault
	s.gotUserID = userID
	return model.SessionInfo{SessionID: 7, StartedAt: time.Unix(0, 0)}, nil
}

func (s *fakeService) SubmitProblem(_ context.Context, sessionID int64, record model.ProblemRecord) error {
	if sessionID != 7 {
		return fmt.Errorf("unexpected session id %d", sessionID)
	}
	if s.failAtSubmit > 0 && len(s.submitted)+1 == s.failAtSubmit {
		return fmt.Errorf("boom")
	}
	s.submitted = append(s.submitted, record)
	return nil
}

func (s *fakeService) CompleteSession(_ context.Context, sessionID int64, finalScore int) (model.Session, error) {
	s.completed = true
	s.finalScore = finalScore
	now := time.Unix(1, 0)
	return model.Session{ID: sessionID, Score: finalScore, EndedAt: &now}, nil
}

func endedRunner(t *testing.T, answers ...int) *Runner {
	t.Helper()
	problems := make([]model.Problem, 0, len(answers)+1)
	for _, a := range answers {
		problems = append(problems, additionProblem(fmt.Sprintf("%d + 0", a), a))
	}
	problems = append(problems, additionProblem("1 + 1", 2))
	r, clock := newTestRunner(problems...)
	for range answers {
		r.SetInput(fmt.Sprintf("%d", r.Current().Answer))
	}
	clock.advance(Duration)
	if !r.Tick() {
		t.Fatalf("expected session to end")
	}
	return r
}

func TestFlushSubmitsInCompletionOrder(t *testing.T) {
	r := endedRunner(t, 11, 22, 33)
	svc := &fakeService{}
	res, err := r.Flush(context.Background(), svc, nil)
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if svc.created != 1 || !svc.completed {
		t.Fatalf("expected create and complete calls, got %+v", svc)
	}
	if !svc.gotDefault {
		t.Fatalf("default settings session should be tagged as default")
	}
	if len(svc.submitted) != 3 {
		t.Fatalf("expected 3 submissions, got %d", len(svc.submitted))
	}
	for i, want := range []int{11, 22, 33} {
		if svc.submitted[i].UserAnswer != want {
			t.Fatalf("submission %d out of order: %+v", i, svc.submitted[i])
		}
	}
	if svc.finalScore != 3 {
		t.Fatalf("expected final score 3, got %d", svc.finalScore)
	}
	if res.SessionID != 7 || res.Submitted != 3 || !res.Completed || res.Score != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestFlushZeroScoreNeverCreatesSession(t *testing.T) {
	r, clock := newTestRunner(additionProblem("1 + 1", 2))
	clock.advance(Duration)
	r.Tick()
	svc := &fakeService{}
	res, err := r.Flush(context.Background(), svc, nil)
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if svc.created != 0 {
		t.Fatalf("zero-score session must not be created")
	}
	if res.Completed || res.Submitted != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestFlushReportsPartialFailure(t *testing.T) {
	r := endedRunner(t, 11, 22, 33)
	svc := &fakeService{failAtSubmit: 2}
	res, err := r.Flush(context.Background(), svc, nil)
	if err == nil {
		t.Fatalf("expected flush error")
	}
	if res.Submitted != 1 {
		t.Fatalf("expected 1 submitted before failure, got %d", res.Submitted)
	}
	if res.Completed {
		t.Fatalf("failed flush must not report completion")
	}
	// Buffer and score survive for display and inspection.
	if r.Score() != 3 || len(r.Records()) != 3 {
		t.Fatalf("buffer must be retained on failure")
	}
}

func TestFlushOnlyAfterEnd(t *testing.T) {
	r, _ := newTestRunner(additionProblem("1 + 1", 2))
	r.SetInput("2")
	if _, err := r.Flush(context.Background(), &fakeService{}, nil); err == nil {
		t.Fatalf("expected error flushing a running session")
	}
}

func TestFlushPassesUserAttribution(t *testing.T) {
	r := endedRunner(t, 5)
	svc := &fakeService{}
	userID := int64(42)
	if _, err := r.Flush(context.Background(), svc, &userID); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if svc.gotUserID == nil || *svc.gotUserID != 42 {
		t.Fatalf("expected user id 42, got %v", svc.gotUserID)
	}
}

func TestFlushNonDefaultSettingsTag(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Division.Enabled = false
	clock := newFakeClock()
	r := NewRunner(settings, &scriptedSource{problems: []model.Problem{additionProblem("1 + 1", 2)}}, clock.now)
	r.Start()
	r.SetInput("2")
	clock.advance(Duration)
	r.Tick()
	svc := &fakeService{gotDefault: true}
	if _, err := r.Flush(context.Background(), svc, nil); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if svc.gotDefault {
		t.Fatalf("non-default settings must not be tagged as default")
	}
}
