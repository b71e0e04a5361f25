package session

import (
	"context"
	"fmt"

	"github.com/verte-zerg/tuimath/internal/model"
)

// SessionService is the persistence collaborator the end-of-session flush
// talks to.
type SessionService interface {
	CreateSession(ctx context.Context, isDefault bool, userID *int64) (model.SessionInfo, error)
	SubmitProblem(ctx context.Context, sessionID int64, record model.ProblemRecord) error
	CompleteSession(ctx context.Context, sessionID int64, finalScore int) (model.Session, error)
}

// FlushResult reports how far the end-of-session flush got. Submitted can
// be short of the buffer length when a submission failed partway.
type FlushResult struct {
	SessionID int64
	Score     int
	Submitted int
	Completed bool
}

// Flush drains the local buffer to the persistence collaborator: create
// the session, submit every record in completion order, then complete with
// the final score. A session that ends with zero correct answers is never
// persisted. The buffer and score are kept on failure so the result can
// still be shown to the player.
func (r *Runner) Flush(ctx context.Context, svc SessionService, userID *int64) (FlushResult, error) {
	res := FlushResult{Score: r.score}
	if r.state != Ended {
		return res, fmt.Errorf("session is not ended")
	}
	if r.score == 0 {
		return res, nil
	}

	info, err := svc.CreateSession(ctx, r.settings.IsDefault(), userID)
	if err != nil {
		return res, fmt.Errorf("failed to create session: %w", err)
	}
	res.SessionID = info.SessionID

	for i, record := range r.records {
		if err := svc.SubmitProblem(ctx, info.SessionID, record); err != nil {
			return res, fmt.Errorf("failed to submit problem %d of %d: %w", i+1, len(r.records), err)
		}
		res.Submitted++
	}

	if _, err := svc.CompleteSession(ctx, info.SessionID, r.score); err != nil {
		return res, fmt.Errorf("failed to complete session: %w", err)
	}
	res.Completed = true
	return res, nil
}
