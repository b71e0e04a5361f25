package session

import (
	"strconv"
	"time"

	"github.com/verte-zerg/tuimath/internal/model"
)

// State is the lifecycle phase of a Runner.
type State int

// Runner states.
const (
	NotStarted State = iota
	Running
	Ended
)

// ProblemSource produces the next problem for a session.
type ProblemSource interface {
	Generate(model.Settings) model.Problem
}

// Runner owns the state of one drill session: the current problem, the live
// input, the score, and the buffer of completed-problem records. It is
// driven by input-change events and clock ticks from the UI and is not
// safe for concurrent use.
type Runner struct {
	settings  model.Settings
	source    ProblemSource
	now       func() time.Time
	total     time.Duration
	state     State
	startedAt time.Time

	current          model.Problem
	input            string
	prevInputLen     int
	typoCount        int
	problemStartedAt time.Time

	score   int
	records []model.ProblemRecord
}

// NewRunner builds a Runner for the given settings. Settings are read once
// here; changing them afterwards means starting a new session.
func NewRunner(settings model.Settings, source ProblemSource, now func() time.Time) *Runner {
	if now == nil {
		now = time.Now
	}
	return &Runner{
		settings: settings,
		source:   source,
		now:      now,
		total:    Duration,
	}
}

// Start transitions to Running and draws the first problem.
func (r *Runner) Start() {
	if r.state != NotStarted {
		return
	}
	r.state = Running
	r.startedAt = r.now()
	r.nextProblem()
}

// State returns the current lifecycle phase.
func (r *Runner) State() State { return r.state }

// Settings returns the configuration the session was started with.
func (r *Runner) Settings() model.Settings { return r.settings }

// Current returns the problem being asked.
func (r *Runner) Current() model.Problem { return r.current }

// Input returns the live answer input.
func (r *Runner) Input() string { return r.input }

// Score returns the number of correctly answered problems so far.
func (r *Runner) Score() int { return r.score }

// Records returns the buffered completed-problem records in completion
// order. The slice is owned by the Runner.
func (r *Runner) Records() []model.ProblemRecord { return r.records }

// StartedAt returns the session start instant.
func (r *Runner) StartedAt() time.Time { return r.startedAt }

// Remaining returns the time left in the session.
func (r *Runner) Remaining() time.Duration {
	if r.state == NotStarted {
		return r.total
	}
	return Remaining(r.startedAt, r.now(), r.total)
}

// Tick re-derives the remaining time and transitions to Ended when it
// reaches zero. It reports whether the session just ended.
func (r *Runner) Tick() bool {
	if r.state != Running {
		return false
	}
	if r.Remaining() > 0 {
		return false
	}
	r.state = Ended
	return true
}

// SetInput applies an input-change event. Any shortening of the input
// counts as a typo. When the parsed value equals the current answer the
// problem is recorded, the score is incremented, and the next problem is
// drawn; incorrect or unparseable input has no effect.
func (r *Runner) SetInput(value string) {
	if r.state != Running {
		return
	}
	if len(value) < r.prevInputLen {
		r.typoCount++
	}
	r.prevInputLen = len(value)
	r.input = value

	answer, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	if answer != r.current.Answer {
		return
	}
	r.records = append(r.records, model.ProblemRecord{
		Question:    r.current.Question,
		Answer:      r.current.Answer,
		UserAnswer:  answer,
		TimeSpentMs: r.now().Sub(r.problemStartedAt).Milliseconds(),
		TypoCount:   r.typoCount,
	})
	r.score++
	r.nextProblem()
}

// ClearInput empties the input field without evaluating it. Correctness is
// only ever detected on input change, so an explicit submit just clears.
func (r *Runner) ClearInput() {
	if r.state != Running {
		return
	}
	r.input = ""
	r.prevInputLen = 0
}

func (r *Runner) nextProblem() {
	r.current = r.source.Generate(r.settings)
	r.input = ""
	r.prevInputLen = 0
	r.typoCount = 0
	r.problemStartedAt = r.now()
}
