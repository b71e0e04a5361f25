// Package model defines shared data structures.
package model

import "time"

// Operation identifies one of the four drill operation kinds.
type Operation string

// Supported operations.
const (
	OpAddition       Operation = "addition"
	OpSubtraction    Operation = "subtraction"
	OpMultiplication Operation = "multiplication"
	OpDivision       Operation = "division"
)

// Operations lists all operation kinds in display order.
var Operations = []Operation{OpAddition, OpSubtraction, OpMultiplication, OpDivision}

// Problem is a single generated arithmetic question.
type Problem struct {
	Question  string
	Answer    int
	Operation Operation
}

// ProblemRecord captures one correctly answered problem within a session.
type ProblemRecord struct {
	Question    string
	Answer      int
	UserAnswer  int
	TimeSpentMs int64
	TypoCount   int
}

// SessionInfo is returned when a session row is created.
type SessionInfo struct {
	SessionID int64
	StartedAt time.Time
}

// Session is a stored drill session with its problems.
type Session struct {
	ID                int64
	UserID            *int64
	Username          string
	AnonymousName     string
	Score             int
	DurationSec       int
	IsDefaultSettings bool
	StartedAt         time.Time
	EndedAt           *time.Time
	Problems          []ProblemRecord
}

// SessionSummary is the history-list view of a session.
type SessionSummary struct {
	ID                int64
	Score             int
	DurationSec       int
	IsDefaultSettings bool
	StartedAt         time.Time
	EndedAt           time.Time
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank        int
	SessionID   int64
	Username    string
	Score       int
	DurationSec int
	StartedAt   time.Time
	IsAnonymous bool
}

// User is a local profile sessions can be attributed to.
type User struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}

// HistoryFilter selects finished sessions for stats reporting.
type HistoryFilter struct {
	UserID *int64
	Since  *time.Time
	Last   int
}
