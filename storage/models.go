package storage

import (
	"time"

	"github.com/pwbcr2502-crypto/galass/voting"
)

// Event lifecycle.
const (
	EventStatusDraft  = 0
	EventStatusActive = 1
	EventStatusClosed = 2
)

// Event voting modes: one window per program, or a single unified window.
const (
	VotingModePerProgram = "per_program"
	VotingModeUnified    = "unified"
)

type Event struct {
	ID                   int       `gorm:"primaryKey" json:"id"`
	Code                 string    `gorm:"size:32;uniqueIndex" json:"code"`
	Name                 string    `gorm:"size:128" json:"name"`
	VotingMode           string    `gorm:"size:16;default:per_program" json:"votingMode"`
	DefaultWindowSeconds int       `gorm:"default:300" json:"defaultWindowSeconds"`
	WeightStagePresence  float64   `gorm:"default:0.2" json:"weightStagePresence"`
	WeightPerformance    float64   `gorm:"default:0.2" json:"weightPerformance"`
	WeightPopularity     float64   `gorm:"default:0.2" json:"weightPopularity"`
	WeightTeamwork       float64   `gorm:"default:0.2" json:"weightTeamwork"`
	WeightCreativity     float64   `gorm:"default:0.2" json:"weightCreativity"`
	Status               int       `gorm:"default:0" json:"status"`
	CreatedAt            time.Time `json:"createdAt"`
}

// Weights returns the event's per-dimension weight configuration.
func (e *Event) Weights() voting.Weights {
	return voting.Weights{
		voting.DimensionStagePresence: e.WeightStagePresence,
		voting.DimensionPerformance:   e.WeightPerformance,
		voting.DimensionPopularity:    e.WeightPopularity,
		voting.DimensionTeamwork:      e.WeightTeamwork,
		voting.DimensionCreativity:    e.WeightCreativity,
	}
}

type Program struct {
	ID              int        `gorm:"primaryKey" json:"id"`
	EventID         int        `gorm:"uniqueIndex:idx_programs_event_seq" json:"eventId"`
	SeqNo           int        `gorm:"uniqueIndex:idx_programs_event_seq" json:"seqNo"`
	Title           string     `gorm:"size:128" json:"title"`
	Performer       string     `gorm:"size:128" json:"performer"`
	Description     string     `gorm:"size:512" json:"description"`
	DurationMinutes int        `gorm:"default:5" json:"durationMinutes"`
	Status          int        `gorm:"default:0;index" json:"status"`
	VoteStartAt     *time.Time `json:"voteStartAt"`
	VoteEndAt       *time.Time `json:"voteEndAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// IsVotingActive evaluates the voting window lazily against wall-clock time.
func (p *Program) IsVotingActive(now time.Time) bool {
	return voting.IsVotingActive(p.Status, p.VoteEndAt, now)
}

// RemainingVoteTime reports the client-facing window remainder in seconds.
func (p *Program) RemainingVoteTime(now time.Time) int {
	return voting.RemainingVoteTime(p.Status, p.VoteEndAt, now)
}

// Employee status: deactivated employees stay on record because votes
// reference them.
const (
	EmployeeStatusInactive = 0
	EmployeeStatusActive   = 1
)

type Employee struct {
	ID          int        `gorm:"primaryKey" json:"id"`
	EmpNo       string     `gorm:"size:32;uniqueIndex" json:"empNo"`
	Name        string     `gorm:"size:64" json:"name"`
	Department  string     `gorm:"size:64" json:"department"`
	Status      int        `gorm:"default:1" json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Vote is an immutable fact: one employee's five dimension scores for one
// program. The composite uniqueIndex is the authoritative duplicate guard;
// application-level existence checks are only an optimization.
type Vote struct {
	ID             int       `gorm:"primaryKey" json:"id"`
	EventID        int       `gorm:"uniqueIndex:idx_votes_event_program_employee" json:"eventId"`
	ProgramID      int       `gorm:"uniqueIndex:idx_votes_event_program_employee" json:"programId"`
	EmployeeID     int       `gorm:"uniqueIndex:idx_votes_event_program_employee" json:"employeeId"`
	StagePresence  int       `json:"stagePresence"`
	Performance    int       `json:"performance"`
	Popularity     int       `json:"popularity"`
	Teamwork       int       `json:"teamwork"`
	Creativity     int       `json:"creativity"`
	CompositeScore float64   `json:"compositeScore"`
	SubmittedAt    time.Time `json:"submittedAt"`
	IPAddress      string    `gorm:"size:64" json:"-"`
	UserAgent      string    `gorm:"size:256" json:"-"`
	DeviceID       string    `gorm:"size:64" json:"-"`
}

// Scores repacks the vote's five columns into the domain value type.
func (v *Vote) Scores() voting.Scores {
	return voting.Scores{
		StagePresence: v.StagePresence,
		Performance:   v.Performance,
		Popularity:    v.Popularity,
		Teamwork:      v.Teamwork,
		Creativity:    v.Creativity,
	}
}

// ProgramStatistic is one running-aggregate row per (program, dimension),
// pre-seeded at zero when the program is created and updated in the same
// transaction as every vote insert or delete.
type ProgramStatistic struct {
	ID            int       `gorm:"primaryKey" json:"-"`
	EventID       int       `gorm:"uniqueIndex:idx_stats_event_program_dimension" json:"eventId"`
	ProgramID     int       `gorm:"uniqueIndex:idx_stats_event_program_dimension" json:"programId"`
	Dimension     string    `gorm:"size:32;uniqueIndex:idx_stats_event_program_dimension" json:"dimension"`
	TotalStars    int       `gorm:"default:0" json:"totalStars"`
	VoteCount     int       `gorm:"default:0" json:"voteCount"`
	FiveStarCount int       `gorm:"default:0" json:"fiveStarCount"`
	AvgScore      float64   `gorm:"default:0" json:"avgScore"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type AwardResult struct {
	ID                 int       `gorm:"primaryKey" json:"-"`
	EventID            int       `gorm:"uniqueIndex:idx_awards_event_type" json:"eventId"`
	AwardType          string    `gorm:"size:32;uniqueIndex:idx_awards_event_type" json:"awardType"`
	ProgramID          int       `json:"programId"`
	CoreDimensionScore int       `json:"coreDimensionScore"`
	CreatedAt          time.Time `json:"createdAt"`
	PublishedAt        time.Time `json:"publishedAt"`
}

// UserSession is one login session per (employee, event); re-login replaces
// the previous token hash.
type UserSession struct {
	ID         int       `gorm:"primaryKey" json:"-"`
	EmployeeID int       `gorm:"uniqueIndex:idx_sessions_employee_event" json:"employeeId"`
	EventID    int       `gorm:"uniqueIndex:idx_sessions_employee_event" json:"eventId"`
	TokenHash  string    `gorm:"size:64;index" json:"-"`
	ExpiresAt  time.Time `json:"expiresAt"`
	IPAddress  string    `gorm:"size:64" json:"-"`
	UserAgent  string    `gorm:"size:256" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LoginAttempt backs the login throttle. Attempts live in the shared store
// so throttling holds across multiple server processes.
type LoginAttempt struct {
	ID          int       `gorm:"primaryKey"`
	Identity    string    `gorm:"size:128;index"`
	AttemptedAt time.Time `gorm:"index"`
}
