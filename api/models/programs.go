package models

import (
	"time"

	"github.com/pwbcr2502-crypto/galass/storage"
)

type ProgramResponse struct {
	ID              int        `json:"id"`
	EventID         int        `json:"eventId"`
	SeqNo           int        `json:"seqNo"`
	Title           string     `json:"title"`
	Performer       string     `json:"performer"`
	Description     string     `json:"description"`
	DurationMinutes int        `json:"durationMinutes"`
	Status          int        `json:"status"`
	VoteStartAt     *time.Time `json:"voteStartAt"`
	VoteEndAt       *time.Time `json:"voteEndAt"`
	IsVotingActive  bool       `json:"isVotingActive"`
	RemainingTime   int        `json:"remainingTime"`
}

// TransformProgramFromStorage snapshots window liveness at transform time so
// clients see a consistent remaining-time value.
func TransformProgramFromStorage(p *storage.Program, now time.Time) ProgramResponse {
	return ProgramResponse{
		ID:              p.ID,
		EventID:         p.EventID,
		SeqNo:           p.SeqNo,
		Title:           p.Title,
		Performer:       p.Performer,
		Description:     p.Description,
		DurationMinutes: p.DurationMinutes,
		Status:          p.Status,
		VoteStartAt:     p.VoteStartAt,
		VoteEndAt:       p.VoteEndAt,
		IsVotingActive:  p.IsVotingActive(now),
		RemainingTime:   p.RemainingVoteTime(now),
	}
}

type ProgramWithStatistics struct {
	ProgramResponse
	Statistics *storage.ProgramStatisticsView `json:"statistics"`
	HasVoted   bool                           `json:"hasVoted"`
}

type ProgramCreateRequest struct {
	SeqNo           int    `json:"seqNo" binding:"required,min=1"`
	Title           string `json:"title" binding:"required,max=128"`
	Performer       string `json:"performer" binding:"required,max=128"`
	Description     string `json:"description" binding:"max=512"`
	DurationMinutes int    `json:"durationMinutes" binding:"omitempty,min=1,max=120"`
}

type ProgramImportRequest struct {
	EventID  int                    `json:"eventId" binding:"required"`
	Programs []ProgramCreateRequest `json:"programs" binding:"required,min=1,dive"`
}
