package models

import (
	"time"

	"github.com/pwbcr2502-crypto/galass/storage"
	"github.com/pwbcr2502-crypto/galass/voting"
)

type ScoresPayload struct {
	StagePresence int `json:"stagePresence" binding:"required,min=1,max=5"`
	Performance   int `json:"performance" binding:"required,min=1,max=5"`
	Popularity    int `json:"popularity" binding:"required,min=1,max=5"`
	Teamwork      int `json:"teamwork" binding:"required,min=1,max=5"`
	Creativity    int `json:"creativity" binding:"required,min=1,max=5"`
}

func (p ScoresPayload) ToScores() voting.Scores {
	return voting.Scores{
		StagePresence: p.StagePresence,
		Performance:   p.Performance,
		Popularity:    p.Popularity,
		Teamwork:      p.Teamwork,
		Creativity:    p.Creativity,
	}
}

type SubmitVotePayload struct {
	ProgramID int           `json:"programId" binding:"required"`
	Scores    ScoresPayload `json:"scores" binding:"required"`
	DeviceID  string        `json:"deviceId" binding:"max=128"`
}

type VoteResponse struct {
	ID             int           `json:"id"`
	ProgramID      int           `json:"programId"`
	Scores         ScoresPayload `json:"scores"`
	CompositeScore float64       `json:"compositeScore"`
	SubmittedAt    time.Time     `json:"submittedAt"`
}

func TransformVoteFromStorage(v *storage.Vote) VoteResponse {
	return VoteResponse{
		ID:        v.ID,
		ProgramID: v.ProgramID,
		Scores: ScoresPayload{
			StagePresence: v.StagePresence,
			Performance:   v.Performance,
			Popularity:    v.Popularity,
			Teamwork:      v.Teamwork,
			Creativity:    v.Creativity,
		},
		CompositeScore: v.CompositeScore,
		SubmittedAt:    v.SubmittedAt,
	}
}

// SubmitVoteResult carries the fresh statistics and the next pending program
// so the client can advance without extra round trips.
type SubmitVoteResult struct {
	Vote        VoteResponse                   `json:"vote"`
	Statistics  *storage.ProgramStatisticsView `json:"statistics"`
	NextProgram *ProgramResponse               `json:"nextProgram"`
}

type CanVoteResponse struct {
	CanVote       bool   `json:"canVote"`
	Reason        string `json:"reason,omitempty"`
	RemainingTime int    `json:"remainingTime"`
}
