package models

import (
	"time"

	"github.com/pwbcr2502-crypto/galass/storage"
	"github.com/pwbcr2502-crypto/galass/voting"
)

type WeightsPayload struct {
	StagePresence float64 `json:"stagePresence"`
	Performance   float64 `json:"performance"`
	Popularity    float64 `json:"popularity"`
	Teamwork      float64 `json:"teamwork"`
	Creativity    float64 `json:"creativity"`
}

type EventCreateRequest struct {
	Code                 string          `json:"code" binding:"omitempty,min=2,max=32"`
	Name                 string          `json:"name" binding:"required,max=128"`
	VotingMode           string          `json:"votingMode" binding:"omitempty,oneof=per_program unified"`
	DefaultWindowSeconds int             `json:"defaultWindowSeconds" binding:"omitempty,min=30,max=3600"`
	Weights              *WeightsPayload `json:"weights"`
}

type EventUpdateRequest struct {
	Name                 string          `json:"name" binding:"omitempty,max=128"`
	VotingMode           string          `json:"votingMode" binding:"omitempty,oneof=per_program unified"`
	DefaultWindowSeconds int             `json:"defaultWindowSeconds" binding:"omitempty,min=30,max=3600"`
	Weights              *WeightsPayload `json:"weights"`
}

type EventResponse struct {
	ID                   int            `json:"id"`
	Code                 string         `json:"code"`
	Name                 string         `json:"name"`
	VotingMode           string         `json:"votingMode"`
	DefaultWindowSeconds int            `json:"defaultWindowSeconds"`
	Weights              WeightsPayload `json:"weights"`
	Status               int            `json:"status"`
}

func TransformEventFromStorage(e *storage.Event) EventResponse {
	return EventResponse{
		ID:                   e.ID,
		Code:                 e.Code,
		Name:                 e.Name,
		VotingMode:           e.VotingMode,
		DefaultWindowSeconds: e.DefaultWindowSeconds,
		Weights: WeightsPayload{
			StagePresence: e.WeightStagePresence,
			Performance:   e.WeightPerformance,
			Popularity:    e.WeightPopularity,
			Teamwork:      e.WeightTeamwork,
			Creativity:    e.WeightCreativity,
		},
		Status: e.Status,
	}
}

// VoteWindowRequest drives the open/close lifecycle for one program.
type VoteWindowRequest struct {
	Action   string `json:"action" binding:"required,oneof=open close"`
	Duration int    `json:"duration" binding:"omitempty,min=30,max=3600"`
}

type EmployeeCreateRequest struct {
	EmpNo      string `json:"empNo" binding:"required,min=3,max=32,empno"`
	Name       string `json:"name" binding:"required,max=64"`
	Department string `json:"department" binding:"max=64"`
}

type EmployeeImportRequest struct {
	Employees []EmployeeCreateRequest `json:"employees" binding:"required,min=1,dive"`
}

type EmployeeResponse struct {
	ID          int        `json:"id"`
	EmpNo       string     `json:"empNo"`
	Name        string     `json:"name"`
	Department  string     `json:"department"`
	Status      int        `json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

func TransformEmployeeFromStorage(e *storage.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID,
		EmpNo:       e.EmpNo,
		Name:        e.Name,
		Department:  e.Department,
		Status:      e.Status,
		LastLoginAt: e.LastLoginAt,
	}
}

type EmployeeListResponse struct {
	Total     int64              `json:"total"`
	Employees []EmployeeResponse `json:"employees"`
}

type AwardResponse struct {
	AwardType          string    `json:"awardType"`
	AwardName          string    `json:"awardName"`
	ProgramID          int       `json:"programId"`
	ProgramTitle       string    `json:"programTitle"`
	Performer          string    `json:"performer"`
	CoreDimensionScore int       `json:"coreDimensionScore"`
	PublishedAt        time.Time `json:"publishedAt"`
}

func TransformAwardFromStorage(a *storage.PublishedAward) AwardResponse {
	name := a.AwardType
	for _, def := range voting.AwardDefinitions {
		if string(def.Type) == a.AwardType {
			name = def.Name
			break
		}
	}
	return AwardResponse{
		AwardType:          a.AwardType,
		AwardName:          name,
		ProgramID:          a.ProgramID,
		ProgramTitle:       a.Title,
		Performer:          a.Performer,
		CoreDimensionScore: a.CoreDimensionScore,
		PublishedAt:        a.PublishedAt,
	}
}

type DashboardResponse struct {
	Event    EventResponse              `json:"event"`
	Summary  *storage.EventSummary       `json:"summary"`
	Progress []*storage.ProgramProgress  `json:"progress"`
	Current  *ProgramResponse            `json:"currentProgram"`
	Top      []*storage.LeaderboardEntry `json:"top"`
}
