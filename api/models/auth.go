package models

import "github.com/pwbcr2502-crypto/galass/storage"

type LoginRequest struct {
	EventCode string `json:"eventCode" binding:"required,min=3,max=32"`
	EmpNo     string `json:"empNo" binding:"required,min=3,max=32,empno"`
}

type LoginEmployee struct {
	ID         int    `json:"id"`
	EmpNo      string `json:"empNo"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

type LoginEvent struct {
	ID     int    `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Status int    `json:"status"`
}

type LoginResponse struct {
	Token         string        `json:"token"`
	Employee      LoginEmployee `json:"employee"`
	Event         LoginEvent    `json:"event"`
	HasVoted      bool          `json:"hasVoted"`
	VotedPrograms []int         `json:"votedPrograms"`
}

func TransformLoginEmployee(e *storage.Employee) LoginEmployee {
	return LoginEmployee{
		ID:         e.ID,
		EmpNo:      e.EmpNo,
		Name:       e.Name,
		Department: e.Department,
	}
}

func TransformLoginEvent(e *storage.Event) LoginEvent {
	return LoginEvent{
		ID:     e.ID,
		Code:   e.Code,
		Name:   e.Name,
		Status: e.Status,
	}
}
