package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pwbcr2502-crypto/galass/logging"
	"github.com/pwbcr2502-crypto/galass/voting"
	"gorm.io/gorm"
)

// SubmitVoteRequest carries everything one submission needs. Weights nil
// means equal weighting (composite = plain sum of the five scores).
type SubmitVoteRequest struct {
	EventID    int
	ProgramID  int
	EmployeeID int
	Scores     voting.Scores
	Weights    voting.Weights
	IPAddress  string
	UserAgent  string
	DeviceID   string
}

type VoteStorage interface {
	Submit(ctx context.Context, req SubmitVoteRequest) (*Vote, error)
	Get(ctx context.Context, id int) (*Vote, error)
	GetExisting(ctx context.Context, eventID, programID, employeeID int) (*Vote, error)
	GetByEmployee(ctx context.Context, eventID, employeeID int) ([]*Vote, error)
	GetByProgram(ctx context.Context, programID int) ([]*Vote, error)
	Delete(ctx context.Context, id int) error
	ExportRows(ctx context.Context, eventID int) ([]*VoteExportRow, error)
}

type GormVoteStorage struct {
	DB *gorm.DB
}

// Submit records one vote. The precondition checks, the insert and all five
// statistic updates run as one transaction: either everything is visible or
// nothing is. The duplicate pre-check is an optimization only; the unique
// index on (event, program, employee) decides races between concurrent
// submissions, and its violation surfaces as a duplicate-vote rejection.
func (s *GormVoteStorage) Submit(ctx context.Context, req SubmitVoteRequest) (*Vote, error) {
	if err := req.Scores.Validate(); err != nil {
		return nil, err
	}

	var vote *Vote
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var program Program
		if err := tx.First(&program, req.ProgramID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if program.EventID != req.EventID {
			return ErrNotFound
		}

		if err := voting.ActiveError(program.Status, program.VoteEndAt, time.Now().UTC()); err != nil {
			return err
		}

		var existing Vote
		err := tx.Where("event_id = ? AND program_id = ? AND employee_id = ?",
			req.EventID, req.ProgramID, req.EmployeeID).
			First(&existing).Error
		if err == nil {
			return voting.ErrDuplicateVote
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		vote = &Vote{
			EventID:        req.EventID,
			ProgramID:      req.ProgramID,
			EmployeeID:     req.EmployeeID,
			StagePresence:  req.Scores.StagePresence,
			Performance:    req.Scores.Performance,
			Popularity:     req.Scores.Popularity,
			Teamwork:       req.Scores.Teamwork,
			Creativity:     req.Scores.Creativity,
			CompositeScore: req.Scores.Composite(req.Weights),
			SubmittedAt:    time.Now().UTC(),
			IPAddress:      req.IPAddress,
			UserAgent:      req.UserAgent,
			DeviceID:       req.DeviceID,
		}
		if err := tx.Create(vote).Error; err != nil {
			if isDuplicateKeyErr(err) {
				// Race loser: another submission for the same triple
				// committed first.
				return voting.ErrDuplicateVote
			}
			return err
		}

		for _, d := range voting.Dimensions {
			if err := applyStatisticDelta(tx, req.EventID, req.ProgramID, d, req.Scores.ByDimension(d)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vote, nil
}

// applyStatisticDelta folds one score into a (program, dimension) aggregate
// row. avg_score is assigned first so it reads the pre-increment totals on
// engines that apply SET clauses left to right; the arithmetic itself uses
// the post-increment values.
func applyStatisticDelta(tx *gorm.DB, eventID, programID int, dimension voting.Dimension, score int) error {
	fiveStar := 0
	if score == voting.MaxScore {
		fiveStar = 1
	}

	res := tx.Exec(`UPDATE program_statistics SET
		avg_score = (total_stars + ?) * 1.0 / (vote_count + 1),
		total_stars = total_stars + ?,
		vote_count = vote_count + 1,
		five_star_count = five_star_count + ?,
		updated_at = ?
		WHERE event_id = ? AND program_id = ? AND dimension = ?`,
		score, score, fiveStar, time.Now().UTC(), eventID, programID, string(dimension))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		// Statistic rows are seeded at program creation, so a miss means
		// corrupted data, not a first vote.
		return fmt.Errorf("statistic row missing for program %d dimension %s", programID, dimension)
	}
	return nil
}

// reverseStatisticDelta backs one score out again, clamping the counters at
// zero.
func reverseStatisticDelta(tx *gorm.DB, eventID, programID int, dimension voting.Dimension, score int) error {
	fiveStar := 0
	if score == voting.MaxScore {
		fiveStar = 1
	}

	res := tx.Exec(`UPDATE program_statistics SET
		avg_score = CASE WHEN vote_count - 1 > 0 THEN (total_stars - ?) * 1.0 / (vote_count - 1) ELSE 0 END,
		total_stars = CASE WHEN total_stars - ? < 0 THEN 0 ELSE total_stars - ? END,
		vote_count = CASE WHEN vote_count - 1 < 0 THEN 0 ELSE vote_count - 1 END,
		five_star_count = CASE WHEN five_star_count - ? < 0 THEN 0 ELSE five_star_count - ? END,
		updated_at = ?
		WHERE event_id = ? AND program_id = ? AND dimension = ?`,
		score, score, score, fiveStar, fiveStar, time.Now().UTC(), eventID, programID, string(dimension))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("statistic row missing for program %d dimension %s", programID, dimension)
	}
	return nil
}

func (s *GormVoteStorage) Get(ctx context.Context, id int) (*Vote, error) {
	var vote Vote
	if err := s.DB.WithContext(ctx).First(&vote, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vote, nil
}

func (s *GormVoteStorage) GetExisting(ctx context.Context, eventID, programID, employeeID int) (*Vote, error) {
	var vote Vote
	err := s.DB.WithContext(ctx).
		Where("event_id = ? AND program_id = ? AND employee_id = ?", eventID, programID, employeeID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vote, nil
}

func (s *GormVoteStorage) GetByEmployee(ctx context.Context, eventID, employeeID int) ([]*Vote, error) {
	var votes []*Vote
	err := s.DB.WithContext(ctx).
		Where("event_id = ? AND employee_id = ?", eventID, employeeID).
		Order("submitted_at DESC").
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (s *GormVoteStorage) GetByProgram(ctx context.Context, programID int) ([]*Vote, error) {
	var votes []*Vote
	err := s.DB.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("submitted_at DESC").
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// Delete is the administrative correction path. It reverses the statistics
// delta and removes the vote row with the same transactional discipline as
// Submit.
func (s *GormVoteStorage) Delete(ctx context.Context, id int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vote Vote
		if err := tx.First(&vote, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		scores := vote.Scores()
		for _, d := range voting.Dimensions {
			if err := reverseStatisticDelta(tx, vote.EventID, vote.ProgramID, d, scores.ByDimension(d)); err != nil {
				return err
			}
		}

		if err := tx.Delete(&Vote{}, vote.ID).Error; err != nil {
			return err
		}
		logging.Log.Infof("VOTE: deleted vote %d for program %d (correction)", vote.ID, vote.ProgramID)
		return nil
	})
}

// VoteExportRow is one denormalized line of the administrative export.
type VoteExportRow struct {
	VoteID         int       `json:"voteId"`
	SeqNo          int       `json:"programSeq"`
	ProgramTitle   string    `json:"programTitle"`
	Performer      string    `json:"performer"`
	EmpNo          string    `json:"empNo"`
	EmployeeName   string    `json:"employeeName"`
	Department     string    `json:"department"`
	StagePresence  int       `json:"stagePresence"`
	Performance    int       `json:"performance"`
	Popularity     int       `json:"popularity"`
	Teamwork       int       `json:"teamwork"`
	Creativity     int       `json:"creativity"`
	CompositeScore float64   `json:"compositeScore"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

func (s *GormVoteStorage) ExportRows(ctx context.Context, eventID int) ([]*VoteExportRow, error) {
	var rows []*VoteExportRow
	err := s.DB.WithContext(ctx).
		Table("votes v").
		Select(`v.id AS vote_id, p.seq_no, p.title AS program_title, p.performer,
			e.emp_no, e.name AS employee_name, e.department,
			v.stage_presence, v.performance, v.popularity, v.teamwork, v.creativity,
			v.composite_score, v.submitted_at`).
		Joins("JOIN employees e ON v.employee_id = e.id").
		Joins("JOIN programs p ON v.program_id = p.id").
		Where("v.event_id = ?", eventID).
		Order("p.seq_no, v.submitted_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
