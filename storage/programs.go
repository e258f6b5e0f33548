package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pwbcr2502-crypto/galass/voting"
	"gorm.io/gorm"
)

type ProgramStorage interface {
	Get(ctx context.Context, id int) (*Program, error)
	GetByEvent(ctx context.Context, eventID int) ([]*Program, error)
	GetCurrentVoting(ctx context.Context, eventID int) (*Program, error)
	GetNext(ctx context.Context, eventID int, afterSeqNo int) (*Program, error)
	GetLastClosedSeqNo(ctx context.Context, eventID int) (int, error)
	Create(ctx context.Context, program *Program) error
	BatchCreate(ctx context.Context, programs []*Program) error
	OpenVoteWindow(ctx context.Context, id int, duration time.Duration) (*Program, error)
	CloseVoteWindow(ctx context.Context, id int) (*Program, error)
}

type GormProgramStorage struct {
	DB *gorm.DB
}

func (s *GormProgramStorage) Get(ctx context.Context, id int) (*Program, error) {
	var program Program
	if err := s.DB.WithContext(ctx).First(&program, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

func (s *GormProgramStorage) GetByEvent(ctx context.Context, eventID int) ([]*Program, error) {
	var programs []*Program
	err := s.DB.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("seq_no ASC").
		Find(&programs).Error
	if err != nil {
		return nil, err
	}
	return programs, nil
}

func (s *GormProgramStorage) GetCurrentVoting(ctx context.Context, eventID int) (*Program, error) {
	var program Program
	err := s.DB.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, voting.StatusVotingOpen).
		Order("seq_no ASC").
		First(&program).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

func (s *GormProgramStorage) GetNext(ctx context.Context, eventID int, afterSeqNo int) (*Program, error) {
	var program Program
	err := s.DB.WithContext(ctx).
		Where("event_id = ? AND seq_no > ? AND status = ?", eventID, afterSeqNo, voting.StatusNotStarted).
		Order("seq_no ASC").
		First(&program).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

// GetLastClosedSeqNo finds the sequence number of the latest closed program,
// used to find the next program when no window is open.
func (s *GormProgramStorage) GetLastClosedSeqNo(ctx context.Context, eventID int) (int, error) {
	var program Program
	err := s.DB.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, voting.StatusVotingClosed).
		Order("seq_no DESC").
		First(&program).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return program.SeqNo, nil
}

// Create stores the program and pre-seeds its five zero statistic rows in
// the same transaction. Statistic rows are never created lazily on first
// vote.
func (s *GormProgramStorage) Create(ctx context.Context, program *Program) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createProgramWithStatistics(tx, program)
	})
}

func (s *GormProgramStorage) BatchCreate(ctx context.Context, programs []*Program) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, program := range programs {
			if err := createProgramWithStatistics(tx, program); err != nil {
				return err
			}
		}
		return nil
	})
}

func createProgramWithStatistics(tx *gorm.DB, program *Program) error {
	if program.CreatedAt.IsZero() {
		program.CreatedAt = time.Now().UTC()
	}
	if program.DurationMinutes == 0 {
		program.DurationMinutes = 5
	}
	if err := tx.Create(program).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return ErrItemWithIDAlreadyExists
		}
		return err
	}
	for _, d := range voting.Dimensions {
		stat := &ProgramStatistic{
			EventID:   program.EventID,
			ProgramID: program.ID,
			Dimension: string(d),
			UpdatedAt: time.Now().UTC(),
		}
		if err := tx.Create(stat).Error; err != nil {
			return err
		}
	}
	return nil
}

// OpenVoteWindow transitions a program to voting_open for the given
// duration. Exclusivity is enforced here, not by the schema: any other
// program of the same event still open is force-closed first, inside the
// same transaction.
func (s *GormProgramStorage) OpenVoteWindow(ctx context.Context, id int, duration time.Duration) (*Program, error) {
	var program Program
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&program, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now().UTC()
		err := tx.Model(&Program{}).
			Where("event_id = ? AND status = ? AND id <> ?", program.EventID, voting.StatusVotingOpen, program.ID).
			Updates(map[string]interface{}{
				"status":      voting.StatusVotingClosed,
				"vote_end_at": now,
			}).Error
		if err != nil {
			return err
		}

		endAt := now.Add(duration)
		program.Status = voting.StatusVotingOpen
		program.VoteStartAt = &now
		program.VoteEndAt = &endAt
		return tx.Model(&program).Updates(map[string]interface{}{
			"status":        voting.StatusVotingOpen,
			"vote_start_at": now,
			"vote_end_at":   endAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &program, nil
}

// CloseVoteWindow transitions voting_open to voting_closed with end = now,
// an explicit admin override even when the timed window has not elapsed.
func (s *GormProgramStorage) CloseVoteWindow(ctx context.Context, id int) (*Program, error) {
	var program Program
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&program, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		switch program.Status {
		case voting.StatusNotStarted:
			return voting.ErrVotingNotStarted
		case voting.StatusVotingClosed:
			return voting.ErrVotingClosed
		}

		now := time.Now().UTC()
		program.Status = voting.StatusVotingClosed
		program.VoteEndAt = &now
		return tx.Model(&program).Updates(map[string]interface{}{
			"status":      voting.StatusVotingClosed,
			"vote_end_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &program, nil
}
