package storage

import (
	"context"
	"time"

	"github.com/pwbcr2502-crypto/galass/voting"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PublishedAward joins an award result with its winning program.
type PublishedAward struct {
	AwardType          string    `json:"awardType"`
	ProgramID          int       `json:"programId"`
	SeqNo              int       `json:"seqNo"`
	Title              string    `json:"title"`
	Performer          string    `json:"performer"`
	CoreDimensionScore int       `json:"coreDimensionScore"`
	PublishedAt        time.Time `json:"publishedAt"`
}

type AwardStorage interface {
	ProgramTotals(ctx context.Context, eventID int) ([]voting.ProgramTotals, error)
	SaveResults(ctx context.Context, eventID int, winners []voting.AwardWinner) error
	GetPublished(ctx context.Context, eventID int) ([]*PublishedAward, error)
}

type GormAwardStorage struct {
	DB *gorm.DB
}

// ProgramTotals reads the resolver's input: per-program per-dimension total
// stars from the aggregate rows, ordered by sequence number.
func (s *GormAwardStorage) ProgramTotals(ctx context.Context, eventID int) ([]voting.ProgramTotals, error) {
	var programs []*Program
	err := s.DB.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("seq_no ASC").
		Find(&programs).Error
	if err != nil {
		return nil, err
	}

	var stats []*ProgramStatistic
	if err := s.DB.WithContext(ctx).Where("event_id = ?", eventID).Find(&stats).Error; err != nil {
		return nil, err
	}

	byProgram := make(map[int]map[voting.Dimension]int, len(programs))
	for _, stat := range stats {
		if byProgram[stat.ProgramID] == nil {
			byProgram[stat.ProgramID] = make(map[voting.Dimension]int, len(voting.Dimensions))
		}
		byProgram[stat.ProgramID][voting.Dimension(stat.Dimension)] = stat.TotalStars
	}

	totals := make([]voting.ProgramTotals, 0, len(programs))
	for _, program := range programs {
		dims := byProgram[program.ID]
		if dims == nil {
			dims = make(map[voting.Dimension]int)
		}
		totals = append(totals, voting.ProgramTotals{
			ProgramID: program.ID,
			SeqNo:     program.SeqNo,
			Title:     program.Title,
			Performer: program.Performer,
			Totals:    dims,
		})
	}
	return totals, nil
}

// SaveResults upserts one row per (event, award type), overwriting any
// previous winner and refreshing the publish timestamp. All results of one
// resolver run commit together.
func (s *GormAwardStorage) SaveResults(ctx context.Context, eventID int, winners []voting.AwardWinner) error {
	now := time.Now().UTC()
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, winner := range winners {
			result := &AwardResult{
				EventID:            eventID,
				AwardType:          string(winner.Definition.Type),
				ProgramID:          winner.Program.ProgramID,
				CoreDimensionScore: winner.Score,
				CreatedAt:          now,
				PublishedAt:        now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "event_id"}, {Name: "award_type"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"program_id", "core_dimension_score", "published_at",
				}),
			}).Create(result).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormAwardStorage) GetPublished(ctx context.Context, eventID int) ([]*PublishedAward, error) {
	var rows []*PublishedAward
	err := s.DB.WithContext(ctx).
		Table("award_results ar").
		Select("ar.award_type, ar.program_id, p.seq_no, p.title, p.performer, ar.core_dimension_score, ar.published_at").
		Joins("JOIN programs p ON ar.program_id = p.id").
		Where("ar.event_id = ?", eventID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Return in award priority order.
	priority := make(map[string]int, len(voting.AwardDefinitions))
	for i, def := range voting.AwardDefinitions {
		priority[string(def.Type)] = i
	}
	ordered := make([]*PublishedAward, 0, len(rows))
	for i := range voting.AwardDefinitions {
		for _, row := range rows {
			if priority[row.AwardType] == i {
				ordered = append(ordered, row)
			}
		}
	}
	return ordered, nil
}
