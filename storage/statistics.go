package storage

import (
	"context"
	"fmt"

	"github.com/pwbcr2502-crypto/galass/voting"
	"gorm.io/gorm"
)

// CompositeStatistic is the read-time projection across the five dimension
// rows of one program. It is derived on every read, never stored.
type CompositeStatistic struct {
	TotalScore int     `json:"totalScore"`
	AvgScore   float64 `json:"avgScore"`
	VoteCount  int     `json:"voteCount"`
}

// ProgramStatisticsView bundles the five per-dimension aggregates with their
// composite projection.
type ProgramStatisticsView struct {
	Dimensions map[string]*ProgramStatistic `json:"dimensions"`
	Composite  CompositeStatistic           `json:"composite"`
}

// LeaderboardEntry is one ranked program for a dimension or the composite.
type LeaderboardEntry struct {
	ProgramID  int     `json:"programId"`
	SeqNo      int     `json:"seqNo"`
	Title      string  `json:"title"`
	Performer  string  `json:"performer"`
	TotalStars int     `json:"totalStars"`
	AvgScore   float64 `json:"avgScore"`
	VoteCount  int     `json:"voteCount"`
}

// EventSummary aggregates event-wide voting counters.
type EventSummary struct {
	TotalVotes   int     `json:"totalVotes"`
	UniqueVoters int     `json:"uniqueVoters"`
	AvgComposite float64 `json:"avgCompositeScore"`
}

// ProgramProgress reports per-program participation.
type ProgramProgress struct {
	ProgramID int    `json:"programId"`
	SeqNo     int    `json:"seqNo"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	VoteCount int    `json:"voteCount"`
}

type StatisticStorage interface {
	GetByProgram(ctx context.Context, eventID, programID int) (*ProgramStatisticsView, error)
	Leaderboard(ctx context.Context, eventID int, dimension string, limit int) ([]*LeaderboardEntry, error)
	EventSummary(ctx context.Context, eventID int) (*EventSummary, error)
	VotingProgress(ctx context.Context, eventID int) ([]*ProgramProgress, error)
}

type GormStatisticStorage struct {
	DB *gorm.DB
}

func (s *GormStatisticStorage) GetByProgram(ctx context.Context, eventID, programID int) (*ProgramStatisticsView, error) {
	var rows []*ProgramStatistic
	err := s.DB.WithContext(ctx).
		Where("event_id = ? AND program_id = ?", eventID, programID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	view := &ProgramStatisticsView{Dimensions: make(map[string]*ProgramStatistic, len(rows))}
	for _, row := range rows {
		view.Dimensions[row.Dimension] = row
		view.Composite.TotalScore += row.TotalStars
		if row.VoteCount > view.Composite.VoteCount {
			view.Composite.VoteCount = row.VoteCount
		}
	}
	if view.Composite.VoteCount > 0 {
		view.Composite.AvgScore = float64(view.Composite.TotalScore) / float64(view.Composite.VoteCount)
	}
	return view, nil
}

// Leaderboard ranks an event's programs by one dimension, or by summed total
// stars across all dimensions for "composite". An empty dimension means
// composite, which is what the default leaderboard and dashboard ask for.
func (s *GormStatisticStorage) Leaderboard(ctx context.Context, eventID int, dimension string, limit int) ([]*LeaderboardEntry, error) {
	if limit < 1 {
		limit = 10
	}

	var entries []*LeaderboardEntry
	if dimension == "" || dimension == "composite" {
		err := s.DB.WithContext(ctx).
			Table("program_statistics ps").
			Select(`ps.program_id, p.seq_no, p.title, p.performer,
				SUM(ps.total_stars) AS total_stars,
				MAX(ps.vote_count) AS vote_count,
				CASE WHEN MAX(ps.vote_count) > 0 THEN SUM(ps.total_stars) * 1.0 / MAX(ps.vote_count) ELSE 0 END AS avg_score`).
			Joins("JOIN programs p ON ps.program_id = p.id").
			Where("ps.event_id = ?", eventID).
			Group("ps.program_id, p.seq_no, p.title, p.performer").
			Order("total_stars DESC, vote_count DESC, p.seq_no ASC").
			Limit(limit).
			Scan(&entries).Error
		if err != nil {
			return nil, err
		}
		return entries, nil
	}

	if !voting.IsValidDimension(dimension) {
		return nil, fmt.Errorf("invalid dimension %q", dimension)
	}
	err := s.DB.WithContext(ctx).
		Table("program_statistics ps").
		Select("ps.program_id, p.seq_no, p.title, p.performer, ps.total_stars, ps.avg_score, ps.vote_count").
		Joins("JOIN programs p ON ps.program_id = p.id").
		Where("ps.event_id = ? AND ps.dimension = ?", eventID, dimension).
		Order("ps.total_stars DESC, ps.vote_count DESC, p.seq_no ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *GormStatisticStorage) EventSummary(ctx context.Context, eventID int) (*EventSummary, error) {
	var summary EventSummary
	err := s.DB.WithContext(ctx).
		Table("votes").
		Select(`COUNT(*) AS total_votes,
			COUNT(DISTINCT employee_id) AS unique_voters,
			COALESCE(AVG(composite_score), 0) AS avg_composite`).
		Where("event_id = ?", eventID).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *GormStatisticStorage) VotingProgress(ctx context.Context, eventID int) ([]*ProgramProgress, error) {
	var progress []*ProgramProgress
	err := s.DB.WithContext(ctx).
		Table("programs p").
		Select("p.id AS program_id, p.seq_no, p.title, p.status, COUNT(v.id) AS vote_count").
		Joins("LEFT JOIN votes v ON p.id = v.program_id").
		Where("p.event_id = ?", eventID).
		Group("p.id, p.seq_no, p.title, p.status").
		Order("p.seq_no ASC").
		Scan(&progress).Error
	if err != nil {
		return nil, err
	}
	return progress, nil
}
