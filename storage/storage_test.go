package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pwbcr2502-crypto/galass/logging"
	"github.com/pwbcr2502-crypto/galass/voting"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logging.Log = logrus.New()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		for _, table := range []string{"votes", "program_statistics", "award_results", "programs", "events", "employees", "user_sessions", "login_attempts"} {
			db.Exec("DELETE FROM " + table)
		}
	})
	return db
}

func seedEvent(t *testing.T, db *gorm.DB) *Event {
	t.Helper()
	event := &Event{
		Code:                 "GALA25",
		Name:                 "25th Anniversary Gala",
		VotingMode:           VotingModePerProgram,
		DefaultWindowSeconds: 300,
		WeightStagePresence:  0.2,
		WeightPerformance:    0.2,
		WeightPopularity:     0.2,
		WeightTeamwork:       0.2,
		WeightCreativity:     0.2,
		Status:               EventStatusActive,
	}
	require.NoError(t, (&GormEventStorage{DB: db}).Create(context.Background(), event))
	return event
}

func seedProgram(t *testing.T, db *gorm.DB, eventID, seqNo int) *Program {
	t.Helper()
	program := &Program{
		EventID:   eventID,
		SeqNo:     seqNo,
		Title:     "Program",
		Performer: "Performer",
	}
	require.NoError(t, (&GormProgramStorage{DB: db}).Create(context.Background(), program))
	return program
}

func seedEmployee(t *testing.T, db *gorm.DB, empNo string) *Employee {
	t.Helper()
	employee := &Employee{EmpNo: empNo, Name: "Employee " + empNo, Department: "Engineering", Status: EmployeeStatusActive, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(employee).Error)
	return employee
}

func openWindow(t *testing.T, db *gorm.DB, programID int) *Program {
	t.Helper()
	program, err := (&GormProgramStorage{DB: db}).OpenVoteWindow(context.Background(), programID, 5*time.Minute)
	require.NoError(t, err)
	return program
}

func TestProgramCreate_SeedsFiveStatisticRows(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	program := seedProgram(t, db, event.ID, 1)

	var stats []*ProgramStatistic
	require.NoError(t, db.Where("program_id = ?", program.ID).Find(&stats).Error)
	require.Len(t, stats, len(voting.Dimensions))
	for _, stat := range stats {
		require.Zero(t, stat.TotalStars)
		require.Zero(t, stat.VoteCount)
		require.Zero(t, stat.FiveStarCount)
		require.Zero(t, stat.AvgScore)
	}
}

func TestOpenVoteWindow_ForceClosesOtherOpenProgram(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	p1 := seedProgram(t, db, event.ID, 1)
	p2 := seedProgram(t, db, event.ID, 2)

	openWindow(t, db, p1.ID)
	openWindow(t, db, p2.ID)

	programStorage := &GormProgramStorage{DB: db}
	reloaded1, err := programStorage.Get(context.Background(), p1.ID)
	require.NoError(t, err)
	require.Equal(t, voting.StatusVotingClosed, reloaded1.Status)

	reloaded2, err := programStorage.Get(context.Background(), p2.ID)
	require.NoError(t, err)
	require.Equal(t, voting.StatusVotingOpen, reloaded2.Status)

	// At most one open program per event.
	var openCount int64
	require.NoError(t, db.Model(&Program{}).
		Where("event_id = ? AND status = ?", event.ID, voting.StatusVotingOpen).
		Count(&openCount).Error)
	require.EqualValues(t, 1, openCount)
}

func TestCloseVoteWindow_AdminOverrideSetsEndToNow(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	program := seedProgram(t, db, event.ID, 1)
	opened := openWindow(t, db, program.ID)
	require.True(t, opened.VoteEndAt.After(time.Now().UTC().Add(4*time.Minute)))

	closed, err := (&GormProgramStorage{DB: db}).CloseVoteWindow(context.Background(), program.ID)
	require.NoError(t, err)
	require.Equal(t, voting.StatusVotingClosed, closed.Status)
	require.WithinDuration(t, time.Now().UTC(), *closed.VoteEndAt, 5*time.Second)
}

func TestCloseVoteWindow_RejectsWrongState(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	program := seedProgram(t, db, event.ID, 1)

	_, err := (&GormProgramStorage{DB: db}).CloseVoteWindow(context.Background(), program.ID)
	require.ErrorIs(t, err, voting.ErrVotingNotStarted)

	openWindow(t, db, program.ID)
	_, err = (&GormProgramStorage{DB: db}).CloseVoteWindow(context.Background(), program.ID)
	require.NoError(t, err)

	_, err = (&GormProgramStorage{DB: db}).CloseVoteWindow(context.Background(), program.ID)
	require.ErrorIs(t, err, voting.ErrVotingClosed)
}

func TestSubmitVote_UpdatesStatisticsPerDimension(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	program := seedProgram(t, db, event.ID, 1)
	employee := seedEmployee(t, db, "E001")
	openWindow(t, db, program.ID)

	voteStorage := &GormVoteStorage{DB: db}
	scores := voting.Scores{StagePresence: 5, Performance: 4, Popularity: 5, Teamwork: 3, Creativity: 4}
	vote, err := voteStorage.Submit(context.Background(), SubmitVoteRequest{
		EventID:    event.ID,
		ProgramID:  program.ID,
		EmployeeID: employee.ID,
		Scores:     scores,
	})
	require.NoError(t, err)
	require.InDelta(t, 21.0, vote.CompositeScore, 0.0001)

	// Each lookup gets its own struct. Reusing one would carry the first
	// row's primary key into the next query's conditions.
	var stagePresence ProgramStatistic
	require.NoError(t, db.Where("program_id = ? AND dimension = ?", program.ID, voting.DimensionStagePresence).First(&stagePresence).Error)
	require.Equal(t, 5, stagePresence.TotalStars)
	require.Equal(t, 1, stagePresence.VoteCount)
	require.Equal(t, 1, stagePresence.FiveStarCount)
	require.InDelta(t, 5.0, stagePresence.AvgScore, 0.0001)

	var teamwork ProgramStatistic
	require.NoError(t, db.Where("program_id = ? AND dimension = ?", program.ID, voting.DimensionTeamwork).First(&teamwork).Error)
	require.Equal(t, 3, teamwork.TotalStars)
	require.Equal(t, 1, teamwork.VoteCount)
	require.Equal(t, 0, teamwork.FiveStarCount)
	require.InDelta(t, 3.0, teamwork.AvgScore, 0.0001)
}

func TestSubmitVote_DuplicateRejectedWithoutStatisticChange(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	program := seedProgram(t, db, event.ID, 1)
	employee := seedEmployee(t, db, "E001")
	openWindow(t, db, program.ID)

	voteStorage := &GormVoteStorage{DB: db}
	scores := voting.Scores{StagePresence: 5, Performance: 4, Popularity: 5, Teamwork: 3, Creativity: 4}
	request := SubmitVoteRequest{EventID: event.ID, ProgramID: program.ID, EmployeeID: employee.ID, Scores: scores}

	_, err := voteStorage.Submit(context.Background(), request)
	require.NoError(t, err)

	_, err = voteStorage.Submit(context.Background(), request)
	require.ErrorIs(t, err, voting.ErrDuplicateVote)

	var stat ProgramStatistic
	require.NoError(t, db.Where("program_id = ? AND dimension = ?", program.ID, voting.DimensionStagePresence).First(&stat).Error)
	require.Equal(t, 5, stat.TotalStars)
	require.Equal(t, 1, stat.VoteCount)
}

func TestSubmitVote_WindowStates(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	employee := seedEmployee(t, db, "E001")
	voteStorage := &GormVoteStorage{DB: db}
	scores := voting.Scores{StagePresence: 3, Performance: 3, Popularity: 3, Teamwork: 3, Creativity: 3}

	// Not started.
	notStarted := seedProgram(t, db, event.ID, 1)
	_, err := voteStorage.Submit(context.Background(), SubmitVoteRequest{
		EventID: event.ID, ProgramID: notStarted.ID, EmployeeID: employee.ID, Scores: scores,
	})
	require.ErrorIs(t, err, voting.ErrVotingNotStarted)

	// Elapsed beyond grace.
	elapsed := seedProgram(t, db, event.ID, 2)
	past := time.Now().UTC().Add(-90 * time.Second)
	start := past.Add(-5 * time.Minute)
	require.NoError(t, db.Model(elapsed).Updates(map[string]interface{}{
		"status": voting.StatusVotingOpen, "vote_start_at": start, "vote_end_at": past,
	}).Error)
	_, err = voteStorage.Submit(context.Background(), SubmitVoteRequest{
		EventID: event.ID, ProgramID: elapsed.ID, EmployeeID: employee.ID, Scores: scores,
	})
	require.ErrorIs(t, err, voting.ErrVotingWindowElapsed)

	// Inside grace: accepted.
	inGrace := seedProgram(t, db, event.ID, 3)
	graceEnd := time.Now().UTC().Add(-30 * time.Second)
	require.NoError(t, db.Model(inGrace).Updates(map[string]interface{}{
		"status": voting.StatusVotingOpen, "vote_start_at": start, "vote_end_at": graceEnd,
	}).Error)
	_, err = voteStorage.Submit(context.Background(), SubmitVoteRequest{
		EventID: event.ID, ProgramID: inGrace.ID, EmployeeID: employee.ID, Scores: scores,
	})
	require.NoError(t, err)

	// Admin closed.
	closed := seedProgram(t, db, event.ID, 4)
	openWindow(t, db, closed.ID)
	_, err = (&GormProgramStorage{DB: db}).CloseVoteWindow(context.Background(), closed.ID)
	require.NoError(t, err)
	_, err = voteStorage.Submit(context.Background(), SubmitVoteRequest{
		EventID: event.ID, ProgramID: closed.ID, EmployeeID: employee.ID, Scores: scores,
	})
	require.ErrorIs(t, err, voting.ErrVotingClosed)
}

func TestSubmitVote_ProgramMustBelongToEvent(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	other := &Event{Code: "OTHER", Name: "Other", Status: EventStatusActive}
	require.NoError(t, (&GormEventStorage{DB: db}).Create(context.Background(), other))

	program := seedProgram(t, db, other.ID, 1)
	openWindow(t, db, program.ID)
	employee := seedEmployee(t, db, "E001")

	_, err := (&GormVoteStorage{DB: db}).Submit(context.Background(), SubmitVoteRequest{
		EventID:    event.ID,
		ProgramID:  program.ID,
		EmployeeID: employee.ID,
		Scores:     voting.Scores{StagePresence: 3, Performance: 3, Popularity: 3, Teamwork: 3, Creativity: 3},
	})
	require.ErrorIs(t, err, ErrNotFound)
}

// Statistics must always equal the replayed sum of the ledger, through any
// sequence of submits and deletes.
func TestStatisticsMatchLedgerAfterSubmitAndDelete(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	program := seedProgram(t, db, event.ID, 1)
	openWindow(t, db, program.ID)

	voteStorage := &GormVoteStorage{DB: db}
	scoreSets := []voting.Scores{
		{StagePresence: 5, Performance: 4, Popularity: 5, Teamwork: 3, Creativity: 4},
		{StagePresence: 2, Performance: 5, Popularity: 3, Teamwork: 5, Creativity: 1},
		{StagePresence: 4, Performance: 4, Popularity: 4, Teamwork: 4, Creativity: 4},
	}

	votes := make([]*Vote, 0, len(scoreSets))
	for i, scores := range scoreSets {
		employee := seedEmployee(t, db, "EMP"+string(rune('A'+i)))
		vote, err := voteStorage.Submit(context.Background(), SubmitVoteRequest{
			EventID: event.ID, ProgramID: program.ID, EmployeeID: employee.ID, Scores: scores,
		})
		require.NoError(t, err)
		votes = append(votes, vote)
	}

	assertStatsMatchLedger(t, db, event.ID, program.ID)

	// Administrative correction removes the middle vote.
	require.NoError(t, voteStorage.Delete(context.Background(), votes[1].ID))
	assertStatsMatchLedger(t, db, event.ID, program.ID)

	// Deleting the rest drains the aggregates back to zero.
	require.NoError(t, voteStorage.Delete(context.Background(), votes[0].ID))
	require.NoError(t, voteStorage.Delete(context.Background(), votes[2].ID))
	assertStatsMatchLedger(t, db, event.ID, program.ID)

	var stat ProgramStatistic
	require.NoError(t, db.Where("program_id = ? AND dimension = ?", program.ID, voting.DimensionPopularity).First(&stat).Error)
	require.Zero(t, stat.TotalStars)
	require.Zero(t, stat.VoteCount)
	require.Zero(t, stat.AvgScore)
}

func assertStatsMatchLedger(t *testing.T, db *gorm.DB, eventID, programID int) {
	t.Helper()

	var votes []*Vote
	require.NoError(t, db.Where("program_id = ?", programID).Find(&votes).Error)

	for _, d := range voting.Dimensions {
		expectedTotal, expectedFive := 0, 0
		for _, vote := range votes {
			score := vote.Scores().ByDimension(d)
			expectedTotal += score
			if score == voting.MaxScore {
				expectedFive++
			}
		}

		var stat ProgramStatistic
		require.NoError(t, db.Where("event_id = ? AND program_id = ? AND dimension = ?", eventID, programID, string(d)).First(&stat).Error)
		require.Equal(t, expectedTotal, stat.TotalStars, "dimension %s", d)
		require.Equal(t, len(votes), stat.VoteCount, "dimension %s", d)
		require.Equal(t, expectedFive, stat.FiveStarCount, "dimension %s", d)
		if len(votes) > 0 {
			require.InDelta(t, float64(expectedTotal)/float64(len(votes)), stat.AvgScore, 0.0001, "dimension %s", d)
		} else {
			require.Zero(t, stat.AvgScore)
		}
	}
}

func TestSubmitVote_RejectsOutOfRangeScores(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	program := seedProgram(t, db, event.ID, 1)
	employee := seedEmployee(t, db, "E001")
	openWindow(t, db, program.ID)

	_, err := (&GormVoteStorage{DB: db}).Submit(context.Background(), SubmitVoteRequest{
		EventID:    event.ID,
		ProgramID:  program.ID,
		EmployeeID: employee.ID,
		Scores:     voting.Scores{StagePresence: 6, Performance: 4, Popularity: 5, Teamwork: 3, Creativity: 4},
	})
	require.ErrorIs(t, err, voting.ErrScoreOutOfRange)
}

func TestAwardResults_UpsertAndPriorityOrder(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	p1 := seedProgram(t, db, event.ID, 1)
	p2 := seedProgram(t, db, event.ID, 2)

	awardStorage := &GormAwardStorage{DB: db}
	winners := []voting.AwardWinner{
		{Definition: voting.AwardDefinitions[4], Program: voting.ProgramTotals{ProgramID: p1.ID}, Score: 40},
		{Definition: voting.AwardDefinitions[0], Program: voting.ProgramTotals{ProgramID: p2.ID}, Score: 38},
	}
	require.NoError(t, awardStorage.SaveResults(context.Background(), event.ID, winners))

	published, err := awardStorage.GetPublished(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, published, 2)
	require.Equal(t, string(voting.AwardBestPopularity), published[0].AwardType)
	require.Equal(t, string(voting.AwardBestStagePresence), published[1].AwardType)

	// Recompute flips the popularity winner; the row is overwritten, not
	// duplicated.
	winners[1].Program.ProgramID = p1.ID
	require.NoError(t, awardStorage.SaveResults(context.Background(), event.ID, winners))

	published, err = awardStorage.GetPublished(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, published, 2)
	require.Equal(t, p1.ID, published[0].ProgramID)
}

func TestAwardStorage_ProgramTotals(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	program := seedProgram(t, db, event.ID, 1)
	employee := seedEmployee(t, db, "E001")
	openWindow(t, db, program.ID)

	_, err := (&GormVoteStorage{DB: db}).Submit(context.Background(), SubmitVoteRequest{
		EventID:    event.ID,
		ProgramID:  program.ID,
		EmployeeID: employee.ID,
		Scores:     voting.Scores{StagePresence: 5, Performance: 4, Popularity: 5, Teamwork: 3, Creativity: 4},
	})
	require.NoError(t, err)

	totals, err := (&GormAwardStorage{DB: db}).ProgramTotals(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	require.Equal(t, program.ID, totals[0].ProgramID)
	require.Equal(t, 5, totals[0].Totals[voting.DimensionPopularity])
	require.Equal(t, 21, totals[0].CompositeTotal())
}

func TestStatisticStorage_CompositeProjection(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	program := seedProgram(t, db, event.ID, 1)
	openWindow(t, db, program.ID)

	voteStorage := &GormVoteStorage{DB: db}
	for i, scores := range []voting.Scores{
		{StagePresence: 5, Performance: 4, Popularity: 5, Teamwork: 3, Creativity: 4},
		{StagePresence: 3, Performance: 3, Popularity: 3, Teamwork: 3, Creativity: 3},
	} {
		employee := seedEmployee(t, db, "EMP"+string(rune('A'+i)))
		_, err := voteStorage.Submit(context.Background(), SubmitVoteRequest{
			EventID: event.ID, ProgramID: program.ID, EmployeeID: employee.ID, Scores: scores,
		})
		require.NoError(t, err)
	}

	view, err := (&GormStatisticStorage{DB: db}).GetByProgram(context.Background(), event.ID, program.ID)
	require.NoError(t, err)
	require.Len(t, view.Dimensions, len(voting.Dimensions))
	require.Equal(t, 36, view.Composite.TotalScore)
	require.Equal(t, 2, view.Composite.VoteCount)
	require.InDelta(t, 18.0, view.Composite.AvgScore, 0.0001)
}

func TestStatisticStorage_Leaderboard(t *testing.T) {
	db := setupTestDB(t)
	event := seedEvent(t, db)
	p1 := seedProgram(t, db, event.ID, 1)
	p2 := seedProgram(t, db, event.ID, 2)

	voteStorage := &GormVoteStorage{DB: db}

	openWindow(t, db, p1.ID)
	employee1 := seedEmployee(t, db, "E001")
	_, err := voteStorage.Submit(context.Background(), SubmitVoteRequest{
		EventID: event.ID, ProgramID: p1.ID, EmployeeID: employee1.ID,
		Scores: voting.Scores{StagePresence: 3, Performance: 3, Popularity: 3, Teamwork: 3, Creativity: 3},
	})
	require.NoError(t, err)

	openWindow(t, db, p2.ID)
	employee2 := seedEmployee(t, db, "E002")
	_, err = voteStorage.Submit(context.Background(), SubmitVoteRequest{
		EventID: event.ID, ProgramID: p2.ID, EmployeeID: employee2.ID,
		Scores: voting.Scores{StagePresence: 5, Performance: 5, Popularity: 5, Teamwork: 5, Creativity: 5},
	})
	require.NoError(t, err)

	entries, err := (&GormStatisticStorage{DB: db}).Leaderboard(context.Background(), event.ID, string(voting.DimensionPopularity), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, p2.ID, entries[0].ProgramID)
	require.Equal(t, 5, entries[0].TotalStars)

	composite, err := (&GormStatisticStorage{DB: db}).Leaderboard(context.Background(), event.ID, "composite", 10)
	require.NoError(t, err)
	require.Len(t, composite, 2)
	require.Equal(t, p2.ID, composite[0].ProgramID)
	require.Equal(t, 25, composite[0].TotalStars)

	// An empty dimension is the composite ranking, used by the dashboard.
	defaulted, err := (&GormStatisticStorage{DB: db}).Leaderboard(context.Background(), event.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, defaulted, 2)
	require.Equal(t, p2.ID, defaulted[0].ProgramID)
	require.Equal(t, 25, defaulted[0].TotalStars)

	_, err = (&GormStatisticStorage{DB: db}).Leaderboard(context.Background(), event.ID, "bogus", 10)
	require.Error(t, err)
}

// N concurrent submissions with the same (event, program, employee) identity
// must produce exactly one stored vote and one statistics increment; every
// other attempt loses with a duplicate-vote rejection.
func TestSubmitVote_ConcurrentDuplicateIdentity(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	event := seedEvent(t, db)
	program := seedProgram(t, db, event.ID, 1)
	employee := seedEmployee(t, db, "E001")
	openWindow(t, db, program.ID)

	voteStorage := &GormVoteStorage{DB: db}
	request := SubmitVoteRequest{
		EventID:    event.ID,
		ProgramID:  program.ID,
		EmployeeID: employee.ID,
		Scores:     voting.Scores{StagePresence: 5, Performance: 4, Popularity: 5, Teamwork: 3, Creativity: 4},
	}

	const attempts = 8
	var wg sync.WaitGroup
	var successes, duplicates atomic.Int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := voteStorage.Submit(context.Background(), request)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, voting.ErrDuplicateVote):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected submit error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, successes.Load())
	require.EqualValues(t, attempts-1, duplicates.Load())

	var voteCount int64
	require.NoError(t, db.Model(&Vote{}).Where("program_id = ?", program.ID).Count(&voteCount).Error)
	require.EqualValues(t, 1, voteCount)

	var stat ProgramStatistic
	require.NoError(t, db.Where("program_id = ? AND dimension = ?", program.ID, voting.DimensionPopularity).First(&stat).Error)
	require.Equal(t, 1, stat.VoteCount)
	require.Equal(t, 5, stat.TotalStars)
}
