package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totals(sp, perf, pop, team, crea int) map[Dimension]int {
	return map[Dimension]int{
		DimensionStagePresence: sp,
		DimensionPerformance:   perf,
		DimensionPopularity:    pop,
		DimensionTeamwork:      team,
		DimensionCreativity:    crea,
	}
}

func TestResolveAwards_PicksHighestDimensionTotal(t *testing.T) {
	programs := []ProgramTotals{
		{ProgramID: 1, SeqNo: 1, Title: "Opening Dance", Totals: totals(10, 10, 40, 10, 10)},
		{ProgramID: 2, SeqNo: 2, Title: "Band Set", Totals: totals(10, 10, 25, 10, 10)},
	}

	winners := ResolveAwards(programs, []AwardDefinition{
		{Type: AwardBestPopularity, Dimension: DimensionPopularity},
	})

	require.Len(t, winners, 1)
	assert.Equal(t, 1, winners[0].Program.ProgramID)
	assert.Equal(t, 40, winners[0].Score)
}

func TestResolveAwards_TieBreaksOnCompositeTotal(t *testing.T) {
	// P1 and P2 tie on popularity (40), but P2's composite is higher.
	programs := []ProgramTotals{
		{ProgramID: 1, SeqNo: 1, Totals: totals(10, 10, 40, 10, 10)},
		{ProgramID: 2, SeqNo: 2, Totals: totals(20, 20, 40, 20, 20)},
	}

	winners := ResolveAwards(programs, []AwardDefinition{
		{Type: AwardBestPopularity, Dimension: DimensionPopularity},
	})

	require.Len(t, winners, 1)
	assert.Equal(t, 2, winners[0].Program.ProgramID)
}

func TestResolveAwards_FullTieFallsBackToSeqNo(t *testing.T) {
	programs := []ProgramTotals{
		{ProgramID: 7, SeqNo: 3, Totals: totals(10, 10, 40, 10, 10)},
		{ProgramID: 4, SeqNo: 1, Totals: totals(10, 10, 40, 10, 10)},
	}

	winners := ResolveAwards(programs, []AwardDefinition{
		{Type: AwardBestPopularity, Dimension: DimensionPopularity},
	})

	require.Len(t, winners, 1)
	assert.Equal(t, 4, winners[0].Program.ProgramID)
}

func TestResolveAwards_EarlierAwardClaimsProgram(t *testing.T) {
	// P1 leads every dimension, but can only claim the highest-priority award.
	programs := []ProgramTotals{
		{ProgramID: 1, SeqNo: 1, Totals: totals(50, 50, 50, 50, 50)},
		{ProgramID: 2, SeqNo: 2, Totals: totals(30, 30, 30, 30, 30)},
		{ProgramID: 3, SeqNo: 3, Totals: totals(20, 20, 20, 20, 20)},
	}

	winners := ResolveAwards(programs, AwardDefinitions)

	require.Len(t, winners, 3)
	assert.Equal(t, AwardBestPopularity, winners[0].Definition.Type)
	assert.Equal(t, 1, winners[0].Program.ProgramID)
	assert.Equal(t, AwardBestPerformance, winners[1].Definition.Type)
	assert.Equal(t, 2, winners[1].Program.ProgramID)
	assert.Equal(t, AwardBestTeamwork, winners[2].Definition.Type)
	assert.Equal(t, 3, winners[2].Program.ProgramID)
}

func TestResolveAwards_FewerProgramsThanAwards(t *testing.T) {
	programs := []ProgramTotals{
		{ProgramID: 1, SeqNo: 1, Totals: totals(10, 10, 10, 10, 10)},
	}

	winners := ResolveAwards(programs, AwardDefinitions)
	assert.Len(t, winners, 1)
}

func TestResolveAwards_Deterministic(t *testing.T) {
	programs := []ProgramTotals{
		{ProgramID: 1, SeqNo: 1, Totals: totals(12, 19, 40, 33, 18)},
		{ProgramID: 2, SeqNo: 2, Totals: totals(25, 19, 40, 12, 30)},
		{ProgramID: 3, SeqNo: 3, Totals: totals(25, 41, 14, 33, 30)},
		{ProgramID: 4, SeqNo: 4, Totals: totals(25, 19, 40, 33, 30)},
	}

	first := ResolveAwards(programs, AwardDefinitions)
	for i := 0; i < 20; i++ {
		again := ResolveAwards(programs, AwardDefinitions)
		assert.Equal(t, first, again)
	}
}
