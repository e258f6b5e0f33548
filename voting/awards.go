package voting

import "sort"

// AwardType identifies a per-event distinction tied to one dimension.
type AwardType string

const (
	AwardBestPopularity    AwardType = "best_popularity"
	AwardBestPerformance   AwardType = "best_performance"
	AwardBestTeamwork      AwardType = "best_teamwork"
	AwardBestCreativity    AwardType = "best_creativity"
	AwardBestStagePresence AwardType = "best_stage_presence"
)

// AwardDefinition names the dimension an award is judged on.
type AwardDefinition struct {
	Type      AwardType
	Dimension Dimension
	Name      string
}

// AwardDefinitions is the fixed award list in priority order. Earlier awards
// claim their winner first; a claimed program is ineligible for the rest of
// the run.
var AwardDefinitions = []AwardDefinition{
	{Type: AwardBestPopularity, Dimension: DimensionPopularity, Name: "Best Popularity"},
	{Type: AwardBestPerformance, Dimension: DimensionPerformance, Name: "Best Performance"},
	{Type: AwardBestTeamwork, Dimension: DimensionTeamwork, Name: "Best Teamwork"},
	{Type: AwardBestCreativity, Dimension: DimensionCreativity, Name: "Best Creativity"},
	{Type: AwardBestStagePresence, Dimension: DimensionStagePresence, Name: "Best Stage Presence"},
}

// ProgramTotals is the resolver's read-only view of one program: total stars
// accumulated per dimension.
type ProgramTotals struct {
	ProgramID int
	SeqNo     int
	Title     string
	Performer string
	Totals    map[Dimension]int
}

// CompositeTotal sums total stars across all five dimensions.
func (p ProgramTotals) CompositeTotal() int {
	total := 0
	for _, d := range Dimensions {
		total += p.Totals[d]
	}
	return total
}

// AwardWinner is one resolved award.
type AwardWinner struct {
	Definition AwardDefinition
	Program    ProgramTotals
	Score      int
}

// ResolveAwards ranks programs per award definition and assigns winners.
// For each award in priority order the unclaimed program with the highest
// total stars in the award's dimension wins; ties break on the composite
// total across all dimensions, and a remaining tie goes to the lowest
// sequence number, which keeps repeated runs deterministic. Returns one
// winner per definition, fewer if programs run out.
func ResolveAwards(programs []ProgramTotals, definitions []AwardDefinition) []AwardWinner {
	winners := make([]AwardWinner, 0, len(definitions))
	claimed := make(map[int]bool, len(programs))

	for _, def := range definitions {
		available := make([]ProgramTotals, 0, len(programs))
		for _, p := range programs {
			if !claimed[p.ProgramID] {
				available = append(available, p)
			}
		}
		if len(available) == 0 {
			break
		}

		dim := def.Dimension
		sort.SliceStable(available, func(i, j int) bool {
			a, b := available[i], available[j]
			if a.Totals[dim] != b.Totals[dim] {
				return a.Totals[dim] > b.Totals[dim]
			}
			if a.CompositeTotal() != b.CompositeTotal() {
				return a.CompositeTotal() > b.CompositeTotal()
			}
			return a.SeqNo < b.SeqNo
		})

		winner := available[0]
		claimed[winner.ProgramID] = true
		winners = append(winners, AwardWinner{
			Definition: def,
			Program:    winner,
			Score:      winner.Totals[dim],
		})
	}

	return winners
}
