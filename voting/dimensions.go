package voting

// Dimension is one of the five fixed rating criteria.
type Dimension string

const (
	DimensionStagePresence Dimension = "stage_presence"
	DimensionPerformance   Dimension = "performance"
	DimensionPopularity    Dimension = "popularity"
	DimensionTeamwork      Dimension = "teamwork"
	DimensionCreativity    Dimension = "creativity"
)

// Dimensions lists all dimensions in display order. Statistic rows are
// pre-seeded in this order when a program is created.
var Dimensions = []Dimension{
	DimensionStagePresence,
	DimensionPerformance,
	DimensionPopularity,
	DimensionTeamwork,
	DimensionCreativity,
}

const (
	MinScore = 1
	MaxScore = 5
)

// IsValidDimension reports whether s names one of the five dimensions.
func IsValidDimension(s string) bool {
	for _, d := range Dimensions {
		if string(d) == s {
			return true
		}
	}
	return false
}
