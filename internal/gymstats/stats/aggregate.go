package stats

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Entry is one training detail inside the statistics window.
type Entry struct {
	ExerciseID   int
	ExerciseName string
	Load         decimal.Decimal
	Sets         int
	Repetitions  int
}

// ExerciseStatistics summarizes all entries of one exercise.
type ExerciseStatistics struct {
	ExerciseID     int             `json:"exerciseId"`
	ExerciseName   string          `json:"exerciseName"`
	TimesPerformed int             `json:"timesPerformed"`
	TotalReps      int             `json:"totalReps"`
	AverageLoad    float64         `json:"averageLoad"`
	MaximumLoad    decimal.Decimal `json:"maximumLoad"`
}

// Aggregate groups entries by exercise and returns one summary per exercise, sorted by name.
func Aggregate(entries []Entry) []ExerciseStatistics {
	type group struct {
		stats   ExerciseStatistics
		loadSum decimal.Decimal
	}

	groups := map[int]*group{}
	for _, e := range entries {
		g, ok := groups[e.ExerciseID]
		if !ok {
			g = &group{
				stats: ExerciseStatistics{
					ExerciseID:   e.ExerciseID,
					ExerciseName: e.ExerciseName,
					MaximumLoad:  e.Load,
				},
			}
			groups[e.ExerciseID] = g
		}

		g.stats.TimesPerformed++
		g.stats.TotalReps += e.Sets * e.Repetitions
		g.loadSum = g.loadSum.Add(e.Load)
		if e.Load.GreaterThan(g.stats.MaximumLoad) {
			g.stats.MaximumLoad = e.Load
		}
	}

	result := make([]ExerciseStatistics, 0, len(groups))
	for _, g := range groups {
		if g.stats.TimesPerformed > 0 {
			g.stats.AverageLoad = g.loadSum.Div(decimal.NewFromInt(int64(g.stats.TimesPerformed))).InexactFloat64()
		}
		g.stats.MaximumLoad = g.stats.MaximumLoad.Round(2)
		result = append(result, g.stats)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ExerciseName != result[j].ExerciseName {
			return result[i].ExerciseName < result[j].ExerciseName
		}
		return result[i].ExerciseID < result[j].ExerciseID
	})

	return result
}
