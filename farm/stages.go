// Package farm simulates crop growth on a user's virtual farm.
package farm

import (
	"math"
	"time"

	"farmeasy/models"
)

// DefaultStages is the growth template used when a farm is created without
// its own stages.
func DefaultStages() []models.GrowthStage {
	return []models.GrowthStage{
		{Stage: "Germination", DaysFromPlanting: 0, Description: "Seeds sprout and establish roots"},
		{Stage: "Vegetative", DaysFromPlanting: 15, Description: "Leaf and stem growth"},
		{Stage: "Flowering", DaysFromPlanting: 45, Description: "Flowers form and pollinate"},
		{Stage: "Grain Filling", DaysFromPlanting: 75, Description: "Grains or fruit develop and fill"},
		{Stage: "Harvest", DaysFromPlanting: 110, Description: "Crop reaches maturity"},
	}
}

// DaysSince returns whole days elapsed from planting to now, rounded down.
func DaysSince(planting, now time.Time) int {
	return int(math.Floor(now.Sub(planting).Hours() / 24))
}

// Advance returns a copy of stages with progress recomputed for now. A
// stage that has started gains 5 points per day on top of a 20 point
// start, never loses progress and is capped at 100.
func Advance(stages []models.GrowthStage, planting, now time.Time) []models.GrowthStage {
	days := DaysSince(planting, now)
	out := make([]models.GrowthStage, len(stages))
	for i, s := range stages {
		if days >= s.DaysFromPlanting {
			s.Progress = math.Min(100, math.Max(s.Progress, float64(20+(days-s.DaysFromPlanting)*5)))
		}
		s.IsCompleted = s.Progress >= 100
		out[i] = s
	}
	return out
}
