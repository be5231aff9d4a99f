// Package soil grades soil health from a single sample.
package soil

import "farmeasy/models"

// Health grades, best first.
const (
	Excellent = "Excellent"
	Good      = "Good"
	Fair      = "Fair"
	Poor      = "Poor"
)

// Deficiency tags.
const (
	LowNitrogen   = "Low Nitrogen"
	LowPhosphorus = "Low Phosphorus"
	LowPotassium  = "Low Potassium"
	AcidicSoil    = "Acidic Soil"
	AlkalineSoil  = "Alkaline Soil"
)

// Thresholds below (or above, for pH) which a deficiency is reported.
const (
	MinNitrogen   = 50.0
	MinPhosphorus = 20.0
	MinPotassium  = 30.0
	MinPH         = 6.0
	MaxPH         = 8.0
)

// Report is the outcome of Analyze. Recommendations[i] addresses
// Deficiencies[i].
type Report struct {
	OverallHealth   string   `json:"overall_health"`
	Deficiencies    []string `json:"deficiencies"`
	Recommendations []string `json:"recommendations"`
}

// Analyze evaluates every rule independently and grades the sample by the
// number of deficiencies found.
func Analyze(s models.SoilSample) Report {
	r := Report{Deficiencies: []string{}, Recommendations: []string{}}
	add := func(tag, advice string) {
		r.Deficiencies = append(r.Deficiencies, tag)
		r.Recommendations = append(r.Recommendations, advice)
	}

	if s.Nitrogen < MinNitrogen {
		add(LowNitrogen, "Apply organic manure or urea fertilizer")
	}
	if s.Phosphorus < MinPhosphorus {
		add(LowPhosphorus, "Apply DAP or rock phosphate")
	}
	if s.Potassium < MinPotassium {
		add(LowPotassium, "Apply MOP or potassium sulfate")
	}
	switch {
	case s.PH < MinPH:
		add(AcidicSoil, "Apply lime to increase pH")
	case s.PH > MaxPH:
		add(AlkalineSoil, "Apply gypsum or sulfur to reduce pH")
	}

	r.OverallHealth = grade(len(r.Deficiencies))
	return r
}

func grade(deficiencies int) string {
	switch {
	case deficiencies == 0:
		return Excellent
	case deficiencies <= 2:
		return Good
	case deficiencies == 3:
		return Fair
	default:
		return Poor
	}
}
