// Package profit estimates cultivation cost, income and return on
// investment for a predicted harvest.
package profit

import (
	"math"

	"farmeasy/catalog"
	"farmeasy/models"
)

const (
	// AcidityMultiplier inflates costs when pH is outside [6.0, 8.0].
	AcidityMultiplier = 1.15
	// NitrogenMultiplier inflates costs when nitrogen is below 50.
	NitrogenMultiplier = 1.10

	minFarmSize = 1e-6
)

// Analysis is the profit estimate for one crop on one farm.
// CostBreakdown holds the unscaled per-hectare costs.
type Analysis struct {
	GrossIncome      float64            `json:"gross_income"`
	TotalCost        float64            `json:"total_cost"`
	NetProfit        float64            `json:"net_profit"`
	ROIPercentage    float64            `json:"roi_percentage"`
	CostBreakdown    map[string]float64 `json:"cost_breakdown"`
	ProfitPerHectare float64            `json:"profit_per_hectare"`
}

// Estimator computes Analysis values from a crop catalog.
type Estimator struct {
	catalog *catalog.Catalog
}

// NewEstimator returns an Estimator backed by c.
func NewEstimator(c *catalog.Catalog) *Estimator {
	return &Estimator{catalog: c}
}

// Estimate derives the profit analysis. yieldPerHectare is in tonnes and
// pricePerKg in rupees; negative values are treated as zero.
func (e *Estimator) Estimate(crop string, yieldPerHectare, pricePerKg, farmSize float64, s models.SoilSample) Analysis {
	production := math.Max(0, yieldPerHectare) * farmSize * 1000
	gross := production * math.Max(0, pricePerKg)

	costs := e.catalog.CostsFor(crop)
	total := costs.Total() * farmSize
	if s.PH < 6.0 || s.PH > 8.0 {
		total *= AcidityMultiplier
	}
	if s.Nitrogen < 50 {
		total *= NitrogenMultiplier
	}

	net := gross - total
	roi := 0.0
	if total > 0 {
		roi = net / total * 100
	}

	return Analysis{
		GrossIncome:      round2(gross),
		TotalCost:        round2(total),
		NetProfit:        round2(net),
		ROIPercentage:    round2(roi),
		CostBreakdown:    costs.Breakdown(),
		ProfitPerHectare: round2(net / math.Max(minFarmSize, farmSize)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
