package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogNamesAreSorted(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"cotton", "maize", "rice", "sugarcane", "wheat"}, c.Names())
}

func TestFallbackContract(t *testing.T) {
	c := Default()

	tests := []struct {
		name    string
		crop    string
		costs   CostTable
		season  string
		premium float64
	}{
		{"known crop", "wheat", CostTable{4000, 10000, 6000, 12000, 4000}, "Rabi (Nov–Apr)", 0.015},
		{"case and whitespace insensitive", "  Cotton ", CostTable{8000, 15000, 12000, 18000, 8000}, "Kharif (May–Oct)", 0.05},
		{"unknown crop uses reference costs", "quinoa", CostTable{5000, 12000, 8000, 15000, 6000}, DefaultSeason, DefaultPremiumRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.costs, c.CostsFor(tt.crop))
			assert.Equal(t, tt.season, c.SeasonFor(tt.crop))
			assert.Equal(t, tt.premium, c.PremiumRateFor(tt.crop))
		})
	}
}

func TestCostTableBreakdownMatchesTotal(t *testing.T) {
	costs := Default().CostsFor("rice")
	sum := 0.0
	for _, v := range costs.Breakdown() {
		sum += v
	}
	assert.Equal(t, costs.Total(), sum)
	assert.Equal(t, 46000.0, costs.Total())
}

func TestNewRejectsMissingReference(t *testing.T) {
	_, err := New("rice", nil, Profile{Name: "wheat"})
	require.Error(t, err)

	_, err = New("wheat", nil, Profile{Name: "wheat"}, Profile{Name: "WHEAT"})
	require.Error(t, err)
}
