package subsidy

import (
	"testing"

	"farmeasy/catalog"

	"github.com/stretchr/testify/assert"
)

func schemes(offers []Offer) []string {
	out := make([]string, len(offers))
	for i, o := range offers {
		out[i] = o.Scheme
	}
	return out
}

func TestMatch(t *testing.T) {
	m := NewMatcher(catalog.Default())

	tests := []struct {
		name     string
		crop     string
		farmSize float64
		want     []string
		premium  float64
	}{
		{"small rice farm", "rice", 1.5, []string{"PM-KISAN", "PMFBY (Crop Insurance)"}, 0.02},
		{"boundary is inclusive", "wheat", 2.0, []string{"PM-KISAN", "PMFBY (Crop Insurance)"}, 0.015},
		{"large wheat farm", "wheat", 5, []string{"PMFBY (Crop Insurance)"}, 0.015},
		{"small cotton farm", "cotton", 1, []string{"PM-KISAN", "PMFBY (Crop Insurance)", "Cotton Technology Mission"}, 0.05},
		{"unknown crop default premium", "millet", 3, []string{"PMFBY (Crop Insurance)"}, catalog.DefaultPremiumRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offers := m.Match(tt.crop, tt.farmSize)
			assert.Equal(t, tt.want, schemes(offers))
			for _, o := range offers {
				if o.Scheme == "PMFBY (Crop Insurance)" {
					assert.Equal(t, tt.premium, o.PremiumRate)
				}
			}
		})
	}
}
