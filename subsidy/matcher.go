// Package subsidy matches government schemes to a crop and farm size.
package subsidy

import (
	"farmeasy/catalog"
)

// SmallFarmLimit is the largest farm, in hectares, eligible for PM-KISAN.
const SmallFarmLimit = 2.0

// Offer is one applicable scheme. Amount and PremiumRate are omitted when
// they do not apply.
type Offer struct {
	Scheme      string  `json:"scheme"`
	Amount      float64 `json:"amount,omitempty"`
	PremiumRate float64 `json:"premium_rate,omitempty"`
	Description string  `json:"description"`
	Eligibility string  `json:"eligibility"`
}

// Matcher selects offers using the catalog's premium rates.
type Matcher struct {
	catalog *catalog.Catalog
}

func NewMatcher(c *catalog.Catalog) *Matcher {
	return &Matcher{catalog: c}
}

// Match returns the offers for crop, most widely applicable first.
func (m *Matcher) Match(crop string, farmSize float64) []Offer {
	offers := make([]Offer, 0, 3)
	if farmSize <= SmallFarmLimit {
		offers = append(offers, Offer{
			Scheme:      "PM-KISAN",
			Amount:      6000,
			Description: "₹6,000 per year direct benefit transfer",
			Eligibility: "Small/marginal farmers (≤ 2 hectares)",
		})
	}
	offers = append(offers, Offer{
		Scheme:      "PMFBY (Crop Insurance)",
		PremiumRate: m.catalog.PremiumRateFor(crop),
		Description: "Government-supported crop insurance premium",
		Eligibility: "All farmers including sharecroppers/tenant farmers",
	})
	if catalog.Normalize(crop) == "cotton" {
		offers = append(offers, Offer{
			Scheme:      "Cotton Technology Mission",
			Amount:      15000,
			Description: "Support for improved cotton cultivation practices",
			Eligibility: "Cotton farmers using improved varieties",
		})
	}
	return offers
}
