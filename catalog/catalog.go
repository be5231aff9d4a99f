// Package catalog holds the static crop reference data: agronomic priors,
// market prices, cost tables, insurance premium rates and seasons.
//
// Lookups keyed by crop name follow a documented fallback contract:
//   - CostsFor falls back to the reference crop's cost table.
//   - SeasonFor falls back to DefaultSeason.
//   - PremiumRateFor falls back to DefaultPremiumRate.
//
// A Catalog is immutable after construction and safe for concurrent use.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultSeason is reported for crops without a season entry.
	DefaultSeason = "Seasonal"
	// DefaultPremiumRate is the PMFBY premium rate for crops without an entry.
	DefaultPremiumRate = 0.02
	// ReferenceCrop supplies the cost table for unknown crops.
	ReferenceCrop = "rice"
)

// CostTable is the per-hectare cultivation cost in rupees.
type CostTable struct {
	Seeds      float64
	Fertilizer float64
	Pesticides float64
	Labor      float64
	Irrigation float64
}

// Total sums every category.
func (c CostTable) Total() float64 {
	return c.Seeds + c.Fertilizer + c.Pesticides + c.Labor + c.Irrigation
}

// Breakdown returns the table keyed by category name.
func (c CostTable) Breakdown() map[string]float64 {
	return map[string]float64{
		"seeds":      c.Seeds,
		"fertilizer": c.Fertilizer,
		"pesticides": c.Pesticides,
		"labor":      c.Labor,
		"irrigation": c.Irrigation,
	}
}

// Climate describes the typical soil and weather conditions a crop is grown
// in. Mean and Spread are used to synthesise training samples.
type Climate struct {
	Mean   Conditions
	Spread Conditions
}

// Conditions is one value per model feature.
type Conditions struct {
	Nitrogen    float64
	Phosphorus  float64
	Potassium   float64
	Temperature float64
	Humidity    float64
	PH          float64
	Rainfall    float64
}

// Profile is the reference record for one crop.
type Profile struct {
	Name               string
	AvgYieldPerHectare float64 // tonnes
	BasePricePerKg     float64
	SeasonalFactor     float64
	SubsidySchemes     []string
	OptimalSeason      string
	PremiumRate        float64
	Costs              CostTable
	Climate            Climate
}

// MarketTrend is a coarse market outlook for a crop.
type MarketTrend struct {
	Trend         string  `json:"trend"`
	Last30dChange float64 `json:"last_30d_change_percent"`
	Commentary    string  `json:"commentary"`
}

// Scheme is a government subsidy scheme. Crop is empty for schemes that
// apply to every crop.
type Scheme struct {
	Name        string
	Crop        string
	Amount      float64
	Eligibility string
	Region      string
}

// Catalog is a read-only set of crop profiles.
type Catalog struct {
	profiles  map[string]Profile
	names     []string
	reference string
	schemes   []Scheme
}

// New builds a catalog. reference must name one of the profiles.
func New(reference string, schemes []Scheme, profiles ...Profile) (*Catalog, error) {
	c := &Catalog{
		profiles:  make(map[string]Profile, len(profiles)),
		reference: Normalize(reference),
		schemes:   append([]Scheme(nil), schemes...),
	}
	for _, p := range profiles {
		key := Normalize(p.Name)
		if key == "" {
			return nil, fmt.Errorf("catalog: profile with empty name")
		}
		if _, dup := c.profiles[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate profile %q", key)
		}
		p.Name = key
		c.profiles[key] = p
		c.names = append(c.names, key)
	}
	if _, ok := c.profiles[c.reference]; !ok {
		return nil, fmt.Errorf("catalog: reference crop %q has no profile", reference)
	}
	sort.Strings(c.names)
	return c, nil
}

// Normalize canonicalises a crop name for lookups.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Names returns the crop names in sorted order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Profiles returns every profile in name order.
func (c *Catalog) Profiles() []Profile {
	out := make([]Profile, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.profiles[n])
	}
	return out
}

// Lookup returns the profile for name.
func (c *Catalog) Lookup(name string) (Profile, bool) {
	p, ok := c.profiles[Normalize(name)]
	return p, ok
}

// CostsFor returns the crop's cost table, or the reference crop's table.
func (c *Catalog) CostsFor(name string) CostTable {
	if p, ok := c.Lookup(name); ok {
		return p.Costs
	}
	return c.profiles[c.reference].Costs
}

// SeasonFor returns the optimal growing season for name.
func (c *Catalog) SeasonFor(name string) string {
	if p, ok := c.Lookup(name); ok && p.OptimalSeason != "" {
		return p.OptimalSeason
	}
	return DefaultSeason
}

// PremiumRateFor returns the crop insurance premium rate for name.
func (c *Catalog) PremiumRateFor(name string) float64 {
	if p, ok := c.Lookup(name); ok && p.PremiumRate > 0 {
		return p.PremiumRate
	}
	return DefaultPremiumRate
}

// TrendFor returns the market outlook for name. No live market feed is
// wired, so every crop reports a stable trend.
func (c *Catalog) TrendFor(name string) MarketTrend {
	return MarketTrend{
		Trend:         "stable",
		Last30dChange: 1.2,
		Commentary:    fmt.Sprintf("Market for %s appears stable over the last month.", Normalize(name)),
	}
}

// Schemes returns the subsidy schemes known to the catalog.
func (c *Catalog) Schemes() []Scheme {
	return append([]Scheme(nil), c.schemes...)
}
