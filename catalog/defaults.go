package catalog

// Default returns the built-in catalog of Indian field crops.
func Default() *Catalog {
	c, err := New(ReferenceCrop, defaultSchemes, defaultProfiles...)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultSpread = Conditions{
	Nitrogen: 15, Phosphorus: 10, Potassium: 8,
	Temperature: 3, Humidity: 7, PH: 0.4, Rainfall: 40,
}

var defaultProfiles = []Profile{
	{
		Name:               "rice",
		AvgYieldPerHectare: 4.5,
		BasePricePerKg:     25,
		SeasonalFactor:     1.2,
		SubsidySchemes:     []string{"PM-KISAN", "PMFBY"},
		OptimalSeason:      "Kharif (Jun–Oct)",
		PremiumRate:        0.02,
		Costs:              CostTable{Seeds: 5000, Fertilizer: 12000, Pesticides: 8000, Labor: 15000, Irrigation: 6000},
		Climate: Climate{
			Mean:   Conditions{Nitrogen: 85, Phosphorus: 48, Potassium: 40, Temperature: 25, Humidity: 82, PH: 6.4, Rainfall: 240},
			Spread: defaultSpread,
		},
	},
	{
		Name:               "wheat",
		AvgYieldPerHectare: 3.8,
		BasePricePerKg:     22,
		SeasonalFactor:     1.1,
		SubsidySchemes:     []string{"PM-KISAN", "PMFBY"},
		OptimalSeason:      "Rabi (Nov–Apr)",
		PremiumRate:        0.015,
		Costs:              CostTable{Seeds: 4000, Fertilizer: 10000, Pesticides: 6000, Labor: 12000, Irrigation: 4000},
		Climate: Climate{
			Mean:   Conditions{Nitrogen: 75, Phosphorus: 55, Potassium: 45, Temperature: 19, Humidity: 58, PH: 7.0, Rainfall: 90},
			Spread: defaultSpread,
		},
	},
	{
		Name:               "cotton",
		AvgYieldPerHectare: 2.2,
		BasePricePerKg:     85,
		SeasonalFactor:     1.4,
		SubsidySchemes:     []string{"Cotton Technology Mission"},
		OptimalSeason:      "Kharif (May–Oct)",
		PremiumRate:        0.05,
		Costs:              CostTable{Seeds: 8000, Fertilizer: 15000, Pesticides: 12000, Labor: 18000, Irrigation: 8000},
		Climate: Climate{
			Mean:   Conditions{Nitrogen: 115, Phosphorus: 45, Potassium: 20, Temperature: 29, Humidity: 70, PH: 7.4, Rainfall: 110},
			Spread: defaultSpread,
		},
	},
	{
		Name:               "sugarcane",
		AvgYieldPerHectare: 75.0,
		BasePricePerKg:     3.5,
		SeasonalFactor:     1.0,
		SubsidySchemes:     []string{"Sugar Development Fund"},
		OptimalSeason:      "Perennial (Planting Jan–Mar/Sept–Oct)",
		PremiumRate:        0.05,
		Costs:              CostTable{Seeds: 25000, Fertilizer: 20000, Pesticides: 10000, Labor: 30000, Irrigation: 15000},
		Climate: Climate{
			Mean:   Conditions{Nitrogen: 105, Phosphorus: 62, Potassium: 55, Temperature: 27, Humidity: 75, PH: 6.8, Rainfall: 180},
			Spread: defaultSpread,
		},
	},
	{
		Name:               "maize",
		AvgYieldPerHectare: 4.1,
		BasePricePerKg:     18,
		SeasonalFactor:     1.15,
		SubsidySchemes:     []string{"PM-KISAN", "Nutrient Based Subsidy"},
		OptimalSeason:      "Both Kharif/Rabi",
		PremiumRate:        0.02,
		Costs:              CostTable{Seeds: 3500, Fertilizer: 9000, Pesticides: 5000, Labor: 10000, Irrigation: 3000},
		Climate: Climate{
			Mean:   Conditions{Nitrogen: 78, Phosphorus: 42, Potassium: 24, Temperature: 23, Humidity: 64, PH: 6.2, Rainfall: 85},
			Spread: defaultSpread,
		},
	},
}

var defaultSchemes = []Scheme{
	{Name: "PM-KISAN", Amount: 6000, Eligibility: "Small/marginal farmers (≤ 2 hectares)", Region: "India"},
	{Name: "PMFBY (Crop Insurance)", Amount: 0, Eligibility: "All farmers including sharecroppers/tenant farmers", Region: "India"},
	{Name: "Cotton Technology Mission", Crop: "cotton", Amount: 15000, Eligibility: "Cotton farmers using improved varieties", Region: "India"},
	{Name: "Sugar Development Fund", Crop: "sugarcane", Amount: 10000, Eligibility: "Registered sugarcane growers", Region: "India"},
	{Name: "Nutrient Based Subsidy", Crop: "maize", Amount: 2500, Eligibility: "Farmers purchasing P&K fertilisers", Region: "India"},
}
