package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxFarmHectares bounds every farm or plot size the API accepts.
const MaxFarmHectares = 10000.0

// VirtualFarm is a simulated plot whose crop growth is tracked day by day.
// Stored as one document in the "virtual_farms" collection.
type VirtualFarm struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      int64              `bson:"ownerId"       json:"user_id"`
	LandSize     float64            `bson:"landSize"      json:"land_size"` // hectares
	CropType     string             `bson:"cropType"      json:"crop_type"`
	Location     string             `bson:"location"      json:"location"`
	PlantingDate time.Time          `bson:"plantingDate"  json:"planting_date"`
	CreatedAt    time.Time          `bson:"createdAt"     json:"created_at"`

	// Farmer-provided soil readings keyed by parameter (nitrogen, ph_level, ...).
	SoilData map[string]float64 `bson:"soilData,omitempty" json:"soil_data"`

	GrowthStages []GrowthStage `bson:"growthStages" json:"growth_stages"`

	ExpectedYield  float64  `bson:"expectedYield"          json:"expected_yield"`  // tonnes for the whole plot
	ExpectedProfit float64  `bson:"expectedProfit"         json:"expected_profit"` // rupees
	ClimateRisks   []string `bson:"climateRisks,omitempty" json:"climate_risks"`
}

// GrowthStage is one phase of the crop cycle, counted from planting day.
type GrowthStage struct {
	Stage            string  `bson:"stage"            json:"stage"`
	DaysFromPlanting int     `bson:"daysFromPlanting" json:"days_from_planting"`
	Progress         float64 `bson:"progress"         json:"progress"` // 0..100
	Description      string  `bson:"description"      json:"description"`
	IsCompleted      bool    `bson:"isCompleted"      json:"is_completed"`
}
