package main

import (
	"farmeasy/models"
)

// Request/response DTOs. Keep them minimal and explicit.

type registerReq struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	Message     string      `json:"message"`
	Token       string      `json:"token"`
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// soilReq is a soil test. Nutrients and pH are required; climate fields
// and farm size fall back to typical values.
type soilReq struct {
	Nitrogen      *float64 `json:"nitrogen"`
	Phosphorus    *float64 `json:"phosphorus"`
	Potassium     *float64 `json:"potassium"`
	PH            *float64 `json:"ph_level"`
	OrganicCarbon *float64 `json:"organic_carbon"`
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	Rainfall      *float64 `json:"rainfall"`
	FarmSize      *float64 `json:"farm_size"`
	Location      string   `json:"location"`
}

const (
	defaultTemperature = 25.0
	defaultHumidity    = 65.0
	defaultRainfall    = 200.0
	defaultFarmSize    = 1.0
)

type createFarmReq struct {
	LandSize       float64              `json:"land_size"`
	CropType       string               `json:"crop_type"`
	Location       string               `json:"location"`
	PlantingDate   string               `json:"planting_date"`
	SoilData       map[string]float64   `json:"soil_data"`
	GrowthStages   []models.GrowthStage `json:"growth_stages"`
	ExpectedYield  float64              `json:"expected_yield"`
	ExpectedProfit float64              `json:"expected_profit"`
	ClimateRisks   []string             `json:"climate_risks"`
}

type updateProgressReq struct {
	FarmID string `json:"farm_id"`
}
