package models

import "time"

// AlertType classifies alerts.
type AlertType string

const (
	AlertWeather AlertType = "weather"
	AlertCrop    AlertType = "crop"
	AlertMarket  AlertType = "market"
	AlertGeneral AlertType = "general"
)

// Severity of an alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Alert struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	AlertType AlertType `json:"alert_type"`
	Severity  Severity  `json:"severity"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Subsidy is an active government scheme row. CropID is nil for schemes
// open to every crop.
type Subsidy struct {
	ID          int64     `json:"id"`
	CropID      *int64    `json:"crop_id"`
	SchemeName  string    `json:"scheme_name"`
	Amount      float64   `json:"amount"`
	Eligibility string    `json:"eligibility"`
	Region      string    `json:"region"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
