package weather

import (
	"fmt"

	"farmeasy/models"
)

type RiskType string

const (
	HighTemperature RiskType = "HIGH_TEMPERATURE"
	LowHumidity     RiskType = "LOW_HUMIDITY"
	HighWind        RiskType = "HIGH_WIND"
	HeavyRainfall   RiskType = "HEAVY_RAINFALL"
	NoRainfall      RiskType = "NO_RAINFALL"
)

type Severity string

const (
	High   Severity = "HIGH"
	Medium Severity = "MEDIUM"
)

// Thresholds, metric units.
const (
	HotAbove       = 35.0 // °C
	DryBelow       = 30.0 // % relative humidity
	WindyAbove     = 10.0 // m/s
	HeavyRainAbove = 50.0 // mm over the next 24h
)

type Risk struct {
	Type           RiskType `json:"type"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

// AlertSeverity maps a risk severity onto the stored alert severity.
func (s Severity) AlertSeverity() models.Severity {
	if s == High {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

// AnalyzeRisks applies the crop risk rules. A nil input yields no risks.
func AnalyzeRisks(current *Current, forecast *Forecast) []Risk {
	risks := []Risk{}
	if current == nil || forecast == nil {
		return risks
	}

	if current.Temperature > HotAbove {
		risks = append(risks, Risk{
			Type:           HighTemperature,
			Severity:       High,
			Message:        fmt.Sprintf("High temperature alert: %g°C. Consider providing shade for crops.", current.Temperature),
			Recommendation: "Increase irrigation frequency and provide shade coverage",
		})
	}
	if current.Humidity < DryBelow {
		risks = append(risks, Risk{
			Type:           LowHumidity,
			Severity:       Medium,
			Message:        fmt.Sprintf("Low humidity: %g%%. Increase irrigation.", current.Humidity),
			Recommendation: "Increase irrigation frequency to maintain soil moisture",
		})
	}
	if current.WindSpeed > WindyAbove {
		risks = append(risks, Risk{
			Type:           HighWind,
			Severity:       Medium,
			Message:        fmt.Sprintf("High wind speed: %g m/s. Protect delicate crops.", current.WindSpeed),
			Recommendation: "Install windbreaks to protect crops",
		})
	}

	var rain float64
	for i, f := range forecast.Forecasts {
		if i == slotsPerDay {
			break
		}
		rain += f.Rain
	}
	switch {
	case rain > HeavyRainAbove:
		risks = append(risks, Risk{
			Type:           HeavyRainfall,
			Severity:       High,
			Message:        fmt.Sprintf("Heavy rainfall expected: %gmm in next 24 hours.", rain),
			Recommendation: "Ensure proper drainage and delay fertilizer application",
		})
	case rain == 0:
		risks = append(risks, Risk{
			Type:           NoRainfall,
			Severity:       Medium,
			Message:        "No rainfall expected in next 24 hours.",
			Recommendation: "Plan irrigation schedule accordingly",
		})
	}
	return risks
}
