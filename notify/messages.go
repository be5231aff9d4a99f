package notify

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"farmeasy/models"
)

// MaxWeatherAlerts caps how many alerts go into one weather SMS.
const MaxWeatherAlerts = 2

// Reasons returned when a message builder has nothing to send.
const (
	NoAlerts             = "No alerts to send"
	NoHighPriorityAlerts = "No high priority alerts"
	NoRecommendations    = "No recommendations available"
)

var title = cases.Title(language.English)

// WeatherAlert builds the SMS for the first high severity alerts. When
// there is nothing worth sending it returns an empty message and the reason.
func WeatherAlert(alerts []models.Alert) (string, string) {
	if len(alerts) == 0 {
		return "", NoAlerts
	}
	lines := make([]string, 0, MaxWeatherAlerts)
	for _, a := range alerts {
		if a.Severity != models.SeverityHigh {
			continue
		}
		lines = append(lines, "🚨 "+a.Message)
		if len(lines) == MaxWeatherAlerts {
			break
		}
	}
	if len(lines) == 0 {
		return "", NoHighPriorityAlerts
	}
	return "FarmEasy Alert:\n" + strings.Join(lines, "\n"), ""
}

// CropRecommendation builds the SMS announcing the top recommended crop.
// confidence is a fraction in [0,1].
func CropRecommendation(name, crop string, confidence float64) string {
	return fmt.Sprintf("Hi %s! 🌾\nBased on your soil test, we recommend: %s\nConfidence: %.1f%%\nCheck the app for detailed information.\n- FarmEasy Team",
		name, title.String(crop), confidence*100)
}

// PurchaseReceipt tells a farmer their listing was bought.
func PurchaseReceipt(buyer, crop string, quantity, total float64, hash string) string {
	short := hash
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("FarmEasy: %s bought %.2f kg of %s for Rs %.2f.\nLedger ref: %s",
		buyer, quantity, title.String(crop), total, short)
}
