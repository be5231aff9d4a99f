package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DataDir      string
	DBPath       string
	LedgerDBPath string
	MongoURI     string // empty keeps virtual farms in memory
	MongoDB      string

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel  string
	LogPretty bool

	ModelDir         string
	TrainingCSV      string // empty trains on synthetic data
	TrainingPerCrop  int
	ModelWarmupOnRun bool

	WeatherAPIKey string
	WeatherURL    string

	NotifyChannel     string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	TwilioURL         string
	MQTTBroker        string
	MQTTTopic         string

	LedgerAuditSchedule string
	CORSOrigins         []string
}

// mustConfig reads the environment, after loading .env when present, and
// exits on invalid values.
func mustConfig() Config {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}
	return cfg
}

func loadConfig() (Config, error) {
	var errs []error
	dataDir := getenv("DATA_DIR", "./data")

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DataDir:      dataDir,
		DBPath:       getenv("DB_PATH", filepath.Join(dataDir, "farmeasy.db")),
		LedgerDBPath: getenv("LEDGER_DB_PATH", filepath.Join(dataDir, "ledger.db")),
		MongoURI:     getenv("MONGO_URI", ""),
		MongoDB:      getenv("MONGO_DB", "farmeasy"),

		JWTSecret: getenv("JWT_SECRET", "change_me"),
		JWTTTL:    getenvDuration("JWT_TTL", 24*time.Hour, &errs),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogPretty: getenvBool("LOG_PRETTY", false, &errs),

		ModelDir:         getenv("MODEL_DIR", filepath.Join(dataDir, "models")),
		TrainingCSV:      getenv("MODEL_TRAINING_CSV", ""),
		TrainingPerCrop:  getenvInt("MODEL_SYNTHETIC_ROWS", 200, &errs),
		ModelWarmupOnRun: getenvBool("MODEL_WARMUP", true, &errs),

		WeatherAPIKey: getenv("OPENWEATHER_API_KEY", ""),
		WeatherURL:    getenv("OPENWEATHER_URL", ""),

		NotifyChannel:     strings.ToLower(getenv("NOTIFY_CHANNEL", "")),
		TwilioAccountSID:  getenv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getenv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getenv("TWILIO_PHONE_NUMBER", ""),
		TwilioURL:         getenv("TWILIO_URL", ""),
		MQTTBroker:        getenv("MQTT_BROKER", ""),
		MQTTTopic:         getenv("MQTT_TOPIC", ""),

		LedgerAuditSchedule: getenv("LEDGER_AUDIT_SCHEDULE", "@every 10m"),
		CORSOrigins:         getenvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"}),
	}
	return cfg, errors.Join(errs...)
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is empty"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is empty"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.TrainingPerCrop <= 0 {
		errs = append(errs, errors.New("MODEL_SYNTHETIC_ROWS must be positive"))
	}
	switch c.channel() {
	case "sms":
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioPhoneNumber == "" {
			errs = append(errs, errors.New("NOTIFY_CHANNEL=sms needs TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER"))
		}
	case "mqtt":
		if c.MQTTBroker == "" {
			errs = append(errs, errors.New("NOTIFY_CHANNEL=mqtt needs MQTT_BROKER"))
		}
	case "log":
	default:
		errs = append(errs, fmt.Errorf("NOTIFY_CHANNEL %q is not one of sms, mqtt, log", c.NotifyChannel))
	}
	return errors.Join(errs...)
}

// channel resolves the notification channel. Without an explicit choice,
// Twilio credentials select sms.
func (c Config) channel() string {
	if c.NotifyChannel != "" {
		return c.NotifyChannel
	}
	if c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != "" {
		return "sms"
	}
	return "log"
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int, errs *[]error) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return n
}

func getenvBool(k string, def bool, errs *[]error) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return b
}

func getenvDuration(k string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return d
}

func getenvList(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
