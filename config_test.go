package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/farmeasy")

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/srv/farmeasy/farmeasy.db", cfg.DBPath)
	assert.Equal(t, "/srv/farmeasy/ledger.db", cfg.LedgerDBPath)
	assert.Equal(t, "/srv/farmeasy/models", cfg.ModelDir)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 200, cfg.TrainingPerCrop)
	assert.True(t, cfg.ModelWarmupOnRun)
	assert.Equal(t, "log", cfg.channel())
	assert.Equal(t, "@every 10m", cfg.LedgerAuditSchedule)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("MODEL_WARMUP", "false")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.False(t, cfg.ModelWarmupOnRun)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfigCollectsParseErrors(t *testing.T) {
	t.Setenv("JWT_TTL", "forever")
	t.Setenv("MODEL_SYNTHETIC_ROWS", "many")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_TTL")
	assert.Contains(t, err.Error(), "MODEL_SYNTHETIC_ROWS")
}

func TestNotificationChannel(t *testing.T) {
	twilio := Config{TwilioAccountSID: "AC1", TwilioAuthToken: "tok", TwilioPhoneNumber: "+10000000000"}
	assert.Equal(t, "sms", twilio.channel())

	twilio.NotifyChannel = "log"
	assert.Equal(t, "log", twilio.channel())

	base := Config{Port: "8080", JWTSecret: "s", JWTTTL: time.Hour, TrainingPerCrop: 10}

	c := base
	c.NotifyChannel = "sms"
	assert.ErrorContains(t, c.Validate(), "TWILIO_ACCOUNT_SID")

	c = base
	c.NotifyChannel = "mqtt"
	assert.ErrorContains(t, c.Validate(), "MQTT_BROKER")

	c = base
	c.NotifyChannel = "pigeon"
	assert.ErrorContains(t, c.Validate(), "pigeon")
}
