package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
		},
		"dataPortal": map[string]any{
			"appToken": "",
		},
		"permitValidation": map[string]any{
			"hazardTtl": "168h",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "DATAPORTAL_APPTOKEN", want: "dataPortal.appToken"},
		{envKey: "PERMITVALIDATION_HAZARDTTL", want: "permitValidation.hazardTtl"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults_EngineParameters(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, float64(200), cfg.PermitValidation.CorroborationRadiusMeters)
	assert.Equal(t, 48*time.Hour, cfg.PermitValidation.Lookback)
	assert.Equal(t, 168*time.Hour, cfg.PermitValidation.HazardTTL)
	assert.Equal(t, []string{"SVR", "NOI"}, cfg.PermitValidation.ComplaintTypes)
	assert.Equal(t, float64(150), cfg.SchoolZone.ZoneRadiusMeters)
	assert.Equal(t, float64(25), cfg.Risk.BufferMeters)
	assert.Equal(t, float64(25), cfg.Risk.ContributionScale)
	assert.Equal(t, 70, cfg.Risk.HighThreshold)
	assert.Equal(t, 40, cfg.Risk.ModerateThreshold)
	assert.Equal(t, 4*time.Hour, cfg.Alerts.Cooldown)
	assert.Equal(t, 3, cfg.Alerts.MinSeverity)
	assert.Equal(t, "America/Chicago", cfg.Env.Timezone)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Risk.BufferMeters = 50
	cfg.Alerts.MinSeverity = 1
	cfg.applyDefaults()

	assert.Equal(t, float64(50), cfg.Risk.BufferMeters)
	assert.Equal(t, 1, cfg.Alerts.MinSeverity)
}
