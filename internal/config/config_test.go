package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolik518/factorion-go/internal/ferrors"
)

func sampleDocument(t *testing.T) []byte {
	t.Helper()
	doc := map[string]any{
		"config_schema_version":             "1.0.0",
		"float_precision":                   1024,
		"upper_calculation_limit":           "1000000",
		"upper_approximation_limit":         "1" + zeros(300),
		"upper_subfactorial_limit":          "1000000",
		"upper_termial_limit":               "1" + zeros(10000),
		"upper_termial_approximation_limit": "1" + zeros(10003),
		"integer_construction_limit":        1000000,
		"number_decimals_scientific":        30,
		"default_locale":                    "en",
		"locales": map[string]any{
			"en": map[string]any{
				"version": 1,
				"v1": map[string]any{
					"bot_disclaimer": "This action was performed by a bot.",
					"notes":          map[string]any{},
					"format":         map[string]any{"number_format": map[string]any{"decimal": "."}},
				},
			},
		},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func zeros(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}

func TestNewAcceptsValidDocument(t *testing.T) {
	cfg, err := New(sampleDocument(t))
	require.NoError(t, err)
	assert.Equal(t, uint(1024), cfg.FloatPrecision)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.Contains(t, cfg.Locales, "en")
}

func TestNewRejectsMissingDefaultLocale(t *testing.T) {
	var doc map[string]any
	raw := sampleDocument(t)
	require.NoError(t, json.Unmarshal(raw, &doc))
	doc["default_locale"] = "missing"
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = New(raw)
	require.Error(t, err)
	assert.True(t, ferrors.IsType(err, ferrors.ErrConfigInvalid))
}

func TestNewRejectsInvalidSchemaVersion(t *testing.T) {
	var doc map[string]any
	raw := sampleDocument(t)
	require.NoError(t, json.Unmarshal(raw, &doc))
	doc["config_schema_version"] = "not-a-semver"
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = New(raw)
	require.Error(t, err)
	assert.True(t, ferrors.IsType(err, ferrors.ErrConfigInvalid))
}

func TestNewRejectsMalformedJSON(t *testing.T) {
	_, err := New([]byte("{not json"))
	require.Error(t, err)
	assert.True(t, ferrors.IsType(err, ferrors.ErrConfigInvalid))
}

func TestLoadEnforcesOneShotInit(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	_, err := Load(sampleDocument(t))
	require.NoError(t, err)

	_, err = Load(sampleDocument(t))
	require.Error(t, err)
	assert.True(t, ferrors.IsType(err, ferrors.ErrConfigAlreadyInit))
}

func TestLocaleForFallsBackToDefault(t *testing.T) {
	cfg, err := New(sampleDocument(t))
	require.NoError(t, err)
	l := cfg.LocaleFor("missing-key")
	assert.Equal(t, cfg.Locales["en"], l)
}
