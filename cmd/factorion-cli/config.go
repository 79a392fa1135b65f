package main

import (
	"math/big"
	"os"

	"github.com/tolik518/factorion-go/internal/calculator"
	"github.com/tolik518/factorion-go/internal/config"
	"github.com/tolik518/factorion-go/internal/locale"
)

// loadConfig reads path (if non-empty) as a config.Document JSON file,
// otherwise builds the recommended default configuration in-process - the
// CLI's equivalent of factorion_demo.rs running with the original
// implementation's compiled-in defaults when no env vars are set.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return config.New(raw)
}

func defaultConfig() *config.Config {
	tenTo300 := new(big.Int).Exp(big.NewInt(10), big.NewInt(300), nil)
	tenTo10000 := new(big.Int).Exp(big.NewInt(10), big.NewInt(10000), nil)
	return &config.Config{
		FloatPrecision: 1024,
		Thresholds: calculator.Thresholds{
			UpperCalculationLimit:          big.NewInt(1_000_000),
			UpperApproximationLimit:        tenTo300,
			UpperSubfactorialLimit:         big.NewInt(1_000_000),
			UpperTermialLimit:              tenTo10000,
			UpperTermialApproximationLimit: new(big.Int).Mul(tenTo10000, big.NewInt(1000)),
			IntegerConstructionLimit:       1_000_000,
		},
		NumberDecimalsScientific: 30,
		Locales:                  map[string]locale.Locale{"en": locale.Default()},
		DefaultLocale:            "en",
	}
}
