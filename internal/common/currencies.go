package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"property-wallet-go/internal/models"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type CurrencyConfig struct {
	Code      string `yaml:"code"`
	Precision *int32 `yaml:"precision"`
}

type CurrenciesConfig struct {
	Currencies []CurrencyConfig `yaml:"currencies"`
}

// LoadCurrencies reads the supported currency table. A missing file falls
// back to models.DefaultCurrencies.
func LoadCurrencies(currenciesFile string) (models.Currencies, error) {
	var currenciesPath string
	if filepath.IsAbs(currenciesFile) {
		currenciesPath = currenciesFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		currenciesPath = filepath.Join(wd, currenciesFile)
	}

	data, err := os.ReadFile(currenciesPath)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Info("Currency file not found, using defaults", zap.String("file", currenciesFile))
		return models.DefaultCurrencies(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", currenciesFile, err)
	}

	var config CurrenciesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", currenciesFile, err)
	}
	if len(config.Currencies) == 0 {
		return nil, fmt.Errorf("%s lists no currencies", currenciesFile)
	}

	currencies := make(models.Currencies, len(config.Currencies))
	for i, currency := range config.Currencies {
		code := strings.ToUpper(strings.TrimSpace(currency.Code))
		if len(code) != 3 {
			return nil, fmt.Errorf("currency at index %d has invalid code %q", i, currency.Code)
		}
		if currency.Precision == nil {
			return nil, fmt.Errorf("currency at index %d missing precision", i)
		}
		if *currency.Precision < 0 || *currency.Precision > 8 {
			return nil, fmt.Errorf("currency %s has unsupported precision %d", code, *currency.Precision)
		}
		currencies[code] = *currency.Precision
	}

	return currencies, nil
}
