package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Provider ProviderConfig
	Risk     RiskConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// ProviderConfig holds price-history provider configuration.
// FernetKey encrypts the provider API token at rest; TimeoutSeconds
// bounds every provider call, after which the engine reports the data
// as unavailable.
type ProviderConfig struct {
	BaseURL        string
	Source         string // "http" or "database"
	TimeoutSeconds int
	FernetKey      string
}

// RiskConfig holds the tunable parameters of the analytics engine.
// Confidence levels, windows and thresholds are design parameters, not
// constants; the defaults below are the documented ones.
type RiskConfig struct {
	// LookbackDays is the trading-day price history requested per
	// ticker. The default covers a year of returns plus the rolling
	// beta warm-up.
	LookbackDays int
	// VaRConfidence is the one-sided confidence level for normal VaR.
	VaRConfidence float64
	// StressConfidence is the confidence level for stress VaR.
	StressConfidence float64
	// MinStressDays is the smallest stress subsample the stress VaR
	// will be estimated on before falling back to the full sample.
	MinStressDays int
	// VolatilityWindow is the trailing window, in trading days, of the
	// realized-volatility series behind the regime classifier.
	VolatilityWindow int
	// StressPercentile is the rolling-volatility percentile above which
	// a day is labeled a stress day.
	StressPercentile float64
	// BetaWindow is the trailing window, in trading days, of each
	// rolling beta regression.
	BetaWindow int
	// BenchmarkTicker is the index the portfolio is regressed against.
	BenchmarkTicker string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/risk_engine.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Provider: ProviderConfig{
			BaseURL:        getEnv("PROVIDER_BASE_URL", "https://query1.finance.yahoo.com"),
			Source:         getEnv("PROVIDER_SOURCE", "database"),
			TimeoutSeconds: getEnvInt("PROVIDER_TIMEOUT_SECONDS", 10),
			FernetKey:      getEnv("PROVIDER_FERNET_KEY", ""),
		},
		Risk: RiskConfig{
			LookbackDays:     getEnvInt("RISK_LOOKBACK_DAYS", 320),
			VaRConfidence:    getEnvFloat("RISK_VAR_CONFIDENCE", 0.95),
			StressConfidence: getEnvFloat("RISK_STRESS_CONFIDENCE", 0.99),
			MinStressDays:    getEnvInt("RISK_MIN_STRESS_DAYS", 10),
			VolatilityWindow: getEnvInt("RISK_VOLATILITY_WINDOW", 20),
			StressPercentile: getEnvFloat("RISK_STRESS_PERCENTILE", 0.75),
			BetaWindow:       getEnvInt("RISK_BETA_WINDOW", 60),
			BenchmarkTicker:  getEnv("RISK_BENCHMARK_TICKER", "SPY"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

func validate(config *Config) error {
	if config.Risk.VaRConfidence <= 0.5 || config.Risk.VaRConfidence >= 1.0 {
		return fmt.Errorf("RISK_VAR_CONFIDENCE must be in (0.5, 1.0), got %v", config.Risk.VaRConfidence)
	}
	if config.Risk.StressConfidence <= 0.5 || config.Risk.StressConfidence >= 1.0 {
		return fmt.Errorf("RISK_STRESS_CONFIDENCE must be in (0.5, 1.0), got %v", config.Risk.StressConfidence)
	}
	if config.Risk.StressPercentile <= 0 || config.Risk.StressPercentile >= 1.0 {
		return fmt.Errorf("RISK_STRESS_PERCENTILE must be in (0, 1), got %v", config.Risk.StressPercentile)
	}
	if config.Risk.VolatilityWindow < 2 {
		return fmt.Errorf("RISK_VOLATILITY_WINDOW must be at least 2, got %d", config.Risk.VolatilityWindow)
	}
	if config.Risk.BetaWindow < 2 {
		return fmt.Errorf("RISK_BETA_WINDOW must be at least 2, got %d", config.Risk.BetaWindow)
	}
	if config.Risk.BenchmarkTicker == "" {
		return fmt.Errorf("RISK_BENCHMARK_TICKER cannot be empty")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
