package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from config.yml.
// A .env file, when present, is folded into the environment first so the API
// key can live next to the config without being committed.
func LoadAppConfig() error {
	_ = godotenv.Load()

	paths := []string{"config.yml", "./config/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	Config = cfg
	applyDefaults(&Config)
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.um.warszawa.pl/api/action"
	}
	if cfg.API.APIKeyEnv == "" {
		cfg.API.APIKeyEnv = "API_KEY"
	}
	if cfg.API.TimeoutMS == 0 {
		cfg.API.TimeoutMS = 10000
	}
	if cfg.Collector.DataDir == "" {
		cfg.Collector.DataDir = "data"
	}
	if cfg.Collector.LiveMinutes == 0 {
		cfg.Collector.LiveMinutes = 60
	}
	if cfg.Collector.Workers == 0 {
		cfg.Collector.Workers = 64
	}
	if cfg.Analysis.SpeedLimitKMH == 0 {
		cfg.Analysis.SpeedLimitKMH = 50
	}
	if cfg.Analysis.EarlyToleranceSec == 0 {
		cfg.Analysis.EarlyToleranceSec = 120
	}
	if cfg.Analysis.MaxMedianDelaySec == 0 {
		cfg.Analysis.MaxMedianDelaySec = 3600
	}
	if cfg.Analysis.MinReportSize == 0 {
		cfg.Analysis.MinReportSize = 10
	}
	if cfg.Analysis.TopLines == 0 {
		cfg.Analysis.TopLines = 10
	}
}

// APIKey resolves the transit API key from the environment using the
// configured variable name.
func APIKey() string {
	name := Config.API.APIKeyEnv
	if name == "" {
		name = "API_KEY"
	}
	return os.Getenv(name)
}
