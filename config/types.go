package config

// APIConfig contains the municipal transit API endpoint configuration
type APIConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"omitempty,url"`
	APIKeyEnv string `yaml:"apiKeyEnv"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
}

// CollectorConfig contains the live-position collection configuration
type CollectorConfig struct {
	DataDir             string `yaml:"dataDir"`
	LiveMinutes         int    `yaml:"liveMinutes" validate:"gte=0"`
	Workers             int    `yaml:"workers" validate:"gte=0"`
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
}

// AnalysisConfig contains the punctuality/speed/depot analysis policies
type AnalysisConfig struct {
	Workers           int     `yaml:"workers" validate:"gte=0"`
	SpeedLimitKMH     float64 `yaml:"speedLimitKMH" validate:"gte=0"`
	EarlyToleranceSec int     `yaml:"earlyToleranceSec" validate:"gte=0"`
	MaxMedianDelaySec int     `yaml:"maxMedianDelaySec" validate:"gte=0"`
	MinReportSize     int     `yaml:"minReportSize" validate:"gte=0"`
	TopLines          int     `yaml:"topLines" validate:"gte=0"`
}

// StoreConfig contains the delay-statistics store configuration
type StoreConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig contains the Prometheus metrics server configuration.
// An empty address disables the metrics endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	API       APIConfig       `yaml:"api"`
	Collector CollectorConfig `yaml:"collector"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Store     StoreConfig     `yaml:"store"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}
