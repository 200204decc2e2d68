package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Analysis AnalysisConfig
	Export   ExportConfig
	Logger   LoggerConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DataConfig names the four CSV files that make up one procurement snapshot.
type DataConfig struct {
	SuppliersFile string
	MaterialsFile string
	OrdersFile    string
	IncidentsFile string
}

// AnalysisConfig carries every tunable threshold of the savings engine.
// Rates are fractions (0.03 = 3%), thresholds are percentages where named so.
type AnalysisConfig struct {
	MinSupplierOrders      int
	VarianceThresholdPct   float64
	TopOpportunities       int
	DeliveryPenaltyRate    float64
	ConsolidationRate      float64
	FragmentationThreshold int
	Trials                 int
	Seed                   int64
	PerturbationSpread     float64
	MaxRecommendations     int
}

type ExportConfig struct {
	Enabled bool
	Dir     string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8086),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Data: DataConfig{
			SuppliersFile: getEnvString("DATA_SUPPLIERS_FILE", "data/suppliers.csv"),
			MaterialsFile: getEnvString("DATA_MATERIALS_FILE", "data/materials.csv"),
			OrdersFile:    getEnvString("DATA_ORDERS_FILE", "data/purchase_orders.csv"),
			IncidentsFile: getEnvString("DATA_INCIDENTS_FILE", "data/quality_incidents.csv"),
		},
		Analysis: AnalysisConfig{
			MinSupplierOrders:      getEnvInt("ANALYSIS_MIN_SUPPLIER_ORDERS", 5),
			VarianceThresholdPct:   getEnvFloat("ANALYSIS_VARIANCE_THRESHOLD_PCT", 10),
			TopOpportunities:       getEnvInt("ANALYSIS_TOP_OPPORTUNITIES", 20),
			DeliveryPenaltyRate:    getEnvFloat("ANALYSIS_DELIVERY_PENALTY_RATE", 0.03),
			ConsolidationRate:      getEnvFloat("ANALYSIS_CONSOLIDATION_RATE", 0.05),
			FragmentationThreshold: getEnvInt("ANALYSIS_FRAGMENTATION_THRESHOLD", 10),
			Trials:                 getEnvInt("ANALYSIS_MC_TRIALS", 1000),
			Seed:                   getEnvInt64("ANALYSIS_MC_SEED", 42),
			PerturbationSpread:     getEnvFloat("ANALYSIS_MC_SPREAD", 0.20),
			MaxRecommendations:     getEnvInt("ANALYSIS_MAX_RECOMMENDATIONS", 10),
		},
		Export: ExportConfig{
			Enabled: getEnvBool("EXPORT_ENABLED", false),
			Dir:     getEnvString("EXPORT_DIR", "reports"),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8086"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	for name, path := range map[string]string{
		"suppliers": c.Data.SuppliersFile,
		"materials": c.Data.MaterialsFile,
		"orders":    c.Data.OrdersFile,
		"incidents": c.Data.IncidentsFile,
	} {
		if path == "" {
			return fmt.Errorf("%s file path cannot be empty", name)
		}
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 || c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit RPS and burst must be positive")
	}

	if c.Export.Enabled && c.Export.Dir == "" {
		return fmt.Errorf("export directory cannot be empty when export is enabled")
	}

	// Analysis thresholds get their own validation pass inside the engine so
	// the same checks guard programmatic callers; nothing to duplicate here.
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
