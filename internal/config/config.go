// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Rules    RulesConfig
	Cache    CacheConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// EngineConfig holds every tuning constant the intelligence engine uses.
// None of these are hard-coded elsewhere; the defaults below are the only
// place they are set.
type EngineConfig struct {
	MinPeriods          int     // minimum history before forecasting
	HoldoutFraction     float64 // trailing validation share for model selection
	ConfidenceZ         float64 // z-multiplier for the forecast interval (~80% at 1.28)
	AnomalyWindow       int     // trailing moving-average window
	AnomalyK            float64 // sigma multiplier for a medium flag
	AnomalyLowK         float64 // secondary sigma multiplier for a low flag
	ServiceLevelZ       float64 // safety-stock z-multiplier (~95% at 1.65)
	HorizonDays         int     // replenishment horizon for order sizing
	ExpiryRiskScale     float64 // linear scale applied to the expiry shortfall ratio
	ExpiryDiscountRisk  float64 // risk at or above which a discount is recommended
	ExpiryReturnRisk    float64 // risk at or above which returning to supplier is preferred
	SimilarityThreshold float64 // fuzzy drug-name match acceptance
	BatchWorkers        int     // parallel items per batch run
}

type RulesConfig struct {
	Path string // interaction rule base YAML, re-read when its mtime changes
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "pharmalytics")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("ENGINE_MIN_PERIODS", 3)
		viper.SetDefault("ENGINE_HOLDOUT_FRACTION", 0.2)
		viper.SetDefault("ENGINE_CONFIDENCE_Z", 1.28)
		viper.SetDefault("ENGINE_ANOMALY_WINDOW", 4)
		viper.SetDefault("ENGINE_ANOMALY_K", 2.0)
		viper.SetDefault("ENGINE_ANOMALY_LOW_K", 1.5)
		viper.SetDefault("ENGINE_SERVICE_LEVEL_Z", 1.65)
		viper.SetDefault("ENGINE_HORIZON_DAYS", 30)
		viper.SetDefault("ENGINE_EXPIRY_RISK_SCALE", 1.0)
		viper.SetDefault("ENGINE_EXPIRY_DISCOUNT_RISK", 0.3)
		viper.SetDefault("ENGINE_EXPIRY_RETURN_RISK", 0.7)
		viper.SetDefault("ENGINE_SIMILARITY_THRESHOLD", 0.8)
		viper.SetDefault("ENGINE_BATCH_WORKERS", 4)
		viper.SetDefault("RULES_PATH", "./data/interaction_rules.yaml")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "engine-runs")
		viper.SetDefault("STORAGE_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Engine: EngineConfig{
				MinPeriods:          viper.GetInt("ENGINE_MIN_PERIODS"),
				HoldoutFraction:     viper.GetFloat64("ENGINE_HOLDOUT_FRACTION"),
				ConfidenceZ:         viper.GetFloat64("ENGINE_CONFIDENCE_Z"),
				AnomalyWindow:       viper.GetInt("ENGINE_ANOMALY_WINDOW"),
				AnomalyK:            viper.GetFloat64("ENGINE_ANOMALY_K"),
				AnomalyLowK:         viper.GetFloat64("ENGINE_ANOMALY_LOW_K"),
				ServiceLevelZ:       viper.GetFloat64("ENGINE_SERVICE_LEVEL_Z"),
				HorizonDays:         viper.GetInt("ENGINE_HORIZON_DAYS"),
				ExpiryRiskScale:     viper.GetFloat64("ENGINE_EXPIRY_RISK_SCALE"),
				ExpiryDiscountRisk:  viper.GetFloat64("ENGINE_EXPIRY_DISCOUNT_RISK"),
				ExpiryReturnRisk:    viper.GetFloat64("ENGINE_EXPIRY_RETURN_RISK"),
				SimilarityThreshold: viper.GetFloat64("ENGINE_SIMILARITY_THRESHOLD"),
				BatchWorkers:        viper.GetInt("ENGINE_BATCH_WORKERS"),
			},
			Rules: RulesConfig{
				Path: viper.GetString("RULES_PATH"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
		}
	})

	return instance
}

// DefaultEngineConfig returns the engine defaults without touching viper.
// Used by tests and by callers that embed the engine without env config.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MinPeriods:          3,
		HoldoutFraction:     0.2,
		ConfidenceZ:         1.28,
		AnomalyWindow:       4,
		AnomalyK:            2.0,
		AnomalyLowK:         1.5,
		ServiceLevelZ:       1.65,
		HorizonDays:         30,
		ExpiryRiskScale:     1.0,
		ExpiryDiscountRisk:  0.3,
		ExpiryReturnRisk:    0.7,
		SimilarityThreshold: 0.8,
		BatchWorkers:        4,
	}
}
