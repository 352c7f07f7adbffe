// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Forecast ForecastConfig
	Cache    CacheConfig
	Bundle   BundleConfig
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

// ForecastConfig holds the tunables of the forecasting engine.
type ForecastConfig struct {
	LookbackDays       int
	TestSplit          float64
	HorizonDays        int
	OrderCost          float64
	HoldingCostPerUnit float64
	WorkerCount        int
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

// BundleConfig points at the pretrained model bundle, either on local disk
// or in an S3-compatible bucket fetched at startup.
type BundleConfig struct {
	Dir       string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	BucketKey string
	Region    string
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

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "stockwise")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("FORECAST_LOOKBACK_DAYS", 90)
		viper.SetDefault("FORECAST_TEST_SPLIT", 0.2)
		viper.SetDefault("FORECAST_HORIZON_DAYS", 14)
		viper.SetDefault("FORECAST_ORDER_COST", 50.0)
		viper.SetDefault("FORECAST_HOLDING_COST_PER_UNIT", 2.0)
		viper.SetDefault("FORECAST_WORKER_COUNT", 4)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("BUNDLE_DIR", "./data/models")
		viper.SetDefault("BUNDLE_ENDPOINT", "")
		viper.SetDefault("BUNDLE_ACCESS_KEY", "")
		viper.SetDefault("BUNDLE_SECRET_KEY", "")
		viper.SetDefault("BUNDLE_BUCKET", "")
		viper.SetDefault("BUNDLE_BUCKET_KEY", "models/best_demand_model")
		viper.SetDefault("BUNDLE_REGION", "")
		viper.SetDefault("BUNDLE_USE_SSL", true)

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
			Forecast: ForecastConfig{
				LookbackDays:       viper.GetInt("FORECAST_LOOKBACK_DAYS"),
				TestSplit:          viper.GetFloat64("FORECAST_TEST_SPLIT"),
				HorizonDays:        viper.GetInt("FORECAST_HORIZON_DAYS"),
				OrderCost:          viper.GetFloat64("FORECAST_ORDER_COST"),
				HoldingCostPerUnit: viper.GetFloat64("FORECAST_HOLDING_COST_PER_UNIT"),
				WorkerCount:        viper.GetInt("FORECAST_WORKER_COUNT"),
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
			Bundle: BundleConfig{
				Dir:       viper.GetString("BUNDLE_DIR"),
				Endpoint:  viper.GetString("BUNDLE_ENDPOINT"),
				AccessKey: viper.GetString("BUNDLE_ACCESS_KEY"),
				SecretKey: viper.GetString("BUNDLE_SECRET_KEY"),
				Bucket:    viper.GetString("BUNDLE_BUCKET"),
				BucketKey: viper.GetString("BUNDLE_BUCKET_KEY"),
				Region:    viper.GetString("BUNDLE_REGION"),
				UseSSL:    viper.GetBool("BUNDLE_USE_SSL"),
			},
		}
	})

	return instance
}
