// backend-go/internal/config/config.go
package config

import (
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Cache   CacheConfig
	Engine  EngineConfig
	Archive ArchiveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// StoreConfig selects and configures the data store backend. Backend is
// either "postgrest" (hosted Postgres behind its REST gateway) or
// "postgres" (direct SQL connection).
type StoreConfig struct {
	Backend string

	// PostgREST
	BaseURL        string
	APIKey         string
	TimeoutSeconds int

	// Direct Postgres
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	InventoryTTLSeconds int
	SalesTTLSeconds     int
	CatalogTTLSeconds   int
	LotTTLSeconds       int
}

// EngineConfig carries every tunable of the analytics engine. The priority
// cutoffs and category multipliers are operational knobs, not algorithm
// constants, so they live here.
type EngineConfig struct {
	LookbackDays      int
	HorizonDays       int
	ServiceLevel      float64
	LeadTimeDays      int
	ReviewPeriodDays  int
	OrderCost         float64
	HoldingRate       float64
	MinTransferQty    int
	MaxTransferKm     float64
	TransferFixedCost float64
	TransferPerUnit   float64
	TransferPerKm     float64

	// Redistribution surplus policy: "min_buffer" or "max_capacity".
	RedistPolicy string

	// Priority score cutoffs: score >= Critical -> CRITICAL, etc.
	ScoreCritical float64
	ScoreHigh     float64
	ScoreMedium   float64

	// Category name -> importance multiplier. Unlisted categories get 1.0.
	CategoryMultipliers map[string]float64

	// Month (1-12, string key) -> seasonal demand factor used by the seeder.
	SeasonalFactors map[string]float64

	EngineVersion string
}

type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
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

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

		viper.SetDefault("STORE_BACKEND", "postgrest")
		viper.SetDefault("POSTGREST_URL", "http://localhost:3000")
		viper.SetDefault("POSTGREST_API_KEY", "")
		viper.SetDefault("POSTGREST_TIMEOUT_SECONDS", 10)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "codice")
		viper.SetDefault("DB_SSLMODE", "disable")

		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_INVENTORY_TTL_SECONDS", 60)
		viper.SetDefault("CACHE_SALES_TTL_SECONDS", 300)
		viper.SetDefault("CACHE_CATALOG_TTL_SECONDS", 3600)
		viper.SetDefault("CACHE_LOT_TTL_SECONDS", 300)

		viper.SetDefault("ENGINE_LOOKBACK_DAYS", 90)
		viper.SetDefault("ENGINE_HORIZON_DAYS", 30)
		viper.SetDefault("ENGINE_SERVICE_LEVEL", 0.95)
		viper.SetDefault("ENGINE_LEAD_TIME_DAYS", 7)
		viper.SetDefault("ENGINE_REVIEW_PERIOD_DAYS", 7)
		viper.SetDefault("ENGINE_ORDER_COST", 50.0)
		viper.SetDefault("ENGINE_HOLDING_RATE", 0.25)
		viper.SetDefault("ENGINE_MIN_TRANSFER_QTY", 5)
		viper.SetDefault("ENGINE_MAX_TRANSFER_KM", 50.0)
		viper.SetDefault("ENGINE_TRANSFER_FIXED_COST", 50.0)
		viper.SetDefault("ENGINE_TRANSFER_PER_UNIT", 2.0)
		viper.SetDefault("ENGINE_TRANSFER_PER_KM", 1.5)
		viper.SetDefault("ENGINE_REDIST_POLICY", "min_buffer")
		viper.SetDefault("ENGINE_SCORE_CRITICAL", 80.0)
		viper.SetDefault("ENGINE_SCORE_HIGH", 60.0)
		viper.SetDefault("ENGINE_SCORE_MEDIUM", 40.0)
		viper.SetDefault("ENGINE_CATEGORY_MULTIPLIERS", map[string]string{
			"antibiotico":       "1.5",
			"cardiovascular":    "1.5",
			"analgesico":        "1.2",
			"antidiabetico":     "1.2",
			"antiinflamatorio":  "1.2",
			"gastroprotector":   "1.0",
		})
		viper.SetDefault("ENGINE_SEASONAL_FACTORS", map[string]string{
			"1": "1.3", "2": "1.2", "3": "1.0", "4": "0.9",
			"5": "0.8", "6": "0.9", "7": "0.8", "8": "0.8",
			"9": "0.9", "10": "1.1", "11": "1.3", "12": "1.4",
		})
		viper.SetDefault("ENGINE_VERSION", "1.0.0")

		viper.SetDefault("ARCHIVE_ENABLED", false)
		viper.SetDefault("ARCHIVE_ENDPOINT", "")
		viper.SetDefault("ARCHIVE_ACCESS_KEY", "")
		viper.SetDefault("ARCHIVE_SECRET_KEY", "")
		viper.SetDefault("ARCHIVE_BUCKET", "")
		viper.SetDefault("ARCHIVE_REGION", "us-east-1")
		viper.SetDefault("ARCHIVE_USE_SSL", true)

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
			Store: StoreConfig{
				Backend:        strings.ToLower(viper.GetString("STORE_BACKEND")),
				BaseURL:        viper.GetString("POSTGREST_URL"),
				APIKey:         viper.GetString("POSTGREST_API_KEY"),
				TimeoutSeconds: viper.GetInt("POSTGREST_TIMEOUT_SECONDS"),
				Host:           viper.GetString("DB_HOST"),
				Port:           viper.GetString("DB_PORT"),
				User:           viper.GetString("DB_USER"),
				Password:       viper.GetString("DB_PASSWORD"),
				DBName:         viper.GetString("DB_NAME"),
				SSLMode:        viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				InventoryTTLSeconds: viper.GetInt("CACHE_INVENTORY_TTL_SECONDS"),
				SalesTTLSeconds:     viper.GetInt("CACHE_SALES_TTL_SECONDS"),
				CatalogTTLSeconds:   viper.GetInt("CACHE_CATALOG_TTL_SECONDS"),
				LotTTLSeconds:       viper.GetInt("CACHE_LOT_TTL_SECONDS"),
			},
			Engine: EngineConfig{
				LookbackDays:        viper.GetInt("ENGINE_LOOKBACK_DAYS"),
				HorizonDays:         viper.GetInt("ENGINE_HORIZON_DAYS"),
				ServiceLevel:        viper.GetFloat64("ENGINE_SERVICE_LEVEL"),
				LeadTimeDays:        viper.GetInt("ENGINE_LEAD_TIME_DAYS"),
				ReviewPeriodDays:    viper.GetInt("ENGINE_REVIEW_PERIOD_DAYS"),
				OrderCost:           viper.GetFloat64("ENGINE_ORDER_COST"),
				HoldingRate:         viper.GetFloat64("ENGINE_HOLDING_RATE"),
				MinTransferQty:      viper.GetInt("ENGINE_MIN_TRANSFER_QTY"),
				MaxTransferKm:       viper.GetFloat64("ENGINE_MAX_TRANSFER_KM"),
				TransferFixedCost:   viper.GetFloat64("ENGINE_TRANSFER_FIXED_COST"),
				TransferPerUnit:     viper.GetFloat64("ENGINE_TRANSFER_PER_UNIT"),
				TransferPerKm:       viper.GetFloat64("ENGINE_TRANSFER_PER_KM"),
				RedistPolicy:        strings.ToLower(viper.GetString("ENGINE_REDIST_POLICY")),
				ScoreCritical:       viper.GetFloat64("ENGINE_SCORE_CRITICAL"),
				ScoreHigh:           viper.GetFloat64("ENGINE_SCORE_HIGH"),
				ScoreMedium:         viper.GetFloat64("ENGINE_SCORE_MEDIUM"),
				CategoryMultipliers: floatMap(viper.GetStringMapString("ENGINE_CATEGORY_MULTIPLIERS")),
				SeasonalFactors:     floatMap(viper.GetStringMapString("ENGINE_SEASONAL_FACTORS")),
				EngineVersion:       viper.GetString("ENGINE_VERSION"),
			},
			Archive: ArchiveConfig{
				Enabled:   viper.GetBool("ARCHIVE_ENABLED"),
				Endpoint:  viper.GetString("ARCHIVE_ENDPOINT"),
				AccessKey: viper.GetString("ARCHIVE_ACCESS_KEY"),
				SecretKey: viper.GetString("ARCHIVE_SECRET_KEY"),
				Bucket:    viper.GetString("ARCHIVE_BUCKET"),
				Region:    viper.GetString("ARCHIVE_REGION"),
				UseSSL:    viper.GetBool("ARCHIVE_USE_SSL"),
			},
		}
	})

	return instance
}

// floatMap parses a string/string map into float values, dropping entries
// that do not parse.
func floatMap(in map[string]string) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = f
	}
	return out
}
