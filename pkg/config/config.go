package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	SQLite  SQLiteConfig
	Redis   RedisConfig
	Auth    AuthConfig
	LLM     LLMConfig
	Catalog CatalogConfig
	Quiz    QuizConfig
	Geo     GeoConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	ListTTL  int
}

type AuthConfig struct {
	JWTSecret   string
	TokenTTLHrs int
}

type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type CatalogConfig struct {
	ApplicationID string
	ItemEndpoint  string
	EbookEndpoint string
	Hits          int
	BatchSize     int
	BatchDelayMS  int
	TimeoutSec    int
}

type QuizConfig struct {
	MaxRetries        int
	InitialDelayMS    int
	PointsPerQuestion int
}

type GeoConfig struct {
	GeocodeEndpoint string
	HotelEndpoint   string
	POIPath         string
	SearchRadiusKM  float64
	TimeoutSec      int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/bousai-navi")

	viper.SetEnvPrefix("BOUSAI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 60)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/bousai.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.listTTL", 3600)

	viper.SetDefault("auth.jwtSecret", "dev-only-secret-change-me")
	viper.SetDefault("auth.tokenTTLHrs", 24)

	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.model", "gemini-1.5-flash-latest")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.maxTokens", 2048)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("catalog.itemEndpoint", "https://app.rakuten.co.jp/services/api/IchibaItem/Search/20170706")
	viper.SetDefault("catalog.ebookEndpoint", "https://app.rakuten.co.jp/services/api/Kobo/EbookSearch/20170426")
	viper.SetDefault("catalog.hits", 3)
	viper.SetDefault("catalog.batchSize", 3)
	viper.SetDefault("catalog.batchDelayMS", 1000)
	viper.SetDefault("catalog.timeoutSec", 10)

	viper.SetDefault("quiz.maxRetries", 3)
	viper.SetDefault("quiz.initialDelayMS", 2000)
	viper.SetDefault("quiz.pointsPerQuestion", 10)

	viper.SetDefault("geo.geocodeEndpoint", "https://msearch.gsi.go.jp/address-search/AddressSearch")
	viper.SetDefault("geo.hotelEndpoint", "https://app.rakuten.co.jp/services/api/Travel/SimpleHotelSearch/20170426")
	viper.SetDefault("geo.poiPath", "./data/poi_nagoya.json")
	viper.SetDefault("geo.searchRadiusKM", 3)
	viper.SetDefault("geo.timeoutSec", 10)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
