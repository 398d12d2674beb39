package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrMissingProjectKey   = errors.New("commerce.projectKey is required")
	ErrMissingCommerceAuth = errors.New("commerce.clientId and commerce.clientSecret are required")
	ErrMissingStructURL    = errors.New("struct.baseUrl is required")
	ErrMissingStructAPIKey = errors.New("struct.apiKey is required")
	ErrInvalidCacheDriver  = errors.New("cache.driver must be one of redis, memory, none")
	ErrMissingKafkaBrokers = errors.New("kafka.brokers are required when kafka is enabled")
)

// Драйверы кэша
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		// RequestTimeout ограничивает обработку вебхука; импорт идет без ограничения
		RequestTimeout time.Duration
		// RateLimit входящих запросов в секунду, 0 отключает ограничение
		RateLimit float64
	}

	Commerce struct {
		ProjectKey   string
		AuthURL      string
		APIURL       string
		ClientID     string
		ClientSecret string
		Scopes       []string
		RateLimit    float64 // запросов в секунду
		Burst        int
		Timeout      time.Duration
	}

	Struct struct {
		BaseURL string
		APIKey  string
		Timeout time.Duration
	}

	Import struct {
		RollBackOnFailure                        bool
		AllowCleanCommerce                       bool
		RecreateProductsOnProductStructureChange bool
		IncludeProductStructureAliases           []string
		BatchSize                                int
		Concurrency                              int
	}

	Cache struct {
		Driver          string
		TTL             time.Duration
		CleanupInterval time.Duration
		Prefix          string
	}

	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
	}

	Postgres struct {
		Enabled  bool
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		Timeout  time.Duration
		PoolSize int // размер пула соединений
	}

	Kafka struct {
		Enabled      bool
		Brokers      []string
		GroupID      string
		WebhookTopic string
		EventsTopic  string
	}

	Metrics struct {
		Enabled  bool
		Endpoint string
		// Port сервера метрик воркера
		Port int
	}

	Security struct {
		APIKey           string
		JWTSecret        string
		JWTIssuer        string
		CORSAllowOrigins []string
	}
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// путь к yaml файлу используется как есть, иначе это имя файла в каталогах поиска
	if strings.HasSuffix(configPath, ".yaml") || strings.HasSuffix(configPath, ".yml") {
		v.SetConfigFile(configPath)
	} else {
		configFile := "config"
		if configPath != "" {
			configFile = configPath
		}
		v.SetConfigName(configFile)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// без файла используются только переменные окружения
	}

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ENV = v.GetString("env")
	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	// списки из переменных окружения приходят одной строкой через запятую
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.Commerce.Scopes = splitList(cfg.Commerce.Scopes)
	cfg.Import.IncludeProductStructureAliases = splitList(cfg.Import.IncludeProductStructureAliases)
	cfg.Security.CORSAllowOrigins = splitList(cfg.Security.CORSAllowOrigins)

	return &cfg, nil
}

// Validate проверяет обязательные настройки, без них сервис не запускается
func (c *Config) Validate() error {
	var errs []error
	if c.Commerce.ProjectKey == "" {
		errs = append(errs, ErrMissingProjectKey)
	}
	if c.Commerce.ClientID == "" || c.Commerce.ClientSecret == "" {
		errs = append(errs, ErrMissingCommerceAuth)
	}
	if c.Struct.BaseURL == "" {
		errs = append(errs, ErrMissingStructURL)
	}
	if c.Struct.APIKey == "" {
		errs = append(errs, ErrMissingStructAPIKey)
	}
	switch c.Cache.Driver {
	case CacheRedis, CacheMemory, CacheNone:
	default:
		errs = append(errs, ErrInvalidCacheDriver)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, ErrMissingKafkaBrokers)
	}
	return errors.Join(errs...)
}

// IsProduction включает JSON логи
func (c *Config) IsProduction() bool {
	return c.ENV == "production"
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "struct-commerce-sync")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("logLevel", "info")
	v.SetDefault("env", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "0s")
	v.SetDefault("server.shutdownTimeout", "15s")
	v.SetDefault("server.requestTimeout", "5m")
	v.SetDefault("server.rateLimit", 0)

	v.SetDefault("commerce.authUrl", "https://auth.europe-west1.gcp.commercetools.com")
	v.SetDefault("commerce.apiUrl", "https://api.europe-west1.gcp.commercetools.com")
	v.SetDefault("commerce.rateLimit", 20)
	v.SetDefault("commerce.burst", 20)
	v.SetDefault("commerce.timeout", "30s")

	v.SetDefault("struct.timeout", "30s")

	v.SetDefault("import.rollBackOnFailure", true)
	v.SetDefault("import.allowCleanCommerce", false)
	v.SetDefault("import.recreateProductsOnProductStructureChange", false)
	v.SetDefault("import.batchSize", 1000)
	v.SetDefault("import.concurrency", 16)

	v.SetDefault("cache.driver", CacheMemory)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.cleanupInterval", "5m")
	v.SetDefault("cache.prefix", "struct-commerce-sync")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "postgres")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timeout", "5s")
	v.SetDefault("postgres.poolSize", 10)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.groupID", "struct-commerce-sync")
	v.SetDefault("kafka.webhookTopic", "pim-webhooks")
	v.SetDefault("kafka.eventsTopic", "pim-sync-events")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.endpoint", "/metrics")
	v.SetDefault("metrics.port", 9100)

	v.SetDefault("security.jwtIssuer", "struct-commerce-sync")
	v.SetDefault("security.corsAllowOrigins", []string{"*"})
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables(v *viper.Viper) {
	bind := func(key, env string) {
		_ = v.BindEnv(key, env)
	}

	bind("appName", "APP_NAME")
	bind("version", "APP_VERSION")
	bind("logLevel", "LOG_LEVEL")
	bind("env", "APP_ENV")

	bind("server.host", "SERVER_HOST")
	bind("server.port", "SERVER_PORT")
	bind("server.readTimeout", "SERVER_READ_TIMEOUT")
	bind("server.writeTimeout", "SERVER_WRITE_TIMEOUT")
	bind("server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT")
	bind("server.requestTimeout", "SERVER_REQUEST_TIMEOUT")
	bind("server.rateLimit", "SERVER_RATE_LIMIT")

	bind("commerce.projectKey", "CT_PROJECT_KEY")
	bind("commerce.authUrl", "CT_AUTH_URL")
	bind("commerce.apiUrl", "CT_API_URL")
	bind("commerce.clientId", "CT_CLIENT_ID")
	bind("commerce.clientSecret", "CT_CLIENT_SECRET")
	bind("commerce.scopes", "CT_SCOPES")
	bind("commerce.rateLimit", "CT_RATE_LIMIT")
	bind("commerce.burst", "CT_BURST")
	bind("commerce.timeout", "CT_TIMEOUT")

	bind("struct.baseUrl", "STRUCT_BASE_URL")
	bind("struct.apiKey", "STRUCT_API_KEY")
	bind("struct.timeout", "STRUCT_TIMEOUT")

	bind("import.rollBackOnFailure", "IMPORT_ROLLBACK_ON_FAILURE")
	bind("import.allowCleanCommerce", "IMPORT_ALLOW_CLEAN_COMMERCE")
	bind("import.recreateProductsOnProductStructureChange", "IMPORT_RECREATE_PRODUCTS_ON_STRUCTURE_CHANGE")
	bind("import.includeProductStructureAliases", "IMPORT_INCLUDE_PRODUCT_STRUCTURE_ALIASES")
	bind("import.batchSize", "IMPORT_BATCH_SIZE")
	bind("import.concurrency", "IMPORT_CONCURRENCY")

	bind("cache.driver", "CACHE_DRIVER")
	bind("cache.ttl", "CACHE_TTL")
	bind("cache.prefix", "CACHE_PREFIX")

	bind("redis.host", "REDIS_HOST")
	bind("redis.port", "REDIS_PORT")
	bind("redis.password", "REDIS_PASSWORD")
	bind("redis.db", "REDIS_DB")

	bind("postgres.enabled", "POSTGRES_ENABLED")
	bind("postgres.host", "POSTGRES_HOST")
	bind("postgres.port", "POSTGRES_PORT")
	bind("postgres.user", "POSTGRES_USER")
	bind("postgres.password", "POSTGRES_PASSWORD")
	bind("postgres.dbname", "POSTGRES_DBNAME")
	bind("postgres.sslmode", "POSTGRES_SSLMODE")
	bind("postgres.timeout", "POSTGRES_TIMEOUT")
	bind("postgres.poolSize", "POSTGRES_POOL_SIZE")

	bind("kafka.enabled", "KAFKA_ENABLED")
	bind("kafka.brokers", "KAFKA_BROKERS")
	bind("kafka.groupID", "KAFKA_GROUP_ID")
	bind("kafka.webhookTopic", "KAFKA_WEBHOOK_TOPIC")
	bind("kafka.eventsTopic", "KAFKA_EVENTS_TOPIC")

	bind("metrics.enabled", "METRICS_ENABLED")
	bind("metrics.endpoint", "METRICS_ENDPOINT")
	bind("metrics.port", "METRICS_PORT")

	bind("security.apiKey", "API_KEY")
	bind("security.jwtSecret", "JWT_SECRET")
	bind("security.jwtIssuer", "JWT_ISSUER")
	bind("security.corsAllowOrigins", "CORS_ALLOW_ORIGINS")
}
