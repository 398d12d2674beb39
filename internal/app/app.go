package app

import (
	"context"
	"fmt"
	"time"

	"github.com/athebyme/struct-commerce-sync/config"
	"github.com/athebyme/struct-commerce-sync/internal/adapters/cache"
	"github.com/athebyme/struct-commerce-sync/internal/adapters/commercetools"
	"github.com/athebyme/struct-commerce-sync/internal/adapters/messaging"
	"github.com/athebyme/struct-commerce-sync/internal/adapters/storage"
	"github.com/athebyme/struct-commerce-sync/internal/adapters/structpim"
	"github.com/athebyme/struct-commerce-sync/internal/domain/services"
	"github.com/athebyme/struct-commerce-sync/internal/utils"
	"github.com/athebyme/struct-commerce-sync/internal/webhook"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
)

// App зависимости, общие для API и воркера
type App struct {
	Config     *config.Config
	Logger     interfaces.LoggerPort
	Cache      interfaces.CachePort
	PIM        interfaces.PIMPort
	Commerce   interfaces.CommercePort
	Runs       interfaces.StoragePort
	Messaging  *messaging.KafkaMessaging
	Factory    *services.Factory
	Dispatcher *webhook.Dispatcher

	closers []func() error
}

// New подключает внешние системы. Частично созданные подключения закрываются при ошибке.
func New(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort) (_ *App, err error) {
	a := &App{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := a.initCache(ctx); err != nil {
		return nil, err
	}

	pimClient, err := structpim.NewClient(cfg.Struct.BaseURL, cfg.Struct.APIKey, cfg.Struct.Timeout, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create struct pim client: %w", err)
	}
	var invalidator webhook.Invalidator
	a.PIM = pimClient
	if a.Cache != nil {
		cached := structpim.NewCachedClient(pimClient, a.Cache, cfg.Cache.TTL, log)
		a.PIM = cached
		invalidator = cached
	}
	log.Info("Клиент Struct PIM инициализирован", interfaces.LogField{Key: "base_url", Value: cfg.Struct.BaseURL})

	commerce, err := commercetools.NewClient(ctx, commercetools.Config{
		ProjectKey:   cfg.Commerce.ProjectKey,
		AuthURL:      cfg.Commerce.AuthURL,
		APIURL:       cfg.Commerce.APIURL,
		ClientID:     cfg.Commerce.ClientID,
		ClientSecret: cfg.Commerce.ClientSecret,
		Scopes:       cfg.Commerce.Scopes,
		RateLimit:    cfg.Commerce.RateLimit,
		Burst:        cfg.Commerce.Burst,
		Timeout:      cfg.Commerce.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create commercetools client: %w", err)
	}
	a.Commerce = commerce
	log.Info("Клиент Commercetools инициализирован", interfaces.LogField{Key: "project", Value: cfg.Commerce.ProjectKey})

	if err := a.initStorage(ctx); err != nil {
		return nil, err
	}
	if err := a.initMessaging(); err != nil {
		return nil, err
	}

	a.Factory = services.NewFactory(a.Commerce, a.PIM, log, services.Options{
		RollBackOnFailure:                        cfg.Import.RollBackOnFailure,
		AllowCleanCommerce:                       cfg.Import.AllowCleanCommerce,
		RecreateProductsOnProductStructureChange: cfg.Import.RecreateProductsOnProductStructureChange,
		IncludeProductStructureAliases:           cfg.Import.IncludeProductStructureAliases,
		BatchSize:                                cfg.Import.BatchSize,
		Concurrency:                              cfg.Import.Concurrency,
	})
	if a.Runs != nil {
		a.Factory.WithRunStore(a.Runs)
	}

	a.Dispatcher = webhook.NewDispatcher(a.Factory, a.PIM, log)
	if invalidator != nil {
		a.Dispatcher.WithInvalidator(invalidator)
	}
	if a.Messaging != nil {
		a.Dispatcher.WithEvents(a.Messaging, cfg.Kafka.EventsTopic)
	}
	return a, nil
}

func (a *App) initCache(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Cache.Prefix, cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("failed to create redis cache: %w", err)
		}
		if err := checkCacheConnection(ctx, redisCache); err != nil {
			redisCache.Close()
			return err
		}
		a.Cache = redisCache
		a.closers = append(a.closers, redisCache.Close)
		a.Logger.Info("Кэш Redis инициализирован", interfaces.LogField{Key: "host", Value: cfg.Redis.Host})
	case config.CacheMemory:
		a.Cache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
		a.closers = append(a.closers, a.Cache.Close)
		a.Logger.Info("Кэш в памяти инициализирован")
	default:
		a.Logger.Info("Кэш отключен")
	}
	return nil
}

func (a *App) initStorage(ctx context.Context) error {
	cfg := a.Config
	if !cfg.Postgres.Enabled {
		a.Logger.Info("Журнал запусков импорта отключен")
		return nil
	}

	dsn, err := utils.GenerateConnectionString(
		cfg.Postgres.Host,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
		cfg.Postgres.Port,
		cfg.Postgres.PoolSize,
		cfg.Postgres.Timeout,
	)
	if err != nil {
		return fmt.Errorf("failed to build postgres connection string: %w", err)
	}

	runs, err := storage.NewRunStorage(ctx, dsn, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to init run storage: %w", err)
	}
	a.Runs = runs
	a.closers = append(a.closers, runs.Close)
	a.Logger.Info("Хранилище журнала запусков инициализировано")
	return nil
}

func (a *App) initMessaging() error {
	cfg := a.Config
	if !cfg.Kafka.Enabled {
		a.Logger.Info("Kafka отключена, события синхронизации не публикуются")
		return nil
	}

	kafkaClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to init kafka: %w", err)
	}
	a.Messaging = kafkaClient
	a.closers = append(a.closers, kafkaClient.Close)
	a.Logger.Info("Система обмена сообщениями инициализирована", interfaces.LogField{Key: "brokers", Value: cfg.Kafka.Brokers})
	return nil
}

// Close закрывает подключения в обратном порядке
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Error("Ошибка при закрытии зависимости", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}
	a.closers = nil
}

// checkCacheConnection проверяет запись и чтение пробного ключа
func checkCacheConnection(ctx context.Context, c interfaces.CachePort) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	testKey := "test:connection"
	testValue := []byte("test-value")

	if err := c.Set(ctx, testKey, testValue, 10*time.Second); err != nil {
		return fmt.Errorf("redis write failed: %w", err)
	}
	value, err := c.Get(ctx, testKey)
	if err != nil {
		return fmt.Errorf("redis read failed: %w", err)
	}
	if string(value) != string(testValue) {
		return fmt.Errorf("redis returned %q, expected %q", value, testValue)
	}
	if err := c.Delete(ctx, testKey); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
