package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/athebyme/struct-commerce-sync/config"
	"github.com/athebyme/struct-commerce-sync/internal/adapters/logger"
	"github.com/athebyme/struct-commerce-sync/internal/api"
	"github.com/athebyme/struct-commerce-sync/internal/api/handlers"
	"github.com/athebyme/struct-commerce-sync/internal/app"
	"github.com/athebyme/struct-commerce-sync/internal/security"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
)

// jwtLifetime срок жизни токенов, выпускаемых сервисом
const jwtLifetime = 24 * time.Hour

// @title       Struct PIM Commercetools sync
// @version     1.0
// @description Синхронизация каталога Struct PIM с Commercetools
// @BasePath    /
// @securityDefinitions.apikey ApiKeyAuth
// @in   header
// @name XApiKey
func main() {
	configPath := flag.String("config", "", "путь к файлу конфигурации")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Некорректная конфигурация", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Ошибка инициализации зависимостей", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	var jwtManager *security.JWTManager
	if cfg.Security.JWTSecret != "" {
		jwtManager, err = security.NewJWTManager(cfg.Security.JWTSecret, jwtLifetime, cfg.Security.JWTIssuer)
		if err != nil {
			log.Fatal("Ошибка инициализации JWT", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}
	if cfg.Security.APIKey == "" && jwtManager == nil {
		log.Warn("Ключ API и секрет JWT не заданы, аутентификация отключена")
	}

	metricsEndpoint := ""
	if cfg.Metrics.Enabled {
		metricsEndpoint = cfg.Metrics.Endpoint
	}

	router := api.SetupRouter(api.Dependencies{
		Dispatcher: application.Dispatcher,
		NewImporter: func() handlers.ImportRunner {
			return application.Factory.NewScope().Importer
		},
		Runs:               application.Runs,
		PIM:                application.PIM,
		APIKey:             security.NewAPIKeyVerifier(cfg.Security.APIKey),
		JWT:                jwtManager,
		Logger:             log,
		CORSAllowedOrigins: cfg.Security.CORSAllowOrigins,
		RequestTimeout:     cfg.Server.RequestTimeout,
		RateLimit:          cfg.Server.RateLimit,
		MetricsEndpoint:    metricsEndpoint,
	})
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("HTTP сервер остановлен")

		log.Info("Закрытие соединений с зависимостями...")
		application.Close()

		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
}
