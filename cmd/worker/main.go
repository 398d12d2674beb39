package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/athebyme/struct-commerce-sync/config"
	"github.com/athebyme/struct-commerce-sync/internal/adapters/logger"
	"github.com/athebyme/struct-commerce-sync/internal/app"
	"github.com/athebyme/struct-commerce-sync/internal/worker"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	topicPartitions        = 3
	topicReplicationFactor = 1
)

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
	if !cfg.Kafka.Enabled {
		log.Fatal("Воркеру нужна Kafka: включите kafka.enabled")
	}

	log.Info("Инициализация воркера",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName + "-worker"},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем HTTP сервер для метрик если они включены
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Endpoint, promhttp.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("OK"))
			})

			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			log.Info("Запуск HTTP сервера для метрик", interfaces.LogField{Key: "addr", Value: addr})
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error("Ошибка запуска HTTP сервера для метрик", interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}()
	}

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Ошибка инициализации зависимостей", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer application.Close()

	for _, topic := range []string{cfg.Kafka.WebhookTopic, cfg.Kafka.EventsTopic} {
		if err := application.Messaging.CreateTopic(ctx, topic, topicPartitions, topicReplicationFactor); err != nil {
			log.Warn("Не удалось создать топик", interfaces.LogField{Key: "topic", Value: topic}, interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}

	relay := worker.NewRelay(application.Dispatcher, cfg.Server.RequestTimeout, log)

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		unsubscribe, err := application.Messaging.Subscribe(ctx, cfg.Kafka.WebhookTopic, relay.Handle)
		if err != nil {
			log.Error("Ошибка подписки на вебхуки", interfaces.LogField{Key: "error", Value: err.Error()})
			return
		}
		defer unsubscribe()

		log.Info("Подписка на вебхуки установлена", interfaces.LogField{Key: "topic", Value: cfg.Kafka.WebhookTopic})
		<-ctx.Done()
		log.Info("Отмена подписки на вебхуки")
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")
		cancel()
		wg.Wait()
		close(done)
	}()

	log.Info("Воркер запущен и готов к обработке сообщений")
	<-done
	log.Info("Воркер корректно завершил работу")
}
