package messaging

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/athebyme/struct-commerce-sync/internal/metrics"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
)

// KafkaMessaging реализация MessagingPort с использованием Kafka
type KafkaMessaging struct {
	producer       *kafka.Producer
	consumers      map[string]*subscription
	consumersMutex sync.Mutex
	brokers        string
	groupID        string
	logger         interfaces.LoggerPort
}

// subscription consumer одной подписки и горутина, которая его читает
type subscription struct {
	consumer *kafka.Consumer
	cancel   context.CancelFunc
	done     chan struct{}
}

// stop дожидается выхода из Poll и только потом закрывает consumer
func (s *subscription) stop() error {
	s.cancel()
	<-s.done
	return s.consumer.Close()
}

// NewKafkaMessaging создает producer и хранит настройки для будущих подписок
func NewKafkaMessaging(brokers []string, groupID string, logger interfaces.LoggerPort) (*KafkaMessaging, error) {
	servers := strings.Join(brokers, ",")
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":            servers,
		"client.id":                    "struct-commerce-sync",
		"acks":                         "all",
		"retries":                      5,
		"retry.backoff.ms":             500,
		"compression.type":             "snappy",
		"linger.ms":                    10,
		"batch.size":                   16384,
		"message.max.bytes":            1000000,
		"queue.buffering.max.messages": 100000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	k := &KafkaMessaging{
		producer:  producer,
		consumers: make(map[string]*subscription),
		brokers:   servers,
		groupID:   groupID,
		logger:    logger.WithField("component", "kafka"),
	}
	go k.deliveryReports()
	return k, nil
}

// deliveryReports логирует неуспешную доставку, Produce асинхронный
func (k *KafkaMessaging) deliveryReports() {
	for ev := range k.producer.Events() {
		msg, ok := ev.(*kafka.Message)
		if !ok || msg.TopicPartition.Error == nil {
			continue
		}
		k.logger.Error("Сообщение не доставлено в Kafka",
			interfaces.LogField{Key: "topic", Value: *msg.TopicPartition.Topic},
			interfaces.LogField{Key: "error", Value: msg.TopicPartition.Error.Error()},
		)
	}
}

// messageToKafkaMessage преобразует сообщение в kafka.Message, добавляя служебные заголовки
func messageToKafkaMessage(topic string, message []byte, key string, headers map[string]string) *kafka.Message {
	kafkaHeaders := make([]kafka.Header, 0, len(headers)+2)
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: k, Value: []byte(v)})
	}
	kafkaHeaders = append(kafkaHeaders,
		kafka.Header{Key: HeaderMessageID, Value: []byte(uuid.New().String())},
		kafka.Header{Key: HeaderTimestamp, Value: []byte(strconv.FormatInt(time.Now().UnixNano(), 10))},
	)

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
		Key:            keyBytes,
		Headers:        kafkaHeaders,
	}
}

// kafkaMessageToMessage преобразует kafka.Message в Message
func kafkaMessageToMessage(msg *kafka.Message) *interfaces.Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, header := range msg.Headers {
		headers[header.Key] = string(header.Value)
	}

	publishedAt := msg.Timestamp
	if ts, err := strconv.ParseInt(headers[HeaderTimestamp], 10, 64); err == nil {
		publishedAt = time.Unix(0, ts)
	}

	var topic string
	if msg.TopicPartition.Topic != nil {
		topic = *msg.TopicPartition.Topic
	}

	return &interfaces.Message{
		ID:          headers[HeaderMessageID],
		Topic:       topic,
		Key:         string(msg.Key),
		Value:       msg.Value,
		Headers:     headers,
		PublishedAt: publishedAt,
	}
}

// Publish публикует сообщение в указанную тему
func (k *KafkaMessaging) Publish(ctx context.Context, topic string, message []byte) error {
	return k.PublishWithHeaders(ctx, topic, "", message, nil)
}

// PublishWithHeaders публикует сообщение с ключом и заголовками
func (k *KafkaMessaging) PublishWithHeaders(ctx context.Context, topic, key string, message []byte, headers map[string]string) error {
	if requestID, ok := ctx.Value(interfaces.RequestIDKey).(string); ok && requestID != "" {
		if headers == nil {
			headers = make(map[string]string, 1)
		}
		if _, set := headers[HeaderRequestID]; !set {
			headers[HeaderRequestID] = requestID
		}
	}

	if err := k.producer.Produce(messageToKafkaMessage(topic, message, key, headers), nil); err != nil {
		return fmt.Errorf("failed to produce message to %s: %w", topic, err)
	}
	return nil
}

// Subscribe подписывается на тему с настройками по умолчанию
func (k *KafkaMessaging) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	config := &interfaces.ConsumerConfig{
		GroupID:            k.groupID,
		AutoCommit:         false,
		AutoCommitInterval: 5 * time.Second,
		PollTimeout:        100 * time.Millisecond,
	}
	return k.SubscribeWithConfig(ctx, topic, handler, config)
}

// SubscribeWithConfig подписывается на тему. Сообщение подтверждается только после
// успешной обработки, если автоподтверждение выключено.
func (k *KafkaMessaging) SubscribeWithConfig(ctx context.Context, topic string, handler interfaces.MessageHandler, config *interfaces.ConsumerConfig) (func() error, error) {
	subscriptionID := uuid.New().String()

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":        k.brokers,
		"group.id":                 config.GroupID,
		"auto.offset.reset":        "earliest",
		"enable.auto.commit":       config.AutoCommit,
		"auto.commit.interval.ms":  int(config.AutoCommitInterval.Milliseconds()),
		"session.timeout.ms":       30000,
		"max.poll.interval.ms":     300000,
		"heartbeat.interval.ms":    3000,
		"fetch.min.bytes":          1,
		"fetch.wait.max.ms":        500,
		"reconnect.backoff.ms":     50,
		"reconnect.backoff.max.ms": 10000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		consumer.Close()
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{consumer: consumer, cancel: cancel, done: make(chan struct{})}

	k.consumersMutex.Lock()
	k.consumers[subscriptionID] = sub
	k.consumersMutex.Unlock()

	go func() {
		defer close(sub.done)
		k.consumeMessages(consumeCtx, consumer, handler, config)
	}()

	unsubscribe := func() error {
		k.consumersMutex.Lock()
		s, ok := k.consumers[subscriptionID]
		delete(k.consumers, subscriptionID)
		k.consumersMutex.Unlock()

		if !ok {
			return nil
		}
		return s.stop()
	}
	return unsubscribe, nil
}

// consumeMessages читает сообщения до отмены контекста
func (k *KafkaMessaging) consumeMessages(ctx context.Context, consumer *kafka.Consumer, handler interfaces.MessageHandler, config *interfaces.ConsumerConfig) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ev := consumer.Poll(int(config.PollTimeout.Milliseconds()))
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			msg := kafkaMessageToMessage(e)
			start := time.Now()

			metrics.ActiveWorkers.Inc()
			err := handler(ctx, msg)
			metrics.ActiveWorkers.Dec()
			metrics.MessageProcessingDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())

			if err != nil {
				metrics.MessagesProcessed.WithLabelValues(msg.Topic, "error").Inc()
				k.logger.ErrorWithContext(ctx, "Ошибка обработки сообщения",
					interfaces.LogField{Key: "topic", Value: msg.Topic},
					interfaces.LogField{Key: "message_id", Value: msg.ID},
					interfaces.LogField{Key: "error", Value: err.Error()},
				)
				continue
			}
			metrics.MessagesProcessed.WithLabelValues(msg.Topic, "success").Inc()

			if !config.AutoCommit {
				if _, err := consumer.CommitMessage(e); err != nil {
					k.logger.WarnWithContext(ctx, "Не удалось подтвердить сообщение",
						interfaces.LogField{Key: "topic", Value: msg.Topic},
						interfaces.LogField{Key: "error", Value: err.Error()},
					)
				}
			}

		case kafka.Error:
			k.logger.ErrorWithContext(ctx, "Ошибка Kafka",
				interfaces.LogField{Key: "code", Value: e.Code().String()},
				interfaces.LogField{Key: "error", Value: e.Error()},
			)
			if e.Code() == kafka.ErrAllBrokersDown {
				return
			}

		case kafka.PartitionEOF:
			k.logger.DebugWithContext(ctx, "Достигнут конец партиции", interfaces.LogField{Key: "partition", Value: e.String()})
		}
	}
}

// CreateTopic создает тему, уже существующая тема ошибкой не считается
func (k *KafkaMessaging) CreateTopic(ctx context.Context, topic string, partitions int, replicationFactor int) error {
	adminClient, err := kafka.NewAdminClientFromProducer(k.producer)
	if err != nil {
		return fmt.Errorf("failed to create kafka admin client: %w", err)
	}
	defer adminClient.Close()

	result, err := adminClient.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
	}}, kafka.SetAdminOperationTimeout(30*time.Second))
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}

	for _, r := range result {
		if code := r.Error.Code(); code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %s", r.Topic, r.Error.String())
		}
	}
	return nil
}

// Close останавливает подписки и дожидается отправки сообщений producer
func (k *KafkaMessaging) Close() error {
	k.consumersMutex.Lock()
	subs := k.consumers
	k.consumers = make(map[string]*subscription)
	k.consumersMutex.Unlock()

	for _, sub := range subs {
		if err := sub.stop(); err != nil {
			k.logger.Warn("Ошибка при закрытии consumer", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}

	k.producer.Flush(15 * 1000)
	k.producer.Close()
	return nil
}
