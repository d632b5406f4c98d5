package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"vapelux/internal/cache"
	"vapelux/internal/config"
	"vapelux/internal/database"
	"vapelux/internal/metrics"
	"vapelux/internal/model"
	"vapelux/internal/validator"
)

// messageReader покрывает используемую часть kafka.Reader.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageWriter покрывает используемую часть kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает заказы из Kafka и складывает их в архив.
type Consumer struct {
	reader     messageReader
	dlqWriter  messageWriter // Продюсер для отправки "битых" сообщений в DLQ
	storage    database.Storage
	cache      cache.Cache
	logger     *zap.Logger
	tracer     trace.Tracer
	maxRetries int // Количество попыток для временных ошибок БД
}

// NewConsumer создает новый экземпляр Consumer.
func NewConsumer(cfg config.KafkaConfig, storage database.Storage, cache cache.Cache, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
		// Коммиты выполняются вручную после успешной обработки.
	})

	dlqWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.DLQTopic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Consumer{
		reader:     reader,
		dlqWriter:  dlqWriter,
		storage:    storage,
		cache:      cache,
		logger:     logger,
		tracer:     otel.Tracer("kafka-consumer"),
		maxRetries: 3, // 3 попытки на сохранение в БД
	}
}

// Run запускает цикл чтения сообщений из Kafka.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("Kafka-консюмер запущен")
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Error("ошибка закрытия Kafka-ридера", zap.Error(err))
		}
		if err := c.dlqWriter.Close(); err != nil {
			c.logger.Error("ошибка закрытия Kafka (DLQ) writer", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Kafka-консюмер останавливается")
			return
		default:
			// FetchMessage используется для ручного контроля коммитов
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				c.logger.Error("ошибка чтения сообщения из Kafka", zap.Error(err))
				continue
			}

			procErr := c.processMessage(ctx, msg)

			if procErr != nil {
				// Ошибка = нужна повторная обработка.
				// Сообщение НЕ коммитим, Kafka доставит его повторно.
				c.logger.Error("ошибка обработки сообщения, ждем retry",
					zap.String("key", string(msg.Key)), zap.Error(procErr))
			} else {
				// nil = обработка успешна (в т.ч. уход в DLQ).
				if err := c.reader.CommitMessages(ctx, msg); err != nil {
					c.logger.Error("ошибка коммита сообщения", zap.Error(err))
				}
			}
		}
	}
}

// processMessage выполняет десериализацию, валидацию, сохранение и кэширование заказа.
// Возвращает error, если нужен Kafka-retry: сообщение нельзя ни обработать,
// ни передать в DLQ, и его потеря недопустима.
// Возвращает nil, если обработка успешна или сообщение ушло в DLQ.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	ctx, span := c.tracer.Start(ctx, "Consumer.processMessage")
	defer span.End()

	var order model.Order
	if err := json.Unmarshal(msg.Value, &order); err != nil {
		c.logger.Warn("невалидное JSON-сообщение, отправка в DLQ", zap.Error(err))
		if dlqErr := c.sendToDLQ(ctx, msg, "json_unmarshal_error", err); dlqErr != nil {
			return dlqErr
		}
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_validation").Inc()
		return nil // Коммитим (не ретраим "битый" JSON)
	}

	if err := validator.ValidateStruct(&order); err != nil {
		c.logger.Warn("ошибка валидации заказа, отправка в DLQ",
			zap.String("order_uid", order.OrderUID), zap.Error(err))
		if dlqErr := c.sendToDLQ(ctx, msg, "validation_error", err); dlqErr != nil {
			return dlqErr
		}
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_validation").Inc()
		return nil // Коммитим (не ретраим невалидные данные)
	}

	// Сохранение в БД с внутренним Retry-циклом
	var dbErr error
	for i := 0; i < c.maxRetries; i++ {
		dbErr = c.storage.SaveOrder(ctx, &order)
		if dbErr == nil {
			break
		}
		metrics.DBErrors.WithLabelValues("save_order").Inc()
		c.logger.Warn("ошибка сохранения в БД",
			zap.Int("attempt", i+1), zap.Int("max_retries", c.maxRetries), zap.Error(dbErr))
		time.Sleep(time.Second * time.Duration(i+1)) // Простой backoff
	}

	if dbErr != nil {
		c.logger.Error("не удалось сохранить заказ, отправка в DLQ",
			zap.String("order_uid", order.OrderUID), zap.Int("attempts", c.maxRetries))
		if dlqErr := c.sendToDLQ(ctx, msg, "db_save_error", dbErr); dlqErr != nil {
			return dlqErr
		}
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_db_error").Inc()
		return nil // Коммитим (исчерпали попытки)
	}

	// Кэшируем указатель на копию
	orderCopy := order
	c.cache.Set(ctx, order.OrderUID, &orderCopy)
	c.logger.Info("заказ сохранен в БД и кэш", zap.String("order_uid", order.OrderUID))
	metrics.KafkaMessagesProcessed.WithLabelValues("success").Inc()

	return nil
}

// sendToDLQ отправляет "битое" сообщение в DLQ топик. Ошибка записи
// означает, что сообщение нельзя коммитить: вызывающий код вернет ее
// наверх, и Kafka доставит сообщение повторно.
func (c *Consumer) sendToDLQ(ctx context.Context, originalMsg kafka.Message, reason string, procErr error) error {
	_, span := c.tracer.Start(ctx, "Consumer.sendToDLQ")
	defer span.End()

	err := c.dlqWriter.WriteMessages(ctx, kafka.Message{
		Key:   originalMsg.Key,
		Value: originalMsg.Value,
		Headers: []kafka.Header{
			{Key: "X-Original-Topic", Value: []byte(originalMsg.Topic)},
			{Key: "X-Error-Reason", Value: []byte(reason)},
			{Key: "X-Error-Details", Value: []byte(procErr.Error())},
		},
	})

	if err != nil {
		c.logger.Error("не удалось отправить сообщение в DLQ",
			zap.String("key", string(originalMsg.Key)), zap.Error(err))
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_failed_write").Inc()
		return fmt.Errorf("ошибка записи в DLQ: %w", err)
	}

	c.logger.Info("сообщение отправлено в DLQ",
		zap.String("key", string(originalMsg.Key)), zap.String("reason", reason))
	return nil
}
