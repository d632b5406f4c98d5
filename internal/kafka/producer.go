// Package kafka связывает витрину с конвейером заказов: продюсер публикует
// принятые заказы, консюмер складывает их в архив.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"vapelux/internal/config"
	"vapelux/internal/model"
)

// Producer публикует принятые заказы в топик. Реализует контракт
// обработчика заказов сервиса оформления (checkout.Submitter).
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer создает продюсер для топика заказов.
func NewProducer(cfg config.KafkaConfig, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Producer{writer: writer, logger: logger}
}

// Submit сериализует заказ и публикует его с ключом-UID.
func (p *Producer) Submit(ctx context.Context, order *model.Order) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать заказ: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.OrderUID),
		Value: raw,
	})
	if err != nil {
		return fmt.Errorf("не удалось опубликовать заказ: %w", err)
	}

	p.logger.Info("заказ опубликован в Kafka", zap.String("order_uid", order.OrderUID))
	return nil
}

// Close закрывает соединение продюсера.
func (p *Producer) Close() error {
	return p.writer.Close()
}
