// Нагрузочный продюсер: периодически публикует случайные заказы
// в топик Kafka, имитируя поток оформлений с витрины.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"vapelux/internal/config"
	"vapelux/internal/generator"
)

// Producer отвечает за генерацию и отправку сообщений в Kafka.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer создает и настраивает новый экземпляр продюсера.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer}
}

// Run запускает цикл отправки сообщений до отмены контекста.
func (p *Producer) Run(ctx context.Context, interval time.Duration) {
	log.Println("Продюсер запущен. Нажмите CTRL+C для остановки.")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Продюсер останавливается.")
			return
		case <-ticker.C:
			order := generator.NewOrder()
			orderBytes, err := json.Marshal(order)
			if err != nil {
				log.Printf("Ошибка сериализации заказа: %v", err)
				continue
			}

			err = p.writer.WriteMessages(ctx, kafka.Message{
				Key:   []byte(order.OrderUID),
				Value: orderBytes,
			})

			if err != nil {
				log.Printf("Ошибка отправки сообщения: %v", err)
			} else {
				log.Printf("Отправлен заказ с UID: %s", order.OrderUID)
			}
		}
	}
}

func (p *Producer) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("Ошибка закрытия Kafka writer: %v", err)
	}
}

func main() {
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	producer := NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	producer.Run(ctx, 2*time.Second)
}
