package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"vapelux/internal/cache/mocks"
	db_mocks "vapelux/internal/database/mocks"
	"vapelux/internal/model"
)

type NoOpReader struct{}

func (r *NoOpReader) FetchMessage(context.Context) (kafka.Message, error) {
	return kafka.Message{}, nil
}
func (r *NoOpReader) CommitMessages(context.Context, ...kafka.Message) error {
	return nil
}
func (r *NoOpReader) Close() error { return nil }

// StubDLQWriter - DLQ-писатель с заданным результатом записи
type StubDLQWriter struct {
	err    error
	writes int
}

func (w *StubDLQWriter) WriteMessages(context.Context, ...kafka.Message) error {
	w.writes++
	return w.err
}
func (w *StubDLQWriter) Close() error { return nil }

// setupConsumerAndMocks - хелпер для инициализации консюмера и моков
func setupConsumerAndMocks(t *testing.T) (*gomock.Controller, *Consumer, *mocks.MockCache, *db_mocks.MockStorage) {
	ctrl := gomock.NewController(t)
	mockCache := mocks.NewMockCache(ctrl)
	mockStorage := db_mocks.NewMockStorage(ctrl)

	consumer := &Consumer{
		reader:     &NoOpReader{},
		storage:    mockStorage,
		cache:      mockCache,
		dlqWriter:  &StubDLQWriter{},
		logger:     zap.NewNop(),
		maxRetries: 3,
		tracer:     otel.Tracer("test-tracer"),
	}

	return ctrl, consumer, mockCache, mockStorage
}

// helperTestOrder - валидный заказ для тестов
var helperTestOrder = model.Order{
	OrderUID:      "b563feb7-b2b8-4b6f-807c-9b63a11e81b9",
	Name:          "Иван Иванов",
	Phone:         "+7 999 123-45-67",
	Email:         "ivan@example.com",
	DeliveryType:  model.DeliveryCourier,
	Address:       "Москва, ул. Пушкина, д. 10",
	PaymentMethod: model.PaymentCard,
	Items: []model.CartLine{
		{
			Product: model.Product{
				ID:       2,
				Name:     "Cloud Master Pro",
				Brand:    "CloudKing",
				Type:     "POD-система",
				Nicotine: 35,
				Price:    2890,
				Image:    "https://images.unsplash.com/photo-1560913210-91e811632701?w=800",
			},
			Quantity: 1,
		},
	},
	GoodsTotal:  2890,
	DeliveryFee: 300,
	Total:       3190,
	DateCreated: parseTime("2024-11-26T06:22:19Z"),
}

func parseTime(ts string) time.Time {
	t, _ := time.Parse(time.RFC3339, ts)
	return t
}

func TestConsumer_ProcessMessage_Success(t *testing.T) {
	ctrl, consumer, mockCache, mockStorage := setupConsumerAndMocks(t)
	defer ctrl.Finish()

	orderBytes, _ := json.Marshal(helperTestOrder)
	msg := kafka.Message{Value: orderBytes}

	mockStorage.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Return(nil)
	mockCache.EXPECT().Set(gomock.Any(), helperTestOrder.OrderUID, gomock.Any()).Times(1)

	err := consumer.processMessage(context.Background(), msg)
	assert.NoError(t, err)
}

func TestConsumer_ProcessMessage_DBError(t *testing.T) {
	ctrl, consumer, mockCache, mockStorage := setupConsumerAndMocks(t)
	defer ctrl.Finish()

	orderBytes, _ := json.Marshal(helperTestOrder)
	msg := kafka.Message{Value: orderBytes}
	dbErr := errors.New("database connection failed")

	mockStorage.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Return(dbErr).Times(consumer.maxRetries)
	mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := consumer.processMessage(context.Background(), msg)

	// Ошибка не возвращается, т.к. сообщение ушло в DLQ
	assert.NoError(t, err)
}

func TestConsumer_ProcessMessage_DBError_RetryLogic(t *testing.T) {
	ctrl, consumer, mockCache, mockStorage := setupConsumerAndMocks(t)
	defer ctrl.Finish()

	orderBytes, _ := json.Marshal(helperTestOrder)
	msg := kafka.Message{Value: orderBytes}
	dbErr := errors.New("temp db error")

	// Два неудачных вызова, затем удачный
	mockStorage.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Return(dbErr).Times(2)
	mockStorage.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	mockCache.EXPECT().Set(gomock.Any(), helperTestOrder.OrderUID, gomock.Any()).Times(1)

	err := consumer.processMessage(context.Background(), msg)

	assert.NoError(t, err)
}

func TestConsumer_ProcessMessage_BadJSON(t *testing.T) {
	ctrl, consumer, mockCache, mockStorage := setupConsumerAndMocks(t)
	defer ctrl.Finish()

	msg := kafka.Message{Value: []byte("this is not json")}

	mockStorage.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Times(0)
	mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := consumer.processMessage(context.Background(), msg)

	// "Poison pill" коммитится, а не ретраится
	assert.NoError(t, err)
}

func TestConsumer_ProcessMessage_ValidationError(t *testing.T) {
	ctrl, consumer, mockCache, mockStorage := setupConsumerAndMocks(t)
	defer ctrl.Finish()

	// Заказ без UID не проходит валидацию
	invalidOrder := helperTestOrder
	invalidOrder.OrderUID = ""

	orderBytes, _ := json.Marshal(invalidOrder)
	msg := kafka.Message{Value: orderBytes}

	mockStorage.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Times(0)
	mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := consumer.processMessage(context.Background(), msg)

	assert.NoError(t, err)
}

func TestConsumer_ProcessMessage_DLQWriteError(t *testing.T) {
	ctrl, consumer, mockCache, mockStorage := setupConsumerAndMocks(t)
	defer ctrl.Finish()

	dlq := &StubDLQWriter{err: errors.New("broker unavailable")}
	consumer.dlqWriter = dlq

	msg := kafka.Message{Value: []byte("this is not json")}

	mockStorage.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Times(0)
	mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := consumer.processMessage(context.Background(), msg)

	// DLQ недоступен: сообщение нельзя коммитить, нужен Kafka-retry
	assert.Error(t, err)
	assert.Equal(t, 1, dlq.writes)
}

func TestConsumer_ProcessMessage_EmptyItems(t *testing.T) {
	ctrl, consumer, mockCache, mockStorage := setupConsumerAndMocks(t)
	defer ctrl.Finish()

	invalidOrder := helperTestOrder
	invalidOrder.Items = nil

	orderBytes, _ := json.Marshal(invalidOrder)
	msg := kafka.Message{Value: orderBytes}

	mockStorage.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Times(0)
	mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := consumer.processMessage(context.Background(), msg)

	assert.NoError(t, err)
}
