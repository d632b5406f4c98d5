package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vapelux/internal/model"
)

//go:generate mockgen -source=service.go -destination=./mocks/submitter_mock.go -package=mocks Submitter

// Submitter - внешний обработчик принятых заказов. Вызывается только
// для заказов, прошедших валидацию.
type Submitter interface {
	Submit(ctx context.Context, order *model.Order) error
}

// Service собирает заказ из формы и позиций корзины и передает его
// обработчику.
type Service struct {
	submitter Submitter
	logger    *zap.Logger
}

// NewService создает сервис оформления заказов.
func NewService(submitter Submitter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{submitter: submitter, logger: logger}
}

// Submit валидирует форму, собирает заказ и отправляет его обработчику.
// При ошибках валидации возвращает FieldErrors, обработчик не вызывается.
// Возвращает UID принятого заказа.
func (s *Service) Submit(ctx context.Context, draft model.OrderDraft, lines []model.CartLine) (string, error) {
	if errs := Validate(draft); len(errs) > 0 {
		return "", errs
	}
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	goodsTotal := 0
	for _, l := range lines {
		goodsTotal += l.Price * l.Quantity
	}

	order := &model.Order{
		OrderUID:      uuid.New().String(),
		Name:          draft.Name,
		Phone:         draft.Phone,
		Email:         draft.Email,
		DeliveryType:  draft.DeliveryType,
		Address:       draft.Address,
		Comment:       draft.Comment,
		PaymentMethod: draft.PaymentMethod,
		Items:         lines,
		GoodsTotal:    goodsTotal,
		DeliveryFee:   DeliveryFee(draft.DeliveryType),
		Total:         OrderTotal(goodsTotal, draft.DeliveryType),
		DateCreated:   time.Now().UTC(),
	}

	if err := s.submitter.Submit(ctx, order); err != nil {
		return "", fmt.Errorf("не удалось передать заказ обработчику: %w", err)
	}

	s.logger.Info("заказ принят",
		zap.String("order_uid", order.OrderUID),
		zap.Int("total", order.Total),
		zap.String("delivery_type", order.DeliveryType))

	return order.OrderUID, nil
}
