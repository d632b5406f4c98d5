package generator

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"vapelux/internal/catalog"
	"vapelux/internal/checkout"
	"vapelux/internal/model"
)

// NewOrder создает и возвращает один случайный заказ на товары
// из реального каталога. Инкапсулирует всю логику генерации тестовых данных.
func NewOrder() model.Order {
	gofakeit.Seed(0)

	// 1. Собираем состав заказа из случайных позиций каталога
	products := catalog.All()
	lineCount := gofakeit.Number(1, 3)
	goodsTotal := 0

	picked := make(map[int64]bool, lineCount)
	var items []model.CartLine
	for i := 0; i < lineCount; i++ {
		p := products[gofakeit.Number(0, len(products)-1)]
		if picked[p.ID] {
			continue // Без дублей, строк может выйти меньше lineCount
		}
		picked[p.ID] = true

		qty := gofakeit.Number(1, 3)
		goodsTotal += p.Price * qty
		items = append(items, model.CartLine{Product: p, Quantity: qty})
	}

	// 2. Покупатель и доставка
	deliveryType := gofakeit.RandomString([]string{model.DeliveryCourier, model.DeliveryPickup})
	address := ""
	if deliveryType == model.DeliveryCourier {
		addr := gofakeit.Address()
		address = addr.City + ", " + addr.Street
	}

	deliveryFee := checkout.DeliveryFee(deliveryType)

	// 3. Финальный заказ
	order := model.Order{
		OrderUID:      uuid.New().String(),
		Name:          gofakeit.Name(),
		Phone:         gofakeit.Phone(),
		Email:         gofakeit.Email(),
		DeliveryType:  deliveryType,
		Address:       address,
		Comment:       gofakeit.RandomString([]string{"", "Позвонить за час", "Оставить у двери"}),
		PaymentMethod: gofakeit.RandomString([]string{model.PaymentCard, model.PaymentCash}),
		Items:         items,
		GoodsTotal:    goodsTotal,
		DeliveryFee:   deliveryFee,
		Total:         goodsTotal + deliveryFee,
		DateCreated:   time.Now().Add(-time.Duration(gofakeit.Number(1, 100)) * time.Minute),
	}

	return order
}
