// Package checkout содержит валидацию формы оформления заказа, расчет
// итоговой стоимости и передачу принятого заказа внешнему обработчику.
package checkout

import (
	"errors"
	"sort"
	"strings"

	govalidator "github.com/go-playground/validator/v10"

	"vapelux/internal/model"
	"vapelux/internal/validator"
)

// CourierDeliveryFee - фиксированная доплата за курьерскую доставку, ₽.
const CourierDeliveryFee = 300

// ErrEmptyCart возвращается при попытке оформить заказ с пустой корзиной.
var ErrEmptyCart = errors.New("корзина пуста")

// FieldErrors - ошибки валидации по полям формы. Ключ - json-имя поля,
// значение - сообщение для пользователя.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "ошибки в полях формы: " + strings.Join(fields, ", ")
}

// NewDraft возвращает пустую форму со значениями по умолчанию:
// курьерская доставка и оплата картой.
func NewDraft() model.OrderDraft {
	return model.OrderDraft{
		DeliveryType:  model.DeliveryCourier,
		PaymentMethod: model.PaymentCard,
	}
}

// Сообщения формы. Для телефона и email различаются случаи
// "не заполнено" и "заполнено некорректно".
var fieldMessages = map[string]map[string]string{
	"Name": {
		"notblank": "Введите имя",
	},
	"Phone": {
		"notblank": "Введите телефон",
		"phone":    "Некорректный формат телефона",
	},
	"Email": {
		"notblank":     "Введите email",
		"simple_email": "Некорректный email",
	},
	"Address": {
		"required_for_courier": "Введите адрес доставки",
	},
	"DeliveryType": {
		"oneof": "Неизвестный способ доставки",
	},
	"PaymentMethod": {
		"oneof": "Неизвестный способ оплаты",
	},
}

var fieldJSONNames = map[string]string{
	"Name":          "name",
	"Phone":         "phone",
	"Email":         "email",
	"Address":       "address",
	"DeliveryType":  "delivery_type",
	"PaymentMethod": "payment_method",
}

// Validate проверяет форму целиком и возвращает ошибки по полям.
// Пустой результат (nil) означает, что форма валидна. Проверка
// "все или ничего": любая ошибка блокирует оформление.
func Validate(d model.OrderDraft) FieldErrors {
	err := validator.ValidateStruct(&d)
	if err == nil {
		return nil
	}

	var verrs govalidator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": "Некорректные данные формы"}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		name, ok := fieldJSONNames[fe.Field()]
		if !ok {
			name = fe.Field()
		}
		if _, taken := out[name]; taken {
			// Первая ошибка поля важнее: "не заполнено" перекрывает "некорректно"
			continue
		}
		if msg, ok := fieldMessages[fe.Field()][fe.Tag()]; ok {
			out[name] = msg
		} else {
			out[name] = "Некорректное значение"
		}
	}
	return out
}

// DeliveryFee возвращает стоимость доставки для выбранного способа.
func DeliveryFee(deliveryType string) int {
	if deliveryType == model.DeliveryCourier {
		return CourierDeliveryFee
	}
	return 0
}

// OrderTotal - итог заказа: сумма корзины плюс доставка.
func OrderTotal(cartTotal int, deliveryType string) int {
	return cartTotal + DeliveryFee(deliveryType)
}
