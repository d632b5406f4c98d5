package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vapelux/internal/model"
)

func validDraft() model.OrderDraft {
	return model.OrderDraft{
		Name:          "Иван Иванов",
		Phone:         "+7 (999) 123-45-67",
		Email:         "ivan@example.com",
		DeliveryType:  model.DeliveryCourier,
		Address:       "Москва, ул. Пушкина, д. 1, кв. 2",
		PaymentMethod: model.PaymentCard,
	}
}

func TestNewDraft_Defaults(t *testing.T) {
	d := NewDraft()
	assert.Equal(t, model.DeliveryCourier, d.DeliveryType)
	assert.Equal(t, model.PaymentCard, d.PaymentMethod)
	assert.Empty(t, d.Name)
	assert.Empty(t, d.Address)
}

func TestValidate_ValidCourierDraft(t *testing.T) {
	assert.Nil(t, Validate(validDraft()))
}

func TestValidate_AllFieldsInvalid(t *testing.T) {
	// Контрольный набор: пустое имя, короткий телефон, битый email,
	// курьер без адреса
	d := model.OrderDraft{
		Name:          "",
		Phone:         "12345",
		Email:         "bad",
		DeliveryType:  model.DeliveryCourier,
		Address:       "",
		PaymentMethod: model.PaymentCard,
	}

	errs := Validate(d)
	assert.Len(t, errs, 4)
	assert.Equal(t, "Введите имя", errs["name"])
	assert.Equal(t, "Некорректный формат телефона", errs["phone"])
	assert.Equal(t, "Некорректный email", errs["email"])
	assert.Equal(t, "Введите адрес доставки", errs["address"])
}

func TestValidate_PickupDoesNotRequireAddress(t *testing.T) {
	d := model.OrderDraft{
		Name:          "Ivan",
		Phone:         "+7 999 123 45 67",
		Email:         "a@b.com",
		DeliveryType:  model.DeliveryPickup,
		Address:       "",
		PaymentMethod: model.PaymentCash,
	}

	assert.Nil(t, Validate(d))
}

func TestValidate_BlankPhoneBeatsFormatError(t *testing.T) {
	d := validDraft()
	d.Phone = "   "

	errs := Validate(d)
	assert.Equal(t, "Введите телефон", errs["phone"])
}

func TestValidate_BlankEmailBeatsFormatError(t *testing.T) {
	d := validDraft()
	d.Email = ""

	errs := Validate(d)
	assert.Equal(t, "Введите email", errs["email"])
}

func TestValidate_NameOnlyWhitespace(t *testing.T) {
	d := validDraft()
	d.Name = "   "

	errs := Validate(d)
	assert.Equal(t, "Введите имя", errs["name"])
}

func TestValidate_PhoneFormats(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"+7 (999) 123-45-67", true},
		{"89991234567", true},
		{"+7 999 123 45 67", true},
		{"12345", false},         // меньше 10 символов
		{"телефон 12", false},    // буквы недопустимы
		{"+7abc1234567", false},  // буквы внутри
	}

	for _, tc := range tests {
		d := validDraft()
		d.Phone = tc.phone
		errs := Validate(d)
		if tc.ok {
			assert.NotContains(t, errs, "phone", "телефон %q должен проходить", tc.phone)
		} else {
			assert.Contains(t, errs, "phone", "телефон %q не должен проходить", tc.phone)
		}
	}
}

func TestValidate_EmailShapes(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"a@b.com", true},
		{"user.name@mail.ru", true},
		{"bad", false},
		{"no@tld", false},
		{"sp ace@mail.ru", false},
	}

	for _, tc := range tests {
		d := validDraft()
		d.Email = tc.email
		errs := Validate(d)
		if tc.ok {
			assert.NotContains(t, errs, "email", "email %q должен проходить", tc.email)
		} else {
			assert.Contains(t, errs, "email", "email %q не должен проходить", tc.email)
		}
	}
}

func TestDeliveryFee(t *testing.T) {
	assert.Equal(t, 300, DeliveryFee(model.DeliveryCourier))
	assert.Equal(t, 0, DeliveryFee(model.DeliveryPickup))
}

func TestOrderTotal(t *testing.T) {
	assert.Equal(t, 1300, OrderTotal(1000, model.DeliveryCourier))
	assert.Equal(t, 1000, OrderTotal(1000, model.DeliveryPickup))
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{"phone": "Введите телефон", "name": "Введите имя"}
	assert.Equal(t, "ошибки в полях формы: name, phone", errs.Error())
}
