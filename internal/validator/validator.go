// Package validator оборачивает go-playground/validator и регистрирует
// правила, специфичные для витрины.
package validator

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"vapelux/internal/model"
)

var (
	validate *validator.Validate
	once     sync.Once
)

var (
	// Телефон: необязательный ведущий "+", затем цифры, пробелы, скобки и
	// дефисы, всего не менее 10 символов.
	phoneRe = regexp.MustCompile(`^[+]?[\d\s()-]{10,}$`)

	// Email проверяется по упрощенной форме local@domain.tld,
	// без полной RFC-валидации.
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// getInstance возвращает синглтон-экземпляр валидатора.
func getInstance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()

		// notblank - непустая строка после обрезки пробелов
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phoneRe.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
			return emailRe.MatchString(fl.Field().String())
		})

		// Адрес обязателен только при курьерской доставке
		validate.RegisterStructValidation(validateDraftAddress, model.OrderDraft{})
	})
	return validate
}

func validateDraftAddress(sl validator.StructLevel) {
	d := sl.Current().Interface().(model.OrderDraft)
	if d.DeliveryType == model.DeliveryCourier && strings.TrimSpace(d.Address) == "" {
		sl.ReportError(d.Address, "Address", "Address", "required_for_courier", "")
	}
}

// ValidateStruct выполняет валидацию по тегам структуры.
func ValidateStruct(s interface{}) error {
	return getInstance().Struct(s)
}
