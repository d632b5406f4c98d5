package model

import "time"

// Product - товар каталога. Каталог неизменяем после инициализации,
// поэтому структура передается по значению.
type Product struct {
	ID          int64    `json:"id" db:"id" validate:"required,gt=0"`
	Name        string   `json:"name" db:"name" validate:"required"`
	Brand       string   `json:"brand" db:"brand" validate:"required"`
	Type        string   `json:"type" db:"type" validate:"required"`
	Nicotine    int      `json:"nicotine" db:"nicotine" validate:"gte=0"` // мг/мл
	Price       int      `json:"price" db:"price" validate:"gte=0"`       // в рублях
	Image       string   `json:"image" db:"image"`
	Popular     bool     `json:"popular,omitempty" db:"popular"`
	Description string   `json:"description,omitempty" db:"description"`
	Features    []string `json:"features,omitempty" db:"-"`
	Volume      string   `json:"volume,omitempty" db:"volume"`
	Puffs       int      `json:"puffs,omitempty" db:"puffs"`
}

// CartLine - позиция корзины: снимок товара на момент первого добавления
// плюс количество. Последующие изменения каталога в снимок не попадают.
type CartLine struct {
	Product
	Quantity int `json:"quantity" db:"quantity" validate:"gte=1"`
}

// NicotineBucket - огрубленная классификация крепости никотина.
type NicotineBucket string

const (
	NicotineAll    NicotineBucket = "all"
	NicotineLow    NicotineBucket = "low"    // <= 20 мг
	NicotineMedium NicotineBucket = "medium" // 20 < n <= 35 мг
	NicotineHigh   NicotineBucket = "high"   // > 35 мг
)

// FilterState - выбранные пользователем параметры фильтрации каталога.
// Состояние временное и нигде не сохраняется.
type FilterState struct {
	PriceMin int            `json:"price_min"`
	PriceMax int            `json:"price_max"`
	Brands   []string       `json:"brands"`
	Types    []string       `json:"types"`
	Nicotine NicotineBucket `json:"nicotine"`
}

// Способы доставки и оплаты.
const (
	DeliveryCourier = "courier"
	DeliveryPickup  = "pickup"

	PaymentCard = "card"
	PaymentCash = "cash"
)

// OrderDraft - рабочее состояние формы оформления заказа.
// Правила валидации: имя, телефон и email обязательны, адрес - только
// при курьерской доставке (проверка на уровне структуры).
type OrderDraft struct {
	Name          string `json:"name" validate:"notblank"`
	Phone         string `json:"phone" validate:"notblank,phone"`
	Email         string `json:"email" validate:"notblank,simple_email"`
	DeliveryType  string `json:"delivery_type" validate:"oneof=courier pickup"`
	Address       string `json:"address"`
	Comment       string `json:"comment"`
	PaymentMethod string `json:"payment_method" validate:"oneof=card cash"`
}

// Order - принятый заказ, публикуемый в Kafka и сохраняемый в архиве.
type Order struct {
	OrderUID      string     `json:"order_uid" db:"order_uid" validate:"required,uuid4"`
	Name          string     `json:"name" db:"name" validate:"required"`
	Phone         string     `json:"phone" db:"phone" validate:"required"`
	Email         string     `json:"email" db:"email" validate:"required"`
	DeliveryType  string     `json:"delivery_type" db:"delivery_type" validate:"required,oneof=courier pickup"`
	Address       string     `json:"address" db:"address" validate:"required_if=DeliveryType courier"`
	Comment       string     `json:"comment" db:"comment"`
	PaymentMethod string     `json:"payment_method" db:"payment_method" validate:"required,oneof=card cash"`
	Items         []CartLine `json:"items" db:"-" validate:"required,min=1,dive"`
	GoodsTotal    int        `json:"goods_total" db:"goods_total" validate:"gte=0"`
	DeliveryFee   int        `json:"delivery_fee" db:"delivery_fee" validate:"gte=0"`
	Total         int        `json:"total" db:"total" validate:"gte=0"`
	DateCreated   time.Time  `json:"date_created" db:"date_created" validate:"required"`
}
