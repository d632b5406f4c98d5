// Package catalog содержит статический каталог товаров и движок фильтрации.
// Каталог фиксируется при старте процесса и не изменяется.
package catalog

import (
	"errors"

	"vapelux/internal/model"
)

// ErrProductNotFound возвращается, когда товар с указанным ID отсутствует в каталоге.
var ErrProductNotFound = errors.New("товар не найден")

var products = []model.Product{
	{
		ID:          1,
		Name:        "Luxe Crystal",
		Brand:       "VapeLux",
		Type:        "Одноразовая",
		Nicotine:    20,
		Price:       1290,
		Image:       "https://images.unsplash.com/photo-1511373535876-d214b0e3c75f?w=800",
		Popular:     true,
		Description: "Премиальная одноразовая электронная сигарета с кристально чистым вкусом. Идеальное сочетание дизайна и функциональности.",
		Features:    []string{"Компактный размер", "Мягкий обтекаемый дизайн", "Насыщенный вкус", "Удобный мундштук"},
		Volume:      "2 мл",
		Puffs:       600,
	},
	{
		ID:          2,
		Name:        "Gold Edition Pro",
		Brand:       "VapeLux",
		Type:        "POD-система",
		Nicotine:    50,
		Price:       3490,
		Image:       "https://images.unsplash.com/photo-1590393486261-e27cbb6dfe50?w=800",
		Popular:     true,
		Description: "Профессиональная POD-система премиум класса. Мощный аккумулятор и сменные картриджи для длительного использования.",
		Features:    []string{"Аккумулятор 850 мАч", "Быстрая зарядка USB-C", "Регулировка мощности", "LED-индикатор заряда", "Магнитное крепление картриджа"},
		Volume:      "2 мл (картридж)",
		Puffs:       1200,
	},
	{
		ID:          3,
		Name:        "Black Diamond",
		Brand:       "EliteVape",
		Type:        "Одноразовая",
		Nicotine:    30,
		Price:       1490,
		Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=800",
		Description: "Элегантная одноразовая электронная сигарета в черном матовом корпусе. Стильный аксессуар для настоящих ценителей.",
		Features:    []string{"Матовое покрытие soft-touch", "Эргономичная форма", "Равномерная подача вкуса", "Защита от перегрева"},
		Volume:      "2.5 мл",
		Puffs:       800,
	},
	{
		ID:          4,
		Name:        "Premium Starter Kit",
		Brand:       "CloudKing",
		Type:        "Набор",
		Nicotine:    20,
		Price:       2990,
		Image:       "https://images.unsplash.com/photo-1526170375885-4d8ecf77b99f?w=800",
		Popular:     true,
		Description: "Полный стартовый набор для начинающих. Всё необходимое для комфортного старта в одной коробке.",
		Features:    []string{"POD-устройство", "2 картриджа в комплекте", "USB-зарядка", "Инструкция на русском", "Фирменный чехол"},
		Volume:      "1.5 мл (картридж)",
		Puffs:       800,
	},
	{
		ID:          5,
		Name:        "Royal Mist",
		Brand:       "VapeLux",
		Type:        "Жидкость",
		Nicotine:    6,
		Price:       890,
		Image:       "https://images.unsplash.com/photo-1624823183493-ed5832f48f18?w=800",
		Description: "Премиальная жидкость для заправки с изысканным многогранным вкусом. Произведено из качественных компонентов.",
		Features:    []string{"Объем 30 мл", "Прозрачная бутылочка", "Защита от детей", "Градуировка объема", "Удобный дозатор"},
		Volume:      "30 мл",
	},
	{
		ID:          6,
		Name:        "Platinum Series",
		Brand:       "EliteVape",
		Type:        "POD-система",
		Nicotine:    35,
		Price:       4290,
		Image:       "https://images.unsplash.com/photo-1557683316-973673baf926?w=800",
		Description: "Флагманская POD-система с передовыми технологиями. Максимальная производительность и долговечность.",
		Features:    []string{"Аккумулятор 1200 мАч", "Беспроводная зарядка", "OLED-дисплей", "Умная система контроля затяжки", "Металлический корпус"},
		Volume:      "3 мл (картридж)",
		Puffs:       2000,
	},
	{
		ID:          7,
		Name:        "Golden Vapor",
		Brand:       "CloudKing",
		Type:        "Жидкость",
		Nicotine:    12,
		Price:       990,
		Image:       "https://images.unsplash.com/photo-1560393464-5c69a73c5770?w=800",
		Description: "Сбалансированная жидкость средней крепости. Идеальна для ежедневного использования.",
		Features:    []string{"Объем 50 мл", "Соотношение VG/PG 70/30", "Защитная пломба", "Контроль качества", "Срок годности 2 года"},
		Volume:      "50 мл",
	},
	{
		ID:          8,
		Name:        "Elite Max",
		Brand:       "EliteVape",
		Type:        "Одноразовая",
		Nicotine:    50,
		Price:       1790,
		Image:       "https://images.unsplash.com/photo-1585974738771-84483dd9f89f?w=800",
		Description: "Мощная одноразовая электронная сигарета с максимальным содержанием никотина. Для опытных пользователей.",
		Features:    []string{"Усиленная батарея", "Интенсивный вкус", "Увеличенный объем", "Антибактериальный мундштук"},
		Volume:      "3 мл",
		Puffs:       1500,
	},
}

// All возвращает копию каталога в исходном порядке.
func All() []model.Product {
	out := make([]model.Product, len(products))
	copy(out, products)
	return out
}

// Get ищет товар по ID. Отсутствие товара - штатная ситуация,
// а не отказ: возвращается ErrProductNotFound.
func Get(id int64) (model.Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, ErrProductNotFound
}

// Brands возвращает список брендов каталога в порядке первого появления.
func Brands() []string {
	return distinct(func(p model.Product) string { return p.Brand })
}

// Types возвращает список типов товаров в порядке первого появления.
func Types() []string {
	return distinct(func(p model.Product) string { return p.Type })
}

func distinct(key func(model.Product) string) []string {
	seen := make(map[string]struct{}, len(products))
	var out []string
	for _, p := range products {
		k := key(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
