package catalog

import (
	"slices"

	"vapelux/internal/model"
)

// Границы ценового диапазона по умолчанию (как в слайдере каталога).
const (
	DefaultPriceMin = 500
	DefaultPriceMax = 5000
)

// DefaultFilterState возвращает состояние фильтров по умолчанию:
// полный ценовой диапазон, без ограничений по брендам, типам и никотину.
func DefaultFilterState() model.FilterState {
	return model.FilterState{
		PriceMin: DefaultPriceMin,
		PriceMax: DefaultPriceMax,
		Nicotine: model.NicotineAll,
	}
}

// Filter возвращает подпоследовательность товаров, удовлетворяющих всем
// условиям фильтра, в исходном порядке каталога. Функция чистая: вход не
// изменяется, одинаковый вход дает одинаковый результат. Пустой результат -
// корректный ответ, а не ошибка.
func Filter(products []model.Product, f model.FilterState) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}

// Matches проверяет товар на соответствие всем четырем условиям фильтра.
func Matches(p model.Product, f model.FilterState) bool {
	if p.Price < f.PriceMin || p.Price > f.PriceMax {
		return false
	}
	if len(f.Brands) > 0 && !slices.Contains(f.Brands, p.Brand) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, p.Type) {
		return false
	}
	return BucketOf(p.Nicotine) == f.Nicotine || f.Nicotine == model.NicotineAll
}

// BucketOf относит крепость никотина к одной из трех корзин.
// Граничные значения 20 и 35 принадлежат нижней корзине.
func BucketOf(nicotine int) model.NicotineBucket {
	switch {
	case nicotine <= 20:
		return model.NicotineLow
	case nicotine <= 35:
		return model.NicotineMedium
	default:
		return model.NicotineHigh
	}
}

// ParseBucket проверяет и нормализует значение корзины никотина из запроса.
// Пустая строка трактуется как "all".
func ParseBucket(s string) (model.NicotineBucket, bool) {
	switch model.NicotineBucket(s) {
	case model.NicotineAll, "":
		return model.NicotineAll, true
	case model.NicotineLow:
		return model.NicotineLow, true
	case model.NicotineMedium:
		return model.NicotineMedium, true
	case model.NicotineHigh:
		return model.NicotineHigh, true
	default:
		return "", false
	}
}
