package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"vapelux/internal/model"
)

func order(uid string) *model.Order {
	return &model.Order{OrderUID: uid}
}

func TestLRUCache_SetAndGet(t *testing.T) {
	cache := NewLRUCache(2)
	assertions := assert.New(t)
	ctx := context.Background()

	// 1. Добавить первый заказ
	cache.Set(ctx, "uid1", order("uid1"))
	got, found := cache.Get(ctx, "uid1")
	assertions.True(found)
	assertions.Equal("uid1", got.OrderUID)

	// 2. Добавить второй заказ
	cache.Set(ctx, "uid2", order("uid2"))
	got, found = cache.Get(ctx, "uid2")
	assertions.True(found)
	assertions.Equal("uid2", got.OrderUID)

	// 3. Проверить, что оба на месте
	_, found = cache.Get(ctx, "uid1")
	assertions.True(found)
}

func TestLRUCache_Eviction(t *testing.T) {
	cache := NewLRUCache(2)
	assertions := assert.New(t)
	ctx := context.Background()

	cache.Set(ctx, "uid1", order("uid1"))
	cache.Set(ctx, "uid2", order("uid2"))

	// Третий заказ вытесняет самый старый "uid1"
	cache.Set(ctx, "uid3", order("uid3"))

	_, found := cache.Get(ctx, "uid1")
	assertions.False(found, "uid1 должен быть вытеснен")

	_, found = cache.Get(ctx, "uid2")
	assertions.True(found)
	_, found = cache.Get(ctx, "uid3")
	assertions.True(found)
}

func TestLRUCache_UsageUpdatesOrder(t *testing.T) {
	cache := NewLRUCache(2)
	assertions := assert.New(t)
	ctx := context.Background()

	cache.Set(ctx, "uid1", order("uid1"))
	cache.Set(ctx, "uid2", order("uid2")) // "uid1" - старый, "uid2" - новый

	// 1. Обращение к "uid1" делает его самым новым
	cache.Get(ctx, "uid1")

	// 2. Добавляем "uid3" - теперь вытесняется "uid2"
	cache.Set(ctx, "uid3", order("uid3"))

	_, found := cache.Get(ctx, "uid2")
	assertions.False(found, "uid2 должен быть вытеснен")

	_, found = cache.Get(ctx, "uid1")
	assertions.True(found)
	_, found = cache.Get(ctx, "uid3")
	assertions.True(found)
}

func TestLRUCache_UpdateValue(t *testing.T) {
	cache := NewLRUCache(2)
	assertions := assert.New(t)
	ctx := context.Background()

	cache.Set(ctx, "uid1", &model.Order{OrderUID: "uid1", Total: 100})

	// Обновляем значение под тем же ключом
	cache.Set(ctx, "uid1", &model.Order{OrderUID: "uid1", Total: 500})

	got, found := cache.Get(ctx, "uid1")
	assertions.True(found)
	assertions.Equal(500, got.Total)
}

func TestLRUCache_ZeroCapacity(t *testing.T) {
	// Кэш с 0 емкостью не должен ничего хранить
	cache := NewLRUCache(0)
	assertions := assert.New(t)
	ctx := context.Background()

	cache.Set(ctx, "uid1", order("uid1"))
	_, found := cache.Get(ctx, "uid1")
	assertions.False(found)
}
