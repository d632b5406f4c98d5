// Package cache реализует LRU-кэш принятых заказов поверх архива.
package cache

import (
	"container/list"
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"vapelux/internal/database"
	"vapelux/internal/metrics"
	"vapelux/internal/model"
)

//go:generate mockgen -source=lru.go -destination=./mocks/cache_mock.go -package=mocks Cache

// Cache определяет интерфейс кэша заказов по UID.
// Контекст нужен для сквозной трассировки.
type Cache interface {
	Set(ctx context.Context, uid string, order *model.Order)
	Get(ctx context.Context, uid string) (*model.Order, bool)
}

// lruCache реализует LRU (Least Recently Used) кэш.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	queue    *list.List
	tracer   trace.Tracer
}

type cacheItem struct {
	uid   string
	order *model.Order
}

// NewLRUCache создает новый LRU-кэш с заданной емкостью.
func NewLRUCache(capacity int) Cache {
	return &lruCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		queue:    list.New(),
		tracer:   otel.Tracer("lru-cache"),
	}
}

func (c *lruCache) Set(ctx context.Context, uid string, order *model.Order) {
	_, span := c.tracer.Start(ctx, "Cache.Set")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity <= 0 {
		return
	}

	if element, exists := c.items[uid]; exists {
		c.queue.MoveToFront(element)
		element.Value.(*cacheItem).order = order
		return
	}

	if c.queue.Len() >= c.capacity {
		c.removeOldest()
	}

	element := c.queue.PushFront(&cacheItem{uid: uid, order: order})
	c.items[uid] = element

	metrics.CacheSize.Set(float64(c.queue.Len()))
}

func (c *lruCache) Get(ctx context.Context, uid string) (*model.Order, bool) {
	_, span := c.tracer.Start(ctx, "Cache.Get")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, exists := c.items[uid]; exists {
		c.queue.MoveToFront(element)
		return element.Value.(*cacheItem).order, true
	}

	return nil, false
}

// removeOldest удаляет самый старый элемент (мьютекс уже захвачен).
func (c *lruCache) removeOldest() {
	element := c.queue.Back()
	if element != nil {
		item := c.queue.Remove(element).(*cacheItem)
		delete(c.items, item.uid)

		metrics.CacheEvictions.Inc()
		metrics.CacheSize.Set(float64(c.queue.Len()))
	}
}

// WarmUp загружает заказы из архива в кэш при старте сервиса.
func WarmUp(ctx context.Context, storage database.Storage, cache Cache, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("выполняется прогрев кэша заказов")
	orders, err := storage.GetAllOrders(ctx)
	if err != nil {
		return err
	}

	for _, order := range orders {
		orderCopy := order
		cache.Set(ctx, order.OrderUID, &orderCopy)
	}

	logger.Info("кэш прогрет", zap.Int("orders", len(orders)))
	return nil
}
