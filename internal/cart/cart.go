// Package cart реализует корзину покупателя: отображение "товар - позиция
// с количеством" с зеркалированием состояния в key-value хранилище.
package cart

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"vapelux/internal/kvstore"
	"vapelux/internal/model"
)

// Store - корзина одного покупателя. Все операции применяются строго
// последовательно; производные величины (сумма, количество) каждый раз
// пересчитываются по позициям и отдельно не хранятся.
type Store struct {
	mu     sync.Mutex
	kv     kvstore.Store // nil - корзина живет только в памяти
	key    string
	logger *zap.Logger
	lines  []model.CartLine
}

// New создает корзину, привязанную к ключу хранилища, и загружает ранее
// сохраненное состояние. Отсутствующее или нечитаемое значение означает
// пустую корзину: загрузка никогда не возвращает ошибку (fail open).
func New(kv kvstore.Store, key string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = kvstore.CartKey
	}

	s := &Store{kv: kv, key: key, logger: logger}
	s.load()
	return s
}

func (s *Store) load() {
	if s.kv == nil {
		return
	}

	raw, ok, err := s.kv.Read(s.key)
	if err != nil {
		s.logger.Warn("не удалось прочитать корзину из хранилища, начинаем с пустой",
			zap.String("key", s.key), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var lines []model.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.logger.Warn("сохраненная корзина повреждена, начинаем с пустой",
			zap.String("key", s.key), zap.Error(err))
		return
	}
	s.lines = lines
}

// persist зеркалирует позиции в хранилище. Ошибка записи не прерывает
// операцию: сохранение выполняется по мере возможности (мьютекс уже захвачен).
func (s *Store) persist() {
	if s.kv == nil {
		return
	}

	raw, err := json.Marshal(s.lines)
	if err != nil {
		s.logger.Warn("не удалось сериализовать корзину", zap.Error(err))
		return
	}
	if err := s.kv.Write(s.key, string(raw)); err != nil {
		s.logger.Warn("не удалось сохранить корзину", zap.String("key", s.key), zap.Error(err))
	}
}

func (s *Store) find(id int64) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// Add добавляет товар в корзину. Существующая позиция увеличивается на qty,
// новая создается со снимком полей товара. Количество меньше единицы
// трактуется как единица.
func (s *Store) Add(p model.Product, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.find(p.ID); i >= 0 {
		s.lines[i].Quantity += qty
	} else {
		s.lines = append(s.lines, model.CartLine{Product: p, Quantity: qty})
	}
	s.persist()
}

// UpdateQuantity устанавливает количество позиции (не прибавляет).
// Значение меньше либо равное нулю удаляет позицию: количество никогда
// не хранится нулевым.
func (s *Store) UpdateQuantity(id int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		return
	}

	if qty <= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	} else {
		s.lines[i].Quantity = qty
	}
	s.persist()
}

// Remove удаляет позицию. Отсутствие позиции - не ошибка.
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.persist()
}

// Clear опустошает корзину (после успешного оформления заказа).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist()
}

// Items возвращает копию позиций в порядке добавления.
func (s *Store) Items() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total возвращает сумму корзины: Σ цена × количество.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, l := range s.lines {
		total += l.Price * l.Quantity
	}
	return total
}

// Count возвращает общее число единиц товара в корзине.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}
