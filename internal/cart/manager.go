package cart

import (
	"sync"

	"go.uber.org/zap"

	"vapelux/internal/kvstore"
)

// Manager выдает корзину по идентификатору сессии. Ключ хранилища
// образуется из фиксированного ключа корзины и сессии, поэтому корзины
// разных покупателей изолированы друг от друга.
type Manager struct {
	mu     sync.Mutex
	kv     kvstore.Store
	logger *zap.Logger
	carts  map[string]*Store
}

// NewManager создает менеджер корзин поверх общего хранилища.
func NewManager(kv kvstore.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		kv:     kv,
		logger: logger,
		carts:  make(map[string]*Store),
	}
}

// ForSession возвращает корзину сессии, создавая ее при первом обращении.
// Пустая сессия получает корзину с фиксированным ключом по умолчанию.
func (m *Manager) ForSession(sessionID string) *Store {
	key := kvstore.CartKey
	if sessionID != "" {
		key = kvstore.CartKey + ":" + sessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.carts[key]; ok {
		return s
	}
	s := New(m.kv, key, m.logger)
	m.carts[key] = s
	return s
}
