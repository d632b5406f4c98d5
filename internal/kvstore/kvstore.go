// Package kvstore предоставляет минимальное key-value хранилище для
// состояния витрины (корзина, флаг установки приложения). Интерфейс
// сознательно узкий, чтобы логика корзины тестировалась без реального
// хранилища на диске.
package kvstore

import "sync"

//go:generate mockgen -source=kvstore.go -destination=./mocks/store_mock.go -package=mocks Store

// Ключи, под которыми витрина хранит свое состояние.
const (
	CartKey                 = "vape-cart"
	InstallPromptDismissKey = "installPromptDismissed"
)

// Store определяет контракт key-value хранилища. Отсутствие значения -
// штатная ситуация (ok=false), ошибкой считаются только сбои ввода-вывода.
type Store interface {
	Read(key string) (value string, ok bool, err error)
	Write(key, value string) error
	Delete(key string) error
}

// memoryStore - потокобезопасное хранилище в памяти.
type memoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory создает пустое хранилище в памяти.
func NewMemory() Store {
	return &memoryStore{data: make(map[string]string)}
}

func (s *memoryStore) Read(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memoryStore) Write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

func (s *memoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
