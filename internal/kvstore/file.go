package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileStore хранит все пары "ключ-значение" одним JSON-файлом на диске -
// аналог локального хранилища устройства. Файл перезаписывается целиком
// при каждой записи: объем данных (корзина и пара флагов) крошечный.
type fileStore struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// NewFile открывает хранилище по указанному пути. Отсутствующий файл
// означает пустое хранилище; нечитаемое содержимое - ошибку, чтобы не
// затереть чужие данные молчаливой перезаписью.
func NewFile(path string) (Store, error) {
	s := &fileStore{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл хранилища: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("не удалось разобрать файл хранилища %s: %w", path, err)
	}
	return s, nil
}

func (s *fileStore) Read(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fileStore) Write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.flush()
}

func (s *fileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return s.flush()
}

// flush записывает снимок хранилища на диск (мьютекс уже захвачен).
func (s *fileStore) flush() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать хранилище: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("не удалось создать каталог хранилища: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("не удалось записать файл хранилища: %w", err)
	}
	return os.Rename(tmp, s.path)
}
