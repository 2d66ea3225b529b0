package storage

import (
	"strconv"
	"sync"
	"time"
)

const (
	KeyToken         = "token"
	KeyTokenInitDate = "token-init-date"
)

// Storage is a small persistent key-value store holding the client session.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
	Clear() error
}

// SaveToken stores token together with the time it was issued, as unix milliseconds.
func SaveToken(s Storage, token string, issuedAt time.Time) error {
	if err := s.Set(KeyToken, token); err != nil {
		return err
	}
	return s.Set(KeyTokenInitDate, strconv.FormatInt(issuedAt.UnixMilli(), 10))
}

// Token implements the token source of the API client. A read error is treated as no token.
func Token(s Storage) string {
	token, ok, err := s.Get(KeyToken)
	if err != nil || !ok {
		return ""
	}
	return token
}

type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string]string{}}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string]string{}
	return nil
}
