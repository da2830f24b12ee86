package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// MemoryStore is an in-process KVStore backed by a map.
type MemoryStore struct {
	data   map[string][]byte
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string][]byte),
		logger: logger,
	}
}

// Get returns a copy of the stored bytes.
func (ms *MemoryStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	raw, exists := ms.data[key]
	if !exists {
		return nil, false, nil
	}
	return append(json.RawMessage(nil), raw...), true, nil
}

// Set stores the JSON encoding of value.
func (ms *MemoryStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.data[key] = data
	return nil
}

// PutRaw stores bytes as-is, without validating them.
func (ms *MemoryStore) PutRaw(key string, raw []byte) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.data[key] = append([]byte(nil), raw...)
}

// Delete removes key.
func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.data, key)
	return nil
}

// ListByPrefix scans every key.
func (ms *MemoryStore) ListByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	ms.mu.RLock()
	entries := make([]Entry, 0)
	for key, raw := range ms.data {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, Entry{Key: key, Value: append(json.RawMessage(nil), raw...)})
		}
	}
	ms.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return validEntries(entries, ms.logger), nil
}

// Clear removes everything.
func (ms *MemoryStore) Clear(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.data = make(map[string][]byte)
	return nil
}

// Size returns the number of stored keys.
func (ms *MemoryStore) Size() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return len(ms.data)
}

// Close is a no-op.
func (ms *MemoryStore) Close() error {
	return nil
}
