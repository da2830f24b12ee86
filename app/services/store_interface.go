package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Entry is one key/value pair returned by ListByPrefix.
type Entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// KVStore is the key-value contract every backend satisfies. Values are
// stored as JSON. Keys are relative to the backend's namespace.
type KVStore interface {
	// Get returns the raw JSON under key, and false when absent.
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)

	// Set marshals value to JSON and stores it, replacing any previous value.
	Set(ctx context.Context, key string, value any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// ListByPrefix returns every entry whose key starts with prefix, ordered
	// by key. Values that are not valid JSON are skipped with a warning.
	ListByPrefix(ctx context.Context, prefix string) ([]Entry, error)

	// Clear removes every key in the namespace.
	Clear(ctx context.Context) error

	// Close releases connections.
	Close() error
}

// getJSON loads key into a T. A value that does not decode is logged and
// reported as absent; err is only set when the store itself fails.
func getJSON[T any](ctx context.Context, store KVStore, key string, logger *zap.Logger) (T, bool, error) {
	var out T
	raw, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("Skipping undecodable entry", zap.String("key", key), zap.Error(err))
		var zero T
		return zero, false, nil
	}
	return out, true, nil
}

// listJSON decodes every entry under prefix into a T, skipping entries of the wrong shape.
func listJSON[T any](ctx context.Context, store KVStore, prefix string, logger *zap.Logger) ([]T, error) {
	entries, err := store.ListByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		var v T
		if err := json.Unmarshal(e.Value, &v); err != nil {
			logger.Warn("Skipping undecodable entry", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// validEntries drops values that are not valid JSON, logging each one.
func validEntries(entries []Entry, logger *zap.Logger) []Entry {
	kept := entries[:0]
	for _, e := range entries {
		if !json.Valid(e.Value) {
			logger.Warn("Skipping corrupted entry", zap.String("key", e.Key))
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
