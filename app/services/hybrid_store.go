package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// HybridStore pairs a fast front store (Redis) with a durable back store
// (MongoDB). Writes go to both; reads fall back to the back store and
// refill the front one.
//
// A refill copies a value read from the back store into the front store. It
// is skipped when any Set, Delete or Clear started after the read, so a stale
// value never lands on top of a newer write.
type HybridStore struct {
	front  KVStore
	back   KVStore
	logger *zap.Logger

	mu     sync.Mutex
	writes uint64
}

// NewHybridStore creates a HybridStore.
func NewHybridStore(front, back KVStore, logger *zap.Logger) *HybridStore {
	return &HybridStore{
		front:  front,
		back:   back,
		logger: logger,
	}
}

func (hs *HybridStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	gen := hs.generation()

	raw, found, err := hs.front.Get(ctx, key)
	if err != nil {
		hs.logger.Warn("Front store failed, falling back", zap.Error(err), zap.String("key", key))
	} else if found {
		return raw, true, nil
	}

	raw, found, err = hs.back.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	hs.refill(ctx, key, raw, gen)
	return raw, true, nil
}

func (hs *HybridStore) generation() uint64 {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.writes
}

// refill writes raw to the front store unless a write happened since gen.
// Failures only cost a cache miss and are logged.
func (hs *HybridStore) refill(ctx context.Context, key string, raw json.RawMessage, gen uint64) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.writes != gen {
		hs.logger.Debug("Skipping front store refill after concurrent write", zap.String("key", key))
		return
	}
	if err := hs.front.Set(ctx, key, raw); err != nil {
		hs.logger.Warn("Front store refill failed", zap.Error(err), zap.String("key", key))
	}
}

// bump marks the start of a write. It waits for an in-flight refill, which
// then cannot overwrite what the write stores.
func (hs *HybridStore) bump() {
	hs.mu.Lock()
	hs.writes++
	hs.mu.Unlock()
}

func (hs *HybridStore) Set(ctx context.Context, key string, value any) error {
	hs.bump()
	return hs.both(func(s KVStore) error { return s.Set(ctx, key, value) })
}

func (hs *HybridStore) Delete(ctx context.Context, key string) error {
	hs.bump()
	return hs.both(func(s KVStore) error { return s.Delete(ctx, key) })
}

func (hs *HybridStore) ListByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	return hs.back.ListByPrefix(ctx, prefix)
}

func (hs *HybridStore) Clear(ctx context.Context) error {
	hs.bump()
	if err := hs.both(func(s KVStore) error { return s.Clear(ctx) }); err != nil {
		return err
	}
	hs.logger.Info("Cleared hybrid store")
	return nil
}

func (hs *HybridStore) Close() error {
	return hs.both(func(s KVStore) error { return s.Close() })
}

// WarmUp preloads the back store's cache when it has one.
func (hs *HybridStore) WarmUp(ctx context.Context, limit int) error {
	if w, ok := hs.back.(interface {
		WarmUp(context.Context, int) error
	}); ok {
		return w.WarmUp(ctx, limit)
	}
	return nil
}

// both runs op on the two stores concurrently and joins their errors.
func (hs *HybridStore) both(op func(KVStore) error) error {
	errCh := make(chan error, 2)
	for _, s := range []KVStore{hs.front, hs.back} {
		go func(s KVStore) {
			errCh <- op(s)
		}(s)
	}

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			hs.logger.Warn("Hybrid store operation failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
