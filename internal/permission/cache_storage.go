package permission

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"
)

// storageGenerationKey holds the current generation. It never expires.
const storageGenerationKey = "generation"

// KV is the key/value storage the SQL cache backends provide.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Reset() error
}

// StorageCache keeps results in a key/value table of the forum database.
// Generations are random so a generation is never current twice, even after Reset.
type StorageCache struct {
	store KV
	ttl   time.Duration
}

// NewStorageCache wraps a key/value storage.
func NewStorageCache(store KV, ttl time.Duration) *StorageCache {
	return &StorageCache{store: store, ttl: ttl}
}

// storageKey hashes the generation and key to fit the key column.
func storageKey(gen uint64, key string) string {
	sum := sha256.Sum256([]byte(strconv.FormatUint(gen, 10) + "|" + key))

	return hex.EncodeToString(sum[:])
}

func (c *StorageCache) newGeneration() (uint64, error) {
	gen := rand.Uint64() //nolint:gosec

	if err := c.store.Set(storageGenerationKey, []byte(strconv.FormatUint(gen, 10)), 0); err != nil {
		return 0, fmt.Errorf("storage cache generation: %w", err)
	}

	return gen, nil
}

// Generation implements Cache. A missing generation is created.
func (c *StorageCache) Generation(context.Context) (uint64, error) {
	value, err := c.store.Get(storageGenerationKey)
	if err != nil {
		return 0, fmt.Errorf("storage cache generation: %w", err)
	}

	if len(value) == 0 {
		return c.newGeneration()
	}

	gen, err := strconv.ParseUint(string(value), 10, 64)
	if err != nil {
		return c.newGeneration()
	}

	return gen, nil
}

// Get implements Cache.
func (c *StorageCache) Get(_ context.Context, gen uint64, key string) (bool, bool, error) {
	value, err := c.store.Get(storageKey(gen, key))
	if err != nil {
		return false, false, fmt.Errorf("storage cache get: %w", err)
	}

	if len(value) == 0 {
		return false, false, nil
	}

	return decodeResult(value), true, nil
}

// Set implements Cache. A result of a past generation lands below a key nobody reads.
func (c *StorageCache) Set(_ context.Context, gen uint64, key string, allowed bool) error {
	return c.store.Set(storageKey(gen, key), encodeResult(allowed), c.ttl)
}

// Invalidate implements Cache.
func (c *StorageCache) Invalidate(context.Context) error {
	if err := c.store.Reset(); err != nil {
		return err
	}

	_, err := c.newGeneration()

	return err
}
