package cache

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

type MemoryConfig struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryBackend is an in-process sharded cache. The sturdyc client TTL is
// an upper bound; each entry also carries its own expiry.
type MemoryBackend struct {
	client *sturdyc.Client[memoryEntry]
	now    func() time.Time
}

func NewMemoryBackend(cfg MemoryConfig) *MemoryBackend {
	return &MemoryBackend{
		client: sturdyc.New[memoryEntry](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage),
		now:    time.Now,
	}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := b.client.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !b.now().Before(entry.expiresAt) {
		b.client.Delete(key)
		return nil, ErrMiss
	}
	return entry.value, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.client.Set(key, memoryEntry{value: value, expiresAt: b.now().Add(ttl)})
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.client.Delete(key)
	return nil
}

func (b *MemoryBackend) DeletePrefix(_ context.Context, prefix string) error {
	for _, key := range b.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			b.client.Delete(key)
		}
	}
	return nil
}

// DeleteExpired removes every entry past its expiry.
func (b *MemoryBackend) DeleteExpired(_ context.Context) (int, error) {
	now := b.now()
	var n int
	for _, key := range b.client.ScanKeys() {
		entry, ok := b.client.Get(key)
		if ok && !now.Before(entry.expiresAt) {
			b.client.Delete(key)
			n++
		}
	}
	return n, nil
}
