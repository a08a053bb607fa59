package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Tiered puts the memory layer in front of an optional disk layer. Reads
// check memory first and promote disk hits; writes land in memory at once
// and reach disk in the background.
type Tiered struct {
	memory *MemoryCache
	disk   *DiskCache

	logger  *log.Logger
	pending sync.WaitGroup

	mu    sync.Mutex
	stats struct {
		memoryHits int64
		diskHits   int64
		misses     int64
		promotions int64
	}
}

// NewTiered builds the layers described by cfg.
func NewTiered(cfg Config, logger *log.Logger) (*Tiered, error) {
	if logger == nil {
		logger = log.Default()
	}
	t := &Tiered{
		memory: NewMemoryCache(cfg.MemoryCapacity),
		logger: logger,
	}
	if cfg.DiskPath != "" {
		disk, err := NewDiskCache(cfg.DiskPath, cfg.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create disk cache: %w", err)
		}
		t.disk = disk
	}
	return t, nil
}

// Get checks memory, then disk.
func (t *Tiered) Get(key string) ([]byte, bool) {
	if data, ok := t.memory.Get(key); ok {
		t.count(func() { t.stats.memoryHits++ })
		return data, true
	}
	if t.disk != nil {
		if data, ok := t.disk.Get(key); ok {
			t.count(func() {
				t.stats.diskHits++
				t.stats.promotions++
			})
			// best effort; a bounded memory layer may refuse
			_ = t.memory.Put(key, data)
			return data, true
		}
	}
	t.count(func() { t.stats.misses++ })
	return nil, false
}

// Put stores in memory synchronously and on disk asynchronously. Call
// Flush to wait for outstanding disk writes. An item too large for memory
// is an error only when there is no disk layer to hold it.
func (t *Tiered) Put(key string, value []byte) error {
	err := t.memory.Put(key, value)
	if t.disk == nil {
		if err != nil {
			return fmt.Errorf("memory cache: %w", err)
		}
		return nil
	}
	if err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("memory cache: %w", err)
	}

	t.pending.Add(1)
	go func() {
		defer t.pending.Done()
		if err := t.disk.Put(key, value); err != nil {
			t.logger.Warn("disk cache write failed", "bytes", len(value), "err", err)
		}
	}()
	return nil
}

// Delete removes key from every layer.
func (t *Tiered) Delete(key string) error {
	var errs []error
	if err := t.memory.Delete(key); err != nil {
		errs = append(errs, fmt.Errorf("memory delete: %w", err))
	}
	if t.disk != nil {
		t.pending.Wait()
		if err := t.disk.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("disk delete: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Clear empties every layer.
func (t *Tiered) Clear() error {
	var errs []error
	if err := t.memory.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("memory clear: %w", err))
	}
	if t.disk != nil {
		t.pending.Wait()
		if err := t.disk.Clear(); err != nil {
			errs = append(errs, fmt.Errorf("disk clear: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Contains reports whether any layer holds key.
func (t *Tiered) Contains(key string) bool {
	if t.memory.Contains(key) {
		return true
	}
	return t.disk != nil && t.disk.Contains(key)
}

// Keys returns the union of keys across layers.
func (t *Tiered) Keys() []string {
	keys := t.memory.Keys()
	if t.disk == nil {
		return keys
	}
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	for _, k := range t.disk.Keys() {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Size returns the larger of the layer sizes: the disk layer mirrors
// memory, so summing would double count.
func (t *Tiered) Size() int64 {
	size := t.memory.Size()
	if t.disk != nil {
		if d := t.disk.Size(); d > size {
			size = d
		}
	}
	return size
}

// Stats reports per-layer statistics plus tier-level hit counts.
func (t *Tiered) Stats() Stats {
	t.mu.Lock()
	hits := t.stats.memoryHits + t.stats.diskHits
	misses := t.stats.misses
	t.mu.Unlock()

	stats := t.memory.Stats()
	if t.disk != nil {
		t.pending.Wait()
		disk := t.disk.Stats()
		if disk.ItemCount > stats.ItemCount {
			stats.ItemCount = disk.ItemCount
		}
		stats.Size = disk.Size
		if disk.RawSize > stats.RawSize {
			stats.RawSize = disk.RawSize
		}
	}
	stats.Hits = hits
	stats.Misses = misses
	stats.HitRate = 0
	stats.computeHitRate()
	return stats
}

// LayerStats returns the statistics of a single layer.
func (t *Tiered) LayerStats(level Level) (Stats, bool) {
	switch level {
	case LevelMemory:
		return t.memory.Stats(), true
	case LevelDisk:
		if t.disk != nil {
			return t.disk.Stats(), true
		}
	}
	return Stats{}, false
}

// Persistent reports whether a disk layer is configured.
func (t *Tiered) Persistent() bool { return t.disk != nil }

// Flush waits for background disk writes.
func (t *Tiered) Flush() { t.pending.Wait() }

// Close flushes pending writes and closes the disk layer.
func (t *Tiered) Close() error {
	t.pending.Wait()
	if t.disk != nil {
		if err := t.disk.Close(); err != nil {
			return fmt.Errorf("failed to close disk cache: %w", err)
		}
	}
	return nil
}

func (t *Tiered) count(f func()) {
	t.mu.Lock()
	f()
	t.mu.Unlock()
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*DiskCache)(nil)
	_ Cache = (*Tiered)(nil)
)
