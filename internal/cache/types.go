package cache

import (
	"errors"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds a bounded cache's capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheMiss is returned when an item is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheCorrupted is returned when cache data is corrupted
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// Level represents the cache tier
type Level int

const (
	// LevelMemory is the in-process layer (fastest)
	LevelMemory Level = iota

	// LevelDisk is the persistent layer
	LevelDisk
)

// String returns the string representation of the cache level
func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds cache metrics
type Stats struct {
	Capacity int64 // Maximum capacity in bytes, 0 for unbounded

	Size      int64 // Current size in bytes (on disk for L2)
	RawSize   int64 // Uncompressed size in bytes
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time
}

func (s *Stats) computeHitRate() {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
}

// Config holds configuration for a tiered cache.
type Config struct {
	// MemoryCapacity bounds the memory layer in bytes. Zero or less means
	// unbounded: nothing is ever evicted.
	MemoryCapacity int64

	// DiskPath enables the persistent layer when non-empty.
	DiskPath string

	// CompressionLevel is the zstd level (1-22); 0 disables compression.
	CompressionLevel int
}

// DefaultConfig returns the vault defaults: unbounded memory, no disk layer.
func DefaultConfig() Config {
	return Config{
		CompressionLevel: 3,
	}
}

// Cache defines the interface shared by every layer.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error

	Contains(key string) bool
	Keys() []string
	Size() int64
	Stats() Stats
}
