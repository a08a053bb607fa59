package cache

import (
	"errors"
	"testing"
)

func TestTiered_MemoryOnly(t *testing.T) {
	tc, err := NewTiered(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	defer tc.Close()

	if tc.Persistent() {
		t.Error("default config should not be persistent")
	}
	_ = tc.Put("hello", []byte("pcm"))
	if got, ok := tc.Get("hello"); !ok || string(got) != "pcm" {
		t.Errorf("Get = %q, %v", got, ok)
	}
}

func TestTiered_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{DiskPath: dir, CompressionLevel: 3}

	first, err := NewTiered(cfg, nil)
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	_ = first.Put("gracias", []byte("audio"))
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := NewTiered(cfg, nil)
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	defer second.Close()

	if !second.Contains("gracias") {
		t.Fatal("disk layer should report the key after restart")
	}
	if got, ok := second.Get("gracias"); !ok || string(got) != "audio" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if s, _ := second.LayerStats(LevelMemory); s.ItemCount != 1 {
		t.Errorf("disk hit was not promoted to memory, memory items = %d", s.ItemCount)
	}
}

func TestTiered_DeleteAndClear(t *testing.T) {
	tc, err := NewTiered(Config{DiskPath: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	defer tc.Close()

	_ = tc.Put("a", []byte("1"))
	_ = tc.Put("b", []byte("2"))
	tc.Flush()

	if err := tc.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if tc.Contains("a") {
		t.Error("a survived Delete")
	}

	if err := tc.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(tc.Keys()) != 0 {
		t.Errorf("Keys after Clear = %v", tc.Keys())
	}
}

func TestTiered_StatsCountHitsAndMisses(t *testing.T) {
	tc, _ := NewTiered(DefaultConfig(), nil)
	defer tc.Close()

	_ = tc.Put("x", []byte("12345"))
	tc.Get("x")
	tc.Get("y")

	stats := tc.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", stats.Hits, stats.Misses)
	}
	if stats.ItemCount != 1 || stats.Size != 5 {
		t.Errorf("items/size = %d/%d", stats.ItemCount, stats.Size)
	}
}

func TestTiered_TooLargeWithoutDisk(t *testing.T) {
	tc, err := NewTiered(Config{MemoryCapacity: 4}, nil)
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	defer tc.Close()

	if err := tc.Put("big", make([]byte, 8)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put error = %v, want ErrItemTooLarge", err)
	}
	if tc.Contains("big") {
		t.Error("oversized item reported as stored")
	}
}

func TestTiered_TooLargeForMemoryGoesToDisk(t *testing.T) {
	tc, err := NewTiered(Config{MemoryCapacity: 4, DiskPath: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	defer tc.Close()

	if err := tc.Put("big", make([]byte, 8)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	tc.Flush()
	if got, ok := tc.Get("big"); !ok || len(got) != 8 {
		t.Errorf("Get = %d bytes, %v", len(got), ok)
	}
}
