package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	dc, err := NewDiskCache(dir, 3)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}

	key := "नमस्ते"
	value := bytes.Repeat([]byte{0x01, 0x02}, 4096)
	if err := dc.Put(key, value); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := dc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewDiskCache(dir, 3)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get(key)
	if !ok {
		t.Fatal("key lost across reopen")
	}
	if !bytes.Equal(got, value) {
		t.Error("value changed across reopen")
	}
}

func TestDiskCache_Compression(t *testing.T) {
	tests := []struct {
		name           string
		level          int
		value          []byte
		wantCompressed bool
	}{
		{"small value stays raw", 3, []byte("tiny"), false},
		{"repetitive value compressed", 3, bytes.Repeat([]byte("a"), 8192), true},
		{"compression disabled", 0, bytes.Repeat([]byte("a"), 8192), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc, err := NewDiskCache(t.TempDir(), tt.level)
			if err != nil {
				t.Fatalf("NewDiskCache: %v", err)
			}
			defer dc.Close()

			if err := dc.Put("k", tt.value); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if got := dc.index["k"].Compressed; got != tt.wantCompressed {
				t.Errorf("Compressed = %v, want %v", got, tt.wantCompressed)
			}

			got, ok := dc.Get("k")
			if !ok || !bytes.Equal(got, tt.value) {
				t.Error("round trip through disk changed the value")
			}
		})
	}
}

func TestDiskCache_MissingFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	defer dc.Close()

	_ = dc.Put("k", []byte("v"))
	if err := os.Remove(filepath.Join(dir, fileName("k"))); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, ok := dc.Get("k"); ok {
		t.Error("Get should miss when the file is gone")
	}
	if dc.Contains("k") {
		t.Error("index entry should be dropped after a failed read")
	}
}

func TestDiskCache_ClearAndKeys(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	defer dc.Close()

	for _, k := range []string{"hola", "bonjour", "こんにちは"} {
		_ = dc.Put(k, []byte(k))
	}
	if got := len(dc.Keys()); got != 3 {
		t.Errorf("Keys() = %d, want 3", got)
	}

	if err := dc.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if dc.Size() != 0 || len(dc.Keys()) != 0 {
		t.Error("Clear left entries behind")
	}
}
