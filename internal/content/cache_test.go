package content

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type countingLoader struct {
	calls atomic.Int32
	items []string
	err   error
}

func (l *countingLoader) load(_ context.Context, key Key, offset int) ([]string, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	out := make([]string, len(l.items))
	for i, it := range l.items {
		out[i] = key.String() + ":" + it
	}
	return out, nil
}

func TestCache_FetchOrLoad(t *testing.T) {
	key := Key{Language: "hi", Category: "animals"}

	tests := []struct {
		name       string
		items      []string
		err        error
		offsets    []int
		wantCalls  int32
		wantCached bool
	}{
		{name: "second offset-0 call is served from cache", items: []string{"a"}, offsets: []int{0, 0}, wantCalls: 1, wantCached: true},
		{name: "pages past the first always load", items: []string{"a"}, offsets: []int{6, 6}, wantCalls: 2, wantCached: false},
		{name: "empty result is not cached", items: nil, offsets: []int{0, 0}, wantCalls: 2, wantCached: false},
		{name: "failure leaves cache empty", err: errors.New("boom"), offsets: []int{0}, wantCalls: 1, wantCached: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &countingLoader{items: tt.items, err: tt.err}
			c := NewCache(KindWords, l.load)

			for _, off := range tt.offsets {
				_, err := c.FetchOrLoad(context.Background(), key, off)
				if (err != nil) != (tt.err != nil) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
			}

			if got := l.calls.Load(); got != tt.wantCalls {
				t.Errorf("loader calls = %d, want %d", got, tt.wantCalls)
			}
			if _, ok := c.Get(key); ok != tt.wantCached {
				t.Errorf("cached = %v, want %v", ok, tt.wantCached)
			}
		})
	}
}

func TestCache_OffsetZeroOverwritesAndMorePagesDoNot(t *testing.T) {
	key := Key{Language: "es", Category: "food"}
	page := 0
	c := NewCache(KindGeography, func(_ context.Context, _ Key, offset int) ([]int, error) {
		page++
		return []int{page, offset}, nil
	})

	first, _ := c.FetchOrLoad(context.Background(), key, 0)
	more, _ := c.FetchOrLoad(context.Background(), key, 2)
	if more[1] != 2 {
		t.Fatalf("load more returned %v", more)
	}

	cached, _ := c.Get(key)
	if cached[0] != first[0] {
		t.Errorf("load-more page replaced cached entry: %v", cached)
	}

	if err := c.Warm(context.Background(), key); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	cached, _ = c.Get(key)
	if cached[0] != 3 {
		t.Errorf("Warm did not overwrite entry: %v", cached)
	}
}

func TestCache_WarmEmptyIsErrEmpty(t *testing.T) {
	c := NewCache(KindSongs, func(context.Context, Key, int) ([]Song, error) { return nil, nil })
	if err := c.Warm(context.Background(), Key{Language: "fr", Category: "lullabies"}); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}

func TestCache_GetReturnsCopy(t *testing.T) {
	key := Key{Language: "ja"}
	c := NewCache(KindAlphabet, func(context.Context, Key, int) ([]string, error) {
		return []string{"あ", "い"}, nil
	})
	items, _ := c.FetchOrLoad(context.Background(), key, 0)
	items[0] = "changed"

	cached, _ := c.Get(key)
	if cached[0] != "あ" {
		t.Error("caller mutation leaked into the cache")
	}
}

func TestCache_PublishesOnWrite(t *testing.T) {
	c := NewCache(KindWords, (&countingLoader{items: []string{"x", "y"}}).load)

	var events []Event
	c.Subscribe(func(e Event) { events = append(events, e) })

	key := Key{Language: "sw", Category: "colors"}
	_, _ = c.FetchOrLoad(context.Background(), key, 0)
	_, _ = c.FetchOrLoad(context.Background(), key, 0)

	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Key != key || events[0].Count != 2 || events[0].Kind != KindWords {
		t.Errorf("event = %+v", events[0])
	}
}

func TestCache_ConcurrentFetchesLastWriterWins(t *testing.T) {
	l := &countingLoader{items: []string{"a"}}
	c := NewCache(KindWords, l.load)
	key := Key{Language: "ko", Category: "family"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.FetchOrLoad(context.Background(), key, 0); err != nil {
				t.Errorf("FetchOrLoad: %v", err)
			}
		}()
	}
	wg.Wait()

	if !c.Has(key) {
		t.Error("entry missing after concurrent fetches")
	}
	if l.calls.Load() < 1 {
		t.Error("loader never called")
	}
}
