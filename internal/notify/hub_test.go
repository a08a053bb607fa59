package notify

import (
	"sync"
	"testing"
)

func TestHub_DeliversInOrder(t *testing.T) {
	var h Hub[int]
	var got []int
	h.Subscribe(func(v int) { got = append(got, v) })

	for i := 0; i < 5; i++ {
		h.Publish(i)
	}

	for i, v := range got {
		if v != i {
			t.Fatalf("got %v, want 0..4 in order", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("got %d values, want 5", len(got))
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	var h Hub[string]
	calls := 0
	unsubscribe := h.Subscribe(func(string) { calls++ })

	h.Publish("a")
	unsubscribe()
	unsubscribe()
	h.Publish("b")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}

func TestHub_ConcurrentPublishIsSerialized(t *testing.T) {
	var h Hub[int]
	var active, maxActive int
	var mu sync.Mutex
	h.Subscribe(func(int) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Publish(i)
		}(i)
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("subscriber ran concurrently, max active = %d", maxActive)
	}
}
