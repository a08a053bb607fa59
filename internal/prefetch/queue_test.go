package prefetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lingokids/lingo/internal/content"
)

type fakeTarget struct {
	mu     sync.Mutex
	cached map[content.Key]bool
	fail   map[string]error
	calls  []string
	onWarm func(ctx context.Context, key content.Key)
}

func newFakeTarget(cached ...string) *fakeTarget {
	ft := &fakeTarget{cached: make(map[content.Key]bool), fail: make(map[string]error)}
	for _, c := range cached {
		ft.cached[content.Key{Language: "hi", Category: c}] = true
	}
	return ft
}

func (f *fakeTarget) Has(key content.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cached[key]
}

func (f *fakeTarget) Warm(ctx context.Context, key content.Key) error {
	f.mu.Lock()
	f.calls = append(f.calls, key.Category)
	hook := f.onWarm
	err := f.fail[key.Category]
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, key)
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.cached[key] = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTarget) warmed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

var categories = []string{"landmarks", "food", "festivals", "animals"}

func TestNew_InitialStatus(t *testing.T) {
	q := New(newFakeTarget("food"), "hi", categories)

	want := map[string]Status{
		"landmarks": StatusPending,
		"food":      StatusReady,
		"festivals": StatusPending,
		"animals":   StatusPending,
	}
	for cat, s := range want {
		if got := q.Status(cat); got != s {
			t.Errorf("Status(%s) = %s, want %s", cat, got, s)
		}
	}
}

func TestRun_LoadsAllAndSkipsReady(t *testing.T) {
	ft := newFakeTarget("food")
	q := New(ft, "hi", categories, WithDelay(time.Millisecond))

	if err := q.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !q.Done() {
		t.Errorf("not every category ready: %+v", q.Snapshot())
	}
	got := ft.warmed()
	want := []string{"landmarks", "festivals", "animals"}
	if len(got) != len(want) {
		t.Fatalf("warmed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("warm order %v, want %v", got, want)
		}
	}
	for _, cat := range categories {
		if !ft.Has(content.Key{Language: "hi", Category: cat}) {
			t.Errorf("%s ready but not cached", cat)
		}
	}
}

func TestRun_FailureRevertsToPendingAndContinues(t *testing.T) {
	ft := newFakeTarget()
	ft.fail["food"] = errors.New("rate limited")
	q := New(ft, "hi", categories, WithDelay(time.Millisecond))

	var updates []Update
	q.Subscribe(func(u Update) { updates = append(updates, u) })

	if err := q.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := q.Status("food"); got != StatusPending {
		t.Errorf("food = %s, want pending", got)
	}
	if got := q.Status("animals"); got != StatusReady {
		t.Errorf("animals = %s, want ready", got)
	}

	var sawFailure bool
	for _, u := range updates {
		if u.Category == "food" && u.Status == StatusPending && u.Err != nil {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Error("no pending update with error for the failed category")
	}
}

func TestRun_NoAutomaticRetryWithinPass(t *testing.T) {
	ft := newFakeTarget()
	ft.fail["landmarks"] = errors.New("boom")
	q := New(ft, "hi", categories, WithDelay(0))

	_ = q.Run(context.Background())

	count := 0
	for _, c := range ft.warmed() {
		if c == "landmarks" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("landmarks attempted %d times in one pass", count)
	}

	// a second pass retries it
	delete(ft.fail, "landmarks")
	_ = q.Run(context.Background())
	if q.Status("landmarks") != StatusReady {
		t.Error("second pass did not retry the failed category")
	}
}

func TestRun_CancelStopsLaterCategories(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ft := newFakeTarget()
	ft.onWarm = func(_ context.Context, key content.Key) {
		if key.Category == "food" {
			cancel()
		}
	}
	q := New(ft, "hi", categories, WithDelay(time.Millisecond))

	var mu sync.Mutex
	var updates []Update
	q.Subscribe(func(u Update) {
		mu.Lock()
		updates = append(updates, u)
		mu.Unlock()
	})

	if err := q.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v, want context.Canceled", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, u := range updates {
		if u.Category == "festivals" || u.Category == "animals" {
			t.Errorf("update after cancellation: %+v", u)
		}
		if u.Category == "food" && u.Status != StatusLoading {
			t.Errorf("result of the in-flight fetch was published: %+v", u)
		}
	}
	for _, c := range ft.warmed() {
		if c == "festivals" || c == "animals" {
			t.Errorf("fetch started after cancellation: %s", c)
		}
	}
}

func TestRun_InFlightFetchNotCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ft := newFakeTarget()
	var fetchErr error
	ft.onWarm = func(fctx context.Context, _ content.Key) {
		cancel()
		fetchErr = fctx.Err()
	}
	q := New(ft, "hi", categories[:1], WithDelay(0))

	_ = q.Run(ctx)
	if fetchErr != nil {
		t.Errorf("fetch context was cancelled with the queue: %v", fetchErr)
	}
}

func TestRun_DelayBetweenAttempts(t *testing.T) {
	const delay = 50 * time.Millisecond
	ft := newFakeTarget("food")
	ft.fail["landmarks"] = errors.New("boom")
	q := New(ft, "hi", categories, WithDelay(delay))

	start := time.Now()
	_ = q.Run(context.Background())
	elapsed := time.Since(start)

	// three attempts (landmarks fails, food skipped) → two delays
	if elapsed < 2*delay {
		t.Errorf("elapsed %v, want at least %v", elapsed, 2*delay)
	}
	if elapsed >= 3*delay {
		t.Errorf("elapsed %v suggests a delay was paid for a skipped category or after the last one", elapsed)
	}
}

func TestRun_CancelDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ft := newFakeTarget()
	q := New(ft, "hi", categories, WithDelay(time.Hour))

	q.Subscribe(func(u Update) {
		if u.Status == StatusReady {
			cancel()
		}
	})

	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation during the delay")
	}
	if got := len(ft.warmed()); got != 1 {
		t.Errorf("warmed %d categories, want 1", got)
	}
}

func TestRun_Concurrent(t *testing.T) {
	ft := newFakeTarget()
	block := make(chan struct{})
	ft.onWarm = func(context.Context, content.Key) { <-block }
	q := New(ft, "hi", categories[:1], WithDelay(0))

	go func() { _ = q.Run(context.Background()) }()
	waitFor(t, func() bool { return q.Status("landmarks") == StatusLoading })

	if err := q.Run(context.Background()); !errors.Is(err, ErrRunning) {
		t.Errorf("second Run err = %v, want ErrRunning", err)
	}
	close(block)
}

func TestLoadNow(t *testing.T) {
	t.Run("ready returns immediately", func(t *testing.T) {
		ft := newFakeTarget("food")
		q := New(ft, "hi", categories)
		if err := q.LoadNow(context.Background(), "food"); err != nil {
			t.Fatalf("LoadNow: %v", err)
		}
		if len(ft.warmed()) != 0 {
			t.Error("ready category was fetched again")
		}
	})

	t.Run("pending loads", func(t *testing.T) {
		ft := newFakeTarget()
		q := New(ft, "hi", categories)
		if err := q.LoadNow(context.Background(), "festivals"); err != nil {
			t.Fatalf("LoadNow: %v", err)
		}
		if q.Status("festivals") != StatusReady {
			t.Errorf("status = %s", q.Status("festivals"))
		}
	})

	t.Run("failure reverts to pending", func(t *testing.T) {
		ft := newFakeTarget()
		ft.fail["animals"] = errors.New("offline")
		q := New(ft, "hi", categories)
		if err := q.LoadNow(context.Background(), "animals"); err == nil {
			t.Fatal("expected error")
		}
		if q.Status("animals") != StatusPending {
			t.Errorf("status = %s", q.Status("animals"))
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		q := New(newFakeTarget(), "hi", categories)
		if err := q.LoadNow(context.Background(), "volcanoes"); !errors.Is(err, ErrUnknownCategory) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("cancelled tap can be retried", func(t *testing.T) {
		ft := newFakeTarget()
		ctx, cancel := context.WithCancel(context.Background())
		ft.onWarm = func(context.Context, content.Key) { cancel() }
		q := New(ft, "hi", categories, WithDelay(0))

		if err := q.LoadNow(ctx, "food"); !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
		if q.Status("food") != StatusPending {
			t.Fatalf("status after cancelled tap = %s, want pending", q.Status("food"))
		}

		ft.mu.Lock()
		ft.onWarm = nil
		ft.mu.Unlock()
		if err := q.LoadNow(context.Background(), "food"); err != nil {
			t.Fatalf("second tap: %v", err)
		}
		if q.Status("food") != StatusReady {
			t.Errorf("status after second tap = %s", q.Status("food"))
		}
		if err := q.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if !q.Done() {
			t.Errorf("not done: %+v", q.Snapshot())
		}
	})

	t.Run("loading rejects taps", func(t *testing.T) {
		ft := newFakeTarget()
		block := make(chan struct{})
		ft.onWarm = func(context.Context, content.Key) { <-block }
		q := New(ft, "hi", categories)

		go func() { _ = q.LoadNow(context.Background(), "food") }()
		waitFor(t, func() bool { return q.Status("food") == StatusLoading })

		if err := q.LoadNow(context.Background(), "food"); !errors.Is(err, ErrBusy) {
			t.Errorf("err = %v, want ErrBusy", err)
		}
		close(block)
	})
}

func TestAtMostOneLoading(t *testing.T) {
	ft := newFakeTarget()
	ft.onWarm = func(context.Context, content.Key) { time.Sleep(5 * time.Millisecond) }
	q := New(ft, "hi", categories, WithDelay(time.Millisecond))

	var mu sync.Mutex
	violations := 0
	q.Subscribe(func(Update) {
		loading := 0
		for _, cs := range q.Snapshot() {
			if cs.Status == StatusLoading {
				loading++
			}
		}
		mu.Lock()
		if loading > 1 {
			violations++
		}
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = q.Run(context.Background())
	}()
	for _, cat := range []string{"animals", "festivals"} {
		wg.Add(1)
		go func(cat string) {
			defer wg.Done()
			if err := q.LoadNow(context.Background(), cat); err != nil && !errors.Is(err, ErrBusy) {
				t.Errorf("LoadNow(%s): %v", cat, err)
			}
		}(cat)
	}
	wg.Wait()

	if violations > 0 {
		t.Errorf("observed more than one loading category %d times", violations)
	}
	if !q.Done() {
		t.Errorf("not done: %+v", q.Snapshot())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}
