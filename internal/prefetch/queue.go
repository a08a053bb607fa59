// Package prefetch warms content caches in the background, one category
// at a time, with a fixed pause between requests so a rate-limited
// provider is not hammered.
package prefetch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lingokids/lingo/internal/content"
	"github.com/lingokids/lingo/internal/notify"
)

// DefaultDelay is the pause between two load attempts.
const DefaultDelay = 5 * time.Second

var (
	// ErrBusy is returned by LoadNow for a category that is already loading.
	ErrBusy = errors.New("category is already loading")

	// ErrUnknownCategory is returned for a category the queue does not track.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrRunning is returned when Run is called on a queue that is running.
	ErrRunning = errors.New("prefetch queue already running")
)

// Queue loads the categories of one language in list order. A queue
// belongs to one activation: cancel the context given to Run to end it.
type Queue struct {
	target     content.Target
	language   string
	categories []string
	delay      time.Duration
	logger     *log.Logger

	mu      sync.Mutex
	status  map[string]Status
	running bool

	// slot is held by whoever is loading; at most one category loads at a time
	slot chan struct{}

	updates notify.Hub[Update]
}

// Option configures a Queue.
type Option func(*Queue)

// WithDelay sets the pause between load attempts.
func WithDelay(d time.Duration) Option {
	return func(q *Queue) {
		if d >= 0 {
			q.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// New creates a queue for categories of language. Categories already
// present in target start out ready.
func New(target content.Target, language string, categories []string, opts ...Option) *Queue {
	q := &Queue{
		target:     target,
		language:   language,
		categories: unique(categories),
		delay:      DefaultDelay,
		logger:     log.Default(),
		status:     make(map[string]Status, len(categories)),
		slot:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}

	for _, cat := range q.categories {
		if target.Has(q.key(cat)) {
			q.status[cat] = StatusReady
		} else {
			q.status[cat] = StatusPending
		}
	}
	return q
}

// Language returns the language the queue loads.
func (q *Queue) Language() string { return q.language }

// Run makes one pass over the categories, skipping those already ready.
// It returns ctx.Err() when cancelled and nil once the pass completes;
// individual load failures never stop the pass.
func (q *Queue) Run(ctx context.Context) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return ErrRunning
	}
	q.running = true
	q.mu.Unlock()
	defer func() {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
	}()

	attempted := false
	for _, cat := range q.categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		if q.Status(cat) != StatusPending {
			continue
		}

		if attempted {
			if err := sleep(ctx, q.delay); err != nil {
				return err
			}
		}

		if err := q.acquire(ctx); err != nil {
			return err
		}
		// a tap may have loaded it while we waited
		if q.Status(cat) != StatusPending {
			q.release()
			continue
		}

		attempted = true
		if err := q.load(ctx, context.WithoutCancel(ctx), cat); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// LoadNow loads cat immediately on behalf of the user, ahead of the
// background pass. It waits for any in-flight load to finish first.
// Cancelling ctx abandons this tap only: the category goes back to
// pending and can be tapped again.
func (q *Queue) LoadNow(ctx context.Context, cat string) error {
	switch q.Status(cat) {
	case StatusReady:
		return nil
	case StatusLoading:
		return ErrBusy
	}
	if !q.tracks(cat) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}

	if err := q.acquire(ctx); err != nil {
		return err
	}
	if q.Status(cat) == StatusReady {
		q.release()
		return nil
	}
	return q.load(context.Background(), ctx, cat)
}

// load runs one attempt for cat and releases the slot. Status writes are
// checked against gate; the fetch itself runs under fetchCtx.
func (q *Queue) load(gate, fetchCtx context.Context, cat string) error {
	defer q.release()

	if !q.set(gate, cat, StatusLoading, nil) {
		return gate.Err()
	}

	start := time.Now()
	err := q.target.Warm(fetchCtx, q.key(cat))
	if gate.Err() != nil {
		q.logger.Debug("dropping prefetch result after cancellation", "lang", q.language, "category", cat)
		return gate.Err()
	}

	if err != nil {
		q.logger.Warn("prefetch failed", "lang", q.language, "category", cat, "err", err)
		q.set(gate, cat, StatusPending, err)
		return err
	}

	q.logger.Info("prefetched", "lang", q.language, "category", cat, "elapsed", time.Since(start).Round(time.Millisecond))
	q.set(gate, cat, StatusReady, nil)
	return nil
}

// set writes a status unless ctx is done. The check and the write happen
// under the same lock, so nothing is written after cancellation is seen.
func (q *Queue) set(ctx context.Context, cat string, s Status, cause error) bool {
	q.mu.Lock()
	if ctx.Err() != nil {
		q.mu.Unlock()
		return false
	}
	q.status[cat] = s
	q.mu.Unlock()

	q.updates.Publish(Update{Language: q.language, Category: cat, Status: s, Err: cause})
	return true
}

// Status returns the status of cat. Unknown categories report pending.
func (q *Queue) Status(cat string) Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status[cat]
}

// Snapshot returns every category's status in queue order.
func (q *Queue) Snapshot() []CategoryStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]CategoryStatus, len(q.categories))
	for i, cat := range q.categories {
		out[i] = CategoryStatus{Category: cat, Status: q.status[cat]}
	}
	return out
}

// Categories returns the tracked categories in queue order.
func (q *Queue) Categories() []string {
	return slices.Clone(q.categories)
}

// Done reports whether every category is ready.
func (q *Queue) Done() bool {
	for _, cs := range q.Snapshot() {
		if cs.Status != StatusReady {
			return false
		}
	}
	return true
}

// Subscribe registers fn for status updates.
func (q *Queue) Subscribe(fn func(Update)) (unsubscribe func()) {
	return q.updates.Subscribe(fn)
}

func (q *Queue) key(cat string) content.Key {
	return content.Key{Language: q.language, Category: cat}
}

func (q *Queue) tracks(cat string) bool {
	return slices.Contains(q.categories, cat)
}

func (q *Queue) acquire(ctx context.Context) error {
	select {
	case q.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) release() { <-q.slot }

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func unique(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
