// Package session prepares a language before the learner reaches the
// home screen by loading a small bundle of content in parallel.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lingokids/lingo/internal/content"
)

// ErrInvalidLanguage is returned for a malformed language code.
var ErrInvalidLanguage = errors.New("invalid language")

// Progress receives a human message and a percentage in [0, 100].
// Percentages never decrease and the last call is always 100.
type Progress func(message string, percent int)

// Bundle names the categories loaded alongside the alphabet.
type Bundle struct {
	WordCategory      string
	SongCategory      string
	GeographyCategory string
}

// DefaultBundle returns the first default category of each kind.
func DefaultBundle() Bundle {
	return Bundle{
		WordCategory:      content.WordCategories[0],
		SongCategory:      content.SongCategories[0],
		GeographyCategory: content.GeographyCategories[0],
	}
}

// Report summarizes a bootstrap.
type Report struct {
	Language content.Language
	Loaded   []content.Kind
	Failed   map[content.Kind]error
	Elapsed  time.Duration
}

// Bootstrapper warms the caches of a Store for a language.
type Bootstrapper struct {
	store  *content.Store
	bundle Bundle
	logger *log.Logger
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithBundle overrides the categories loaded.
func WithBundle(b Bundle) Option {
	return func(bs *Bootstrapper) { bs.bundle = b }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(bs *Bootstrapper) { bs.logger = l }
}

// New creates a Bootstrapper over store.
func New(store *content.Store, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{store: store, bundle: DefaultBundle(), logger: log.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type task struct {
	kind content.Kind
	done string
	run  func(context.Context) error
}

// Bootstrap loads the alphabet, a word batch, a song batch and a
// geography batch for code concurrently and waits for all of them. A
// failed fetch is recorded in the report and never aborts the others.
// The only errors are an invalid code and cancellation of ctx.
func (b *Bootstrapper) Bootstrap(ctx context.Context, code string, progress Progress) (Report, error) {
	if progress == nil {
		progress = func(string, int) {}
	}
	lang, err := content.LookupLanguage(code)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrInvalidLanguage, err)
	}

	start := time.Now()
	p := &tracker{report: progress}
	p.set(fmt.Sprintf("Packing your bags for %s...", lang.Name), 5)

	tasks := b.tasks(lang.Code)
	report := Report{Language: lang, Failed: make(map[content.Kind]error)}

	var (
		mu   sync.Mutex
		done int
		g    errgroup.Group
	)
	for _, t := range tasks {
		g.Go(func() error {
			err := t.run(ctx)

			mu.Lock()
			done++
			pct := 10 + done*85/len(tasks)
			if err != nil {
				report.Failed[t.kind] = err
				b.logger.Warn("bootstrap fetch failed", "lang", lang.Code, "kind", t.kind, "err", err)
			} else {
				report.Loaded = append(report.Loaded, t.kind)
			}
			mu.Unlock()

			msg := t.done
			if err != nil {
				msg = fmt.Sprintf("Skipped %s for now", t.kind)
			}
			p.set(msg, pct)
			// settle semantics: never fail the group
			return nil
		})
	}
	_ = g.Wait()

	report.Elapsed = time.Since(start)
	p.set("Ready!", 100)
	b.logger.Info("bootstrap finished", "lang", lang.Code, "loaded", len(report.Loaded), "failed", len(report.Failed), "elapsed", report.Elapsed.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (b *Bootstrapper) tasks(lang string) []task {
	s := b.store
	return []task{
		{
			kind: content.KindAlphabet,
			done: "Letters are ready!",
			run: func(ctx context.Context) error {
				return fetch(ctx, s.Alphabet, content.Key{Language: lang})
			},
		},
		{
			kind: content.KindWords,
			done: "Words are ready!",
			run: func(ctx context.Context) error {
				return fetch(ctx, s.Words, content.Key{Language: lang, Category: b.bundle.WordCategory})
			},
		},
		{
			kind: content.KindSongs,
			done: "Songs are ready!",
			run: func(ctx context.Context) error {
				return fetch(ctx, s.Songs, content.Key{Language: lang, Category: b.bundle.SongCategory})
			},
		},
		{
			kind: content.KindGeography,
			done: "Travel facts are ready!",
			run: func(ctx context.Context) error {
				return fetch(ctx, s.Geography, content.Key{Language: lang, Category: b.bundle.GeographyCategory})
			},
		},
	}
}

// fetch loads the first page through the cache and treats an empty
// result as a failure.
func fetch[T any](ctx context.Context, c *content.Cache[T], key content.Key) error {
	items, err := c.FetchOrLoad(ctx, key, 0)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return content.ErrEmpty
	}
	return nil
}

// tracker forwards progress while keeping it monotonic.
type tracker struct {
	mu     sync.Mutex
	last   int
	report Progress
}

func (t *tracker) set(msg string, pct int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pct = min(max(pct, t.last), 100)
	t.last = pct
	t.report(msg, pct)
}
