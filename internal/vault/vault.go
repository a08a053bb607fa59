// Package vault stores synthesized speech by the exact text spoken and
// tracks the global bakery status while new phrases are generated.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lingokids/lingo/internal/audio"
	"github.com/lingokids/lingo/internal/cache"
	"github.com/lingokids/lingo/internal/notify"
	"github.com/lingokids/lingo/internal/provider"
)

// DefaultCooldown is how long the vault rests after a rate-limit failure.
const DefaultCooldown = 60 * time.Second

// ErrEmptyText is returned when asked to speak nothing.
var ErrEmptyText = errors.New("nothing to speak")

// Fallback is a lower-fidelity synthesizer used while resting.
type Fallback interface {
	provider.SpeechSynthesizer
	SampleRate() int
}

// Outcome describes what a Speak call did.
type Outcome struct {
	Source   Source
	Bytes    int
	Duration time.Duration
}

// Vault caches speech by text. Entries are never evicted.
type Vault struct {
	store      cache.Cache
	synth      provider.SpeechSynthesizer
	fallback   Fallback
	player     audio.Player
	sampleRate int
	cooldown   time.Duration
	logger     *log.Logger

	// transition serializes status changes with their publication so
	// subscribers see them in the order they happened
	transition sync.Mutex

	mu        sync.Mutex
	status    Status
	restTimer *time.Timer
	restUntil time.Time
	restEpoch int
	baking    int
	inflight  map[int]context.CancelFunc
	nextGen   int

	statuses notify.Hub[Status]
	cached   notify.Hub[string]
}

// Option configures a Vault.
type Option func(*Vault)

// WithStore sets the backing store; the default is an unbounded memory cache.
func WithStore(c cache.Cache) Option {
	return func(v *Vault) { v.store = c }
}

// WithFallback sets the synthesizer used while resting.
func WithFallback(f Fallback) Option {
	return func(v *Vault) { v.fallback = f }
}

// WithCooldown sets the resting period after a rate-limit failure.
func WithCooldown(d time.Duration) Option {
	return func(v *Vault) {
		if d > 0 {
			v.cooldown = d
		}
	}
}

// WithSampleRate sets the rate of stored audio and of the player.
func WithSampleRate(rate int) Option {
	return func(v *Vault) {
		if rate > 0 {
			v.sampleRate = rate
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(v *Vault) { v.logger = l }
}

// New creates a vault that synthesizes with synth and plays through player.
func New(synth provider.SpeechSynthesizer, player audio.Player, opts ...Option) *Vault {
	v := &Vault{
		synth:      synth,
		player:     player,
		sampleRate: provider.SpeechSampleRate,
		cooldown:   DefaultCooldown,
		logger:     log.Default(),
		inflight:   make(map[int]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.store == nil {
		v.store = cache.NewMemoryCache(0)
	}
	return v
}

// Speak plays text, synthesizing and storing it first when it is not in
// the vault. While resting, unstored phrases go to the fallback engine or
// stay silent. Only unexpected synthesis or playback failures are returned.
func (v *Vault) Speak(ctx context.Context, text, voice string) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{Source: SourceSilent}, ErrEmptyText
	}

	if pcm, ok := v.store.Get(text); ok {
		return v.play(SourceVault, pcm)
	}

	if v.Status() == StatusResting {
		return v.speakFallback(ctx, text, voice)
	}

	pcm, err := v.bake(ctx, text, voice)
	switch {
	case err == nil:
		return v.play(SourceProvider, pcm)
	case errors.Is(err, context.Canceled) && ctx.Err() == nil:
		// StopAll
		return Outcome{Source: SourceSilent}, nil
	case provider.IsRateLimited(err):
		return v.speakFallback(ctx, text, voice)
	default:
		return Outcome{Source: SourceSilent}, err
	}
}

// Bake synthesizes and stores text without playing it. Stored phrases
// return at once.
func (v *Vault) Bake(ctx context.Context, text, voice string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if v.store.Contains(text) {
		return nil
	}
	if v.Status() == StatusResting {
		return fmt.Errorf("speech provider is resting until %s", v.RestingUntil().Format(time.Kitchen))
	}
	_, err := v.bake(ctx, text, voice)
	return err
}

// bake runs one synthesis and drives the status machine around it.
func (v *Vault) bake(ctx context.Context, text, voice string) ([]byte, error) {
	genCtx, cancel := context.WithCancel(ctx)
	id := v.track(cancel)
	defer v.untrack(id)

	v.startBake()
	start := time.Now()
	pcm, err := v.synth.SynthesizeSpeech(genCtx, text, voice)
	if err == nil {
		err = audio.Validate(pcm)
	}
	if err != nil {
		if provider.IsRateLimited(err) {
			v.logger.Warn("speech provider is rate limiting, resting", "cooldown", v.cooldown)
			v.rest()
		} else if !errors.Is(err, context.Canceled) {
			v.logger.Error("speech synthesis failed", "err", err)
		}
		v.finishBake(StatusIdle)
		return nil, err
	}

	v.logger.Debug("baked phrase", "runes", len([]rune(text)), "bytes", len(pcm), "elapsed", time.Since(start))
	if err := v.store.Put(text, pcm); err != nil {
		v.logger.Warn("could not store speech", "err", err)
	} else {
		v.cached.Publish(text)
	}
	v.finishBake(StatusReady)
	return pcm, nil
}

func (v *Vault) speakFallback(ctx context.Context, text, voice string) (Outcome, error) {
	if v.fallback == nil {
		v.logger.Debug("resting without fallback, staying silent")
		return Outcome{Source: SourceSilent}, nil
	}

	genCtx, cancel := context.WithCancel(ctx)
	id := v.track(cancel)
	defer v.untrack(id)

	pcm, err := v.fallback.SynthesizeSpeech(genCtx, text, voice)
	if err == nil {
		pcm, err = audio.Resample(pcm, v.fallback.SampleRate(), v.sampleRate)
	}
	if err != nil {
		v.logger.Warn("fallback speech failed", "err", err)
		return Outcome{Source: SourceSilent}, nil
	}
	// fallback audio is not stored so the real voice is baked later
	return v.play(SourceFallback, pcm)
}

func (v *Vault) play(src Source, pcm []byte) (Outcome, error) {
	out := Outcome{Source: src, Bytes: len(pcm), Duration: audio.Duration(len(pcm), v.sampleRate)}
	if v.player == nil {
		return out, nil
	}
	if err := v.player.Play(pcm); err != nil {
		return out, fmt.Errorf("playback: %w", err)
	}
	return out, nil
}

// StopAll cancels in-flight synthesis and stops playback. It is safe to
// call with nothing playing.
func (v *Vault) StopAll() {
	v.mu.Lock()
	for id, cancel := range v.inflight {
		cancel()
		delete(v.inflight, id)
	}
	v.mu.Unlock()

	if v.player != nil {
		if err := v.player.Stop(); err != nil {
			v.logger.Debug("stop playback", "err", err)
		}
	}
}

// Wait blocks until the current clip finishes.
func (v *Vault) Wait(ctx context.Context) error {
	if v.player == nil {
		return nil
	}
	return v.player.Wait(ctx)
}

// Status returns the bakery status.
func (v *Vault) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// RestingUntil returns when the current cooldown ends, or the zero time
// when not resting.
func (v *Vault) RestingUntil() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.status != StatusResting {
		return time.Time{}
	}
	return v.restUntil
}

// Subscribe registers fn for every status transition, in order.
func (v *Vault) Subscribe(fn func(Status)) (unsubscribe func()) {
	return v.statuses.Subscribe(fn)
}

// SubscribeCached registers fn to receive each newly stored phrase.
func (v *Vault) SubscribeCached(fn func(text string)) (unsubscribe func()) {
	return v.cached.Subscribe(fn)
}

// Has reports whether text is stored.
func (v *Vault) Has(text string) bool {
	return v.store.Contains(strings.TrimSpace(text))
}

// Texts lists stored phrases.
func (v *Vault) Texts() []string {
	return v.store.Keys()
}

// Stats returns storage statistics.
func (v *Vault) Stats() cache.Stats {
	return v.store.Stats()
}

// Clear removes every stored phrase.
func (v *Vault) Clear() error {
	return v.store.Clear()
}

// Close stops playback, cancels timers and closes the store if it can be
// closed.
func (v *Vault) Close() error {
	v.StopAll()

	v.mu.Lock()
	if v.restTimer != nil {
		v.restTimer.Stop()
		v.restTimer = nil
	}
	v.mu.Unlock()

	if c, ok := v.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (v *Vault) track(cancel context.CancelFunc) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextGen
	v.nextGen++
	v.inflight[id] = cancel
	return id
}

func (v *Vault) untrack(id int) {
	v.mu.Lock()
	cancel, ok := v.inflight[id]
	delete(v.inflight, id)
	v.mu.Unlock()
	if ok {
		cancel()
	}
}

func (v *Vault) setStatus(s Status) {
	v.transition.Lock()
	defer v.transition.Unlock()

	v.mu.Lock()
	changed := v.status != s
	v.status = s
	v.mu.Unlock()

	if changed {
		v.statuses.Publish(s)
	}
}

// startBake counts one more synthesis in flight and shows baking.
func (v *Vault) startBake() {
	v.mu.Lock()
	v.baking++
	v.mu.Unlock()
	v.setStatus(StatusBaking)
}

// finishBake ends one synthesis. The last one to finish moves the status
// to s, unless the vault is resting.
func (v *Vault) finishBake(s Status) {
	v.transition.Lock()
	defer v.transition.Unlock()

	v.mu.Lock()
	v.baking--
	if v.baking > 0 || v.status == StatusResting || v.status == s {
		v.mu.Unlock()
		return
	}
	v.status = s
	v.mu.Unlock()

	v.statuses.Publish(s)
}

// rest enters StatusResting and schedules the return to idle. A second
// rate-limit failure while resting restarts the cooldown.
func (v *Vault) rest() {
	v.transition.Lock()
	defer v.transition.Unlock()

	v.mu.Lock()
	if v.restTimer != nil {
		v.restTimer.Stop()
	}
	v.restEpoch++
	epoch := v.restEpoch
	v.restTimer = time.AfterFunc(v.cooldown, func() { v.wake(epoch) })
	v.restUntil = time.Now().Add(v.cooldown)
	changed := v.status != StatusResting
	v.status = StatusResting
	v.mu.Unlock()

	if changed {
		v.statuses.Publish(StatusResting)
	}
}

func (v *Vault) wake(epoch int) {
	v.transition.Lock()
	defer v.transition.Unlock()

	v.mu.Lock()
	if v.restEpoch != epoch || v.status != StatusResting {
		v.mu.Unlock()
		return
	}
	v.status = StatusIdle
	v.restTimer = nil
	v.mu.Unlock()

	v.logger.Info("speech provider cooldown over")
	v.statuses.Publish(StatusIdle)
}
