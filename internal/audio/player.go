package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrClosed is returned by a player after Close.
var ErrClosed = errors.New("player is closed")

// Player plays one clip at a time. Play replaces whatever is playing and
// returns at once; Wait blocks until the clip ends or is stopped.
type Player interface {
	Play(pcm []byte) error
	Stop() error
	Wait(ctx context.Context) error
	IsPlaying() bool
	Close() error
}

// State is the playback state of a player.
type State int32

const (
	StateStopped State = iota
	StatePlaying
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// PlayerConfig configures the device player.
type PlayerConfig struct {
	SampleRate int
	BufferSize time.Duration
	Volume     float64
}

// DefaultPlayerConfig matches the provider's speech output.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 24000,
		BufferSize: 100 * time.Millisecond,
		Volume:     1.0,
	}
}

// ValidateSampleRate reports whether rate is one the player supports.
func ValidateSampleRate(rate int) error {
	switch rate {
	case 22050, 24000, 44100, 48000:
		return nil
	default:
		return fmt.Errorf("sample rate must be 22050, 24000, 44100 or 48000 Hz, got %d", rate)
	}
}

func validateConfig(cfg PlayerConfig) error {
	if err := ValidateSampleRate(cfg.SampleRate); err != nil {
		return err
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", cfg.Volume)
	}
	if cfg.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}
	return nil
}

// OtoPlayer plays mono 16-bit little-endian PCM on the default device.
type OtoPlayer struct {
	ctx *oto.Context
	cfg PlayerConfig

	state atomic.Int32

	mu     sync.Mutex
	player *oto.Player
	data   []byte // referenced until playback ends
	done   chan struct{}
}

// NewPlayer opens the audio device. Only one oto context may exist per
// process, so create a single OtoPlayer and share it.
func NewPlayer(cfg PlayerConfig) (*OtoPlayer, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	octx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	p := &OtoPlayer{ctx: octx, cfg: cfg}
	p.state.Store(int32(StateStopped))
	return p, nil
}

// SampleRate returns the device rate.
func (p *OtoPlayer) SampleRate() int { return p.cfg.SampleRate }

// Play starts pcm, stopping any current clip.
func (p *OtoPlayer) Play(pcm []byte) error {
	if len(pcm) == 0 {
		return errors.New("audio data is empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if State(p.state.Load()) == StateClosed {
		return ErrClosed
	}
	p.stopLocked()

	// own a copy so the caller may reuse its buffer
	p.data = append([]byte(nil), pcm...)
	player := p.ctx.NewPlayer(bytes.NewReader(p.data))
	player.SetVolume(p.cfg.Volume)
	player.Play()

	done := make(chan struct{})
	p.player = player
	p.done = done
	p.state.Store(int32(StatePlaying))

	go p.watch(player, done)
	return nil
}

// watch marks the clip finished once oto has drained it.
func (p *OtoPlayer) watch(player *oto.Player, done chan struct{}) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if player.IsPlaying() {
				continue
			}
			p.mu.Lock()
			if p.player == player {
				p.stopLocked()
			}
			p.mu.Unlock()
			return
		}
	}
}

// Stop halts playback. Stopping an idle player is a no-op.
func (p *OtoPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

// must be called with mu held
func (p *OtoPlayer) stopLocked() {
	if p.player != nil {
		p.player.Pause()
		_ = p.player.Close()
		p.player = nil
	}
	if p.done != nil {
		close(p.done)
		p.done = nil
	}
	p.data = nil
	if State(p.state.Load()) == StatePlaying {
		p.state.Store(int32(StateStopped))
	}
}

// Wait blocks until the current clip ends, is stopped, or ctx is done.
func (p *OtoPlayer) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsPlaying reports whether a clip is playing.
func (p *OtoPlayer) IsPlaying() bool {
	return State(p.state.Load()) == StatePlaying
}

// State returns the current state.
func (p *OtoPlayer) State() State {
	return State(p.state.Load())
}

// SetVolume changes the volume of the current and future clips.
func (p *OtoPlayer) SetVolume(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", v)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Volume = v
	if p.player != nil {
		p.player.SetVolume(v)
	}
	return nil
}

// Close stops playback. oto contexts cannot be released, so the device
// stays open until the process exits.
func (p *OtoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.state.Store(int32(StateClosed))
	return nil
}

var _ Player = (*OtoPlayer)(nil)
