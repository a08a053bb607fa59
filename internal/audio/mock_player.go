package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MockPlayer simulates playback without a device. A clip "plays" for its
// PCM duration scaled by the speed factor.
type MockPlayer struct {
	sampleRate int
	speed      float64 // >1 finishes clips faster

	callbacks MockCallbacks

	mu     sync.Mutex
	state  State
	last   []byte
	done   chan struct{}
	timer  *time.Timer
	played [][]byte

	playCount atomic.Int64
	stopCount atomic.Int64
}

// MockCallbacks provides hooks for testing.
type MockCallbacks struct {
	OnPlay  func(pcm []byte)
	OnStop  func()
	OnClose func()
}

// NewMockPlayer creates a mock player for PCM at sampleRate.
func NewMockPlayer(sampleRate int, callbacks MockCallbacks) *MockPlayer {
	if sampleRate <= 0 {
		sampleRate = DefaultPlayerConfig().SampleRate
	}
	return &MockPlayer{sampleRate: sampleRate, speed: 1, callbacks: callbacks}
}

// SetSpeed scales simulated playback time; 0 makes clips end at once.
func (mp *MockPlayer) SetSpeed(factor float64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.speed = factor
}

// Play implements Player.
func (mp *MockPlayer) Play(pcm []byte) error {
	mp.mu.Lock()
	if mp.state == StateClosed {
		mp.mu.Unlock()
		return ErrClosed
	}
	mp.stopLocked()

	mp.last = append([]byte(nil), pcm...)
	mp.played = append(mp.played, mp.last)
	mp.state = StatePlaying
	done := make(chan struct{})
	mp.done = done

	d := time.Duration(0)
	if mp.speed > 0 {
		d = time.Duration(float64(Duration(len(pcm), mp.sampleRate)) / mp.speed)
	}
	mp.timer = time.AfterFunc(d, func() {
		mp.mu.Lock()
		defer mp.mu.Unlock()
		if mp.done == done {
			mp.finishLocked()
		}
	})
	mp.mu.Unlock()

	mp.playCount.Add(1)
	if mp.callbacks.OnPlay != nil {
		mp.callbacks.OnPlay(pcm)
	}
	return nil
}

// Stop implements Player.
func (mp *MockPlayer) Stop() error {
	mp.mu.Lock()
	wasPlaying := mp.state == StatePlaying
	mp.stopLocked()
	mp.mu.Unlock()

	mp.stopCount.Add(1)
	if wasPlaying && mp.callbacks.OnStop != nil {
		mp.callbacks.OnStop()
	}
	return nil
}

func (mp *MockPlayer) stopLocked() {
	if mp.timer != nil {
		mp.timer.Stop()
		mp.timer = nil
	}
	mp.finishLocked()
}

func (mp *MockPlayer) finishLocked() {
	if mp.done != nil {
		close(mp.done)
		mp.done = nil
	}
	if mp.state == StatePlaying {
		mp.state = StateStopped
	}
}

// Wait implements Player.
func (mp *MockPlayer) Wait(ctx context.Context) error {
	mp.mu.Lock()
	done := mp.done
	mp.mu.Unlock()
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

// IsPlaying implements Player.
func (mp *MockPlayer) IsPlaying() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.state == StatePlaying
}

// Close implements Player.
func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	mp.stopLocked()
	mp.state = StateClosed
	mp.mu.Unlock()

	if mp.callbacks.OnClose != nil {
		mp.callbacks.OnClose()
	}
	return nil
}

// MockPlayerMetrics counts calls made on a MockPlayer.
type MockPlayerMetrics struct {
	PlayCount int64
	StopCount int64
}

// Metrics returns call counts.
func (mp *MockPlayer) Metrics() MockPlayerMetrics {
	return MockPlayerMetrics{
		PlayCount: mp.playCount.Load(),
		StopCount: mp.stopCount.Load(),
	}
}

// LastPlayed returns a copy of the most recent clip.
func (mp *MockPlayer) LastPlayed() []byte {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]byte(nil), mp.last...)
}

// Played returns every clip in play order.
func (mp *MockPlayer) Played() [][]byte {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([][]byte(nil), mp.played...)
}

var _ Player = (*MockPlayer)(nil)
