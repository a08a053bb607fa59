package audio

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMockPlayer_PlayAndFinish(t *testing.T) {
	var played []byte
	mp := NewMockPlayer(24000, MockCallbacks{OnPlay: func(pcm []byte) { played = pcm }})

	// 10ms of audio
	clip := Silence(10*time.Millisecond, 24000)
	if err := mp.Play(clip); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !mp.IsPlaying() {
		t.Error("not playing after Play")
	}
	if len(played) != len(clip) {
		t.Error("OnPlay not called with the clip")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := mp.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if mp.IsPlaying() {
		t.Error("still playing after clip ended")
	}
}

func TestMockPlayer_StopInterrupts(t *testing.T) {
	stops := 0
	mp := NewMockPlayer(24000, MockCallbacks{OnStop: func() { stops++ }})

	_ = mp.Play(Silence(time.Hour, 24000))
	done := make(chan error, 1)
	go func() { done <- mp.Wait(context.Background()) }()

	if err := mp.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Stop")
	}
	if stops != 1 {
		t.Errorf("OnStop calls = %d, want 1", stops)
	}
}

func TestMockPlayer_StopWhenIdle(t *testing.T) {
	mp := NewMockPlayer(0, MockCallbacks{})
	if err := mp.Stop(); err != nil {
		t.Errorf("Stop on idle player: %v", err)
	}
	if err := mp.Wait(context.Background()); err != nil {
		t.Errorf("Wait on idle player: %v", err)
	}
}

func TestMockPlayer_PlayReplacesCurrent(t *testing.T) {
	mp := NewMockPlayer(24000, MockCallbacks{})
	_ = mp.Play([]byte{1, 0})
	_ = mp.Play([]byte{2, 0})

	if got := mp.LastPlayed(); got[0] != 2 {
		t.Errorf("LastPlayed = %v", got)
	}
	if got := len(mp.Played()); got != 2 {
		t.Errorf("Played = %d clips, want 2", got)
	}
	if m := mp.Metrics(); m.PlayCount != 2 {
		t.Errorf("PlayCount = %d", m.PlayCount)
	}
}

func TestMockPlayer_Closed(t *testing.T) {
	mp := NewMockPlayer(24000, MockCallbacks{})
	_ = mp.Close()
	if err := mp.Play([]byte{0, 0}); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PlayerConfig
		wantErr bool
	}{
		{"default", DefaultPlayerConfig(), false},
		{"cd rate", PlayerConfig{SampleRate: 44100, Volume: 1}, false},
		{"odd rate", PlayerConfig{SampleRate: 16000, Volume: 1}, true},
		{"loud", PlayerConfig{SampleRate: 24000, Volume: 1.5}, true},
		{"negative buffer", PlayerConfig{SampleRate: 24000, BufferSize: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateConfig(tt.cfg); (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if StatePlaying.String() != "playing" || State(42).String() != "unknown" {
		t.Error("unexpected state names")
	}
}
