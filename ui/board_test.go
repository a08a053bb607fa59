package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lingokids/lingo/internal/content"
	"github.com/lingokids/lingo/internal/prefetch"
	"github.com/lingokids/lingo/internal/provider/mock"
	"github.com/lingokids/lingo/internal/vault"
)

type target struct {
	mu     sync.Mutex
	cached map[string]bool
	fail   error
}

func (t *target) Has(key content.Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cached[key.Category]
}

func (t *target) Warm(_ context.Context, key content.Key) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fail != nil {
		return t.fail
	}
	t.cached[key.Category] = true
	return nil
}

func newBoard(t *testing.T, cached ...string) (*Board, *target) {
	t.Helper()
	tg := &target{cached: make(map[string]bool)}
	for _, c := range cached {
		tg.cached[c] = true
	}
	q := prefetch.New(tg, "hi", []string{"landmarks", "food", "festivals"})
	b := NewBoard(context.Background(), Config{ExitWhenDone: true}, q, nil)
	t.Cleanup(b.stop)
	return b, tg
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestBoard_View(t *testing.T) {
	b, _ := newBoard(t, "food")
	view := b.View()

	for _, want := range []string{"Exploring Hindi", "landmarks", "food", "festivals", "1 of 3 ready", "🔒", "✓"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBoard_StatusUpdates(t *testing.T) {
	b, _ := newBoard(t)

	_, cmd := b.Update(statusMsg{Language: "hi", Category: "food", Status: prefetch.StatusLoading})
	if cmd == nil {
		t.Fatal("expected the board to keep listening")
	}
	if b.rows[1].status != prefetch.StatusLoading {
		t.Errorf("food = %v, want loading", b.rows[1].status)
	}

	b.Update(statusMsg{Language: "hi", Category: "food", Status: prefetch.StatusPending, Err: errors.New("rate limited")})
	if !strings.Contains(b.View(), "rate limited") {
		t.Error("failure reason not shown")
	}

	b.Update(statusMsg{Language: "hi", Category: "food", Status: prefetch.StatusReady})
	if b.rows[1].err != "" {
		t.Errorf("error not cleared: %q", b.rows[1].err)
	}
}

func TestBoard_QuitsWhenPassCompletes(t *testing.T) {
	tests := []struct {
		name     string
		cached   []string
		wantQuit bool
	}{
		{name: "all ready", cached: []string{"landmarks", "food", "festivals"}, wantQuit: true},
		{name: "some pending", cached: []string{"food"}, wantQuit: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newBoard(t, tt.cached...)
			_, cmd := b.Update(passDoneMsg{})
			if got := isQuit(cmd); got != tt.wantQuit {
				t.Errorf("quit = %v, want %v", got, tt.wantQuit)
			}
		})
	}
}

func TestBoard_PassErrorShown(t *testing.T) {
	b, _ := newBoard(t)
	b.Update(passDoneMsg{err: context.Canceled})
	if b.Err() != nil {
		t.Errorf("cancellation reported as error: %v", b.Err())
	}

	b.Update(passDoneMsg{err: errors.New("boom")})
	if !strings.Contains(b.View(), "Error: boom") {
		t.Error("pass error not shown")
	}
}

func TestBoard_Navigation(t *testing.T) {
	b, _ := newBoard(t)
	keys := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, 0},
		{tea.KeyMsg{Type: tea.KeyDown}, 1},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, 2},
		{tea.KeyMsg{Type: tea.KeyDown}, 2},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, 1},
	}
	for _, k := range keys {
		b.Update(k.key)
		if b.cursor != k.want {
			t.Fatalf("after %q cursor = %d, want %d", k.key.String(), b.cursor, k.want)
		}
	}
}

func TestBoard_EnterUnlocksNow(t *testing.T) {
	b, tg := newBoard(t)
	b.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on a pending category returned no command")
	}
	msg := cmd()
	done, ok := msg.(loadNowDoneMsg)
	if !ok || done.category != "food" || done.err != nil {
		t.Fatalf("msg = %#v", msg)
	}
	if !tg.Has(content.Key{Language: "hi", Category: "food"}) {
		t.Error("food was not loaded")
	}

	// the queue's updates arrive through the bridge
	var got []prefetch.Status
	for range 2 {
		m, ok := listen(b.msgs)().(statusMsg)
		if !ok {
			t.Fatal("expected a status message")
		}
		got = append(got, m.Status)
		b.Update(m)
	}
	if got[0] != prefetch.StatusLoading || got[1] != prefetch.StatusReady {
		t.Errorf("bridged statuses = %v", got)
	}

	b.Update(done)
	if !strings.Contains(b.View(), "food is ready!") {
		t.Error("notice not shown")
	}

	// ready rows ignore enter
	if _, cmd := b.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter on a ready category should do nothing")
	}
}

func TestBoard_LoadNowFailure(t *testing.T) {
	b, tg := newBoard(t)
	tg.fail = errors.New("provider down")

	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	b.Update(cmd())
	if !strings.Contains(b.View(), "Could not load landmarks") {
		t.Errorf("failure notice missing:\n%s", b.View())
	}
}

func TestBoard_Quit(t *testing.T) {
	b, _ := newBoard(t)
	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !isQuit(cmd) {
		t.Fatal("q did not quit")
	}
	if b.ctx.Err() == nil {
		t.Error("quitting did not cancel the pass")
	}
	// sending after stop must not block
	b.send(statusMsg{})
	for range cap(b.msgs) + 1 {
		b.send(statusMsg{})
	}
}

func TestBoard_BakeryBadge(t *testing.T) {
	tg := &target{cached: make(map[string]bool)}
	q := prefetch.New(tg, "hi", []string{"food"})
	m := mock.New()
	v := vault.New(m, nil)
	defer v.Close()

	b := NewBoard(context.Background(), Config{}, q, v)
	defer b.stop()

	if _, err := v.Speak(context.Background(), "नमस्ते", ""); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	var last vault.Status
	for range 2 {
		msg, ok := listen(b.msgs)().(bakeryMsg)
		if !ok {
			t.Fatal("expected a bakery message")
		}
		b.Update(msg)
		last = vault.Status(msg)
	}
	if last != vault.StatusReady || !strings.Contains(b.View(), "ready") {
		t.Errorf("bakery = %v, view:\n%s", last, b.View())
	}
}

func TestBakeryBadge(t *testing.T) {
	tests := []struct {
		status vault.Status
		want   string
	}{
		{vault.StatusIdle, ""},
		{vault.StatusBaking, "baking"},
		{vault.StatusResting, "resting"},
		{vault.StatusReady, "ready"},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			got := BakeryBadge(tt.status)
			if tt.want == "" {
				if got != "" {
					t.Errorf("badge = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("badge = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestClip(t *testing.T) {
	b, _ := newBoard(t)
	long := strings.Repeat("x", 50)

	if got := b.clip(long, 0); got != long {
		t.Error("clip without a width should not truncate")
	}
	b.width = 20
	if got := b.clip(long, 5); !strings.HasSuffix(got, ellipsis) || len([]rune(got)) > 15 {
		t.Errorf("clip = %q", got)
	}
	if got := b.clip(long, 19); got != "" {
		t.Errorf("clip with no room = %q", got)
	}
}
