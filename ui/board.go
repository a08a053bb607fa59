// Package ui provides the terminal status board shown while categories
// are prefetched.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/truncate"

	"github.com/lingokids/lingo/internal/content"
	"github.com/lingokids/lingo/internal/prefetch"
	"github.com/lingokids/lingo/internal/vault"
)

const ellipsis = "…"

type row struct {
	category string
	status   prefetch.Status
	err      string
}

// Board is the bubbletea model of the prefetch status board.
type Board struct {
	cfg    Config
	queue  *prefetch.Queue
	ctx    context.Context
	cancel context.CancelFunc

	msgs     chan tea.Msg
	quit     chan struct{}
	stopOnce sync.Once
	unsubs   []func()

	spinner spinner.Model
	rows    []row
	cursor  int
	bakery  vault.Status
	notice  string
	done    bool
	err     error
	width   int
}

// NewBoard creates a board for q. v may be nil, in which case no bakery
// badge is shown.
func NewBoard(ctx context.Context, cfg Config, q *prefetch.Queue, v *vault.Vault) *Board {
	ctx, cancel := context.WithCancel(ctx)
	b := &Board{
		cfg:     cfg,
		queue:   q,
		ctx:     ctx,
		cancel:  cancel,
		msgs:    make(chan tea.Msg, 16),
		quit:    make(chan struct{}),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(cursorStyle)),
		width:   int(cfg.Width),
	}
	for _, cs := range q.Snapshot() {
		b.rows = append(b.rows, row{category: cs.Category, status: cs.Status})
	}

	b.unsubs = append(b.unsubs, q.Subscribe(func(u prefetch.Update) { b.send(statusMsg(u)) }))
	if v != nil {
		b.bakery = v.Status()
		b.unsubs = append(b.unsubs, v.Subscribe(func(s vault.Status) { b.send(bakeryMsg(s)) }))
	}
	return b
}

// NewProgram returns a program running b.
func NewProgram(cfg Config, b *Board) *tea.Program {
	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	return tea.NewProgram(b, opts...)
}

// Err returns the error the background pass ended with.
func (b *Board) Err() error { return b.err }

// send forwards msg to the program unless it has stopped.
func (b *Board) send(msg tea.Msg) {
	select {
	case b.msgs <- msg:
	case <-b.quit:
	}
}

// stop cancels the pass and detaches from the queue and the vault.
func (b *Board) stop() {
	b.stopOnce.Do(func() {
		b.cancel()
		for _, unsub := range b.unsubs {
			unsub()
		}
		close(b.quit)
	})
}

func (b *Board) Init() tea.Cmd {
	return tea.Batch(b.spinner.Tick, listen(b.msgs), b.runPass())
}

func (b *Board) runPass() tea.Cmd {
	return func() tea.Msg {
		return passDoneMsg{err: b.queue.Run(b.ctx)}
	}
}

func (b *Board) loadNow(cat string) tea.Cmd {
	return func() tea.Msg {
		return loadNowDoneMsg{category: cat, err: b.queue.LoadNow(b.ctx, cat)}
	}
}

func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		if b.cfg.Width > 0 && b.width > int(b.cfg.Width) {
			b.width = int(b.cfg.Width)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			b.stop()
			return b, tea.Quit
		case "up", "k":
			if b.cursor > 0 {
				b.cursor--
			}
		case "down", "j":
			if b.cursor < len(b.rows)-1 {
				b.cursor++
			}
		case "enter", " ":
			if len(b.rows) == 0 {
				break
			}
			r := b.rows[b.cursor]
			if r.status == prefetch.StatusPending {
				b.notice = fmt.Sprintf("Unlocking %s...", r.category)
				return b, b.loadNow(r.category)
			}
		}

	case statusMsg:
		for i := range b.rows {
			if b.rows[i].category != msg.Category {
				continue
			}
			b.rows[i].status = msg.Status
			b.rows[i].err = ""
			if msg.Err != nil {
				b.rows[i].err = msg.Err.Error()
			}
		}
		if b.done && b.cfg.ExitWhenDone && b.allReady() {
			b.stop()
			return b, tea.Quit
		}
		return b, listen(b.msgs)

	case bakeryMsg:
		b.bakery = vault.Status(msg)
		return b, listen(b.msgs)

	case passDoneMsg:
		b.done = true
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			b.err = msg.err
		}
		log.Debug("prefetch pass finished", "lang", b.queue.Language(), "err", msg.err)
		if b.cfg.ExitWhenDone && b.allReady() {
			b.stop()
			return b, tea.Quit
		}

	case loadNowDoneMsg:
		switch {
		case msg.err == nil:
			b.notice = fmt.Sprintf("%s is ready!", msg.category)
		case errors.Is(msg.err, prefetch.ErrBusy):
			b.notice = fmt.Sprintf("%s is already loading", msg.category)
		default:
			b.notice = fmt.Sprintf("Could not load %s: %v", msg.category, msg.err)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd
	}

	return b, nil
}

func (b *Board) allReady() bool {
	for _, r := range b.rows {
		if r.status != prefetch.StatusReady {
			return false
		}
	}
	return true
}

func (b *Board) View() string {
	var s strings.Builder

	title := titleStyle.Render("Exploring " + languageName(b.queue.Language()))
	if badge := BakeryBadge(b.bakery); badge != "" {
		title += "  " + badge
	}
	s.WriteString(title + "\n\n")

	for i, r := range b.rows {
		cursor := "  "
		if i == b.cursor {
			cursor = cursorStyle.Render("› ")
		}
		line := fmt.Sprintf("%s%s %s", cursor, StatusIcon(r.status, b.spinner.View()), r.category)
		if r.err != "" {
			line += " " + errorStyle.Render(b.clip("("+r.err+")", len(r.category)+6))
		}
		s.WriteString(line + "\n")
	}

	ready := 0
	for _, r := range b.rows {
		if r.status == prefetch.StatusReady {
			ready++
		}
	}
	s.WriteString("\n" + dimStyle.Render(fmt.Sprintf("%d of %d ready", ready, len(b.rows))))
	if b.notice != "" {
		s.WriteString("  " + b.notice)
	}
	if b.err != nil {
		s.WriteString("\n" + errorStyle.Render(b.clip("Error: "+b.err.Error(), 0)))
	}
	s.WriteString("\n" + dimStyle.Render("↑/↓ choose • enter unlock now • q quit") + "\n")
	return s.String()
}

// clip truncates text so it fits beside used columns.
func (b *Board) clip(text string, used int) string {
	if b.width <= 0 {
		return text
	}
	room := b.width - used
	if room < len(ellipsis)+1 {
		return ""
	}
	return truncate.StringWithTail(text, uint(room), ellipsis) //nolint:gosec
}

func languageName(code string) string {
	if lang, err := content.LookupLanguage(code); err == nil {
		return lang.Name
	}
	return code
}
