package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lingokids/lingo/internal/prefetch"
	"github.com/lingokids/lingo/internal/vault"
)

type (
	// statusMsg carries a prefetch status change into the program.
	statusMsg prefetch.Update

	// bakeryMsg carries a vault status change into the program.
	bakeryMsg vault.Status

	// passDoneMsg is sent when the background pass returns.
	passDoneMsg struct{ err error }

	// loadNowDoneMsg is sent when a user-requested load returns.
	loadNowDoneMsg struct {
		category string
		err      error
	}
)

// listen waits for the next bridged message.
func listen(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
