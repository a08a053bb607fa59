package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Width caps the board width; 0 follows the terminal.
	Width uint

	ExitWhenDone bool `env:"LINGO_EXIT_WHEN_DONE" envDefault:"true"`
	AltScreen    bool `env:"LINGO_ALT_SCREEN"`
}
