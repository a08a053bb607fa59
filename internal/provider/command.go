package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrCommandUnavailable indicates the local speech command is not installed.
var ErrCommandUnavailable = errors.New("local speech command not found in PATH")

// CommandSpeech synthesizes speech with a local program that reads text on
// stdin and writes raw 16-bit mono PCM to stdout, such as
// `piper --model voice.onnx --output-raw`. It is the low-fidelity fallback
// used while the remote provider is rate limiting.
type CommandSpeech struct {
	name       string
	args       []string
	sampleRate int
	timeout    time.Duration
	logger     *log.Logger

	// one process at a time; these engines are CPU bound
	mu sync.Mutex
}

// CommandConfig configures CommandSpeech.
type CommandConfig struct {
	// Command is the full command line, split on whitespace.
	Command    string
	SampleRate int // PCM rate the command emits, defaults to 22050
	Timeout    time.Duration
}

// NewCommandSpeech validates the command line and checks the binary exists.
func NewCommandSpeech(cfg CommandConfig, logger *log.Logger) (*CommandSpeech, error) {
	fields := strings.Fields(cfg.Command)
	if len(fields) == 0 {
		return nil, errors.New("empty speech command")
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCommandUnavailable, fields[0])
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 22050
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CommandSpeech{
		name:       fields[0],
		args:       fields[1:],
		sampleRate: cfg.SampleRate,
		timeout:    cfg.Timeout,
		logger:     logger,
	}, nil
}

// SampleRate returns the PCM rate of the command's output.
func (c *CommandSpeech) SampleRate() int { return c.sampleRate }

// SynthesizeSpeech runs the command with text on stdin. The voice is
// fixed by the command line and ignored here.
func (c *CommandSpeech) SynthesizeSpeech(ctx context.Context, text, _ string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.name, c.args...)
	// stdin is attached before Start so the process never sees a closed pipe
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("speech command: %w", ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("speech command failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("speech command failed: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("speech command: %w", ErrEmptyResponse)
	}

	c.logger.Debug("local speech synthesized", "bytes", stdout.Len(), "elapsed", time.Since(start))
	return stdout.Bytes(), nil
}
