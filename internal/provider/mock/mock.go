// Package mock provides an in-memory Provider for tests and offline runs.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lingokids/lingo/internal/provider"
)

// Operation names used for call counting and failure injection.
const (
	OpStructured = "structured"
	OpImage      = "image"
	OpSpeech     = "speech"
	OpEvaluate   = "evaluate"
)

// ErrNoResponse is returned by GenerateStructured for a schema with no
// registered response.
var ErrNoResponse = errors.New("mock: no response registered for schema")

// Provider is a scriptable provider.Provider. The zero value is not
// usable; call New.
type Provider struct {
	mu sync.Mutex

	delay     time.Duration
	responses map[string]json.RawMessage
	failures  map[string][]error

	calls       map[string]int
	spoken      map[string]int
	lastPrompts []string

	// hook, when set, runs before every call with the operation name;
	// tests use it to block or observe.
	hook func(ctx context.Context, op string)
}

// New creates a mock provider with no registered responses.
func New() *Provider {
	return &Provider{
		responses: make(map[string]json.RawMessage),
		failures:  make(map[string][]error),
		calls:     make(map[string]int),
		spoken:    make(map[string]int),
	}
}

// SetDelay simulates provider latency. The delay honors cancellation.
func (p *Provider) SetDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
}

// SetResponse registers the JSON returned for schemaName.
func (p *Provider) SetResponse(schemaName string, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[schemaName] = json.RawMessage(body)
}

// FailNext queues err for the next call of op. Queued errors are
// consumed in order, one per call.
func (p *Provider) FailNext(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[op] = append(p.failures[op], err)
}

// SetHook installs fn to run at the start of every call.
func (p *Provider) SetHook(fn func(ctx context.Context, op string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hook = fn
}

// Calls returns how many times op was invoked.
func (p *Provider) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

// SpeechCalls returns how many times text was synthesized.
func (p *Provider) SpeechCalls(text string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spoken[text]
}

// Prompts returns the structured prompts seen so far.
func (p *Provider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lastPrompts...)
}

// GenerateStructured implements provider.Provider.
func (p *Provider) GenerateStructured(ctx context.Context, prompt string, schema provider.Schema) (json.RawMessage, error) {
	if err := p.enter(ctx, OpStructured); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastPrompts = append(p.lastPrompts, prompt)
	body, ok := p.responses[schema.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoResponse, schema.Name)
	}
	return body, nil
}

// GenerateImage implements provider.Provider with a fixed PNG signature.
func (p *Provider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if err := p.enter(ctx, OpImage); err != nil {
		return nil, err
	}
	return append([]byte("\x89PNG\r\n\x1a\n"), prompt...), nil
}

// SynthesizeSpeech implements provider.Provider. It returns silence whose
// length grows with the text: 50ms per rune.
func (p *Provider) SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	if err := p.enter(ctx, OpSpeech); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.spoken[text]++
	p.mu.Unlock()

	samples := len([]rune(text)) * provider.SpeechSampleRate / 20
	return make([]byte, samples*2), nil
}

// EvaluateSpeech implements provider.Provider, treating the recording
// bytes as the recognized text.
func (p *Provider) EvaluateSpeech(ctx context.Context, audio []byte, reference string) (provider.Evaluation, error) {
	if err := p.enter(ctx, OpEvaluate); err != nil {
		return provider.Evaluation{}, err
	}
	return provider.Evaluate(string(audio), reference), nil
}

func (p *Provider) enter(ctx context.Context, op string) error {
	p.mu.Lock()
	p.calls[op]++
	hook := p.hook
	delay := p.delay
	var err error
	if queued := p.failures[op]; len(queued) > 0 {
		err = queued[0]
		p.failures[op] = queued[1:]
	}
	p.mu.Unlock()

	if hook != nil {
		hook(ctx, op)
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

var _ provider.Provider = (*Provider)(nil)
