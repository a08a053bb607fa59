// Package provider defines the generative-AI backend the rest of lingo
// depends on and ships an OpenAI-compatible implementation of it.
//
// Every educational item, illustration and spoken phrase comes from a
// Provider; callers never talk to the network directly.
package provider

import (
	"context"
	"encoding/json"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Provider is the injected generative backend.
type Provider interface {
	// GenerateStructured asks for a JSON document matching schema.
	GenerateStructured(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error)

	// GenerateImage returns encoded image bytes (PNG) for prompt.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)

	// SynthesizeSpeech returns 16-bit little-endian mono PCM at SpeechSampleRate.
	SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error)

	// EvaluateSpeech scores a learner's recording against reference text.
	EvaluateSpeech(ctx context.Context, audio []byte, reference string) (Evaluation, error)
}

// SpeechSynthesizer is the subset of Provider the audio vault needs.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error)
}

// SpeechSampleRate is the PCM rate returned by SynthesizeSpeech.
const SpeechSampleRate = 24000

// Schema names and describes the JSON shape requested from the model.
type Schema struct {
	Name        string
	Description string
	Definition  jsonschema.Definition
}

// Evaluation is the result of a pronunciation check.
type Evaluation struct {
	Score   int    `json:"score"` // 0-100
	Comment string `json:"comment"`
	Heard   string `json:"heard"`
}

// Voices lists the speech voices profiles can pick from.
var Voices = []string{"alloy", "echo", "fable", "nova", "onyx", "shimmer"}

// DefaultVoice is used when a profile has no preference.
const DefaultVoice = "nova"
