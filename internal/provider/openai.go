package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const systemPrompt = "You create playful, accurate, age-appropriate language-learning " +
	"content for children aged 4 to 10. Answer only with JSON that matches the schema."

// Config configures the OpenAI-compatible client.
type Config struct {
	APIKey  string
	BaseURL string // empty uses the public endpoint

	ChatModel          string
	ImageModel         string
	SpeechModel        string
	TranscriptionModel string

	// RequestsPerMinute throttles all calls made through one client.
	RequestsPerMinute int

	Timeouts Timeouts
}

// Timeouts bounds each kind of call. Zero disables the bound.
type Timeouts struct {
	Structured time.Duration
	Image      time.Duration
	Speech     time.Duration
	Evaluate   time.Duration
}

// DefaultConfig returns the defaults used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		ChatModel:          openai.GPT4oMini,
		ImageModel:         openai.CreateImageModelDallE3,
		SpeechModel:        string(openai.TTSModel1),
		TranscriptionModel: openai.Whisper1,
		RequestsPerMinute:  50,
		Timeouts: Timeouts{
			Structured: 45 * time.Second,
			Image:      90 * time.Second,
			Speech:     30 * time.Second,
			Evaluate:   30 * time.Second,
		},
	}
}

// OpenAI implements Provider on top of go-openai.
type OpenAI struct {
	client  *openai.Client
	cfg     Config
	limiter *rate.Limiter
	logger  *log.Logger
}

// Option customizes an OpenAI client.
type Option func(*OpenAI)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *OpenAI) { o.logger = l }
}

// NewOpenAI creates a client. The API key is required.
func NewOpenAI(cfg Config, opts ...Option) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	def := DefaultConfig()
	if cfg.ChatModel == "" {
		cfg.ChatModel = def.ChatModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = def.ImageModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = def.SpeechModel
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = def.TranscriptionModel
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	o := &OpenAI{
		client:  openai.NewClientWithConfig(clientCfg),
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// GenerateStructured implements Provider.
func (o *OpenAI) GenerateStructured(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	const op = "generate structured"
	ctx, cancel := o.begin(ctx, o.cfg.Timeouts.Structured)
	defer cancel()
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, classify(op, err)
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        schema.Name,
				Description: schema.Description,
				Schema:      &schema.Definition,
			},
		},
		Temperature: 0.8,
	})
	if err != nil {
		return nil, classify(op, err)
	}
	o.logger.Debug("structured generation", "schema", schema.Name, "elapsed", time.Since(start))

	if len(resp.Choices) == 0 {
		return nil, &MalformedResponseError{Op: op, Cause: ErrEmptyResponse}
	}
	content := []byte(resp.Choices[0].Message.Content)
	if !json.Valid(content) {
		return nil, &MalformedResponseError{Op: op, Cause: fmt.Errorf("invalid JSON (%d bytes)", len(content))}
	}
	return json.RawMessage(content), nil
}

// GenerateImage implements Provider.
func (o *OpenAI) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	const op = "generate image"
	ctx, cancel := o.begin(ctx, o.cfg.Timeouts.Image)
	defer cancel()
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, classify(op, err)
	}

	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          o.cfg.ImageModel,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, classify(op, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, &MalformedResponseError{Op: op, Cause: ErrEmptyResponse}
	}

	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, &MalformedResponseError{Op: op, Cause: err}
	}
	return img, nil
}

// SynthesizeSpeech implements Provider.
func (o *OpenAI) SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	const op = "synthesize speech"
	if voice == "" {
		voice = DefaultVoice
	}
	ctx, cancel := o.begin(ctx, o.cfg.Timeouts.Speech)
	defer cancel()
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, classify(op, err)
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.cfg.SpeechModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, classify(op, err)
	}
	defer resp.Close()

	pcm, err := io.ReadAll(resp)
	if err != nil {
		return nil, classify(op, err)
	}
	if len(pcm) == 0 {
		return nil, &MalformedResponseError{Op: op, Cause: ErrEmptyResponse}
	}
	return pcm, nil
}

// EvaluateSpeech implements Provider. audio may be a WAV file or raw PCM
// at SpeechSampleRate; the recording is transcribed and compared with
// reference.
func (o *OpenAI) EvaluateSpeech(ctx context.Context, audio []byte, reference string) (Evaluation, error) {
	const op = "evaluate speech"
	if len(audio) == 0 {
		return Evaluation{}, fmt.Errorf("%s: empty recording", op)
	}
	ctx, cancel := o.begin(ctx, o.cfg.Timeouts.Evaluate)
	defer cancel()
	if err := o.limiter.Wait(ctx); err != nil {
		return Evaluation{}, classify(op, err)
	}

	if !IsWAV(audio) {
		audio = EncodeWAV(audio, SpeechSampleRate)
	}
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.TranscriptionModel,
		FilePath: "recording.wav",
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return Evaluation{}, classify(op, err)
	}

	eval := Evaluate(resp.Text, reference)
	o.logger.Debug("speech evaluated", "score", eval.Score)
	return eval, nil
}

func (o *OpenAI) begin(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

var _ Provider = (*OpenAI)(nil)
