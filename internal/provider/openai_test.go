package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL + "/v1"
	cfg.RequestsPerMinute = 6000
	c, err := NewOpenAI(cfg)
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	return c
}

var testSchema = Schema{
	Name: "letters",
	Definition: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"items": {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
		},
	},
}

func chatResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	if _, err := NewOpenAI(Config{}); err != ErrNoAPIKey {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestGenerateStructured(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantErr       bool
		wantRateLimit bool
		wantMalformed bool
	}{
		{name: "valid json", status: 200, body: chatResponse(`{"items":["अ","आ"]}`)},
		{name: "not json", status: 200, body: chatResponse(`here are some letters`), wantErr: true, wantMalformed: true},
		{name: "no choices", status: 200, body: `{"id":"x","choices":[]}`, wantErr: true, wantMalformed: true},
		{
			name:          "rate limited",
			status:        http.StatusTooManyRequests,
			body:          `{"error":{"message":"slow down","type":"requests","code":"rate_limit_exceeded"}}`,
			wantErr:       true,
			wantRateLimit: true,
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			body:    `{"error":{"message":"upstream","type":"server_error"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			raw, err := c.GenerateStructured(context.Background(), "alphabet for hi", testSchema)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := IsRateLimited(err); got != tt.wantRateLimit {
				t.Errorf("IsRateLimited = %v, want %v (err %v)", got, tt.wantRateLimit, err)
			}
			if got := IsMalformed(err); got != tt.wantMalformed {
				t.Errorf("IsMalformed = %v, want %v (err %v)", got, tt.wantMalformed, err)
			}
			if !tt.wantErr && !json.Valid(raw) {
				t.Errorf("invalid json returned: %s", raw)
			}
		})
	}
}

func TestGenerateStructured_ServerErrorIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"busy"}}`))
	})

	_, err := c.GenerateStructured(context.Background(), "p", testSchema)
	if !IsTransient(err) {
		t.Errorf("503 should be transient, got %v", err)
	}
}

func TestSynthesizeSpeech(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/speech") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["response_format"] != "pcm" {
			t.Errorf("response_format = %v, want pcm", req["response_format"])
		}
		if req["voice"] != DefaultVoice {
			t.Errorf("voice = %v, want default", req["voice"])
		}
		w.Header().Set("Content-Type", "audio/pcm")
		_, _ = w.Write(pcm)
	})

	got, err := c.SynthesizeSpeech(context.Background(), "नमस्ते", "")
	if err != nil {
		t.Fatalf("SynthesizeSpeech: %v", err)
	}
	if string(got) != string(pcm) {
		t.Errorf("pcm = %v, want %v", got, pcm)
	}
}

func TestGenerateImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// "png!" base64-encoded
		_, _ = w.Write([]byte(`{"created":1,"data":[{"b64_json":"cG5nIQ=="}]}`))
	})

	img, err := c.GenerateImage(context.Background(), "a lantern festival")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if string(img) != "png!" {
		t.Errorf("image = %q", img)
	}
}

func TestEvaluateSpeech(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"Hola!"}`))
	})

	eval, err := c.EvaluateSpeech(context.Background(), []byte{0, 0, 0, 0}, "hola")
	if err != nil {
		t.Fatalf("EvaluateSpeech: %v", err)
	}
	if eval.Score != 100 {
		t.Errorf("Score = %d, want 100", eval.Score)
	}
	if eval.Heard != "Hola!" {
		t.Errorf("Heard = %q", eval.Heard)
	}
}

func TestTimeoutIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c.cfg.Timeouts.Structured = 50 * time.Millisecond

	_, err := c.GenerateStructured(context.Background(), "p", testSchema)
	if !IsTransient(err) {
		t.Errorf("timeout should be transient, got %v", err)
	}
}
