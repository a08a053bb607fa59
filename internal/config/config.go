// Package config turns viper settings and environment secrets into the
// typed configuration every command starts from.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/lingokids/lingo/internal/audio"
	"github.com/lingokids/lingo/internal/prefetch"
	"github.com/lingokids/lingo/internal/provider"
	"github.com/lingokids/lingo/internal/storage"
	"github.com/lingokids/lingo/internal/vault"
)

// Secrets are read from the environment only, never from the config file.
type Secrets struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"LINGO_PROVIDER_BASE_URL"`
}

// Config is the fully resolved configuration.
type Config struct {
	Provider provider.Config
	Prefetch PrefetchConfig
	Vault    VaultConfig
	Audio    AudioConfig
	Storage  StorageConfig
}

type PrefetchConfig struct {
	Delay time.Duration
}

type VaultConfig struct {
	Dir                string
	MemoryCapacity     int64
	CompressionLevel   int
	Cooldown           time.Duration
	FallbackCommand    string
	FallbackSampleRate int
	FallbackTimeout    time.Duration
}

// AudioConfig configures playback. The player always runs at the
// provider's speech rate.
type AudioConfig struct {
	Enabled bool
	Volume  float64
	Buffer  time.Duration
}

type StorageConfig struct {
	Driver string
	Path   string
}

// SetDefaults registers every key with its default. dataDir holds the
// vault and the account store unless configured otherwise.
func SetDefaults(v *viper.Viper, dataDir string) {
	p := provider.DefaultConfig()
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.chat_model", p.ChatModel)
	v.SetDefault("provider.image_model", p.ImageModel)
	v.SetDefault("provider.speech_model", p.SpeechModel)
	v.SetDefault("provider.transcription_model", p.TranscriptionModel)
	v.SetDefault("provider.requests_per_minute", p.RequestsPerMinute)
	v.SetDefault("provider.timeouts.structured", p.Timeouts.Structured)
	v.SetDefault("provider.timeouts.image", p.Timeouts.Image)
	v.SetDefault("provider.timeouts.speech", p.Timeouts.Speech)
	v.SetDefault("provider.timeouts.evaluate", p.Timeouts.Evaluate)

	v.SetDefault("prefetch.delay", prefetch.DefaultDelay)

	v.SetDefault("vault.dir", filepath.Join(dataDir, "vault"))
	v.SetDefault("vault.memory_capacity", 0)
	v.SetDefault("vault.compression_level", 3)
	v.SetDefault("vault.cooldown", vault.DefaultCooldown)
	v.SetDefault("vault.fallback_command", "")
	v.SetDefault("vault.fallback_sample_rate", 22050)
	v.SetDefault("vault.fallback_timeout", 30*time.Second)

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 1.0)
	v.SetDefault("audio.buffer", 100*time.Millisecond)

	v.SetDefault("storage.driver", storage.DriverFile)
	v.SetDefault("storage.path", filepath.Join(dataDir, "lingo.json"))
}

// Load reads the configuration from v and the secrets from the
// environment, after loading a .env file from the working directory if
// there is one.
func Load(v *viper.Viper) (Config, error) {
	_ = godotenv.Load()

	secrets, err := env.ParseAs[Secrets]()
	if err != nil {
		return Config{}, fmt.Errorf("error parsing environment: %w", err)
	}

	cfg := Config{
		Provider: provider.Config{
			APIKey:             secrets.APIKey,
			BaseURL:            v.GetString("provider.base_url"),
			ChatModel:          v.GetString("provider.chat_model"),
			ImageModel:         v.GetString("provider.image_model"),
			SpeechModel:        v.GetString("provider.speech_model"),
			TranscriptionModel: v.GetString("provider.transcription_model"),
			RequestsPerMinute:  v.GetInt("provider.requests_per_minute"),
			Timeouts: provider.Timeouts{
				Structured: v.GetDuration("provider.timeouts.structured"),
				Image:      v.GetDuration("provider.timeouts.image"),
				Speech:     v.GetDuration("provider.timeouts.speech"),
				Evaluate:   v.GetDuration("provider.timeouts.evaluate"),
			},
		},
		Prefetch: PrefetchConfig{
			Delay: v.GetDuration("prefetch.delay"),
		},
		Vault: VaultConfig{
			Dir:                ExpandPath(v.GetString("vault.dir")),
			MemoryCapacity:     v.GetInt64("vault.memory_capacity"),
			CompressionLevel:   v.GetInt("vault.compression_level"),
			Cooldown:           v.GetDuration("vault.cooldown"),
			FallbackCommand:    v.GetString("vault.fallback_command"),
			FallbackSampleRate: v.GetInt("vault.fallback_sample_rate"),
			FallbackTimeout:    v.GetDuration("vault.fallback_timeout"),
		},
		Audio: AudioConfig{
			Enabled: v.GetBool("audio.enabled"),
			Volume:  v.GetFloat64("audio.volume"),
			Buffer:  v.GetDuration("audio.buffer"),
		},
		Storage: StorageConfig{
			Driver: v.GetString("storage.driver"),
			Path:   ExpandPath(v.GetString("storage.path")),
		},
	}
	if secrets.BaseURL != "" {
		cfg.Provider.BaseURL = secrets.BaseURL
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges. A missing API key is not an error here;
// only commands that reach the provider need one.
func (c Config) Validate() error {
	var errs []error
	if c.Provider.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("provider.requests_per_minute must not be negative, got %d", c.Provider.RequestsPerMinute))
	}
	for name, d := range map[string]time.Duration{
		"provider.timeouts.structured": c.Provider.Timeouts.Structured,
		"provider.timeouts.image":      c.Provider.Timeouts.Image,
		"provider.timeouts.speech":     c.Provider.Timeouts.Speech,
		"provider.timeouts.evaluate":   c.Provider.Timeouts.Evaluate,
		"prefetch.delay":               c.Prefetch.Delay,
		"vault.cooldown":               c.Vault.Cooldown,
		"audio.buffer":                 c.Audio.Buffer,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, d))
		}
	}
	switch {
	case c.Vault.MemoryCapacity < 0:
		errs = append(errs, fmt.Errorf("vault.memory_capacity must not be negative, got %d", c.Vault.MemoryCapacity))
	case c.Vault.MemoryCapacity > 0 && c.Vault.Dir == "":
		errs = append(errs, errors.New("vault.memory_capacity needs vault.dir, or phrases would be evicted"))
	}
	if l := c.Vault.CompressionLevel; l < 0 || l > 22 {
		errs = append(errs, fmt.Errorf("vault.compression_level must be between 0 and 22, got %d", l))
	}
	if c.Vault.FallbackCommand != "" {
		if err := audio.ValidateSampleRate(c.Vault.FallbackSampleRate); err != nil {
			errs = append(errs, fmt.Errorf("vault.fallback_sample_rate: %w", err))
		}
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume must be between 0.0 and 1.0, got %.2f", c.Audio.Volume))
	}
	switch c.Storage.Driver {
	case storage.DriverFile, storage.DriverSQLite, storage.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver: %w: %q", storage.ErrUnknownDriver, c.Storage.Driver))
	}
	return errors.Join(errs...)
}

// ExpandPath expands a leading ~ and environment variables in path.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}
