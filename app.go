package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lingokids/lingo/internal/account"
	"github.com/lingokids/lingo/internal/audio"
	"github.com/lingokids/lingo/internal/cache"
	"github.com/lingokids/lingo/internal/config"
	"github.com/lingokids/lingo/internal/content"
	"github.com/lingokids/lingo/internal/provider"
	"github.com/lingokids/lingo/internal/storage"
	"github.com/lingokids/lingo/internal/vault"
)

func newProvider(cfg config.Config) (*provider.OpenAI, error) {
	p, err := provider.NewOpenAI(cfg.Provider, provider.WithLogger(log.Default()))
	if errors.Is(err, provider.ErrNoAPIKey) {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY in the environment or a .env file", err)
	}
	return p, err
}

func newContentStore(cfg config.Config) (*content.Store, provider.Provider, error) {
	p, err := newProvider(cfg)
	if err != nil {
		return nil, nil, err
	}
	return content.NewStore(p, log.Default()), p, nil
}

// openVault opens the persistent vault. synth may be nil for commands
// that only inspect it; such vaults have no player either.
func openVault(cfg config.Config, synth provider.SpeechSynthesizer) (*vault.Vault, error) {
	store, err := cache.NewTiered(cache.Config{
		MemoryCapacity:   cfg.Vault.MemoryCapacity,
		DiskPath:         cfg.Vault.Dir,
		CompressionLevel: cfg.Vault.CompressionLevel,
	}, log.Default())
	if err != nil {
		return nil, fmt.Errorf("unable to open vault: %w", err)
	}

	opts := []vault.Option{
		vault.WithStore(store),
		vault.WithCooldown(cfg.Vault.Cooldown),
		vault.WithLogger(log.Default()),
	}
	if synth == nil {
		return vault.New(nil, nil, opts...), nil
	}

	if cfg.Vault.FallbackCommand != "" {
		fb, err := provider.NewCommandSpeech(provider.CommandConfig{
			Command:    cfg.Vault.FallbackCommand,
			SampleRate: cfg.Vault.FallbackSampleRate,
			Timeout:    cfg.Vault.FallbackTimeout,
		}, log.Default())
		if err != nil {
			log.Warn("speech fallback disabled", "err", err)
		} else {
			opts = append(opts, vault.WithFallback(fb))
		}
	}

	var player audio.Player
	if cfg.Audio.Enabled {
		p, err := audio.NewPlayer(audio.PlayerConfig{
			SampleRate: provider.SpeechSampleRate,
			BufferSize: cfg.Audio.Buffer,
			Volume:     cfg.Audio.Volume,
		})
		if err != nil {
			log.Warn("audio output unavailable, speaking silently", "err", err)
		} else {
			player = p
		}
	}
	return vault.New(synth, player, opts...), nil
}

// openAccounts opens the account store and the KV under it. The returned
// close function releases both.
func openAccounts(ctx context.Context, cfg config.Config) (*account.Store, storage.KV, error) {
	kv, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open account storage: %w", err)
	}
	return account.Open(ctx, kv, account.WithLogger(log.Default())), kv, nil
}
