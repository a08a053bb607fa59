package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# generative provider; the API key is read from OPENAI_API_KEY
provider:
  # base_url: "http://localhost:11434/v1"
  chat_model: "gpt-4o-mini"
  image_model: "dall-e-3"
  speech_model: "tts-1"
  transcription_model: "whisper-1"
  requests_per_minute: 50
  timeouts:
    structured: "45s"
    image: "90s"
    speech: "30s"
    evaluate: "30s"

# background loading of geography categories
prefetch:
  # pause between two category loads
  delay: "5s"

# the audio vault keeps every phrase ever spoken
vault:
  # dir: "~/.local/share/lingo/vault"
  # memory layer size in bytes, 0 keeps everything in memory
  memory_capacity: 0
  # zstd level for the disk layer, 0 disables compression
  compression_level: 3
  # how long to rest after the provider rate limits speech
  cooldown: "60s"
  # local speech while resting; must write raw 16-bit mono PCM to stdout
  # fallback_command: "piper --model en_US-lessac-medium --output-raw"
  fallback_sample_rate: 22050
  fallback_timeout: "30s"

audio:
  enabled: true
  # volume level (0.0 to 1.0)
  volume: 1.0
  buffer: "100ms"

# accounts and profiles
storage:
  # file, sqlite or memory
  driver: "file"
  # path: "~/.local/share/lingo/lingo.json"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the lingo config file",
	Long:    paragraph(fmt.Sprintf("\n%s the lingo config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("lingo config\nlingo config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Lingo", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
