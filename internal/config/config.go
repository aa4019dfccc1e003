// Package config loads runtime configuration for gsign from a TOML file and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultListenAddr  = "127.0.0.1:8819"
	DefaultBlobBaseURL = "https://blob.vercel-storage.com"
	DefaultLogLevel    = "info"

	configDirEnvKey = "GSIGN_CONFIG_DIR"
	configFileName  = ".gsign.toml"

	listenEnvKey      = "GSIGN_LISTEN"
	secretTokenEnvKey = "GSIGN_SECRET_TOKEN"
	blobTokenEnvKey   = "GSIGN_BLOB_TOKEN"
	blobBaseURLEnvKey = "GSIGN_BLOB_BASE_URL"
	blobTimeoutEnvKey = "GSIGN_BLOB_TIMEOUT_SECONDS"
	fontPathEnvKey    = "GSIGN_FONT"
)

// Config defines runtime configuration for gsign.
type Config struct {
	ListenAddr string `toml:"listen_addr"`

	// SecretToken is the shared access secret every stateful endpoint
	// requires. It has no default; serving without one is refused.
	SecretToken string `toml:"secret_token"`

	BlobToken   string `toml:"blob_token"`
	BlobBaseURL string `toml:"blob_base_url"`

	// BlobTimeoutSeconds bounds each object-store call. Zero means wait
	// for completion.
	BlobTimeoutSeconds int `toml:"blob_timeout_seconds"`

	// FontPath locates the bundled Japanese TTF used by the document
	// layout engine.
	FontPath string `toml:"font_path"`

	LogLevel string `toml:"log_level"`
}

// Default returns default configuration values. Secrets and the font path
// have none; they must be supplied via file or environment.
func Default() Config {
	return Config{
		ListenAddr:  DefaultListenAddr,
		BlobBaseURL: DefaultBlobBaseURL,
		LogLevel:    DefaultLogLevel,
	}
}

// Path returns the config file path: $GSIGN_CONFIG_DIR/.gsign.toml when the
// override is set, otherwise ~/.gsign.toml.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// Load reads the config file if present and applies environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if loadErr := loadFileIfExists(path, &cfg); loadErr != nil {
			return nil, loadErr
		}
	}

	if addr := strings.TrimSpace(os.Getenv(listenEnvKey)); addr != "" {
		cfg.ListenAddr = addr
	}
	if token := strings.TrimSpace(os.Getenv(secretTokenEnvKey)); token != "" {
		cfg.SecretToken = token
	}
	if token := strings.TrimSpace(os.Getenv(blobTokenEnvKey)); token != "" {
		cfg.BlobToken = token
	}
	if base := strings.TrimSpace(os.Getenv(blobBaseURLEnvKey)); base != "" {
		cfg.BlobBaseURL = base
	}
	if raw := strings.TrimSpace(os.Getenv(blobTimeoutEnvKey)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer", blobTimeoutEnvKey)
		}
		cfg.BlobTimeoutSeconds = parsed
	}
	if font := strings.TrimSpace(os.Getenv(fontPathEnvKey)); font != "" {
		cfg.FontPath = font
	}

	return &cfg, nil
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ValidateForServe checks that everything the server needs is present.
func (c *Config) ValidateForServe() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if strings.TrimSpace(c.SecretToken) == "" {
		return fmt.Errorf("secret_token is required (set %s)", secretTokenEnvKey)
	}
	if strings.TrimSpace(c.BlobToken) == "" {
		return fmt.Errorf("blob_token is required (set %s)", blobTokenEnvKey)
	}
	if strings.TrimSpace(c.BlobBaseURL) == "" {
		return fmt.Errorf("blob_base_url is required")
	}
	if c.BlobTimeoutSeconds < 0 {
		return fmt.Errorf("blob_timeout_seconds must be >= 0")
	}
	font := strings.TrimSpace(c.FontPath)
	if font == "" {
		return fmt.Errorf("font_path is required (set %s)", fontPathEnvKey)
	}
	info, err := os.Stat(font)
	if err != nil {
		return fmt.Errorf("font file %s: %w", font, err)
	}
	if info.IsDir() {
		return fmt.Errorf("font file %s is a directory", font)
	}
	return nil
}
