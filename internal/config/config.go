package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	LogLevel      string `json:"log_level"`
	MaxConcurrent int    `json:"max_concurrent"`
	Timeline      struct {
		SectionThreshold string   `json:"section_threshold"`
		SupportedKinds   []string `json:"supported_kinds,omitempty"`
	} `json:"timeline"`
	Scroll struct {
		NearBottomTolerance float64 `json:"near_bottom_tolerance"`
		MergeTolerance      float64 `json:"merge_tolerance"`
		Animations          bool    `json:"animations"`
	} `json:"scroll"`
	Render struct {
		Width      float64 `json:"width"`
		CharWidth  float64 `json:"char_width"`
		LineHeight float64 `json:"line_height"`
	} `json:"render"`
	Fetch struct {
		BaseURL       string   `json:"base_url"`
		APIKey        string   `json:"api_key"`
		KeyPrefix     string   `json:"key_prefix"`
		Conversations []string `json:"conversations,omitempty"`
		PollSchedule  string   `json:"poll_schedule"`
		MaxAttempts   int      `json:"max_attempts"`
	} `json:"fetch"`
	HTTP struct {
		Enabled bool   `json:"enabled"`
		Listen  string `json:"listen"`
	} `json:"http"`
	Telegram struct {
		Token string `json:"token"`
	} `json:"telegram"`
}

// DefaultPath is ~/.transcript/config.json.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".transcript", "config.json")
}

// Default returns a Config holding every default value.
func Default() *Config {
	cfg := &Config{
		LogLevel:      "info",
		MaxConcurrent: 4,
	}
	cfg.Timeline.SectionThreshold = "4m"
	cfg.Scroll.NearBottomTolerance = 120
	cfg.Scroll.MergeTolerance = 10
	cfg.Scroll.Animations = true
	cfg.Render.Width = 375
	cfg.Render.CharWidth = 8
	cfg.Render.LineHeight = 20
	cfg.Fetch.KeyPrefix = "api:"
	cfg.Fetch.PollSchedule = "@every 10s"
	cfg.Fetch.MaxAttempts = 3
	cfg.HTTP.Listen = "127.0.0.1:8484"
	return cfg
}

// Load reads the config at path over the defaults. A missing file is
// created with the defaults. Environment variables win over both.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if baseURL := os.Getenv("TRANSCRIPT_FETCH_BASE_URL"); baseURL != "" {
		cfg.Fetch.BaseURL = baseURL
	}
	if apiKey := os.Getenv("TRANSCRIPT_FETCH_API_KEY"); apiKey != "" {
		cfg.Fetch.APIKey = apiKey
	}
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}

	return cfg, nil
}

// SectionThreshold parses timeline.section_threshold.
func (c *Config) SectionThreshold() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeline.SectionThreshold)
	if err != nil {
		return 0, fmt.Errorf("timeline.section_threshold: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("timeline.section_threshold: must be positive")
	}
	return d, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.SectionThreshold(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	if c.MaxConcurrent < 1 {
		return errors.New("max_concurrent: must be at least 1")
	}
	if c.Scroll.NearBottomTolerance < 0 || c.Scroll.MergeTolerance < 0 {
		return errors.New("scroll: tolerances must not be negative")
	}
	if c.HTTP.Enabled && c.HTTP.Listen == "" {
		return errors.New("http.listen: required when http is enabled")
	}
	return nil
}

// Save writes cfg to path atomically, creating the directory if needed.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ToMap converts cfg to the nested map its JSON form decodes to.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return m, nil
}

// ListValues returns cfg as dot-separated keys, optionally with secrets
// masked.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	flat := Flatten(m)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// GetValue reads one dot-separated key from the file at path, creating the
// file with defaults first if it is missing.
func GetValue(path, key string) (any, error) {
	if _, err := Load(path); err != nil {
		return nil, err
	}
	flat, err := readFlat(path)
	if err != nil {
		return nil, err
	}
	v, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return v, nil
}

// SetValue sets one dot-separated key in the file at path. The value is
// parsed as JSON when it can be (numbers, booleans, arrays) and stored as a
// string otherwise. Keys outside the known set are kept as-is.
func SetValue(path, key, value string) error {
	flat, err := readFlat(path)
	if err != nil {
		return err
	}

	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		parsed = value
	}
	flat[key] = parsed

	data, err := json.MarshalIndent(Unflatten(flat), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeFile(path, data)
}

func readFlat(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return Flatten(m), nil
}
