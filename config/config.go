package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Speech      SpeechConfig      `yaml:"speech"`
	Query       QueryConfig       `yaml:"query"`
	Audio       AudioConfig       `yaml:"audio"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Pushover    PushoverConfig    `yaml:"pushover"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
	RateLimit      int      `yaml:"rate_limit"`
	RateWindow     string   `yaml:"rate_window"`
}

// SpeechConfig selects the recognizer. Provider is one of mock, dwani or
// whisper. APIKey is only a fallback: a key saved through the settings
// endpoint takes precedence.
type SpeechConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Language    string `yaml:"language"`
	MockLatency string `yaml:"mock_latency"`
}

type QueryConfig struct {
	Latency string `yaml:"latency"`
}

// AudioConfig configures the optional background listener. Source is one of
// none, file or microphone.
type AudioConfig struct {
	Source      string `yaml:"source"`
	FileDir     string `yaml:"file_dir"`
	SampleRate  int    `yaml:"sample_rate"`
	MaxDuration string `yaml:"max_duration"`
}

// CatalogConfig points at a YAML catalog. An empty path uses the built-in one.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

type CredentialsConfig struct {
	Path string `yaml:"path"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references before decoding and fills unset fields
// with defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 10 << 20
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 30
	}
	if c.Server.RateWindow == "" {
		c.Server.RateWindow = "1m"
	}
	if c.Speech.Provider == "" {
		c.Speech.Provider = "mock"
	}
	if c.Speech.Language == "" {
		c.Speech.Language = "en"
	}
	if c.Speech.MockLatency == "" {
		c.Speech.MockLatency = "1.5s"
	}
	if c.Query.Latency == "" {
		c.Query.Latency = "500ms"
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "none"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.MaxDuration == "" {
		c.Audio.MaxDuration = "15s"
	}
	if c.Credentials.Path == "" {
		c.Credentials.Path = "./credentials.yaml"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Duration parses value with time.ParseDuration. Empty or malformed values
// yield fallback together with the parse error, so callers can warn.
func Duration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	if d < 0 {
		return fallback, fmt.Errorf("negative duration %q", value)
	}
	return d, nil
}
