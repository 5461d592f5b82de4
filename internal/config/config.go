package config

import (
	"encoding/json"
	"os"
)

type Config struct {
	Bot     BotSettings     `json:"bot"`
	Relay   RelaySettings   `json:"relay"`
	Network NetworkSettings `json:"network"`
	Logging LogSettings     `json:"logging"`
	Storage StorageSettings `json:"storage"`
}

type BotSettings struct {
	Token string `json:"token"`
	BotID string `json:"bot_id"`
}

type RelaySettings struct {
	BaseURL           string `json:"base_url"`
	APIKey            string `json:"api_key"`
	SigningSecret     string `json:"signing_secret"`
	PollIntervalMs    int    `json:"poll_interval_ms"`
	CleanupIntervalMs int    `json:"cleanup_interval_ms"`
	// FailClosed denies all messages while no config has been fetched yet.
	// Default is fail-open: the bootstrap window is short and a dead relay
	// should not silence the bot.
	FailClosed bool `json:"fail_closed"`
}

type NetworkSettings struct {
	HTTPPoolSize     int `json:"http_pool_size"`
	RequestTimeoutMs int `json:"request_timeout_ms"`
}

type LogSettings struct {
	Path       string `json:"path"`
	Level      string `json:"level"`
	EchoStderr bool   `json:"echo_stderr"`
}

type StorageSettings struct {
	// PersistWindows snapshots live rate-limit windows to SQLite on shutdown
	// and restores unexpired ones on startup. Off by default: the relay
	// backend is the authoritative counter either way.
	PersistWindows bool   `json:"persist_windows"`
	Path           string `json:"path"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	GlobalConfig = &cfg
	return &cfg, nil
}

func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

func DefaultConfig() *Config {
	cfg := &Config{
		Relay: RelaySettings{
			BaseURL:           "https://api.commandless.app",
			PollIntervalMs:    30000,
			CleanupIntervalMs: 600000,
		},
		Network: NetworkSettings{
			HTTPPoolSize:     4,
			RequestTimeoutMs: 5000,
		},
		Logging: LogSettings{
			Path:       "commandless.log",
			Level:      "info",
			EchoStderr: true,
		},
		Storage: StorageSettings{
			Path: "commandless.db",
		},
	}
	applyEnvOverrides(cfg)
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if botID := os.Getenv("COMMANDLESS_BOT_ID"); botID != "" {
		cfg.Bot.BotID = botID
	}
	if apiKey := os.Getenv("COMMANDLESS_API_KEY"); apiKey != "" {
		cfg.Relay.APIKey = apiKey
	}
	if baseURL := os.Getenv("RELAY_BASE_URL"); baseURL != "" {
		cfg.Relay.BaseURL = baseURL
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Relay.BaseURL == "" {
		cfg.Relay.BaseURL = "https://api.commandless.app"
	}
	if cfg.Relay.PollIntervalMs <= 0 {
		cfg.Relay.PollIntervalMs = 30000
	}
	if cfg.Relay.CleanupIntervalMs <= 0 {
		cfg.Relay.CleanupIntervalMs = 600000
	}
	if cfg.Network.HTTPPoolSize <= 0 {
		cfg.Network.HTTPPoolSize = 4
	}
	if cfg.Network.RequestTimeoutMs <= 0 {
		cfg.Network.RequestTimeoutMs = 5000
	}
	if cfg.Logging.Path == "" {
		cfg.Logging.Path = "commandless.log"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "commandless.db"
	}
}

func Get() *Config {
	if GlobalConfig == nil {
		return DefaultConfig()
	}
	return GlobalConfig
}
