package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath        = "config.toml"
	DefaultHTTPAddr          = ":8080"
	DefaultGraphBaseURL      = "https://graph.microsoft.com/v1.0"
	DefaultLoginBaseURL      = "https://login.microsoftonline.com"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultDirectoryMaxPages = 100
	// DefaultMaxUploadBytes caps single-shot uploads. Graph rejects upload
	// session fragments above roughly 60 MiB, and the uploader never splits
	// a payload into multiple fragments.
	DefaultMaxUploadBytes = 60 << 20
)

type Config struct {
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
	MSAL   MSALConfig   `toml:"msal"`
	Graph  GraphConfig  `toml:"graph"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// MSALConfig holds the Microsoft identity app registration used for the
// authorization-code flow.
type MSALConfig struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	TenantID       string `toml:"tenant_id"`
	RedirectURI    string `toml:"redirect_uri"`
	FrontendOrigin string `toml:"frontend_origin"`
}

// Scopes returns the delegated Graph permissions requested at consent time.
func (c MSALConfig) Scopes() []string {
	return []string{
		"Chat.Create",
		"Chat.ReadWrite",
		"ChatMessage.Send",
		"Files.ReadWrite",
		"User.Read",
		"User.ReadBasic.All",
	}
}

type GraphConfig struct {
	BaseURL           string `toml:"base_url"`
	LoginBaseURL      string `toml:"login_base_url"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	DirectoryMaxPages int    `toml:"directory_max_pages"`
	MaxUploadBytes    int64  `toml:"max_upload_bytes"`
}

func (c GraphConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultHTTPTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Graph: GraphConfig{
			BaseURL:           DefaultGraphBaseURL,
			LoginBaseURL:      DefaultLoginBaseURL,
			DirectoryMaxPages: DefaultDirectoryMaxPages,
			MaxUploadBytes:    DefaultMaxUploadBytes,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv lets deployment environments inject the app registration without a
// config file. Environment values win over file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("MSAL_CLIENT_ID"); v != "" {
		cfg.MSAL.ClientID = v
	}
	if v := os.Getenv("MSAL_CLIENT_SECRET"); v != "" {
		cfg.MSAL.ClientSecret = v
	}
	if v := os.Getenv("MSAL_TENANT_ID"); v != "" {
		cfg.MSAL.TenantID = v
	}
	if v := os.Getenv("REDIRECT_URI"); v != "" {
		cfg.MSAL.RedirectURI = v
	}
	if v := os.Getenv("FRONTEND_ORIGIN"); v != "" {
		cfg.MSAL.FrontendOrigin = v
	}
}
