package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the bot.
type Config struct {
	General  GeneralConfig  `json:"general" yaml:"general"`
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
	Gemini   GeminiConfig   `json:"gemini" yaml:"gemini"`
	Admin    AdminConfig    `json:"admin" yaml:"admin"`
	Persona  PersonaConfig  `json:"persona" yaml:"persona"`
	Support  SupportConfig  `json:"support" yaml:"support"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

type GeneralConfig struct {
	LogLevel           string `json:"logLevel" yaml:"logLevel"`
	LogFile            string `json:"logFile,omitempty" yaml:"logFile,omitempty"` // optional log file path
	TempDir            string `json:"tempDir,omitempty" yaml:"tempDir,omitempty"` // generated images; empty = os.TempDir()
	MaxConcurrentChats int    `json:"maxConcurrentChats" yaml:"maxConcurrentChats"`
}

type TelegramConfig struct {
	Token              string `json:"token" yaml:"token" env:"TELEGRAM_BOT_TOKEN" secret:"true"`
	DropPendingUpdates bool   `json:"dropPendingUpdates" yaml:"dropPendingUpdates"`
	PollTimeout        int    `json:"pollTimeout" yaml:"pollTimeout"` // long polling timeout in seconds
}

type GeminiConfig struct {
	APIKey         string `json:"apiKey" yaml:"apiKey" env:"GOOGLE_API_KEY" secret:"true"`
	TextModel      string `json:"textModel" yaml:"textModel" env:"GOOGLE_MODEL_TEXT"`
	ImageModel     string `json:"imageModel" yaml:"imageModel" env:"GOOGLE_MODEL_IMAGE"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	WebSearch      bool   `json:"webSearch" yaml:"webSearch"`

	// RequestsPerMinute caps calls across both models; 0 disables the limit.
	RequestsPerMinute float64 `json:"requestsPerMinute" yaml:"requestsPerMinute"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// AdminConfig identifies the operator. UserID 0 disables /setpersona.
type AdminConfig struct {
	UserID   int64  `json:"userId" yaml:"userId" env:"ADMIN_USER_ID"`
	Username string `json:"username" yaml:"username" env:"ADMIN_TELEGRAM_USERNAME"`
}

type PersonaConfig struct {
	Backend string `json:"backend" yaml:"backend" env:"PERSONA_BACKEND"` // "file" | "sqlite"
	Path    string `json:"path" yaml:"path" env:"PERSONA_PATH"`
}

type SupportConfig struct {
	Message        string `json:"message" yaml:"message" env:"DONATION_MESSAGE"` // HTML
	SaweriaLink    string `json:"saweriaLink,omitempty" yaml:"saweriaLink,omitempty" env:"SAWERIA_LINK"`
	TrakteerLink   string `json:"trakteerLink,omitempty" yaml:"trakteerLink,omitempty" env:"TRAKTEER_LINK"`
	KaryakarsaLink string `json:"karyakarsaLink,omitempty" yaml:"karyakarsaLink,omitempty" env:"KARYAKARSA_LINK"`
	QRISImageURL   string `json:"qrisImageUrl,omitempty" yaml:"qrisImageUrl,omitempty" env:"QRIS_IMAGE_URL"`
}

// MetricsConfig configures the Prometheus text endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Listen  string `json:"listen" yaml:"listen"`
}

// DefaultConfigDir returns the default config directory (~/.telegramgemini).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".telegramgemini"
	}
	return filepath.Join(home, ".telegramgemini")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Load reads a JSON or YAML config file (chosen by extension), expands
// ${VAR} references and validates the result.
func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.Persona.Path = ExpandPath(cfg.Persona.Path)
	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.General.TempDir = ExpandPath(cfg.General.TempDir)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

// Save writes the config as YAML or JSON depending on the file extension.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch strings.ToLower(cfg.General.LogLevel) {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}
	if cfg.General.MaxConcurrentChats < 1 || cfg.General.MaxConcurrentChats > 100 {
		errs = append(errs, "general.maxConcurrentChats must be between 1 and 100")
	}
	if cfg.Telegram.PollTimeout < 0 || cfg.Telegram.PollTimeout > 600 {
		errs = append(errs, "telegram.pollTimeout must be between 0 and 600")
	}
	if cfg.Gemini.TimeoutSeconds < 1 {
		errs = append(errs, "gemini.timeoutSeconds must be >= 1")
	}
	if cfg.Gemini.RequestsPerMinute < 0 {
		errs = append(errs, "gemini.requestsPerMinute must be >= 0")
	}
	if cfg.Gemini.Burst < 0 {
		errs = append(errs, "gemini.burst must be >= 0")
	}
	if cfg.Gemini.TextModel == "" {
		errs = append(errs, "gemini.textModel is required")
	}
	if cfg.Gemini.ImageModel == "" {
		errs = append(errs, "gemini.imageModel is required")
	}
	if cfg.Admin.UserID < 0 {
		errs = append(errs, "admin.userId must be >= 0")
	}
	switch cfg.Persona.Backend {
	case "file", "sqlite":
		// valid
	default:
		errs = append(errs, "persona.backend must be one of: file, sqlite")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		errs = append(errs, "metrics.listen is required when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// CheckRunnable reports what is missing before the bot can connect.
func CheckRunnable(cfg *Config) error {
	var missing []string
	if cfg.Telegram.Token == "" {
		missing = append(missing, "telegram.token (TELEGRAM_BOT_TOKEN)")
	}
	if cfg.Gemini.APIKey == "" {
		missing = append(missing, "gemini.apiKey (GOOGLE_API_KEY)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// WarnIncomplete logs the settings whose absence degrades a feature without
// preventing startup.
func WarnIncomplete(cfg *Config, logger *slog.Logger) {
	if cfg.Admin.UserID == 0 {
		logger.Warn("admin.userId (ADMIN_USER_ID) is not set; /setpersona will reply with a configuration error")
	}
	if cfg.Admin.Username == "" {
		logger.Warn("admin.username (ADMIN_TELEGRAM_USERNAME) is not set; supporters will not know whom to contact")
	}
}

// LogLevel parses general.logLevel, defaulting to info.
func LogLevel(cfg *Config) slog.Level {
	switch strings.ToLower(cfg.General.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
