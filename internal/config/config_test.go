package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- Validate ---

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
}

func TestValidate_MaxConcurrentChats_Bounds(t *testing.T) {
	cfg := Defaults()
	cfg.General.MaxConcurrentChats = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for maxConcurrentChats=0")
	}

	cfg.General.MaxConcurrentChats = 101
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for maxConcurrentChats=101")
	}

	cfg.General.MaxConcurrentChats = 100
	if err := Validate(cfg); err != nil {
		t.Fatalf("maxConcurrentChats=100 should be valid: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.General.LogLevel = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestValidate_TimeoutRequired(t *testing.T) {
	cfg := Defaults()
	cfg.Gemini.TimeoutSeconds = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for timeoutSeconds=0")
	}
}

func TestValidate_RateLimitBounds(t *testing.T) {
	cfg := Defaults()
	cfg.Gemini.RequestsPerMinute = -1
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for negative requestsPerMinute")
	}
	cfg = Defaults()
	cfg.Gemini.RequestsPerMinute = 15
	cfg.Gemini.Burst = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("burst 0 should fall back to the default: %v", err)
	}
}

func TestValidate_ModelsRequired(t *testing.T) {
	cfg := Defaults()
	cfg.Gemini.TextModel = ""
	cfg.Gemini.ImageModel = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for empty models")
	}
}

func TestValidate_PersonaBackends(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		cfg := Defaults()
		cfg.Persona.Backend = backend
		if err := Validate(cfg); err != nil {
			t.Fatalf("backend %q should be valid: %v", backend, err)
		}
	}

	cfg := Defaults()
	cfg.Persona.Backend = "redis"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown persona backend")
	}
}

func TestValidate_MetricsListenRequiredWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Listen = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for metrics without listen address")
	}
}

func TestCheckRunnable(t *testing.T) {
	cfg := Defaults()
	if err := CheckRunnable(cfg); err == nil {
		t.Fatal("expected error without token and api key")
	}
	cfg.Telegram.Token = "123:abc"
	cfg.Gemini.APIKey = "key"
	if err := CheckRunnable(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Load / Save ---

func TestLoadSave_RoundTripJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	original := Defaults()
	original.Gemini.TextModel = "gemini-test"
	original.Admin.UserID = 42

	if err := Save(path, original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Gemini.TextModel != "gemini-test" {
		t.Fatalf("expected 'gemini-test', got %q", loaded.Gemini.TextModel)
	}
	if loaded.Admin.UserID != 42 {
		t.Fatalf("expected admin id 42, got %d", loaded.Admin.UserID)
	}
}

func TestLoadSave_RoundTripYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := Defaults()
	original.Persona.Backend = "sqlite"
	original.Support.SaweriaLink = "https://saweria.co/example"

	if err := Save(path, original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Persona.Backend != "sqlite" {
		t.Fatalf("expected sqlite backend, got %q", loaded.Persona.Backend)
	}
	if loaded.Support.SaweriaLink != "https://saweria.co/example" {
		t.Fatalf("unexpected saweria link %q", loaded.Support.SaweriaLink)
	}
}

func TestLoad_YAMLKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "gemini:\n  textModel: gemini-custom\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gemini.TextModel != "gemini-custom" {
		t.Fatalf("expected overridden model, got %q", cfg.Gemini.TextModel)
	}
	if cfg.Gemini.TimeoutSeconds != 120 {
		t.Fatalf("expected default timeout 120, got %d", cfg.Gemini.TimeoutSeconds)
	}
	if !cfg.Telegram.DropPendingUpdates {
		t.Fatal("dropPendingUpdates default should survive partial config")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not json}"), 0o644)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoad_ValidatesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"general": {"maxConcurrentChats": 0}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for maxConcurrentChats=0")
	}
}

func TestLoad_WithEnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_TG_TOKEN", "123:secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "telegram:\n  token: ${TEST_TG_TOKEN}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.Token != "123:secret" {
		t.Fatalf("expected substituted token, got %q", cfg.Telegram.Token)
	}
}

// --- Env ---

func TestApplyEnv_OverridesValues(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("GOOGLE_MODEL_TEXT", "text-model")
	t.Setenv("GOOGLE_MODEL_IMAGE", "image-model")
	t.Setenv("ADMIN_USER_ID", "777")
	t.Setenv("ADMIN_TELEGRAM_USERNAME", "@operator")
	t.Setenv("TRAKTEER_LINK", "https://trakteer.id/example")

	cfg := Defaults()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}

	if cfg.Telegram.Token != "tg-token" || cfg.Gemini.APIKey != "g-key" {
		t.Fatal("credentials not applied")
	}
	if cfg.Gemini.TextModel != "text-model" || cfg.Gemini.ImageModel != "image-model" {
		t.Fatalf("models not applied: %+v", cfg.Gemini)
	}
	if cfg.Admin.UserID != 777 {
		t.Fatalf("expected admin id 777, got %d", cfg.Admin.UserID)
	}
	if cfg.Admin.Username != "operator" {
		t.Fatalf("expected leading @ stripped, got %q", cfg.Admin.Username)
	}
	if cfg.Support.TrakteerLink != "https://trakteer.id/example" {
		t.Fatalf("unexpected trakteer link %q", cfg.Support.TrakteerLink)
	}
}

func TestApplyEnv_EmptyKeepsDefaults(t *testing.T) {
	t.Setenv("GOOGLE_MODEL_TEXT", "")
	t.Setenv("DONATION_MESSAGE", "  ")

	cfg := Defaults()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Gemini.TextModel != Defaults().Gemini.TextModel {
		t.Fatalf("empty env should not override model, got %q", cfg.Gemini.TextModel)
	}
	if cfg.Support.Message != defaultDonationMessage {
		t.Fatalf("blank env should not override message, got %q", cfg.Support.Message)
	}
}

func TestApplyEnv_InvalidAdminID(t *testing.T) {
	t.Setenv("ADMIN_USER_ID", "not-a-number")
	if err := ApplyEnv(Defaults()); err == nil {
		t.Fatal("expected error for non-numeric ADMIN_USER_ID")
	}
}

func TestLoadDotEnv_SetsUnsetVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DOTENV_TEST_VALUE=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOTENV_TEST_VALUE", "")
	os.Unsetenv("DOTENV_TEST_VALUE")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("DOTENV_TEST_VALUE"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}

// --- Accessor ---

func TestGetByPath_ValidPaths(t *testing.T) {
	cfg := Defaults()

	val, err := GetByPath(cfg, "persona.backend")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != "file" {
		t.Fatalf("expected 'file', got %v", val)
	}
}

func TestGetByPath_InvalidPath(t *testing.T) {
	cfg := Defaults()
	if _, err := GetByPath(cfg, "nonexistent.path"); err == nil {
		t.Fatal("expected error for nonexistent path")
	}
}

func TestSetByPath_IntConversion(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "gemini.timeoutSeconds", "45"); err != nil {
		t.Fatalf("set int: %v", err)
	}
	if cfg.Gemini.TimeoutSeconds != 45 {
		t.Fatalf("expected 45, got %d", cfg.Gemini.TimeoutSeconds)
	}
}

func TestSetByPath_BoolConversion(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "gemini.webSearch", "false"); err != nil {
		t.Fatalf("set bool: %v", err)
	}
	if cfg.Gemini.WebSearch {
		t.Fatal("expected gemini.webSearch=false")
	}
}

func TestSetByPath_RejectsInvalidResult(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "persona.backend", "redis"); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
	if cfg.Persona.Backend != Defaults().Persona.Backend {
		t.Fatalf("config should be unchanged after a rejected set, got %q", cfg.Persona.Backend)
	}
}

func TestSetByPath_RejectsBadScalar(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "general.maxConcurrentChats", "many"); err == nil {
		t.Fatal("expected parse error for non-integer value")
	}
	if err := SetByPath(cfg, "gemini.nope", "x"); err == nil {
		t.Fatal("expected error for unknown path")
	}
}

func TestSetByPath_RejectsEnvOverriddenPath(t *testing.T) {
	t.Setenv("SAWERIA_LINK", "https://saweria.co/env")
	cfg := Defaults()
	err := SetByPath(cfg, "support.saweriaLink", "https://saweria.co/file")
	if err == nil || !strings.Contains(err.Error(), "SAWERIA_LINK") {
		t.Fatalf("expected env override error naming SAWERIA_LINK, got %v", err)
	}
	if cfg.Support.SaweriaLink != "" {
		t.Fatalf("config should be unchanged, got %q", cfg.Support.SaweriaLink)
	}
}

func TestSetByPath_FloatConversion(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "gemini.requestsPerMinute", "12.5"); err != nil {
		t.Fatalf("set float: %v", err)
	}
	if cfg.Gemini.RequestsPerMinute != 12.5 {
		t.Fatalf("expected 12.5, got %v", cfg.Gemini.RequestsPerMinute)
	}
}

func TestSanitize_MasksSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Telegram.Token = "123456789:ABCdefGHIjklMNOpqrSTUvwxyz"
	cfg.Gemini.APIKey = "AIzaSy-1234567890abcdefghijklmnop"

	sanitized := Sanitize(cfg)

	if sanitized.Telegram.Token == cfg.Telegram.Token {
		t.Fatal("telegram token should be masked")
	}
	if sanitized.Gemini.APIKey == cfg.Gemini.APIKey {
		t.Fatal("API key should be masked")
	}
	if cfg.Telegram.Token != "123456789:ABCdefGHIjklMNOpqrSTUvwxyz" {
		t.Fatal("original config should not be modified")
	}
}

func TestSanitize_ShortSecret(t *testing.T) {
	cfg := Defaults()
	cfg.Telegram.Token = "short"
	if got := Sanitize(cfg).Telegram.Token; got != "***" {
		t.Fatalf("short secret should be '***', got %q", got)
	}
}

func TestListPaths_ReturnsAllLeaves(t *testing.T) {
	paths := ListPaths(Defaults())
	if len(paths) != 25 {
		t.Errorf("expected 25 paths, got %d: %v", len(paths), paths)
	}
	for _, expected := range []string{"gemini.textModel", "general.logLevel", "persona.backend", "admin.userId", "metrics.listen"} {
		if _, ok := paths[expected]; !ok {
			t.Errorf("missing expected path: %s", expected)
		}
	}
}

// --- ExpandEnvVars ---

func TestExpandEnvVars_SimpleSubstitution(t *testing.T) {
	t.Setenv("TEST_API_KEY", "sk-abc123")
	result := ExpandEnvVars(`{"apiKey": "${TEST_API_KEY}"}`)
	expected := `{"apiKey": "sk-abc123"}`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_DefaultValue(t *testing.T) {
	os.Unsetenv("NONEXISTENT_VAR_12345")
	result := ExpandEnvVars(`{"listen": "${NONEXISTENT_VAR_12345:-127.0.0.1:9090}"}`)
	expected := `{"listen": "127.0.0.1:9090"}`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_UnsetVarNoDefault_KeepsOriginal(t *testing.T) {
	os.Unsetenv("TOTALLY_UNSET_VAR_XYZ")
	result := ExpandEnvVars(`"${TOTALLY_UNSET_VAR_XYZ}"`)
	expected := `"${TOTALLY_UNSET_VAR_XYZ}"`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_DollarSignWithoutBraces(t *testing.T) {
	input := `"$HOME is not substituted"`
	if result := ExpandEnvVars(input); result != input {
		t.Fatalf("expected no change for bare $VAR, got %q", result)
	}
}
