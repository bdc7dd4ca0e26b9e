package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kawainime/TelegramGemini/internal/config"
	"github.com/kawainime/TelegramGemini/internal/persona"
	"github.com/kawainime/TelegramGemini/internal/provider"
)

const statusTimeout = 15 * time.Second

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration, persona storage and Gemini model reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("TelegramGemini status v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			var passed, warned, failed int

			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) {
				printWarn("Config file", fmt.Sprintf("not found at %s, using defaults and environment", cfgPath))
				warned++
			} else {
				printPass("Config file", cfgPath)
				passed++
			}

			cfg, err := loadConfig()
			if err != nil {
				printFail("Config validation", err.Error())
				failed++
				fmt.Printf("\n%d passed, %d warnings, %d failed\n", passed, warned, failed)
				return fmt.Errorf("%d check(s) failed", failed)
			}
			printPass("Config validation", "valid")
			passed++

			if err := config.CheckRunnable(cfg); err != nil {
				printFail("Required settings", err.Error())
				failed++
			} else {
				printPass("Required settings", "token and API key present")
				passed++
			}

			if cfg.Admin.UserID == 0 {
				printWarn("Admin", "ADMIN_USER_ID not set, /setpersona disabled")
				warned++
			} else {
				printPass("Admin", fmt.Sprintf("user %d", cfg.Admin.UserID))
				passed++
			}

			ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
			defer cancel()

			if detail, err := checkPersona(ctx, cfg); err != nil {
				printFail("Persona store", err.Error())
				failed++
			} else {
				printPass("Persona store", detail)
				passed++
			}

			if err := checkTempDir(cfg.General.TempDir); err != nil {
				printFail("Temp directory", err.Error())
				failed++
			} else {
				printPass("Temp directory", "writable")
				passed++
			}

			if cfg.Metrics.Enabled {
				if err := checkListen(cfg.Metrics.Listen); err != nil {
					printWarn("Metrics listen", fmt.Sprintf("%s may be in use: %v", cfg.Metrics.Listen, err))
					warned++
				} else {
					printPass("Metrics listen", cfg.Metrics.Listen+" available")
					passed++
				}
			}

			if cfg.Gemini.APIKey != "" {
				if err := checkGemini(ctx, cfg); err != nil {
					printFail("Gemini models", err.Error())
					failed++
				} else {
					printPass("Gemini models", cfg.Gemini.TextModel+", "+cfg.Gemini.ImageModel)
					passed++
				}
			}

			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

func checkPersona(ctx context.Context, cfg *config.Config) (string, error) {
	store, closer, err := persona.Open(cfg.Persona)
	if err != nil {
		return "", err
	}
	defer closer.Close()
	current, err := store.Read(ctx)
	if err != nil {
		return "", err
	}
	if current == "" {
		return cfg.Persona.Backend + ", no persona set", nil
	}
	return fmt.Sprintf("%s, %d characters", cfg.Persona.Backend, len([]rune(current))), nil
}

func checkTempDir(dir string) error {
	f, err := os.CreateTemp(dir, "status_*")
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(f.Name())
}

func checkListen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ln.Close()
}

func checkGemini(ctx context.Context, cfg *config.Config) error {
	gemini, err := provider.NewGemini(ctx, provider.GeminiConfig{
		APIKey:     cfg.Gemini.APIKey,
		TextModel:  cfg.Gemini.TextModel,
		ImageModel: cfg.Gemini.ImageModel,

		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
		Burst:             cfg.Gemini.Burst,

		Logger: logger,
	})
	if err != nil {
		return err
	}
	return gemini.Healthy(ctx)
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
