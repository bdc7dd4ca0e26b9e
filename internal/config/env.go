package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values from the environment variables named by
// the env struct tags. Unset or empty variables leave the value alone.
func ApplyEnv(cfg *Config) error {
	err := walkLeaves(cfg, func(l leaf) error {
		if l.env == "" {
			return nil
		}
		v := strings.TrimSpace(os.Getenv(l.env))
		if v == "" {
			return nil
		}
		if err := l.set(v); err != nil {
			return fmt.Errorf("%s: %w", l.env, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cfg.Admin.Username = strings.TrimPrefix(cfg.Admin.Username, "@")
	return nil
}

// envOverride returns the variable that currently overrides path, if any.
func envOverride(l leaf) (string, bool) {
	if l.env == "" {
		return "", false
	}
	return l.env, strings.TrimSpace(os.Getenv(l.env)) != ""
}
