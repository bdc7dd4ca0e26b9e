package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kawainime/TelegramGemini/internal/domain"
	"github.com/kawainime/TelegramGemini/internal/persona"
)

func personaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persona",
		Short: "Show or change the persona prepended to questions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current persona",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPersona(cmd.Context(), func(ctx context.Context, store domain.PersonaStore) error {
				current, err := store.Read(ctx)
				if err != nil {
					return err
				}
				if current == "" {
					fmt.Println("(not set)")
					return nil
				}
				fmt.Println(current)
				if ts, ok := store.(interface {
					UpdatedAt(context.Context) (time.Time, error)
				}); ok {
					if at, err := ts.UpdatedAt(ctx); err == nil && !at.IsZero() {
						fmt.Printf("\nupdated %s\n", at.Local().Format(time.RFC1123))
					}
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [text...]",
		Short: "Replace the persona",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			return withPersona(cmd.Context(), func(ctx context.Context, store domain.PersonaStore) error {
				if err := store.Write(ctx, text); err != nil {
					return err
				}
				logger.Info("persona updated", "length", len(text))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the persona",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPersona(cmd.Context(), func(ctx context.Context, store domain.PersonaStore) error {
				if err := store.Write(ctx, ""); err != nil {
					return err
				}
				logger.Info("persona cleared")
				return nil
			})
		},
	})

	return cmd
}

// withPersona opens the configured persona store for the duration of fn.
func withPersona(ctx context.Context, fn func(context.Context, domain.PersonaStore) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, closer, err := persona.Open(cfg.Persona)
	if err != nil {
		return fmt.Errorf("persona store: %w", err)
	}
	defer closer.Close()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, store)
}
