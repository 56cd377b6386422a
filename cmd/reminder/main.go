package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medication-reminder/internal/adapters/backend"
	pg "medication-reminder/internal/adapters/storage/postgres"
	"medication-reminder/internal/config"
	"medication-reminder/internal/domain/alerts"
	"medication-reminder/internal/domain/medicines"
	"medication-reminder/internal/router"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reminder",
		Short: "Medication reminder client and reference backend",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(nextAlertCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the reference backend (/exec?action=...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	log := cfg.Logger()

	var db *sql.DB
	if cfg.DBDSN != "" {
		opened, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer opened.Close()
		db = opened
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(router.Options{DB: db, Logger: log, PublicURL: cfg.PublicURL}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "postgres": db != nil})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func nextAlertCmd() *cobra.Command {
	var patient string

	cmd := &cobra.Command{
		Use:   "next-alert",
		Short: "Print the medicine due right now for a patient (null if none)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := cfg.Logger()
			client, err := backend.NewClient(cfg.Backend(log))
			if err != nil {
				return err
			}

			m, err := alerts.NewService(client, log).NextAlertNow(cmd.Context(), patient)
			if err != nil {
				return err
			}

			var out any
			if m != nil {
				out = medicines.ToRecord(*m)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&patient, "patient", "", "patient email")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <text>",
		Short: "Print the SHA-256 digest sent to the backend instead of the password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), backend.HashPassword(args[0]))
			return err
		},
	}
}
