package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dateideas/core/internal/adapters/repository"
	"github.com/dateideas/core/internal/adapters/storage"
	"github.com/dateideas/core/internal/application/services"
	"github.com/dateideas/core/internal/infrastructure/config"
	"github.com/dateideas/core/internal/infrastructure/logger"
	"github.com/dateideas/core/internal/infrastructure/server"
)

// Version is set at build time with -ldflags
var Version = "dev"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  "Load the date ideas from storage and serve the web app until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewIdeasCommand creates the ideas command with subcommands
func NewIdeasCommand() *cobra.Command {
	ideasCmd := &cobra.Command{
		Use:   "ideas",
		Short: "Inspect the stored date ideas",
	}

	ideasCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every stored date idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			repo := repository.NewDateIdeaRepository(storage.NewSupabaseStorage(cfg.Storage), cfg.Storage.Document)
			catalog, err := repo.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load date ideas: %w", err)
			}

			for _, id := range catalog.SortedIDs() {
				idea := catalog[id]
				photo := ""
				if idea.HasPhoto() {
					photo = " [" + idea.Photo + "]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s%s\n", id, idea.Title, photo)
			}
			return nil
		},
	})

	return ideasCmd
}

// NewPasscodeCommand creates the passcode command
func NewPasscodeCommand() *cobra.Command {
	passcodeCmd := &cobra.Command{
		Use:   "passcode",
		Short: "Passcode helpers",
	}

	hashCmd := &cobra.Command{
		Use:   "hash",
		Short: "Print a bcrypt hash to use as PASSCODE_HASH",
		RunE: func(cmd *cobra.Command, args []string) error {
			passcode, _ := cmd.Flags().GetString("passcode")
			if passcode == "" {
				return errors.New("passcode is required")
			}

			hash, err := services.HashPasscode(passcode)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	hashCmd.Flags().String("passcode", "", "Passcode to hash (required)")

	passcodeCmd.AddCommand(hashCmd)
	return passcodeCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dateideas %s\n", Version)
		},
	}
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.App.Version == "" {
		cfg.App.Version = Version
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	srv, err := server.New(cfg, storage.NewSupabaseStorage(cfg.Storage), appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if err := srv.LoadCatalog(parent); err != nil {
		appLogger.WithError(err).Errorw("Failed to load date ideas")
		return fmt.Errorf("failed to load date ideas: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Infow("Starting date ideas server",
		"address", cfg.Server.Address(),
		"environment", cfg.App.Environment,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.WithError(err).Errorw("Server failed")
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}
