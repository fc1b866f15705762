package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flapboard/core/internal/infrastructure/config"
	"github.com/flapboard/core/internal/infrastructure/logger"
	"github.com/flapboard/core/internal/infrastructure/server"
)

// Version is set at build time with -ldflags
var Version = "dev"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the leaderboard API server",
		Long:  "Start the leaderboard API server on the port given by PORT (default 10000)",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewStoreCommand creates the store command with subcommands
func NewStoreCommand() *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Store file commands",
		Long:  "Create and inspect the JSON files holding scores and accounts",
	}

	storeCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create missing store files and reset unreadable ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			fmt.Fprintf(cmd.OutOrStdout(), "Scores:   %s\n", app.stores.Scores.Path())
			fmt.Fprintf(cmd.OutOrStdout(), "Accounts: %s\n", app.stores.Accounts.Path())
			return nil
		},
	})

	storeCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Print how many records each store file holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			scores := app.stores.Scores.Load()
			accounts := app.stores.Accounts.Load()

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d scores\n", app.stores.Scores.Name(), len(scores))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d accounts\n", app.stores.Accounts.Name(), len(accounts))
			return nil
		},
	})

	return storeCmd
}

// NewScoresCommand creates the scores command with subcommands
func NewScoresCommand() *cobra.Command {
	scoresCmd := &cobra.Command{
		Use:   "scores",
		Short: "Leaderboard commands",
	}

	topCmd := &cobra.Command{
		Use:   "top",
		Short: "Print the best scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			entries := app.services.Leaderboard.TopScores(cmd.Context(), limit)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tNAME\tSCORE")
			for i, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, e.Name, e.Score)
			}
			return w.Flush()
		},
	}
	topCmd.Flags().Int("limit", 10, "Number of entries to print")

	rankCmd := &cobra.Command{
		Use:   "rank NAME",
		Short: "Print a player's position on the leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			ranked, err := app.services.Leaderboard.Rank(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "#%d of %d: %s (%d)\n",
				ranked.Rank, ranked.Total, ranked.Entry.Name, ranked.Entry.Score)
			return nil
		},
	}

	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Record a score",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			score, _ := cmd.Flags().GetInt64("score")

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			result, err := app.services.Leaderboard.Submit(cmd.Context(), name, score)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", result.Entry.Name, result.Entry.Score)
			return nil
		},
	}
	submitCmd.Flags().String("name", "", "Player name (required)")
	submitCmd.Flags().Int64("score", 0, "Score")
	submitCmd.MarkFlagRequired("name")

	scoresCmd.AddCommand(topCmd, rankCmd, submitCmd)
	return scoresCmd
}

// NewAccountCommand creates the account management command
func NewAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account management commands",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.services.Accounts.Register(cmd.Context(), username, password); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account created: %s\n", username)
			return nil
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a username and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.services.Accounts.Login(cmd.Context(), username, password); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Credentials OK")
			return nil
		},
	}

	for _, c := range []*cobra.Command{createCmd, verifyCmd} {
		c.Flags().String("username", "", "Username (required)")
		c.Flags().String("password", "", "Password (required)")
		c.MarkFlagRequired("username")
		c.MarkFlagRequired("password")
	}

	accountCmd.AddCommand(createCmd, verifyCmd)
	return accountCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flapboard %s\n", Version)
		},
	}
}

type app struct {
	logger   *logger.Logger
	stores   *server.Stores
	services *server.Services
}

func (a *app) close() {
	_ = a.logger.Close()
}

// openApp wires the stores and services without starting the HTTP server
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	stores, err := server.OpenStores(cfg.Storage, appLogger, nil)
	if err != nil {
		return nil, err
	}

	svcs, err := server.NewServices(cfg, stores, appLogger)
	if err != nil {
		return nil, err
	}

	return &app{logger: appLogger, stores: stores, services: svcs}, nil
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	srv, err := server.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	go func() {
		appLogger.Infow("Starting leaderboard API server",
			"port", cfg.Server.Port,
			"environment", cfg.App.Environment,
			"scores_file", cfg.Storage.ScoresPath(),
			"users_file", cfg.Storage.UsersPath(),
		)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("Server failed to start", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
		return
	}

	appLogger.Info("Server exited gracefully")
}
