package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harentsoaR/ayursutra-api/internal/config"
	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
	"github.com/harentsoaR/ayursutra-api/internal/store"
)

var timeout time.Duration

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Data migrations for the AyurSutra document store.",
	Long: `Runs one-off data migrations against the MongoDB database named by
MONGO_URI and MONGO_DATABASE. Every run is recorded in the migrations collection.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "give up after this long")
	rootCmd.AddCommand(newUsersCommand(), newHistoryCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newUsersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Move full profiles out of the users collection into patients and practitioners",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc *services.Services) error {
				result, err := svc.Migration.MigrateExistingUsers(ctx)
				if err != nil {
					return fmt.Errorf("failed to migrate users: %w", err)
				}
				fmt.Printf("Migration %s: %d user(s) migrated.\n", result.Version, result.MigratedCount)
				for _, uid := range result.Skipped {
					fmt.Printf("  skipped %s (unknown user type)\n", uid)
				}
				return nil
			})
		},
	}
}

func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List previous migration runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc *services.Services) error {
				runs, err := svc.Migration.History(ctx)
				if err != nil {
					return fmt.Errorf("failed to read migration history: %w", err)
				}
				if len(runs) == 0 {
					fmt.Println("No migrations have run.")
				}
				for _, run := range runs {
					fmt.Printf("%s  %-24s migrated=%d skipped=%d\n", run.RanAt.Format(time.RFC3339), run.Version, run.MigratedCount, len(run.Skipped))
				}
				return nil
			})
		},
	}
}

// withServices connects to MongoDB and hands fn the data services. The
// in-memory store has nothing to migrate, so a MONGO_URI is required.
func withServices(parent context.Context, fn func(context.Context, *services.Services) error) error {
	cfg, _, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Demo() {
		return errors.New("MONGO_URI is not set")
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Console: true, Output: os.Stderr})
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	models.SetDateLocation(loc)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	st, err := store.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer st.Close(context.Background())

	return fn(ctx, services.New(services.Deps{Store: st, Logger: log}))
}
