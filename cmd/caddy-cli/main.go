// README: Operator CLI; schema migrations, demo course seeding, KML import and GEO reindexing.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"caddy/internal/config"
	"caddy/internal/infra"
	"caddy/internal/modules/course"
	"caddy/internal/modules/location"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *zerolog.Logger
	db      *pgxpool.Pool
	rdb     *redis.Client
)

var rootCmd = &cobra.Command{
	Use:   "caddy-cli",
	Short: "Caddy operator CLI",
	Long: `Maintenance commands for the caddy backend: apply the embedded schema,
seed demo courses, import course placemarks from KML and rebuild the
Redis GEO index from Postgres.`,
	SilenceUsage:       true,
	PersistentPreRunE:  persistentPreRun,
	PersistentPostRunE: persistentPostRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (overrides CADDY_CONFIG)")
}

// persistentPreRun loads config and opens the connections every subcommand
// shares.
func persistentPreRun(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}
	if cfgFile != "" {
		if err := os.Setenv("CADDY_CONFIG", cfgFile); err != nil {
			return err
		}
	}
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = infra.NewLogger(cfg.Logging, "caddy-cli")

	db, err = infra.NewDB(cmd.Context(), cfg.DB)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	logger.Debug().Msg("database connected")
	rdb = infra.NewRedis(cfg.Redis.Addr)
	return nil
}

func persistentPostRun(*cobra.Command, []string) error {
	if rdb != nil {
		_ = rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	return nil
}

func locationService() *location.Service {
	return location.NewService(location.NewStore(db, rdb), logger)
}

func courseService() *course.Service {
	return course.NewService(course.NewStore(db), locationService(), logger)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
