package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/you/nirogsvc/internal/app"
	"github.com/you/nirogsvc/internal/config"
	"github.com/you/nirogsvc/internal/infrastructure/auth"
	"github.com/you/nirogsvc/internal/infrastructure/database"
	"github.com/you/nirogsvc/internal/infrastructure/repositories"
)

func main() {
	var configDir string

	rootCmd := &cobra.Command{
		Use:           "nirogsvc",
		Short:         "Nirog identity, verification and facility search API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "config", "directory holding config.yml and ownership_rules.yml")

	load := func() (*config.Config, zerolog.Logger, error) {
		cfg, err := config.LoadFrom(configDir)
		if err != nil {
			return nil, zerolog.Nop(), err
		}
		return cfg, app.NewLogger(cfg), nil
	}

	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(migrateCmd(load))
	rootCmd.AddCommand(checkCmd(load))
	rootCmd.AddCommand(seedAdminCmd(load))
	rootCmd.AddCommand(seedFacilitiesCmd(load))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type loader func() (*config.Config, zerolog.Logger, error)

func serveCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			return app.Run(cfg, logger)
		},
	}
}

func migrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			return app.Migrate(cfg, logger)
		},
	}
}

func checkCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify database and Redis connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			return app.Check(cfg, cmd.OutOrStdout())
		},
	}
}

func seedAdminCmd(load loader) *cobra.Command {
	var in app.AdminSeed
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the bootstrap admin account",
		Long:  "Create an admin account. The password is read from --password or NIROG_ADMIN_PASSWORD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			if in.Password == "" {
				in.Password = os.Getenv("NIROG_ADMIN_PASSWORD")
			}

			db, err := database.Open(cfg.DSN, cfg.DBLogLevel)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.AutoMigrate(db); err != nil {
				return err
			}

			user, created, err := app.SeedAdmin(context.Background(),
				repositories.NewUserRepository(db), auth.NewPasswordService(), in)
			if err != nil {
				return err
			}
			if !created {
				logger.Warn().Uint("user_id", user.ID).Str("email", user.Email).Msg("account already exists, left unchanged")
				return nil
			}
			logger.Info().Uint("user_id", user.ID).Str("email", user.Email).Msg("admin created")
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "admin mobile number")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func seedFacilitiesCmd(load loader) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-facilities",
		Short: "Load hospitals, labs and pharmacies from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			db, err := database.Open(cfg.DSN, cfg.DBLogLevel)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			defer rdb.Close()

			// Writes go through the cache so cached candidate lists are dropped.
			repo := repositories.NewCachedFacilityRepository(
				repositories.NewFacilityRepository(db), rdb.Client, cfg.FacilityTTL, logger)
			n, err := app.SeedFacilities(cmd.Context(), repo, f)
			if err != nil {
				return err
			}
			logger.Info().Int("count", n).Str("file", file).Msg("facilities seeded")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/facilities.yml", "facilities YAML file")
	return cmd
}
