package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"venuehouse/internal/availability"
	"venuehouse/internal/config"
	"venuehouse/internal/database"
	"venuehouse/internal/logger"
	"venuehouse/internal/modules/auth"
	"venuehouse/internal/pkg/jwt"
	"venuehouse/internal/repository"
)

// ops is the operator's maintenance CLI: schema migration, staff
// bootstrap, demo seed data, and manual availability resync.
func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "ops",
		Short:         "venuehouse maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(), seedCmd(), createStaffCmd(), resyncCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.Database.DSN)
			if err != nil {
				return err
			}
			if err := repository.Migrate(db); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

func createStaffCmd() *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "create-staff",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.Database.DSN)
			if err != nil {
				return err
			}

			jwtService := jwt.New(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLMinutes)*time.Minute)
			svc := auth.NewService(repository.NewStaffRepository(db), jwtService)
			user, err := svc.CreateStaff(cmd.Context(), auth.CreateStaffRequest{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return err
			}
			logger.Info("staff user created", "id", user.ID, "email", user.Email, "role", string(user.Role))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", "operator", "operator or manager")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo resources for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.Database.DSN)
			if err != nil {
				return err
			}
			if err := repository.Migrate(db); err != nil {
				return err
			}
			return seedResources(cmd.Context(), repository.NewResourceRepository(db))
		},
	}
}

func resyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Push a full availability snapshot to the calendar service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Availability.SyncURL == "" {
				return fmt.Errorf("availability.sync_url is not configured")
			}
			db, err := database.Connect(cfg.Database.DSN)
			if err != nil {
				return err
			}

			worker := availability.NewWorker(
				cfg.Availability.SyncURL,
				time.Duration(cfg.Availability.TimeoutSeconds)*time.Second,
				repository.NewHoldRepository(db),
				repository.NewResourceRepository(db),
			)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			return worker.Resync(ctx)
		},
	}
}
