package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/repository/postgres"
	"github.com/jwalitptl/medrec/internal/service/directory"
	"github.com/jwalitptl/medrec/internal/worker"
	"github.com/jwalitptl/medrec/pkg/security"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := postgres.Migrate(cmd.Context(), a.db)
			if err != nil {
				return err
			}
			log.Info().Int("applied", n).Msg("migrations complete")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yml>",
		Short: "Load specialities and pharmacies from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer f.Close()

			data, err := directory.LoadSeed(f)
			if err != nil {
				return err
			}

			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := directory.NewService(a.repos.Pharmacies, a.repos.Specialities)
			res, err := svc.Seed(cmd.Context(), data)
			if err != nil {
				return err
			}
			log.Info().
				Int("specialities", res.Specialities).
				Int("pharmacies", res.Pharmacies).
				Int("skipped", res.Skipped).
				Msg("seed complete")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long:  "Create an administrator account. The password is read from MEDREC_ADMIN_PASSWORD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("MEDREC_ADMIN_PASSWORD")
			if password == "" {
				return fmt.Errorf("MEDREC_ADMIN_PASSWORD is not set")
			}
			if strings.TrimSpace(username) == "" {
				return fmt.Errorf("--username is required")
			}

			hash, err := security.NewBcryptHasher(0).Hash(password)
			if err != nil {
				return err
			}

			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			user := &model.User{
				Username:     username,
				Email:        email,
				PasswordHash: hash,
				Role:         model.RoleAdmin,
				IsActive:     true,
			}
			if err := a.repos.Users.Create(cmd.Context(), user); err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			log.Info().Int64("user_id", user.ID).Str("username", username).Msg("admin created")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func auditCleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "audit-cleanup",
		Short: "Delete audit log entries past the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("days") {
				days = a.cfg.Audit.RetentionDays
			}
			_, err = worker.NewAuditCleanupWorker(a.repos.Audit, days).RunOnce(cmd.Context())
			return err
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "retention in days (defaults to audit.retention_days)")
	return cmd
}
