package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ban68/LePret-sub001/internal/infrastructure/config"
	"github.com/Ban68/LePret-sub001/internal/infrastructure/persistence/postgres"
	pkgpostgres "github.com/Ban68/LePret-sub001/pkg/postgres"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded schema migrations",
		Long: `Apply or roll back the SQL migrations compiled into the binary.

The database is taken from the DB_* environment variables or the file named
by FACTORING_CONFIG.

Examples:
  factoringctl migrate up
  factoringctl migrate version
  DB_NAME=factoring_test factoringctl migrate down`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(mg *pkgpostgres.Migrator) error {
				if err := mg.Up(); err != nil {
					return err
				}
				return printVersion(cmd, mg)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(mg *pkgpostgres.Migrator) error {
				if err := mg.Down(); err != nil {
					return err
				}
				return printVersion(cmd, mg)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(mg *pkgpostgres.Migrator) error {
				return printVersion(cmd, mg)
			})
		},
	})

	return cmd
}

func withMigrator(fn func(mg *pkgpostgres.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dsn := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}.DSN()

	mg, err := pkgpostgres.NewMigrator(postgres.Migrations(), postgres.MigrationsDir, dsn)
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

func printVersion(cmd *cobra.Command, mg *pkgpostgres.Migrator) error {
	v, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
	return nil
}
