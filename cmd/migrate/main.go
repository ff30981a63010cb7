package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nyumbani/billing-service/internal/utils"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func main() {
	utils.InitLogger("billing-migrate")
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Billing service database migration tool",
	}
	rootCmd.AddCommand(upCmd(), statusCmd())

	if err := rootCmd.Execute(); err != nil {
		utils.Logger.Fatal(err)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			applied, err := appliedMigrations(cmd.Context(), conn)
			if err != nil {
				return err
			}

			for _, name := range migrationFiles() {
				if _, done := applied[name]; done {
					continue
				}
				sql, err := migrationFS.ReadFile("migrations/" + name)
				if err != nil {
					return err
				}

				tx, err := conn.Begin(cmd.Context())
				if err != nil {
					return err
				}
				if _, err := tx.Exec(cmd.Context(), string(sql)); err != nil {
					_ = tx.Rollback(cmd.Context())
					return fmt.Errorf("migration %s failed: %w", name, err)
				}
				if _, err := tx.Exec(cmd.Context(),
					`INSERT INTO schema_migrations (name, applied_at) VALUES ($1, NOW())`, name); err != nil {
					_ = tx.Rollback(cmd.Context())
					return err
				}
				if err := tx.Commit(cmd.Context()); err != nil {
					return err
				}
				utils.Logger.Infof("Applied %s", name)
			}
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			applied, err := appliedMigrations(cmd.Context(), conn)
			if err != nil {
				return err
			}
			for _, name := range migrationFiles() {
				state := "pending"
				if _, done := applied[name]; done {
					state = "applied"
				}
				fmt.Printf("%-10s %s\n", state, name)
			}
			return nil
		},
	}
}

func connect(ctx context.Context) (*pgx.Conn, error) {
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL env var is missing")
	}
	return pgx.Connect(ctx, dbURL)
}

func appliedMigrations(ctx context.Context, conn *pgx.Conn) (map[string]struct{}, error) {
	_, err := conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS schema_migrations (
            name TEXT PRIMARY KEY,
            applied_at TIMESTAMPTZ NOT NULL
        )`)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = struct{}{}
	}
	return applied, rows.Err()
}

func migrationFiles() []string {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		utils.Logger.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
