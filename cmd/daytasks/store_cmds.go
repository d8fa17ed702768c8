package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daytasks/internal/config"
	"github.com/sandeepkv93/daytasks/internal/export"
	"github.com/sandeepkv93/daytasks/internal/model"
	"github.com/sandeepkv93/daytasks/internal/ops"
	"github.com/sandeepkv93/daytasks/internal/storage"
)

// offline skips transport token checks for commands that only touch the store.
func offline(c *config.Config) {
	c.Bot.Transport = config.TransportConsole
}

func openOffline(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := loadConfig(flags, offline)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, os.Stderr)
}

func exportCmd(flags *rootFlags) *cobra.Command {
	var format, out, user string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task as CSV, JSON or XLSX",
		Long: `Export flattens the store into one row per task: user, date, position,
task text and completion. Without --out the rows go to stdout.

Examples:
  daytasks export --format csv
  daytasks export --out tasks.xlsx --user 123456`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f, err := resolveFormat(format, out)
			if err != nil {
				return err
			}
			a, err := openOffline(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.store.Export(ctx)
			if err != nil {
				return fmt.Errorf("read store: %w", err)
			}
			rows := export.Rows(snap, strings.TrimSpace(user))
			if out == "" {
				return export.Write(cmd.OutOrStdout(), f, rows)
			}
			if err := export.WriteFile(out, f, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", len(rows), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "csv, json or xlsx (default from --out extension, else csv)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	cmd.Flags().StringVarP(&user, "user", "u", "", "only export this user id")
	return cmd
}

func resolveFormat(format, out string) (string, error) {
	switch {
	case format != "":
		return export.ParseFormat(format)
	case out != "":
		return export.FormatFromPath(out)
	default:
		return export.FormatCSV, nil
	}
}

func migrateCmd(flags *rootFlags) *cobra.Command {
	var to storage.Options
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every task from the configured store into another backend",
		Long: `Migrate reads the configured store and replaces the contents of the
target store with it. Positions and completion flags are kept.

Examples:
  daytasks migrate --to-driver sqlite --to-path tasks.db
  daytasks migrate --to-driver gorm --to-dialect mysql --to-dsn 'user:pass@tcp(db:3306)/daytasks'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := to.Validate(); err != nil {
				return fmt.Errorf("migrate target: %w (set --to-path or --to-dsn)", err)
			}
			a, err := openOffline(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			target, err := storage.Open(ctx, to)
			if err != nil {
				return fmt.Errorf("open target %s store: %w", to.Driver, err)
			}
			defer target.Close()

			snap, err := a.store.Export(ctx)
			if err != nil {
				return fmt.Errorf("read store: %w", err)
			}
			if err := target.Import(ctx, snap); err != nil {
				return fmt.Errorf("write target: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Migrated %d tasks for %d users\n", countTasks(snap), len(snap))
			return nil
		},
	}
	cmd.Flags().StringVar(&to.Driver, "to-driver", storage.DriverSQLite, "json, sqlite or gorm")
	cmd.Flags().StringVar(&to.Path, "to-path", "", "target file for json and sqlite")
	cmd.Flags().StringVar(&to.Dialect, "to-dialect", storage.DialectSQLite, "gorm dialect: sqlite or mysql")
	cmd.Flags().StringVar(&to.DSN, "to-dsn", "", "gorm data source name")
	return cmd
}

func backupCmd(flags *rootFlags) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a gzipped snapshot of the store into backup.dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openOffline(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			snap := snapshotter(a)
			if list {
				files, err := snap.List()
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			}
			path, err := snap.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list existing snapshots instead of writing one")
	return cmd
}

func restoreCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "restore [snapshot]",
		Short: "Replace the store contents with a snapshot or a tasks.json file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := ops.ReadSnapshot(args[0])
			if err != nil {
				return err
			}
			a, err := openOffline(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Import(ctx, snap); err != nil {
				return fmt.Errorf("restore: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Restored %d tasks for %d users\n", countTasks(snap), len(snap))
			return nil
		},
	}
}

func countTasks(snap model.Snapshot) int {
	n := 0
	for _, days := range snap {
		for _, tasks := range days {
			n += len(tasks)
		}
	}
	return n
}
