package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daytasks/internal/config"
	"github.com/sandeepkv93/daytasks/internal/storage"
)

var Version = "dev"

type rootFlags struct {
	configPath string
	envFile    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "daytasks failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "daytasks",
		Short:         "Day and week task tracker bot",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags, "")
		},
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default daytasks.yaml when present)")
	root.PersistentFlags().StringVar(&flags.envFile, "env", config.DefaultEnvFile, "dotenv file loaded before DAYTASKS_* variables")

	root.AddCommand(serveCmd(flags))
	root.AddCommand(consoleCmd(flags))
	root.AddCommand(exportCmd(flags))
	root.AddCommand(migrateCmd(flags))
	root.AddCommand(backupCmd(flags))
	root.AddCommand(restoreCmd(flags))
	return root
}

// app is the loaded config plus the resources every subcommand shares.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	store   storage.Repository
	closers []io.Closer
}

func loadConfig(flags *rootFlags, overrides ...func(*config.Config)) (config.Config, error) {
	return config.Load(flags.configPath, flags.envFile, overrides...)
}

func newApp(ctx context.Context, cfg config.Config, logTo io.Writer) (*app, error) {
	a := &app{cfg: cfg, log: cfg.Log.NewLogger(logTo)}
	store, err := storage.Open(ctx, storeOptions(cfg.Storage))
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	a.store = store
	a.closers = append(a.closers, store)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close failed", slog.Any("error", err))
		}
	}
}

func storeOptions(c config.StorageConfig) storage.Options {
	return storage.Options{Driver: c.Driver, Path: c.Path, Dialect: c.Dialect, DSN: c.DSN}
}
