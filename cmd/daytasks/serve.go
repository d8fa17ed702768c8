package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daytasks/internal/config"
	"github.com/sandeepkv93/daytasks/internal/ops"
	"github.com/sandeepkv93/daytasks/internal/transport/console"
	"github.com/sandeepkv93/daytasks/internal/transport/slackbot"
	"github.com/sandeepkv93/daytasks/internal/transport/telegram"
	"github.com/sandeepkv93/daytasks/internal/update"
	"github.com/sandeepkv93/daytasks/internal/views"
)

const (
	consoleLogFile = "daytasks-console.log"
	pruneSchedule  = "@every 10m"
)

func serveCmd(flags *rootFlags) *cobra.Command {
	var transportName string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot on the configured transport",
		Long: `Run the bot until interrupted.

The transport comes from bot.transport (telegram, slack or console) unless
--transport overrides it. Backups run on backup.schedule when it is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags, transportName)
		},
	}
	cmd.Flags().StringVarP(&transportName, "transport", "t", "", "telegram, slack or console")
	return cmd
}

func consoleCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Chat with the bot in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags, config.TransportConsole)
		},
	}
}

func runServe(cmd *cobra.Command, flags *rootFlags, override string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(flags, func(c *config.Config) {
		if override != "" {
			c.Bot.Transport = override
		}
	})
	if err != nil {
		return err
	}
	transportName := cfg.Bot.Transport

	// The console owns the terminal, so its logs go to a file.
	var logTo io.Writer = os.Stderr
	if transportName == config.TransportConsole {
		f, err := os.OpenFile(consoleLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open console log: %w", err)
		}
		defer f.Close()
		logTo = f
	}

	a, err := newApp(ctx, cfg, logTo)
	if err != nil {
		return err
	}
	defer a.Close()

	renderer, err := views.NewRenderer(a.cfg.Bot.Locale)
	if err != nil {
		return err
	}
	ctrl, err := update.NewController(update.Options{
		Store:    a.store,
		Renderer: renderer,
		Logger:   a.log,
	})
	if err != nil {
		return err
	}

	sched, err := newScheduler(ctx, a, ctrl)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	a.log.Info("daytasks starting",
		slog.String("version", Version),
		slog.String("transport", transportName),
		slog.String("storage", a.cfg.Storage.Driver),
		slog.String("locale", a.cfg.Bot.Locale),
	)

	switch transportName {
	case config.TransportTelegram:
		return telegram.Serve(ctx, telegram.Config{
			Token:       a.cfg.Telegram.Token,
			Debug:       a.cfg.Telegram.Debug,
			PollTimeout: a.cfg.Telegram.PollTimeout,
			Workers:     a.cfg.Bot.Workers,
		}, ctrl, a.log)
	case config.TransportSlack:
		return slackbot.Serve(ctx, slackbot.Config{
			BotToken: a.cfg.Slack.BotToken,
			AppToken: a.cfg.Slack.AppToken,
			Debug:    a.cfg.Slack.Debug,
			Workers:  a.cfg.Bot.Workers,
		}, ctrl, a.log)
	case config.TransportConsole:
		return console.Run(ctx, ctrl, a.cfg.Console.User)
	default:
		return fmt.Errorf("unknown transport %q", transportName)
	}
}

// newScheduler registers session pruning and, when backup.schedule is set, store snapshots.
func newScheduler(ctx context.Context, a *app, ctrl *update.Controller) (*ops.Scheduler, error) {
	sched := ops.NewScheduler(ctx, a.log)
	if ttl := a.cfg.Bot.SessionTTL; ttl > 0 {
		sessions := ctrl.Sessions()
		err := sched.Add(ops.Job{Name: "prune-sessions", Spec: pruneSchedule, Run: func(context.Context) error {
			if n := sessions.Prune(time.Now().Add(-ttl)); n > 0 {
				a.log.Info("sessions pruned", slog.Int("count", n), slog.Int("left", sessions.Len()))
			}
			return nil
		}})
		if err != nil {
			return nil, err
		}
	}
	if spec := a.cfg.Backup.Schedule; spec != "" {
		snap := snapshotter(a)
		err := sched.Add(ops.Job{Name: "backup", Spec: spec, Run: func(ctx context.Context) error {
			path, err := snap.Run(ctx)
			if err != nil {
				return err
			}
			a.log.Info("backup written", slog.String("path", path))
			return nil
		}})
		if err != nil {
			return nil, err
		}
	}
	return sched, nil
}

func snapshotter(a *app) *ops.Snapshotter {
	return &ops.Snapshotter{Source: a.store, Dir: a.cfg.Backup.Dir, Keep: a.cfg.Backup.Keep}
}
