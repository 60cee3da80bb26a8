package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/bot"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
	discordadapter "github.com/judhveer/easternpanorama-office-taskbot/internal/chat/discord"
	slackadapter "github.com/judhveer/easternpanorama-office-taskbot/internal/chat/slack"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/config"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/dashboard"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/db"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the task bot and dashboard",
		Long:  "Connects to the configured chat platform, runs the workflow engine, and serves the dashboard API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "taskbot.yaml", "path to taskbot config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	adapter, err := createAdapter(cfg)
	if err != nil {
		return err
	}

	daemon, err := bot.NewDaemon(bot.DaemonOpts{
		DB:      gormDB,
		Config:  cfg,
		Adapter: adapter,
		Out:     cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- dashboard.Start(ctx, dashboard.StartOpts{
			DB:   gormDB,
			Port: cfg.Dashboard.Port,
			Out:  cmd.OutOrStdout(),
		})
	}()
	go func() {
		errCh <- daemon.Run(ctx)
	}()

	// First component to fail (or finish on shutdown) decides the exit.
	err = <-errCh
	cancel()
	<-errCh
	return err
}

// createAdapter builds the chat adapter for the configured platform.
func createAdapter(cfg *config.Config) (chat.Adapter, error) {
	switch cfg.Platform {
	case "discord":
		return discordadapter.New(discordadapter.AdapterOpts{
			BotToken: cfg.Discord.BotToken,
		})
	case "slack":
		return slackadapter.New(slackadapter.AdapterOpts{
			AppToken: cfg.Slack.AppToken,
			BotToken: cfg.Slack.BotToken,
		})
	case "mock":
		return chat.NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", cfg.Platform)
	}
}
