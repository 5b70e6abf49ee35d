// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/slashkit/internal/command/core"
	"github.com/keshon/slashkit/internal/command/roll"
	"github.com/keshon/slashkit/internal/config"
	"github.com/keshon/slashkit/internal/discord"
	"github.com/keshon/slashkit/internal/logger"
	"github.com/keshon/slashkit/pkg/cmd"

	"go.uber.org/zap"
)

func main() {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogDevelopment); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.L()

	if !envLoaded {
		log.Info("no .env file found, using process environment")
	}
	if err := cfg.RequireToken(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := cmd.NewRegistry(cmd.WithLogger(log.Named("commands")))
	bot := discord.NewBot(registry, discord.Options{
		Prefix:       cfg.CommandPrefix,
		GuildID:      cfg.GuildID,
		SyncCommands: cfg.SyncCommands,
		SyncRate:     cfg.SyncRate,
		Logger:       log.Named("discord"),
	})
	for _, register := range []func(core.Registrar) error{core.Register, roll.Register} {
		if err := register(bot); err != nil {
			log.Fatal("failed to register commands", zap.Error(err))
		}
	}
	log.Info("starting bot", zap.Int("commands", len(registry.Commands())), zap.String("prefix", cfg.CommandPrefix))

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx, cfg.DiscordToken); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info("received signal, shutting down", zap.String("signal", s.String()))
		cancel()
		// Wait for the session to close.
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error("discord bot error", zap.Error(err))
		}
		cancel()
	}

	log.Info("discord bot exited cleanly")
}
