package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"demochat/chat-widget/internal/bootstrap"
	"demochat/chat-widget/internal/config"
	"demochat/chat-widget/internal/service"
	"demochat/chat-widget/internal/ui"
	"demochat/chat-widget/internal/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, logCloser, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	store, err := bootstrap.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close store")
		}
	}()

	chatService, err := service.NewChatService(store.MessageStore, cfg.Chat.ID, cfg.Chat.Participants, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	logger.WithField("chat_id", cfg.Chat.ID).Info("Starting chat widget")
	return ui.Run(ctx, chatService, view.NewAvatarCache(cfg.Chat.Participants, ""), logger)
}
