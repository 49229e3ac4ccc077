package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"demochat/chat-widget/internal/bootstrap"
	"demochat/chat-widget/internal/config"
	chatgrpc "demochat/chat-widget/internal/grpc"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// The service always logs to stderr.
	cfg.Logging.File = ""
	logger, _, err := config.NewLogger(cfg.Logging)
	if err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}

	chatRepo, db, err := bootstrap.OpenPostgres(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	grpcSrv := chatgrpc.NewChatServer(chatRepo, logger)

	address := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	lis, err := net.Listen("tcp", address)
	if err != nil {
		logger.Fatalf("Failed to listen on %s: %v", address, err)
	}

	s := grpc.NewServer()
	chatgrpc.RegisterChatMessagesServer(s, grpcSrv)

	if cfg.GRPC.ReflectionEnabled {
		reflection.Register(s)
		logger.Info("gRPC reflection enabled")
	}

	go func() {
		logger.Infof("Starting gRPC server on %s", address)
		if err := s.Serve(lis); err != nil {
			logger.Fatalf("Failed to start gRPC server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gRPC server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GRPC.ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("gRPC server exited gracefully")
	case <-ctx.Done():
		logger.Info("gRPC server shutdown timeout")
		s.Stop()
	}

	logger.Info("Server exited")
}
