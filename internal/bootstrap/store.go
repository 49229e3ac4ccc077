// Package bootstrap assembles the message store selected by configuration.
package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"demochat/chat-widget/internal/config"
	chatgrpc "demochat/chat-widget/internal/grpc"
	"demochat/chat-widget/internal/repository"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Store is the widget's store plus whatever must be released on exit.
type Store struct {
	repository.MessageStore
	closers []func() error
}

func (s *Store) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

func OpenStore(cfg *config.Config, logger *logrus.Logger) (*Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendLocal:
		db, err := repository.OpenBadger(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.Storage.Path).Info("Using local storage")
		return &Store{
			MessageStore: repository.NewLocalStore(db, cfg.Storage.Key, logger),
			closers:      []func() error{db.Close},
		}, nil

	case config.BackendPostgres:
		repo, db, err := OpenPostgres(cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			MessageStore: repository.NewRemoteStore(repo, cfg.Chat.ID),
			closers:      []func() error{db.Close},
		}, nil

	case config.BackendGRPC:
		client, conn, err := chatgrpc.Dial(cfg.GRPC.Address, logger)
		if err != nil {
			return nil, err
		}
		logger.WithField("address", cfg.GRPC.Address).Info("Using chat service")
		return &Store{
			MessageStore: repository.NewRemoteStore(client, cfg.Chat.ID),
			closers:      []func() error{conn.Close},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// OpenPostgres connects, pings and makes sure the chat_messages table exists.
func OpenPostgres(cfg config.DatabaseConfig, logger *logrus.Logger) (repository.PostgresRepository, *sql.DB, error) {
	dsn := cfg.DSN()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Connected to PostgreSQL database")

	repo := repository.NewChatRepository(db, dsn, logger)
	if err := repo.InitializeTables(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initialize database tables: %w", err)
	}
	return repo, db, nil
}
