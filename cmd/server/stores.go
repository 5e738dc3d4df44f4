package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mtxos/opsboard/internal/config"
	"github.com/mtxos/opsboard/internal/domain/activity"
	"github.com/mtxos/opsboard/internal/domain/catalog"
	"github.com/mtxos/opsboard/internal/domain/notification"
	"github.com/mtxos/opsboard/internal/domain/reminder"
	"github.com/mtxos/opsboard/internal/gormstore"
	"github.com/mtxos/opsboard/internal/identity"
	"github.com/mtxos/opsboard/internal/sqlite"
)

type apiKeyStore interface {
	identity.Resolver
	EnsureWorkspace(ctx context.Context, id, name string) error
}

// stores holds one backend's repositories.
type stores struct {
	reminders     reminder.Repository
	notifications notification.Repository
	activity      activity.Repository
	catalog       catalog.Repository
	apiKeys       apiKeyStore
	close         func() error
}

func openStores(cfg config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.DB.Driver {
	case "mysql":
		db, err := gormstore.Open(cfg.DB.DSN, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("mysql handle: %w", err)
		}
		logger.Info("using mysql store", "dsn", redactDSN(cfg.DB.DSN))
		return &stores{
			reminders:     gormstore.NewReminderRepository(db),
			notifications: gormstore.NewNotificationRepository(db),
			activity:      gormstore.NewActivityRepository(db),
			catalog:       gormstore.NewCatalogRepository(db),
			apiKeys:       gormstore.NewAPIKeyRepository(db),
			close:         sqlDB.Close,
		}, nil
	default:
		if err := ensureDir(cfg.DB.Path); err != nil {
			return nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.DB.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", "path", cfg.DB.Path)
		return &stores{
			reminders:     sqlite.NewReminderRepository(db),
			notifications: sqlite.NewNotificationRepository(db),
			activity:      sqlite.NewActivityRepository(db),
			catalog:       sqlite.NewCatalogRepository(db),
			apiKeys:       sqlite.NewAPIKeyRepository(db),
			close:         db.Close,
		}, nil
	}
}

// redactDSN drops the password from a user:pass@tcp(...) DSN.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	creds := dsn[:at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":***"
	}
	return creds + dsn[at:]
}
