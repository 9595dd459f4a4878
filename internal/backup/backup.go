// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

// Package backup creates scheduled snapshots of the credential store.
// Badger's streaming backup runs online; the server keeps serving while a
// snapshot is written.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/frankdean/trip-server-sub001/internal/logging"
)

// backupExt is the snapshot file extension.
const backupExt = ".bak"

// Config holds backup settings.
type Config struct {
	// Enabled turns scheduled backups on.
	Enabled bool `koanf:"enabled"`

	// Directory is where snapshot files are written.
	Directory string `koanf:"directory"`

	// Interval is the time between snapshots.
	Interval time.Duration `koanf:"interval"`

	// MaxBackups is how many snapshot files to retain. Older files are
	// pruned after each successful backup.
	MaxBackups int `koanf:"max_backups"`
}

// Manager writes and prunes credential store snapshots.
type Manager struct {
	db  *badger.DB
	cfg Config
}

// NewManager creates a backup manager over db.
func NewManager(db *badger.DB, cfg Config) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 7
	}
	return &Manager{db: db, cfg: cfg}
}

// CreateBackup writes one full snapshot and prunes old ones. The returned
// path names the new snapshot file.
func (m *Manager) CreateBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(m.cfg.Directory, 0o700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("trip-%s%s", time.Now().UTC().Format("20060102T150405Z"), backupExt)
	path := filepath.Join(m.cfg.Directory, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}

	_, err = m.db.Backup(f, 0)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		//nolint:errcheck // partial snapshot is useless
		os.Remove(path)
		return "", fmt.Errorf("backup failed: %w", err)
	}

	if err := m.prune(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("backup retention pruning failed")
	}
	return path, nil
}

// prune removes the oldest snapshots beyond the retention count. The
// timestamped names sort chronologically.
func (m *Manager) prune() error {
	entries, err := filepath.Glob(filepath.Join(m.cfg.Directory, "trip-*"+backupExt))
	if err != nil {
		return err
	}
	if len(entries) <= m.cfg.MaxBackups {
		return nil
	}
	sort.Strings(entries)
	for _, path := range entries[:len(entries)-m.cfg.MaxBackups] {
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	return nil
}

// Service runs the manager on its interval as a supervised service.
type Service struct {
	manager *Manager
}

// NewService wraps manager for supervision.
func NewService(manager *Manager) *Service {
	return &Service{manager: manager}
}

// Serve implements suture.Service.
func (s *Service) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.manager.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			path, err := s.manager.CreateBackup(ctx)
			if err != nil {
				logging.Ctx(ctx).Error().Err(err).Msg("scheduled backup failed")
				continue
			}
			logging.Ctx(ctx).Info().Str("path", path).Msg("backup written")
		}
	}
}

// String identifies the service in supervisor logs.
func (s *Service) String() string {
	return "store-backup"
}
