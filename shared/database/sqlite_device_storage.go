package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // драйвер "sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS device_items (
    device_id  TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    PRIMARY KEY (device_id, key)
);`

var _ interfaces.DeviceStorage = (*SQLiteDeviceStorage)(nil)

// SQLiteDeviceStorage хранит значения устройств в файле SQLite (однопроцессный режим).
type SQLiteDeviceStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLiteDeviceStorage открывает (или создает) базу по пути и готовит схему.
// Путь ":memory:" дает временную базу, удобную в тестах.
func OpenSQLiteDeviceStorage(ctx context.Context, path string, logger *zap.Logger) (*SQLiteDeviceStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// Один писатель: SQLite не любит параллельные записи.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare sqlite schema: %w", err)
	}
	return &SQLiteDeviceStorage{db: db, logger: logger.Named("SQLiteDeviceStorage")}, nil
}

func (s *SQLiteDeviceStorage) GetItem(ctx context.Context, deviceID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM device_items WHERE device_id = ? AND key = ?`, deviceID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrNotFound
		}
		s.logger.Error("Failed to get device item from sqlite", zap.Error(err), zap.String("deviceID", deviceID), zap.String("key", key))
		return "", fmt.Errorf("failed to get device item from sqlite: %w", err)
	}
	return value, nil
}

func (s *SQLiteDeviceStorage) SetItem(ctx context.Context, deviceID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO device_items (device_id, key, value) VALUES (?, ?, ?)
        ON CONFLICT (device_id, key) DO UPDATE SET
            value = excluded.value,
            updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		deviceID, key, value)
	if err != nil {
		s.logger.Error("Failed to upsert device item in sqlite", zap.Error(err), zap.String("deviceID", deviceID), zap.String("key", key))
		return fmt.Errorf("failed to upsert device item in sqlite: %w", err)
	}
	return nil
}

func (s *SQLiteDeviceStorage) RemoveItem(ctx context.Context, deviceID, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM device_items WHERE device_id = ? AND key = ?`, deviceID, key); err != nil {
		s.logger.Error("Failed to delete device item from sqlite", zap.Error(err), zap.String("deviceID", deviceID), zap.String("key", key))
		return fmt.Errorf("failed to delete device item from sqlite: %w", err)
	}
	return nil
}

// Close закрывает базу.
func (s *SQLiteDeviceStorage) Close() error {
	return s.db.Close()
}
