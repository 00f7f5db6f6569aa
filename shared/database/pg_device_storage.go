package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	getDeviceItemQuery = `SELECT device_id, key, value, updated_at FROM device_items WHERE device_id = $1 AND key = $2`
	upsertDeviceItemQuery = `
        INSERT INTO device_items (device_id, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (device_id, key) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = NOW()
    `
	deleteDeviceItemQuery = `DELETE FROM device_items WHERE device_id = $1 AND key = $2`
)

var _ interfaces.DeviceStorage = (*pgDeviceStorage)(nil)

// deviceItemRow - строка таблицы device_items.
type deviceItemRow struct {
	DeviceID  string    `db:"device_id"`
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

type pgDeviceStorage struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgDeviceStorage создает хранилище устройств поверх PostgreSQL.
func NewPgDeviceStorage(db interfaces.DBTX, logger *zap.Logger) interfaces.DeviceStorage {
	return &pgDeviceStorage{
		db:     db,
		logger: logger.Named("PgDeviceStorage"),
	}
}

func (r *pgDeviceStorage) GetItem(ctx context.Context, deviceID, key string) (string, error) {
	var row deviceItemRow
	err := pgxscan.Get(ctx, r.db, &row, getDeviceItemQuery, deviceID, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		r.logger.Error("Failed to get device item from postgres", zap.Error(err), zap.String("deviceID", deviceID), zap.String("key", key))
		return "", fmt.Errorf("failed to get device item from postgres: %w", err)
	}
	return row.Value, nil
}

func (r *pgDeviceStorage) SetItem(ctx context.Context, deviceID, key, value string) error {
	r.logger.Debug("Executing query", zap.String("query", "upsertDeviceItem"), zap.String("deviceID", deviceID), zap.String("key", key))
	if _, err := r.db.Exec(ctx, upsertDeviceItemQuery, deviceID, key, value); err != nil {
		r.logger.Error("Failed to upsert device item in postgres", zap.Error(err), zap.String("deviceID", deviceID), zap.String("key", key))
		return fmt.Errorf("failed to upsert device item in postgres: %w", err)
	}
	return nil
}

func (r *pgDeviceStorage) RemoveItem(ctx context.Context, deviceID, key string) error {
	if _, err := r.db.Exec(ctx, deleteDeviceItemQuery, deviceID, key); err != nil {
		r.logger.Error("Failed to delete device item from postgres", zap.Error(err), zap.String("deviceID", deviceID), zap.String("key", key))
		return fmt.Errorf("failed to delete device item from postgres: %w", err)
	}
	return nil
}
