package database

import (
	"context"
	"errors"
	"fmt"

	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ interfaces.DeviceStorage = (*redisDeviceStorage)(nil)

type redisDeviceStorage struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisDeviceStorage создает хранилище, в котором каждое устройство - отдельный hash:
// {prefix}:device:{deviceID} -> { key: value }.
func NewRedisDeviceStorage(client *redis.Client, keyPrefix string, logger *zap.Logger) interfaces.DeviceStorage {
	return &redisDeviceStorage{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger.Named("RedisDeviceStorage"),
	}
}

func (r *redisDeviceStorage) deviceKey(deviceID string) string {
	if r.keyPrefix == "" {
		return fmt.Sprintf("device:%s", deviceID)
	}
	return fmt.Sprintf("%s:device:%s", r.keyPrefix, deviceID)
}

func (r *redisDeviceStorage) GetItem(ctx context.Context, deviceID, key string) (string, error) {
	value, err := r.client.HGet(ctx, r.deviceKey(deviceID), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", models.ErrNotFound
		}
		r.logger.Error("Failed to get item from redis", zap.Error(err), zap.String("deviceID", deviceID), zap.String("key", key))
		return "", fmt.Errorf("failed to get item from redis: %w", err)
	}
	return value, nil
}

func (r *redisDeviceStorage) SetItem(ctx context.Context, deviceID, key, value string) error {
	if err := r.client.HSet(ctx, r.deviceKey(deviceID), key, value).Err(); err != nil {
		r.logger.Error("Failed to set item in redis", zap.Error(err), zap.String("deviceID", deviceID), zap.String("key", key))
		return fmt.Errorf("failed to set item in redis: %w", err)
	}
	r.logger.Debug("Item stored in redis", zap.String("deviceID", deviceID), zap.String("key", key), zap.Int("size", len(value)))
	return nil
}

func (r *redisDeviceStorage) RemoveItem(ctx context.Context, deviceID, key string) error {
	if err := r.client.HDel(ctx, r.deviceKey(deviceID), key).Err(); err != nil {
		r.logger.Error("Failed to remove item from redis", zap.Error(err), zap.String("deviceID", deviceID), zap.String("key", key))
		return fmt.Errorf("failed to remove item from redis: %w", err)
	}
	return nil
}
