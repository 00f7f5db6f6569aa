package i18n

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rpg-creator/shared/constants"
	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"
	"rpg-creator/shared/observable"

	"go.uber.org/zap"
)

// LanguageChange - уведомление о смене языка на устройстве.
type LanguageChange struct {
	DeviceID string `json:"deviceId"`
	Language string `json:"language"`
}

// Languages хранит язык интерфейса каждого устройства (ключ rpg-language).
type Languages struct {
	catalog *Catalog
	storage interfaces.DeviceStorage
	logger  *zap.Logger

	mu       sync.Mutex
	subjects map[string]*observable.Subject[LanguageChange]
}

// NewLanguages создает сервис языков поверх хранилища устройств.
func NewLanguages(catalog *Catalog, storage interfaces.DeviceStorage, logger *zap.Logger) *Languages {
	return &Languages{
		catalog:  catalog,
		storage:  storage,
		logger:   logger.Named("Languages"),
		subjects: make(map[string]*observable.Subject[LanguageChange]),
	}
}

// Catalog возвращает каталог переводов.
func (l *Languages) Catalog() *Catalog {
	return l.catalog
}

// Current возвращает язык устройства; en, если язык не выбирался.
func (l *Languages) Current(ctx context.Context, deviceID string) (string, error) {
	raw, err := l.storage.GetItem(ctx, deviceID, constants.StorageKeyLanguage)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return DefaultLanguage, nil
		}
		return "", fmt.Errorf("failed to read language: %w", err)
	}
	if !l.catalog.Supports(raw) {
		return l.catalog.Resolve(raw), nil
	}
	return raw, nil
}

// T переводит ключ на язык устройства. Ошибка чтения языка дает английский.
func (l *Languages) T(ctx context.Context, deviceID, key string) string {
	lang, err := l.Current(ctx, deviceID)
	if err != nil {
		lang = DefaultLanguage
	}
	return l.catalog.T(lang, key)
}

// Set сохраняет язык и уведомляет подписчиков устройства. Возвращает итоговый код языка.
func (l *Languages) Set(ctx context.Context, deviceID, raw string) (string, error) {
	lang := l.catalog.Resolve(raw)
	if err := l.storage.SetItem(ctx, deviceID, constants.StorageKeyLanguage, lang); err != nil {
		return "", fmt.Errorf("failed to save language: %w", err)
	}
	l.logger.Debug("Language changed", zap.String("deviceID", deviceID), zap.String("language", lang))
	l.subject(deviceID).Notify(LanguageChange{DeviceID: deviceID, Language: lang})
	return lang, nil
}

// Toggle переключает en <-> ko.
func (l *Languages) Toggle(ctx context.Context, deviceID string) (string, error) {
	current, err := l.Current(ctx, deviceID)
	if err != nil {
		return "", err
	}
	return l.Set(ctx, deviceID, Toggle(current))
}

// Subscribe подписывает fn на смену языка устройства.
func (l *Languages) Subscribe(deviceID string, fn func(LanguageChange)) (unsubscribe func()) {
	return l.subject(deviceID).Subscribe(fn)
}

func (l *Languages) subject(deviceID string) *observable.Subject[LanguageChange] {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.subjects[deviceID]
	if !ok {
		s = &observable.Subject[LanguageChange]{}
		l.subjects[deviceID] = s
	}
	return s
}
