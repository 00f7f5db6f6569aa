// Package session хранит текущую личность устройства и реализует вход по паролю и через кошелек.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rpg-creator/internal/wallet"
	"rpg-creator/shared/constants"
	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"
	"rpg-creator/shared/observable"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	emailAvatarURL  = "https://api.dicebear.com/7.x/avataaars/svg?seed=%s"
	walletAvatarURL = "https://api.dicebear.com/7.x/identicon/svg?seed=%s"
)

// IdentityChange - уведомление о смене текущей личности. Identity == nil после выхода.
type IdentityChange struct {
	DeviceID string           `json:"deviceId"`
	Identity *models.Identity `json:"identity"`
}

// Options - настройки хранилища сессий.
type Options struct {
	// Latency - искусственная задержка перед ответом на вход и регистрацию.
	Latency time.Duration
	// HashCost - стоимость bcrypt.
	HashCost int
	// IdleTTL - время жизни сессии без подписчиков в памяти Manager.
	IdleTTL time.Duration
}

// Store - сессия одного устройства. Изменяющие операции сериализуются opMu:
// запись в хранилище и уведомление подписчиков завершаются до возврата из метода.
type Store struct {
	deviceID string
	storage  interfaces.DeviceStorage
	opts     Options
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *zap.Logger

	opMu    sync.Mutex
	stateMu sync.RWMutex
	current *models.Identity
	subject observable.Subject[IdentityChange]
}

// Current возвращает копию текущей личности или nil.
func (s *Store) Current() *models.Identity {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return cloneIdentity(s.current)
}

// IsAuthenticated сообщает, есть ли текущая личность.
func (s *Store) IsAuthenticated() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.current != nil
}

// Subscribe подписывает fn на смену личности. Подписчики вызываются синхронно, в порядке подписки.
// Из колбэка можно читать Current, но нельзя вызывать изменяющие методы Store.
func (s *Store) Subscribe(fn func(IdentityChange)) (unsubscribe func()) {
	return s.subject.Subscribe(fn)
}

// RegisterWithEmail создает личность по email и паролю и делает ее текущей.
func (s *Store) RegisterWithEmail(ctx context.Context, in RegisterInput) (*models.Identity, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateForm(in); err != nil {
		s.recordAttempt("email_register", err)
		return nil, err
	}
	if err := s.sleep(ctx, s.opts.Latency); err != nil {
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range roster {
		if entry.Email != "" && normalizeEmail(entry.Email) == in.Email {
			s.recordAttempt("email_register", models.ErrDuplicateIdentity)
			s.logger.Info("Registration rejected: duplicate email", zap.String("email", in.Email))
			return nil, models.ErrDuplicateIdentity
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.HashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity := models.Identity{
		ID:         "user_" + uuid.NewString(),
		Email:      in.Email,
		Username:   in.Username,
		Avatar:     fmt.Sprintf(emailAvatarURL, in.Username),
		AuthMethod: models.AuthMethodEmail,
		CreatedAt:  s.now().UTC(),
	}
	roster = append(roster, models.RosterEntry{Identity: identity, PasswordHash: string(hash)})
	if err := s.saveRoster(ctx, roster); err != nil {
		return nil, err
	}
	if err := s.setCurrentLocked(ctx, &identity); err != nil {
		return nil, err
	}
	s.recordAttempt("email_register", nil)
	s.logger.Info("Identity registered", zap.String("identityID", identity.ID))
	return cloneIdentity(&identity), nil
}

// LoginWithEmail делает текущей личность, у которой совпали email и пароль.
func (s *Store) LoginWithEmail(ctx context.Context, in LoginInput) (*models.Identity, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateForm(in); err != nil {
		s.recordAttempt("email_login", err)
		return nil, err
	}
	if err := s.sleep(ctx, s.opts.Latency); err != nil {
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range roster {
		if entry.Email == "" || normalizeEmail(entry.Email) != in.Email || entry.PasswordHash == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(entry.PasswordHash), []byte(in.Password)) != nil {
			continue
		}
		identity := entry.Identity
		if err := s.setCurrentLocked(ctx, &identity); err != nil {
			return nil, err
		}
		s.recordAttempt("email_login", nil)
		return cloneIdentity(&identity), nil
	}
	s.recordAttempt("email_login", models.ErrInvalidCredentials)
	return nil, models.ErrInvalidCredentials
}

// ConnectWallet входит через провайдер кошелька: первый аккаунт становится ключом личности.
// nil-провайдер означает, что кошелька нет.
func (s *Store) ConnectWallet(ctx context.Context, provider wallet.Provider) (*models.Identity, error) {
	if provider == nil {
		s.recordAttempt("wallet", models.ErrWalletUnavailable)
		return nil, models.ErrWalletUnavailable
	}
	accounts, err := provider.RequestAccounts(ctx)
	if err != nil {
		s.recordAttempt("wallet", err)
		return nil, fmt.Errorf("failed to request wallet accounts: %w", err)
	}
	if len(accounts) == 0 {
		s.recordAttempt("wallet", models.ErrNoAccounts)
		return nil, models.ErrNoAccounts
	}
	address := accounts[0]
	chainID, err := provider.ChainID(ctx)
	if err != nil {
		s.recordAttempt("wallet", err)
		return nil, fmt.Errorf("failed to get wallet chain id: %w", err)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	var identity models.Identity
	found := false
	for i := range roster {
		if roster[i].WalletAddress == address {
			roster[i].ChainID = chainID
			identity = roster[i].Identity
			found = true
			break
		}
	}
	if !found {
		identity = models.Identity{
			ID:            "wallet_" + uuid.NewString(),
			WalletAddress: address,
			ChainID:       chainID,
			Username:      "User_" + lastN(address, 6),
			Avatar:        fmt.Sprintf(walletAvatarURL, address),
			AuthMethod:    models.AuthMethodWallet,
			CreatedAt:     s.now().UTC(),
		}
		roster = append(roster, models.RosterEntry{Identity: identity})
		s.logger.Info("Wallet identity created", zap.String("identityID", identity.ID))
	}
	if err := s.saveRoster(ctx, roster); err != nil {
		return nil, err
	}
	if err := s.setCurrentLocked(ctx, &identity); err != nil {
		return nil, err
	}
	s.recordAttempt("wallet", nil)
	return cloneIdentity(&identity), nil
}

// Logout очищает текущую личность. Запись в списке известных личностей остается.
func (s *Store) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if err := s.storage.RemoveItem(ctx, s.deviceID, constants.StorageKeyCurrentUser); err != nil {
		return fmt.Errorf("failed to clear current identity: %w", err)
	}
	s.setCurrentState(nil)
	s.notifyLocked()
	return nil
}

// UpdateProfile применяет патч к текущей личности и к ее записи в списке.
// Если записи в списке нет, состояние не меняется.
func (s *Store) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.Identity, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.updateProfileLocked(ctx, patch)
}

func (s *Store) updateProfileLocked(ctx context.Context, patch models.ProfilePatch) (*models.Identity, error) {
	if s.current == nil {
		return nil, models.ErrNotAuthenticated
	}
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	index := -1
	for i := range roster {
		if roster[i].ID == s.current.ID {
			index = i
			break
		}
	}
	if index < 0 {
		s.logger.Warn("Current identity is missing from roster, profile left untouched", zap.String("identityID", s.current.ID))
		return cloneIdentity(s.current), nil
	}

	patch.ApplyTo(&roster[index].Identity)
	if err := s.saveRoster(ctx, roster); err != nil {
		return nil, err
	}
	updated := cloneIdentity(s.current)
	patch.ApplyTo(updated)
	if err := s.setCurrentLocked(ctx, updated); err != nil {
		return nil, err
	}
	return cloneIdentity(updated), nil
}

// HandleAccountsChanged реагирует на событие провайдера "accounts changed":
// пустой список - выход, иначе повторное подключение, если текущая личность из кошелька.
func (s *Store) HandleAccountsChanged(ctx context.Context, accounts []string, provider wallet.Provider) (*models.Identity, error) {
	if len(accounts) == 0 {
		if err := s.Logout(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	current := s.Current()
	if current == nil || current.AuthMethod != models.AuthMethodWallet {
		return current, nil
	}
	return s.ConnectWallet(ctx, provider)
}

// HandleChainChanged обновляет сеть у личности из кошелька.
func (s *Store) HandleChainChanged(ctx context.Context, chainID string) (*models.Identity, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.current == nil || s.current.AuthMethod != models.AuthMethodWallet {
		return cloneIdentity(s.current), nil
	}
	return s.updateProfileLocked(ctx, models.ProfilePatch{ChainID: &chainID})
}

// setCurrentLocked сохраняет личность как текущую и уведомляет подписчиков.
func (s *Store) setCurrentLocked(ctx context.Context, identity *models.Identity) error {
	if err := interfaces.SaveJSON(ctx, s.storage, s.deviceID, constants.StorageKeyCurrentUser, identity); err != nil {
		return fmt.Errorf("failed to save current identity: %w", err)
	}
	s.setCurrentState(identity)
	s.notifyLocked()
	return nil
}

func (s *Store) setCurrentState(identity *models.Identity) {
	s.stateMu.Lock()
	s.current = cloneIdentity(identity)
	s.stateMu.Unlock()
}

func (s *Store) notifyLocked() {
	s.subject.Notify(IdentityChange{DeviceID: s.deviceID, Identity: s.Current()})
}

func (s *Store) loadRoster(ctx context.Context) ([]models.RosterEntry, error) {
	var roster []models.RosterEntry
	if _, err := interfaces.LoadJSON(ctx, s.storage, s.deviceID, constants.StorageKeyUsers, &roster); err != nil {
		return nil, fmt.Errorf("failed to load identity roster: %w", err)
	}
	return roster, nil
}

func (s *Store) saveRoster(ctx context.Context, roster []models.RosterEntry) error {
	if err := interfaces.SaveJSON(ctx, s.storage, s.deviceID, constants.StorageKeyUsers, roster); err != nil {
		return fmt.Errorf("failed to save identity roster: %w", err)
	}
	return nil
}

func (s *Store) recordAttempt(method string, err error) {
	outcome := "success"
	if err != nil {
		var ve *models.ValidationError
		switch {
		case errors.As(err, &ve):
			outcome = ve.Key
		case errors.Is(err, models.ErrDuplicateIdentity):
			outcome = "duplicate"
		case errors.Is(err, models.ErrInvalidCredentials):
			outcome = "invalid_credentials"
		case errors.Is(err, models.ErrWalletUnavailable):
			outcome = "wallet_unavailable"
		case errors.Is(err, models.ErrNoAccounts):
			outcome = "no_accounts"
		default:
			outcome = "error"
		}
	}
	authAttemptsTotal.WithLabelValues(method, outcome).Inc()
}

func cloneIdentity(identity *models.Identity) *models.Identity {
	if identity == nil {
		return nil
	}
	out := *identity
	return &out
}

// lastN возвращает последние n символов строки (вся строка, если она короче).
func lastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// sleepContext ждет d или отмены контекста.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
