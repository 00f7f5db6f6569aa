package models

import "errors"

// Стандартные ошибки платформы.
var (
	// Общие ошибки ресурсов / хранилища
	ErrNotFound = errors.New("resource not found")

	// Ошибки сессии и аутентификации
	ErrDuplicateIdentity  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrWalletUnavailable  = errors.New("wallet provider is not available, please install a wallet extension to continue")
	ErrNoAccounts         = errors.New("no accounts found, please connect your wallet")

	// Ошибки токенов устройства
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Ошибки входных данных
	ErrValidationFailed = errors.New("validation failed")

	// Ошибки внешних вызовов (генерация текста)
	ErrRemoteCallFailed = errors.New("remote call failed")

	// Ошибки проигрывания истории
	ErrInvalidChoice        = errors.New("invalid choice index")
	ErrTransitionInProgress = errors.New("story transition is already in progress")
	ErrSessionNotStarted    = errors.New("play session is not started")

	// Ошибки редактора
	ErrNoActiveProject = errors.New("no active studio project")
	ErrNoActiveScene   = errors.New("no scene selected, create a scene first")
)

// Ключи переводов для ошибок валидации форм.
const (
	ValidationFillAllFields    = "fillAllFields"
	ValidationUsernameRequired = "usernameRequired"
	ValidationPasswordMismatch = "passwordMismatch"
	ValidationPasswordTooShort = "passwordTooShort"
)

// ValidationError описывает проваленную проверку формы.
// Key - ключ перевода, по которому клиенту показывается сообщение.
type ValidationError struct {
	Key string
}

// NewValidationError создает ошибку валидации с ключом перевода.
func NewValidationError(key string) *ValidationError {
	return &ValidationError{Key: key}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Key
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrValidationFailed).
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
