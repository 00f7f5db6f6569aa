package session

import (
	"errors"
	"strings"

	"rpg-creator/shared/models"

	"github.com/go-playground/validator/v10"
)

// RegisterInput - форма регистрации по email.
type RegisterInput struct {
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Username        string `json:"username" validate:"required"`
}

// LoginInput - форма входа по email.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// validationRule связывает (поле, тег) с ключом перевода и приоритетом.
type validationRule struct {
	key      string
	priority int
}

// Порядок проверок формы: сначала пустые поля, затем имя, совпадение паролей, длина.
var validationRules = map[string]validationRule{
	"Email.required":          {key: models.ValidationFillAllFields, priority: 0},
	"Password.required":       {key: models.ValidationFillAllFields, priority: 0},
	"Username.required":       {key: models.ValidationUsernameRequired, priority: 1},
	"ConfirmPassword.eqfield": {key: models.ValidationPasswordMismatch, priority: 2},
	"Password.min":            {key: models.ValidationPasswordTooShort, priority: 3},
}

var formValidator = validator.New(validator.WithRequiredStructEnabled())

// validateForm проверяет форму и возвращает первую по порядку проваленную проверку.
func validateForm(form any) error {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	best := validationRule{priority: -1}
	for _, fe := range fieldErrs {
		rule, ok := validationRules[fe.StructField()+"."+fe.Tag()]
		if !ok {
			continue
		}
		if best.priority < 0 || rule.priority < best.priority {
			best = rule
		}
	}
	if best.priority < 0 {
		return models.NewValidationError(models.ValidationFillAllFields)
	}
	return models.NewValidationError(best.key)
}

// normalizeEmail приводит email к виду, по которому ищутся записи.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
