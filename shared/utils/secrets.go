package utils

import (
	"fmt"
	"os"
	"strings"
)

// secretsDir - стандартный путь Docker Secrets. Переменная, чтобы тесты могли подменить каталог.
var secretsDir = "/run/secrets"

// ReadSecret читает секрет из файла Docker Secrets.
func ReadSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", secretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadSecretOrEnv читает секрет из файла, а если файла нет - из переменной окружения.
func ReadSecretOrEnv(secretName, envName string) (string, error) {
	if secret, err := ReadSecret(secretName); err == nil {
		return secret, nil
	}
	if value := strings.TrimSpace(os.Getenv(envName)); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("secret %s is not set: no secret file and %s is empty", secretName, envName)
}
