// Package wallet описывает границу с провайдером кошелька (расширение браузера или узел JSON-RPC).
package wallet

import (
	"context"
	"strings"
)

// Provider - внешний провайдер кошелька.
type Provider interface {
	// RequestAccounts запрашивает доступ к аккаунтам; пустой список - пользователь ничего не разрешил.
	RequestAccounts(ctx context.Context) ([]string, error)
	// ChainID возвращает идентификатор текущей сети (например, "0x1").
	ChainID(ctx context.Context) (string, error)
}

// ReportedProvider - провайдер, чьи ответы браузер уже получил от расширения
// и передал в запросе к API.
type ReportedProvider struct {
	Accounts []string
	Chain    string
}

var _ Provider = (*ReportedProvider)(nil)

// NewReportedProvider собирает провайдер из данных, присланных клиентом.
// Пустые адреса отбрасываются.
func NewReportedProvider(accounts []string, chainID string) *ReportedProvider {
	cleaned := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if a = strings.TrimSpace(a); a != "" {
			cleaned = append(cleaned, a)
		}
	}
	return &ReportedProvider{Accounts: cleaned, Chain: strings.TrimSpace(chainID)}
}

func (p *ReportedProvider) RequestAccounts(context.Context) ([]string, error) {
	return append([]string(nil), p.Accounts...), nil
}

func (p *ReportedProvider) ChainID(context.Context) (string, error) {
	return p.Chain, nil
}
