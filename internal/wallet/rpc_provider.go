package wallet

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rpg-creator/shared/models"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// RPCProvider обращается к узлу по JSON-RPC 2.0 (eth_requestAccounts, eth_chainId).
// Нужен для разработки против локального узла, когда браузерного расширения нет.
type RPCProvider struct {
	client *rpc.Client
	logger *zap.Logger
}

var _ Provider = (*RPCProvider)(nil)

// NewRPCProvider создает провайдер для узла по адресу url.
// Для http(s) соединение не открывается заранее, поэтому недоступный узел
// проявится только при первом вызове.
func NewRPCProvider(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (*RPCProvider, error) {
	client, err := rpc.DialOptions(ctx, url, rpc.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("wallet rpc: dial %s: %w", url, err)
	}
	return &RPCProvider{
		client: client,
		logger: logger.Named("WalletRPC"),
	}, nil
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.call(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *RPCProvider) ChainID(ctx context.Context) (string, error) {
	var chainID string
	if err := p.call(ctx, &chainID, "eth_chainId"); err != nil {
		return "", err
	}
	return chainID, nil
}

// Close закрывает клиент узла.
func (p *RPCProvider) Close() {
	p.client.Close()
}

// call выполняет запрос к узлу. Любой сбой (транспорт, ошибка узла, разбор ответа)
// означает, что кошелек недоступен.
func (p *RPCProvider) call(ctx context.Context, result any, method string) error {
	if err := p.client.CallContext(ctx, result, method); err != nil {
		p.logger.Warn("Wallet RPC request failed", zap.String("method", method), zap.Error(err))
		return fmt.Errorf("%w: wallet rpc %s: %v", models.ErrWalletUnavailable, method, err)
	}
	return nil
}
