package sources

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/mbd888/riskscreen/internal/idgen"
	"github.com/mbd888/riskscreen/internal/retry"
	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/validation"
)

// ChainReader abstracts the go-ethereum client for testing.
type ChainReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

const (
	// highNonceThreshold marks an address as high-throughput.
	highNonceThreshold = 1000
	// dustBalanceWei: below ~0.001 ETH an address holds effectively nothing.
	dustBalanceWei = 1e15

	chainRetryAttempts = 3
	chainRetryBase     = 200 * time.Millisecond
)

// ChainSource inspects a wallet subject's on-chain footprint via an EVM RPC
// node. It flags high-throughput dust wallets (funds passed through, never
// held) and contract addresses posing as wallets. Non-wallet subjects come
// back clear.
type ChainSource struct {
	client ChainReader
	now    func() time.Time
}

// NewChainSource wraps an existing reader (usually *ethclient.Client).
func NewChainSource(client ChainReader) *ChainSource {
	return &ChainSource{client: client, now: time.Now}
}

// DialChain connects to the RPC endpoint and returns a chain source over it.
func DialChain(rpcURL string) (*ChainSource, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain source: dial %s: %w", rpcURL, err)
	}
	return NewChainSource(client), nil
}

func (s *ChainSource) Name() string { return "chain" }

// Ping verifies the RPC endpoint answers. Used by health checks.
func (s *ChainSource) Ping(ctx context.Context) error {
	_, err := s.client.NonceAt(ctx, common.Address{}, nil)
	return err
}

func (s *ChainSource) Fetch(ctx context.Context, subject signal.Subject) (*signal.Finding, error) {
	if subject.Kind != signal.KindWallet {
		return nil, nil
	}
	if !validation.IsValidChainAddress(subject.WalletAddress) {
		return nil, fmt.Errorf("chain source: invalid address %q", subject.WalletAddress)
	}
	addr := common.HexToAddress(subject.WalletAddress)

	var (
		balance *big.Int
		nonce   uint64
		code    []byte
	)
	err := retry.Do(ctx, chainRetryAttempts, chainRetryBase, func() error {
		var err error
		if balance, err = s.client.BalanceAt(ctx, addr, nil); err != nil {
			return err
		}
		if nonce, err = s.client.NonceAt(ctx, addr, nil); err != nil {
			return err
		}
		code, err = s.client.CodeAt(ctx, addr, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("chain source: read state for %s: %w", subject.WalletAddress, err)
	}

	if len(code) > 0 {
		return &signal.Finding{
			ID:           idgen.WithPrefix("fnd_"),
			Source:       s.Name(),
			Category:     signal.CategoryCrypto,
			Severity:     signal.SeverityMedium,
			Score:        15,
			Message:      "subject address is a deployed contract, not an externally owned account",
			EvidenceRefs: []string{subject.WalletAddress},
			ObservedAt:   s.now().UTC(),
		}, nil
	}

	if nonce >= highNonceThreshold && balance.Cmp(big.NewInt(dustBalanceWei)) < 0 {
		msg := fmt.Sprintf("high-throughput dust wallet: %d outgoing transactions, balance below 0.001 ETH", nonce)
		return &signal.Finding{
			ID:           idgen.WithPrefix("fnd_"),
			Source:       s.Name(),
			Category:     signal.CategoryCrypto,
			Severity:     signal.SeverityMedium,
			Score:        20,
			Message:      msg,
			EvidenceRefs: []string{subject.WalletAddress},
			ObservedAt:   s.now().UTC(),
		}, nil
	}

	return nil, nil
}
