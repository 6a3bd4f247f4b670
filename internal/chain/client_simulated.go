package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"nilgate/pkg/domain"
	"nilgate/pkg/platform/sentinel"
)

// SimulatedClient is an in-process chain for development and tests. Tx refs
// are deterministic hashes of their inputs; failures are programmable so
// payout retry behavior can be exercised without a network.
type SimulatedClient struct {
	mu          sync.Mutex
	minted      map[domain.ChainDealID]MintParams
	distributed map[domain.ChainDealID]string

	// FailDistributions makes the next N Distribute calls fail with
	// ErrUnavailable before any transfer is recorded.
	failDistributions int
}

func NewSimulatedClient() *SimulatedClient {
	return &SimulatedClient{
		minted:      make(map[domain.ChainDealID]MintParams),
		distributed: make(map[domain.ChainDealID]string),
	}
}

// FailNextDistributions programs transient distribution failures.
func (c *SimulatedClient) FailNextDistributions(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failDistributions = n
}

func (c *SimulatedClient) MintDealRecord(ctx context.Context, p MintParams) (*MintResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	chainID := domain.ChainDealID("nil-" + uuid.NewString())
	c.minted[chainID] = p

	sum := sha256.Sum256([]byte(chainID.String() + p.Vault.String() + p.Brand.String()))
	contract := domain.Address("0x" + hex.EncodeToString(sum[:20]))
	return &MintResult{ChainDealID: chainID, Contract: contract}, nil
}

func (c *SimulatedClient) Distribute(ctx context.Context, chainID domain.ChainDealID, splits domain.SplitConfig) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failDistributions > 0 {
		c.failDistributions--
		return nil, fmt.Errorf("simulated distribution failure: %w", sentinel.ErrUnavailable)
	}
	params, ok := c.minted[chainID]
	if !ok {
		return nil, fmt.Errorf("deal %s not minted: %w", chainID, sentinel.ErrNotFound)
	}
	if ref, ok := c.distributed[chainID]; ok {
		// The chain itself is idempotent per deal record.
		return &Receipt{TxRef: ref, Distributor: c.contractFor(chainID, params)}, nil
	}
	if !splits.Total().Equal(params.Amount) {
		return nil, fmt.Errorf("splits do not sum to minted amount: %w", sentinel.ErrConflict)
	}

	sum := sha256.Sum256([]byte("tx:" + chainID.String()))
	ref := "0x" + hex.EncodeToString(sum[:])
	c.distributed[chainID] = ref
	return &Receipt{TxRef: ref, Distributor: c.contractFor(chainID, params)}, nil
}

func (c *SimulatedClient) ConfirmOnChain(ctx context.Context, chainID domain.ChainDealID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.minted[chainID]
	return ok, nil
}

func (c *SimulatedClient) contractFor(chainID domain.ChainDealID, p MintParams) domain.Address {
	sum := sha256.Sum256([]byte(chainID.String() + p.Vault.String() + p.Brand.String()))
	return domain.Address("0x" + hex.EncodeToString(sum[:20]))
}
