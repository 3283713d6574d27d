package ledger

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"surety/pkg/domain"
)

//go:generate mockgen -source=chain.go -destination=mocks/chain_mock.go -package=mocks Chain

// Chain is the ledger collaborator. ref is the intent id and is stable across
// retries so the chain side can deduplicate.
type Chain interface {
	Verify(ctx context.Context, wallet domain.WalletAddress, ref string) (Receipt, error)
	Stake(ctx context.Context, wallet domain.WalletAddress, amount domain.Amount, ref string) (Receipt, error)
	ReleaseWage(ctx context.Context, wallet domain.WalletAddress, amount domain.Amount, ref string) (Receipt, error)
}

// InMemoryChain confirms every call immediately with a deterministic hash.
type InMemoryChain struct {
	mu   sync.Mutex
	seen map[string]Receipt
}

func NewInMemoryChain() *InMemoryChain {
	return &InMemoryChain{seen: make(map[string]Receipt)}
}

func (c *InMemoryChain) Verify(_ context.Context, wallet domain.WalletAddress, ref string) (Receipt, error) {
	return c.submit(ActionVerify, wallet, domain.Zero, ref), nil
}

func (c *InMemoryChain) Stake(_ context.Context, wallet domain.WalletAddress, amount domain.Amount, ref string) (Receipt, error) {
	return c.submit(ActionStake, wallet, amount, ref), nil
}

func (c *InMemoryChain) ReleaseWage(_ context.Context, wallet domain.WalletAddress, amount domain.Amount, ref string) (Receipt, error) {
	return c.submit(ActionReleaseWage, wallet, amount, ref), nil
}

func (c *InMemoryChain) submit(action Action, wallet domain.WalletAddress, amount domain.Amount, ref string) Receipt {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.seen[ref]; ok {
		return r
	}
	sum := sha256.Sum256([]byte(string(action) + "|" + string(wallet) + "|" + amount.String() + "|" + ref))
	r := Receipt{TxHash: common.BytesToHash(sum[:]).Hex(), Confirmed: true}
	c.seen[ref] = r
	return r
}

// Submissions returns how many distinct refs were accepted.
func (c *InMemoryChain) Submissions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}
