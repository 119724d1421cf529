package attest

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNonceLedgerReserve verifies deterministic advancement when the same
// instant is reserved repeatedly for one subject.
func TestNonceLedgerReserve(t *testing.T) {
	ledger := NewNonceLedger()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := now.UnixMilli()

	first := ledger.Reserve(subjectA, now)
	second := ledger.Reserve(subjectA, now)
	third := ledger.Reserve(subjectA, now)

	assert.Equal(t, big.NewInt(base), first)
	assert.Equal(t, big.NewInt(base+1), second)
	assert.Equal(t, big.NewInt(base+2), third)

	t.Run("reservations are recorded", func(t *testing.T) {
		assert.True(t, ledger.Issued(subjectA, first))
		assert.True(t, ledger.Issued(subjectA, third))
		assert.False(t, ledger.Issued(subjectA, big.NewInt(base+3)))
	})

	t.Run("subjects have independent nonce spaces", func(t *testing.T) {
		other := ledger.Reserve(subjectB, now)
		assert.Equal(t, big.NewInt(base), other)
		assert.False(t, ledger.Issued(subjectB, second))
	})
}

// TestNonceLedgerConcurrentReserve verifies uniqueness under a concurrent
// burst pinned to a single millisecond.
func TestNonceLedgerConcurrentReserve(t *testing.T) {
	ledger := NewNonceLedger()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	const burst = 200
	nonces := make([]*big.Int, burst)
	var wg sync.WaitGroup
	for i := range burst {
		wg.Add(1)
		go func() {
			defer wg.Done()
			nonces[i] = ledger.Reserve(subjectA, now)
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, burst)
	for _, n := range nonces {
		require.NotNil(t, n)
		_, dup := seen[n.String()]
		assert.False(t, dup, "nonce %s reserved twice", n)
		seen[n.String()] = struct{}{}
	}
	assert.Len(t, seen, burst)
}
