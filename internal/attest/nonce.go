package attest

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// NonceLedger records every nonce ever issued per subject, in process
// memory. Reservation is atomic with respect to concurrent issuance for the
// same subject: a nonce is recorded before the caller sees it, so two
// requests in the same clock tick can never receive the same value.
//
// A production deployment must externalize this ledger to a durable,
// atomically-accessible store; in-memory state does not survive restarts or
// span multiple instances.
type NonceLedger struct {
	mu     sync.Mutex
	issued map[common.Address]map[string]struct{}
}

// NewNonceLedger creates an empty ledger.
func NewNonceLedger() *NonceLedger {
	return &NonceLedger{issued: make(map[common.Address]map[string]struct{})}
}

// Reserve returns a nonce unique for the subject and records it before
// returning. The base value derives from the issuance instant; when that
// value is already taken, the ledger advances deterministically to the next
// unused value rather than retrying with fresh randomness, so burst load
// cannot produce unbounded retry loops.
func (l *NonceLedger) Reserve(subject common.Address, now time.Time) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	taken, ok := l.issued[subject]
	if !ok {
		taken = make(map[string]struct{})
		l.issued[subject] = taken
	}

	nonce := big.NewInt(now.UnixMilli())
	for {
		if _, used := taken[nonce.String()]; !used {
			break
		}
		nonce = new(big.Int).Add(nonce, big.NewInt(1))
	}
	taken[nonce.String()] = struct{}{}
	return nonce
}

// Issued reports whether the given nonce was ever reserved for the subject.
func (l *NonceLedger) Issued(subject common.Address, nonce *big.Int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	taken, ok := l.issued[subject]
	if !ok {
		return false
	}
	_, used := taken[nonce.String()]
	return used
}
