// Package chain implements the read-only client for the on-chain contract
// surface the issuer consults before signing. Writes are always performed
// by the end user's wallet, never by this service.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// readABI is the minimal read surface of the SocialScoreAttestator and
// ProfileSBT contracts. Only view functions appear here.
const readABI = `[
  {"name":"lastSubmissionTimestamp","type":"function","stateMutability":"view",
   "inputs":[{"name":"subject","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"name":"paused","type":"function","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"bool"}]},
  {"name":"isProviderAllowed","type":"function","stateMutability":"view",
   "inputs":[{"name":"providerId","type":"bytes32"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"name":"hasMinted","type":"function","stateMutability":"view",
   "inputs":[{"name":"subject","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]}
]`

// callTimeout bounds a single eth_call.
const callTimeout = 5 * time.Second

var _ ports.ScoreContract = (*Client)(nil)

// Client reads the attestation and profile contracts over JSON-RPC.
type Client struct {
	eth        *ethclient.Client
	parsed     abi.ABI
	attestator common.Address
	profile    common.Address
}

// NewClient dials the RPC endpoint and prepares the contract ABI.
func NewClient(rpcURL string, attestator, profile common.Address) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dialing rpc: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(readABI))
	if err != nil {
		return nil, fmt.Errorf("parsing abi: %w", err)
	}
	return &Client{eth: eth, parsed: parsed, attestator: attestator, profile: profile}, nil
}

// LastSubmissionTimestamp implements ports.ScoreContract.
func (c *Client) LastSubmissionTimestamp(ctx context.Context, subject common.Address) (uint64, error) {
	out, err := c.call(ctx, c.attestator, "lastSubmissionTimestamp", subject)
	if err != nil {
		return 0, err
	}
	ts, ok := out[0].(*big.Int)
	if !ok {
		return 0, ports.NewContractError("lastSubmissionTimestamp", fmt.Errorf("unexpected output type %T", out[0]))
	}
	return ts.Uint64(), nil
}

// IsPaused implements ports.ScoreContract.
func (c *Client) IsPaused(ctx context.Context) (bool, error) {
	out, err := c.call(ctx, c.attestator, "paused")
	if err != nil {
		return false, err
	}
	return outBool(out, "paused")
}

// IsProviderAllowed implements ports.ScoreContract.
func (c *Client) IsProviderAllowed(ctx context.Context, id domain.ProviderID) (bool, error) {
	out, err := c.call(ctx, c.attestator, "isProviderAllowed", [32]byte(id))
	if err != nil {
		return false, err
	}
	return outBool(out, "isProviderAllowed")
}

// HasMinted implements ports.ScoreContract.
func (c *Client) HasMinted(ctx context.Context, subject common.Address) (bool, error) {
	out, err := c.call(ctx, c.profile, "hasMinted", subject)
	if err != nil {
		return false, err
	}
	return outBool(out, "hasMinted")
}

// Close releases the underlying RPC connection.
func (c *Client) Close() { c.eth.Close() }

func (c *Client) call(ctx context.Context, to common.Address, method string, args ...any) ([]any, error) {
	data, err := c.parsed.Pack(method, args...)
	if err != nil {
		return nil, ports.NewContractError(method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	raw, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, ports.NewContractError(method, err)
	}

	out, err := c.parsed.Unpack(method, raw)
	if err != nil {
		return nil, ports.NewContractError(method, err)
	}
	if len(out) == 0 {
		return nil, ports.NewContractError(method, fmt.Errorf("empty return data"))
	}
	return out, nil
}

func outBool(out []any, method string) (bool, error) {
	b, ok := out[0].(bool)
	if !ok {
		return false, ports.NewContractError(method, fmt.Errorf("unexpected output type %T", out[0]))
	}
	return b, nil
}
