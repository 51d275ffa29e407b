package global

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const defaultQueryTimeout = 10 * time.Second

// NewRPCClient returns a client that never issues more than rps requests per second.
// A non-positive rps disables the limiter.
func NewRPCClient(endpoint string, rps float64, burst int) *rpc.Client {
	if rps <= 0 {
		return rpc.New(endpoint)
	}
	if burst <= 0 {
		burst = 1
	}
	return rpc.NewWithCustomRPCClient(rpc.NewWithLimiter(endpoint, rate.Limit(rps), burst))
}

// Connection is the read side of the chain used by the launcher and the CLI.
type Connection struct {
	Client     *rpc.Client
	Commitment rpc.CommitmentType
}

func NewConnection(client *rpc.Client, commitment rpc.CommitmentType) *Connection {
	return &Connection{
		Client:     client,
		Commitment: commitment,
	}
}

// GetBalance returns the lamport balance of an account.
func (c *Connection) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	ctx, done := context.WithTimeout(ctx, defaultQueryTimeout)
	defer done()
	out, err := c.Client.GetBalance(ctx, account, c.Commitment)
	if err != nil {
		return 0, errors.Wrapf(err, "get balance of %s", account)
	}
	return out.Value, nil
}

// TokenBalance is an SPL balance of one owner for one mint.
type TokenBalance struct {
	Account  solana.PublicKey
	Amount   uint64
	Decimals uint8
	UiAmount string
}

// GetTokenBalance looks up the associated token account of owner for mint, trying the
// legacy token program first and then Token-2022. It returns nil when neither exists.
func (c *Connection) GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (*TokenBalance, error) {
	candidates := make([]solana.PublicKey, 0, 2)
	if ata, _, err := solana.FindAssociatedTokenAddress(owner, mint); err == nil {
		candidates = append(candidates, ata)
	}
	if ata, _, err := FindAssociatedTokenAddress2022(owner, mint); err == nil {
		candidates = append(candidates, ata)
	}

	for _, account := range candidates {
		qctx, exp := context.WithTimeout(ctx, defaultQueryTimeout)
		balance, err := c.Client.GetTokenAccountBalance(qctx, account, c.Commitment)
		exp()
		if err != nil {
			if IsAccountNotFound(err) {
				continue
			}
			return nil, errors.Wrapf(err, "get token balance of %s", account)
		}
		if balance == nil || balance.Value == nil {
			continue
		}
		amount, ok := new(big.Int).SetString(balance.Value.Amount, 10)
		if !ok || !amount.IsUint64() {
			return nil, fmt.Errorf("invalid token amount %q for %s", balance.Value.Amount, account)
		}
		return &TokenBalance{
			Account:  account,
			Amount:   amount.Uint64(),
			Decimals: balance.Value.Decimals,
			UiAmount: balance.Value.UiAmountString,
		}, nil
	}
	return nil, nil
}

// codeInvalidParams is what nodes answer for an account that does not exist:
// "Invalid param: could not find account".
const codeInvalidParams = -32602

// IsAccountNotFound reports whether err means the queried account does not exist.
func IsAccountNotFound(err error) bool {
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	var rpcErr *jsonrpc.RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == codeInvalidParams
}

// FindAssociatedTokenAddress2022 derives the associated token account of a Token-2022 mint.
func FindAssociatedTokenAddress2022(wallet, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{
		wallet[:],
		solana.Token2022ProgramID[:],
		mint[:],
	},
		solana.SPLAssociatedTokenAccountProgramID,
	)
}

// LamportsToSOL converts lamports to SOL for display.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / F1Lamp
}

// SignedLamportsToSOL is LamportsToSOL for deltas that may be negative.
func SignedLamportsToSOL(lamports int64) float64 {
	return float64(lamports) / F1Lamp
}

func ReduceDecimals(input *big.Int, decimals int) *big.Float {
	// 10的decimals次方
	power := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Float).Quo(new(big.Float).SetInt(input), new(big.Float).SetInt(power))
}

func ShortAddress(key solana.PublicKey) string {
	s := key.String()
	if len(s) < 10 {
		return s
	}
	return s[0:5] + "..." + s[len(s)-4:]
}
