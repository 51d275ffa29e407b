package client

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"pump-launcher/internal/global"
)

const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
)

var (
	ErrConfirmTimeout = errors.New("transaction not confirmed in time")
	ErrTransaction    = errors.New("transaction failed on chain")
)

// TxError carries the on-chain error of a landed but failed transaction.
type TxError struct {
	Signature solana.Signature
	Err       interface{}
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransaction, e.Signature, e.Err)
}

func (e *TxError) Unwrap() error {
	return ErrTransaction
}

// ConfirmOpts controls how long SendAndConfirm waits.
type ConfirmOpts struct {
	Commitment   rpc.CommitmentType
	Timeout      time.Duration
	PollInterval time.Duration
}

func (o ConfirmOpts) withDefaults() ConfirmOpts {
	if o.Commitment == "" {
		o.Commitment = rpc.CommitmentFinalized
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultConfirmTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// BuildTransaction fetches a recent blockhash and signs the instructions with payer
// and any extra signers.
func BuildTransaction(
	ctx context.Context,
	cli *rpc.Client,
	instructions []solana.Instruction,
	payer solana.PrivateKey,
	signers ...solana.PrivateKey,
) (*solana.Transaction, error) {
	recent, err := cli.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, errors.Wrap(err, "get latest blockhash")
	}

	builder := global.NewTxBuilder(payer.PublicKey(), recent.Value.Blockhash)
	builder.AddInstruction(instructions...)
	return builder.BuildTx(append([]solana.PrivateKey{payer}, signers...))
}

// SendAndConfirm submits tx with preflight checks and waits until it reaches the
// requested commitment. The signature is returned whenever the node accepted the
// transaction, even if confirmation later fails.
func SendAndConfirm(
	ctx context.Context,
	cli *rpc.Client,
	tx *solana.Transaction,
	opts ConfirmOpts,
) (solana.Signature, *rpc.GetTransactionResult, error) {
	opts = opts.withDefaults()

	sig, err := cli.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: opts.Commitment,
	})
	if err != nil {
		return solana.Signature{}, nil, errors.Wrap(err, "send transaction")
	}
	logx.Debugf("[SendAndConfirm] sent %s", sig)

	result, err := WaitForTransaction(ctx, cli, sig, opts)
	if err != nil {
		return sig, nil, err
	}
	return sig, result, nil
}

// WaitForTransaction polls getTransaction until the transaction is found at the
// requested commitment. A transaction that landed with an error yields *TxError.
func WaitForTransaction(
	ctx context.Context,
	cli *rpc.Client,
	sig solana.Signature,
	opts ConfirmOpts,
) (*rpc.GetTransactionResult, error) {
	opts = opts.withDefaults()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var result *rpc.GetTransactionResult
	attempts := uint(opts.Timeout/opts.PollInterval) + 1
	err := retry.Do(func() error {
		out, err := GetTransactionByHash(ctx, cli, sig, opts.Commitment)
		if err != nil {
			return err
		}
		if out.Meta != nil && out.Meta.Err != nil {
			return retry.Unrecoverable(&TxError{Signature: sig, Err: out.Meta.Err})
		}
		result = out
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(opts.PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return result, nil
	}
	var txErr *TxError
	if errors.As(err, &txErr) {
		return nil, txErr
	}
	if ctx.Err() != nil || errors.Is(err, rpc.ErrNotFound) {
		if parent := context.Cause(ctx); errors.Is(parent, context.Canceled) {
			return nil, errors.Wrapf(parent, "wait for %s", sig)
		}
		return nil, errors.Wrapf(ErrConfirmTimeout, "%s after %s", sig, opts.Timeout)
	}
	return nil, errors.Wrapf(err, "wait for %s", sig)
}

// GetTransactionByHash fetches a transaction at commitment. "processed" is not
// accepted by getTransaction and is queried as "confirmed".
func GetTransactionByHash(
	ctx context.Context,
	cli *rpc.Client,
	sig solana.Signature,
	commitment rpc.CommitmentType,
) (*rpc.GetTransactionResult, error) {
	if commitment == rpc.CommitmentProcessed || commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	maxSupportedTransactionVersion := uint64(0)
	out, err := cli.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     commitment,
		Encoding:                       solana.EncodingBase64,
		MaxSupportedTransactionVersion: &maxSupportedTransactionVersion,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
