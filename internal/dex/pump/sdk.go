package pump

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	associated_token_account "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"pump-launcher/internal/client"
)

// Provider is the connection the SDK reads and writes through. Wallet is only a
// default identity; every transaction is signed by the keys passed to CreateAndBuy.
type Provider struct {
	Client     *rpc.Client
	Wallet     solana.PrivateKey
	Commitment rpc.CommitmentType
}

type PriorityFee struct {
	UnitLimit uint32
	UnitPrice uint64
}

// TransactionResult is the outcome of a submitted transaction. Signature is set once
// the node accepted it.
type TransactionResult struct {
	Success   bool
	Signature solana.Signature
	Err       error
	Results   *rpc.GetTransactionResult
}

type SDK struct {
	provider *Provider
	uploader *MetadataUploader
	confirm  client.ConfirmOpts
}

type Option func(*SDK)

func WithUploader(u *MetadataUploader) Option {
	return func(s *SDK) { s.uploader = u }
}

func WithConfirm(timeout, poll time.Duration) Option {
	return func(s *SDK) {
		s.confirm.Timeout = timeout
		s.confirm.PollInterval = poll
	}
}

func NewSDK(provider *Provider, opts ...Option) *SDK {
	if provider.Commitment == "" {
		provider.Commitment = rpc.CommitmentFinalized
	}
	s := &SDK{
		provider: provider,
		confirm:  client.ConfirmOpts{Commitment: provider.Commitment},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.uploader == nil {
		s.uploader = NewMetadataUploader(DefaultIpfsURL, 0)
	}
	return s
}

// GetGlobalAccount reads the protocol settings account.
func (s *SDK) GetGlobalAccount(ctx context.Context) (*GlobalAccount, error) {
	out, err := s.provider.Client.GetAccountInfoWithOpts(ctx, GetGlobalAccountPDA(), &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: s.provider.Commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, ErrGlobalNotFound
		}
		return nil, errors.Wrap(err, "get global account")
	}
	if out == nil || out.Value == nil {
		return nil, ErrGlobalNotFound
	}
	return DecodeGlobalAccount(out.Value.Data.GetBinary())
}

// GetBondingCurveAccount reads the curve of mint. It returns nil, nil when the curve
// does not exist.
func (s *SDK) GetBondingCurveAccount(ctx context.Context, mint solana.PublicKey) (*BondingCurveAccount, error) {
	out, err := s.provider.Client.GetAccountInfoWithOpts(ctx, GetBondingCurvePDA(mint), &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: s.provider.Commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get bonding curve of %s", mint)
	}
	if out == nil || out.Value == nil {
		return nil, nil
	}
	return DecodeBondingCurveAccount(out.Value.Data.GetBinary())
}

func (s *SDK) CreateTokenMetadata(ctx context.Context, meta CreateTokenMetadata) (*UploadResult, error) {
	return s.uploader.Upload(ctx, meta)
}

func (s *SDK) GetCreateInstructions(creator solana.PublicKey, name, symbol, uri string, mint solana.PublicKey) ([]solana.Instruction, error) {
	inst := NewCreateInstruction(name, symbol, uri, mint, creator)
	if err := inst.Validate(); err != nil {
		return nil, errors.Wrap(err, "create instruction")
	}
	logx.Debugf("[pump] %s", inst)
	return []solana.Instruction{inst}, nil
}

// GetBuyInstructions opens the buyer's token account and buys amount tokens for at
// most maxSolCost lamports.
func (s *SDK) GetBuyInstructions(
	buyer solana.PublicKey,
	mint solana.PublicKey,
	creator solana.PublicKey,
	feeRecipient solana.PublicKey,
	amount uint64,
	maxSolCost uint64,
) []solana.Instruction {
	inst := NewBuyInstruction(amount, maxSolCost, buyer, mint, creator, feeRecipient)
	logx.Debugf("[pump] %s", inst)
	return []solana.Instruction{
		associated_token_account.NewCreateInstruction(buyer, buyer, mint).Build(),
		inst,
	}
}

// CreateAndBuy uploads the metadata, then creates the token and optionally buys into
// it in one transaction signed by creator and mint. Failures before the transaction
// is built are returned as errors, as is cancellation of ctx at any stage; failures
// to land it are reported in the result.
func (s *SDK) CreateAndBuy(
	ctx context.Context,
	creator solana.PrivateKey,
	mint solana.PrivateKey,
	meta CreateTokenMetadata,
	buyAmountSol uint64,
	slippageBasisPoints uint64,
	fee *PriorityFee,
) (*TransactionResult, error) {
	uploaded, err := s.CreateTokenMetadata(ctx, meta)
	if err != nil {
		return nil, err
	}

	instrs := make([]solana.Instruction, 0, 5)
	if fee != nil {
		if fee.UnitLimit > 0 {
			instrs = append(instrs, computebudget.NewSetComputeUnitLimitInstruction(fee.UnitLimit).Build())
		}
		if fee.UnitPrice > 0 {
			instrs = append(instrs, computebudget.NewSetComputeUnitPriceInstruction(fee.UnitPrice).Build())
		}
	}

	create, err := s.GetCreateInstructions(creator.PublicKey(), meta.Name, meta.Symbol, uploaded.MetadataUri, mint.PublicKey())
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, create...)

	if buyAmountSol > 0 {
		global, err := s.GetGlobalAccount(ctx)
		if err != nil {
			return nil, err
		}
		amount := global.InitialBuyPrice(buyAmountSol)
		maxSolCost := CalculateWithSlippageBuy(buyAmountSol, slippageBasisPoints)
		instrs = append(instrs, s.GetBuyInstructions(
			creator.PublicKey(),
			mint.PublicKey(),
			creator.PublicKey(),
			global.FeeRecipient,
			amount,
			maxSolCost,
		)...)
	}

	tx, err := client.BuildTransaction(ctx, s.provider.Client, instrs, creator, mint)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "build transaction")
		}
		return &TransactionResult{Success: false, Err: err}, nil
	}

	sig, result, err := client.SendAndConfirm(ctx, s.provider.Client, tx, s.confirm)
	if err != nil {
		// a cancelled run is not a failed launch
		if ctx.Err() != nil {
			if !sig.IsZero() {
				logx.Infof("[pump] create %s interrupted after send: %s", mint.PublicKey(), sig)
			}
			return nil, errors.Wrapf(ctx.Err(), "confirm %s", mint.PublicKey())
		}
		logx.Errorf("[pump] create %s failed: %v", mint.PublicKey(), err)
		return &TransactionResult{Success: false, Signature: sig, Err: err}, nil
	}
	return &TransactionResult{
		Success:   true,
		Signature: sig,
		Results:   result,
	}, nil
}
