package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/zeromicro/go-zero/core/logx"

	"pump-launcher/internal/config"
	"pump-launcher/internal/dex/pump"
	"pump-launcher/internal/global"
)

type Keystore interface {
	GetOrCreate(name string) (solana.PrivateKey, error)
}

type Chain interface {
	GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// PumpClient is the part of the pump.fun SDK the launch needs.
type PumpClient interface {
	GetGlobalAccount(ctx context.Context) (*pump.GlobalAccount, error)
	// GetBondingCurveAccount returns nil, nil when mint has no curve.
	GetBondingCurveAccount(ctx context.Context, mint solana.PublicKey) (*pump.BondingCurveAccount, error)
	CreateAndBuy(
		ctx context.Context,
		creator solana.PrivateKey,
		mint solana.PrivateKey,
		meta pump.CreateTokenMetadata,
		buyAmountSol uint64,
		slippageBasisPoints uint64,
		fee *pump.PriorityFee,
	) (*pump.TransactionResult, error)
}

type Settings struct {
	Endpoint            string
	PayerKey            string
	MintKey             string
	Tokens              []config.TokenSpec
	ImagePath           string
	InitialBuyLamports  uint64
	SlippageBasisPoints uint64
	PriorityFee         *pump.PriorityFee
	Delay               time.Duration
	ViewerURL           string
}

type Status int

const (
	StatusCompleted Status = iota
	StatusMissingEndpoint
	StatusUnfunded
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusMissingEndpoint:
		return "missing endpoint"
	case StatusUnfunded:
		return "unfunded"
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeFailed  Outcome = "failed"
	OutcomeExists  Outcome = "exists"
)

// Attempt is one pass of the creation loop.
type Attempt struct {
	Index     int
	Token     config.TokenSpec
	Mint      solana.PublicKey
	Outcome   Outcome
	Signature solana.Signature
	Err       error
}

type Summary struct {
	Status   Status
	Payer    solana.PublicKey
	Attempts []Attempt
	Stats    *Stats
}

type Launcher struct {
	logx.Logger
	settings Settings
	keys     Keystore
	chain    Chain
	pump     PumpClient

	out      io.Writer
	newMint  func() (solana.PrivateKey, error)
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	readFile func(name string) ([]byte, error)
}

type Option func(*Launcher)

func WithOutput(w io.Writer) Option {
	return func(l *Launcher) { l.out = w }
}

func WithMintGenerator(f func() (solana.PrivateKey, error)) Option {
	return func(l *Launcher) { l.newMint = f }
}

func WithClock(now func() time.Time) Option {
	return func(l *Launcher) { l.now = now }
}

func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Launcher) { l.sleep = sleep }
}

func WithFileReader(read func(name string) ([]byte, error)) Option {
	return func(l *Launcher) { l.readFile = read }
}

func New(ctx context.Context, settings Settings, keys Keystore, chain Chain, client PumpClient, opts ...Option) *Launcher {
	l := &Launcher{
		Logger:   logx.WithContext(ctx),
		settings: settings,
		keys:     keys,
		chain:    chain,
		pump:     client,
		out:      os.Stdout,
		newMint:  solana.NewRandomPrivateKey,
		now:      time.Now,
		sleep:    sleepContext,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (l *Launcher) printf(format string, args ...interface{}) {
	fmt.Fprintf(l.out, format, args...)
}

// Run performs one pass over the token table. Missing configuration and an empty
// funding account end the run early without error; network failures are returned.
func (l *Launcher) Run(ctx context.Context) (*Summary, error) {
	if l.settings.Endpoint == "" {
		l.printf("Please set HELIUS_RPC_URL in .env file\n")
		l.printf("Example: HELIUS_RPC_URL=https://mainnet.helius-rpc.com/?api-key=<your api key>\n")
		l.printf("Get one at: https://www.helius.dev\n")
		return &Summary{Status: StatusMissingEndpoint}, nil
	}

	payer, err := l.keys.GetOrCreate(l.settings.PayerKey)
	if err != nil {
		return nil, err
	}
	persistedMint, err := l.keys.GetOrCreate(l.settings.MintKey)
	if err != nil {
		return nil, err
	}
	summary := &Summary{Payer: payer.PublicKey()}

	balance, err := l.chain.GetBalance(ctx, payer.PublicKey())
	if err != nil {
		return nil, err
	}
	l.printf("Test Account keypair:%s SOL\n", formatSOL(balance))

	if err := l.printGlobal(ctx); err != nil {
		return nil, err
	}

	if balance == 0 {
		l.printf("Please send some SOL to the test-account: %s\n", payer.PublicKey())
		summary.Status = StatusUnfunded
		return summary, nil
	}

	if err := l.printGlobal(ctx); err != nil {
		return nil, err
	}
	if err := l.reportPersistedMint(ctx, persistedMint.PublicKey()); err != nil {
		return nil, err
	}

	stats := &Stats{Attempts: len(l.settings.Tokens), Start: l.now()}
	stats.InitialLamports, err = l.chain.GetBalance(ctx, payer.PublicKey())
	if err != nil {
		return nil, err
	}
	l.printf("\n💰 Initial SOL Balance: %s SOL\n", formatSOL(stats.InitialLamports))
	l.printf("⏰ Starting meme creation at: %s\n", stats.Start.Format(timeLayout))

	total := len(l.settings.Tokens)
	for i, token := range l.settings.Tokens {
		attempt, err := l.launchOne(ctx, payer, i+1, total, token)
		if err != nil {
			return nil, err
		}
		if attempt.Outcome == OutcomeCreated {
			stats.Successes++
		}
		summary.Attempts = append(summary.Attempts, attempt)

		if err := l.sleep(ctx, l.settings.Delay); err != nil {
			return nil, err
		}
	}

	stats.End = l.now()
	stats.FinalLamports, err = l.chain.GetBalance(ctx, payer.PublicKey())
	if err != nil {
		return nil, err
	}
	stats.Print(l.out)

	summary.Status = StatusCompleted
	summary.Stats = stats
	l.Infof("launch finished: %d/%d created, spent %.4f SOL", stats.Successes, stats.Attempts, stats.SpentSOL())
	return summary, nil
}

func (l *Launcher) launchOne(ctx context.Context, payer solana.PrivateKey, n, total int, token config.TokenSpec) (Attempt, error) {
	mint, err := l.newMint()
	if err != nil {
		return Attempt{}, err
	}
	attempt := Attempt{Index: n, Token: token, Mint: mint.PublicKey()}

	l.printf("\n--- Creating Meme %d/%d ---\n", n, total)
	l.printf("Mint: %s\n", mint.PublicKey())

	curve, err := l.pump.GetBondingCurveAccount(ctx, mint.PublicKey())
	if err != nil {
		return attempt, err
	}
	if curve != nil {
		l.printf("Meme %d already exists\n", n)
		attempt.Outcome = OutcomeExists
		return attempt, nil
	}

	image := token.Image
	if image == "" {
		image = l.settings.ImagePath
	}
	file, err := l.readFile(image)
	if err != nil {
		return attempt, err
	}

	res, err := l.pump.CreateAndBuy(ctx, payer, mint, pump.CreateTokenMetadata{
		Name:        token.Name,
		Symbol:      token.Symbol,
		Description: token.Description,
		File:        file,
		FileName:    filepath.Base(image),
		Twitter:     token.Twitter,
		Telegram:    token.Telegram,
		Website:     token.Website,
	},
		l.settings.InitialBuyLamports,
		l.settings.SlippageBasisPoints,
		l.settings.PriorityFee,
	)
	if err != nil {
		return attempt, err
	}
	attempt.Signature = res.Signature

	if !res.Success {
		l.printf("❌ Create failed for meme %d\n", n)
		attempt.Outcome = OutcomeFailed
		attempt.Err = res.Err
		l.Errorf("create %s (%s) failed: %v", token.Symbol, mint.PublicKey(), res.Err)
		return attempt, nil
	}

	l.printf("✅ Success %d: %s%s\n", n, l.settings.ViewerURL, mint.PublicKey())
	attempt.Outcome = OutcomeCreated

	curve, err = l.pump.GetBondingCurveAccount(ctx, mint.PublicKey())
	if err != nil {
		return attempt, err
	}
	if curve != nil {
		l.Infof("%s bonding curve market cap %.4f SOL, tx %s", token.Symbol, curve.MarketCapSOL(), res.Signature)
	}
	return attempt, nil
}

func (l *Launcher) printGlobal(ctx context.Context) error {
	g, err := l.pump.GetGlobalAccount(ctx)
	if err != nil {
		return err
	}
	l.printf("GlobalAccount {\n")
	l.printf("  initialized: %t,\n", g.Initialized)
	l.printf("  authority: %s,\n", g.Authority)
	l.printf("  feeRecipient: %s,\n", g.FeeRecipient)
	l.printf("  initialVirtualTokenReserves: %d,\n", g.InitialVirtualTokenReserves)
	l.printf("  initialVirtualSolReserves: %d,\n", g.InitialVirtualSOLReserves)
	l.printf("  initialRealTokenReserves: %d,\n", g.InitialRealTokenReserves)
	l.printf("  tokenTotalSupply: %d,\n", g.TokenTotalSupply)
	l.printf("  feeBasisPoints: %d\n", g.FeeBasisPoints)
	l.printf("}\n")
	return nil
}

// reportPersistedMint shows whether the stored mint keypair already backs a curve.
// It is informational only; launches always use fresh mints.
func (l *Launcher) reportPersistedMint(ctx context.Context, mint solana.PublicKey) error {
	curve, err := l.pump.GetBondingCurveAccount(ctx, mint)
	if err != nil {
		return err
	}
	if curve == nil {
		l.Infof("persisted mint %s has no bonding curve", mint)
		return nil
	}
	l.Infof("persisted mint %s has a bonding curve, complete=%t, market cap %.4f SOL",
		mint, curve.Complete, curve.MarketCapSOL())
	return nil
}

// formatSOL prints lamports as SOL without trailing zeros.
func formatSOL(lamports uint64) string {
	return strconv.FormatFloat(global.LamportsToSOL(lamports), 'f', -1, 64)
}
