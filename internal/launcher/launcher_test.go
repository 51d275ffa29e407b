package launcher

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pump-launcher/internal/config"
	"pump-launcher/internal/dex/pump"
)

type fakeKeys struct {
	mu    sync.Mutex
	keys  map[string]solana.PrivateKey
	calls []string
}

func (f *fakeKeys) GetOrCreate(name string) (solana.PrivateKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.keys == nil {
		f.keys = make(map[string]solana.PrivateKey)
	}
	if k, ok := f.keys[name]; ok {
		return k, nil
	}
	k, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	f.keys[name] = k
	return k, nil
}

// fakeChain returns balances in order and repeats the last one.
type fakeChain struct {
	balances []uint64
	calls    int
	err      error
}

func (f *fakeChain) GetBalance(_ context.Context, _ solana.PublicKey) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	i := f.calls
	if i >= len(f.balances) {
		i = len(f.balances) - 1
	}
	f.calls++
	return f.balances[i], nil
}

type createCall struct {
	payer, mint solana.PublicKey
	meta        pump.CreateTokenMetadata
	buy         uint64
	slippage    uint64
	fee         *pump.PriorityFee
}

type fakePump struct {
	curves      map[solana.PublicKey]*pump.BondingCurveAccount
	curveCalls  []solana.PublicKey
	globalCalls int
	creates     []createCall
	// fail decides the outcome of the n-th create, counted from 1
	fail      func(n int) bool
	curveErr  error
	createErr error
}

func newFakePump() *fakePump {
	return &fakePump{curves: make(map[solana.PublicKey]*pump.BondingCurveAccount)}
}

func (f *fakePump) GetGlobalAccount(context.Context) (*pump.GlobalAccount, error) {
	f.globalCalls++
	return &pump.GlobalAccount{
		Initialized:                 true,
		InitialVirtualTokenReserves: 1_073_000_000_000_000,
		InitialVirtualSOLReserves:   30_000_000_000,
		FeeBasisPoints:              100,
	}, nil
}

func (f *fakePump) GetBondingCurveAccount(_ context.Context, mint solana.PublicKey) (*pump.BondingCurveAccount, error) {
	f.curveCalls = append(f.curveCalls, mint)
	if f.curveErr != nil {
		return nil, f.curveErr
	}
	return f.curves[mint], nil
}

func (f *fakePump) CreateAndBuy(
	_ context.Context,
	creator solana.PrivateKey,
	mint solana.PrivateKey,
	meta pump.CreateTokenMetadata,
	buy uint64,
	slippage uint64,
	fee *pump.PriorityFee,
) (*pump.TransactionResult, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.creates = append(f.creates, createCall{creator.PublicKey(), mint.PublicKey(), meta, buy, slippage, fee})
	if f.fail != nil && f.fail(len(f.creates)) {
		return &pump.TransactionResult{Success: false, Err: errors.New("blockhash not found")}, nil
	}
	f.curves[mint.PublicKey()] = &pump.BondingCurveAccount{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSOLReserves:   30_000_000_000,
		TokenTotalSupply:     1_000_000_000_000_000,
	}
	return &pump.TransactionResult{Success: true, Signature: solana.Signature{byte(len(f.creates))}}, nil
}

var memeTable = []config.TokenSpec{
	{Name: "DOGE SUPREME", Symbol: "DOGES", Description: "The ultimate doge experience"},
	{Name: "PEPE KING", Symbol: "PEPEK", Description: "Rare pepe collection token"},
	{Name: "SHIBA MOON", Symbol: "SHIBM", Description: "Shiba inu to the moon"},
	{Name: "CAT COIN", Symbol: "CATC", Description: "Cats rule the blockchain"},
	{Name: "FROG PRINCE", Symbol: "FROGP", Description: "Frog prince of DeFi"},
	{Name: "ROCKET MEME", Symbol: "RKTM", Description: "Rocket fuel for your portfolio"},
	{Name: "DIAMOND HANDS", Symbol: "DMND", Description: "Diamond hands never sell"},
	{Name: "MOON SHOT", Symbol: "MOON", Description: "Moon mission activated"},
	{Name: "LASER EYES", Symbol: "LASER", Description: "Laser eyes see the future"},
	{Name: "CHAD COIN", Symbol: "CHAD", Description: "Chad energy token"},
}

func testSettings() Settings {
	return Settings{
		Endpoint:            "http://localhost:8899",
		PayerKey:            "test-account",
		MintKey:             "mint",
		Tokens:              memeTable,
		ImagePath:           "etc/random.png",
		SlippageBasisPoints: 100,
		PriorityFee:         &pump.PriorityFee{UnitLimit: 250_000, UnitPrice: 250_000},
		Delay:               time.Second,
		ViewerURL:           "https://pump.fun/",
	}
}

type harness struct {
	keys   *fakeKeys
	chain  *fakeChain
	pump   *fakePump
	out    *bytes.Buffer
	mints  []solana.PrivateKey
	sleeps []time.Duration
	reads  []string
}

func newHarness(t *testing.T, balances ...uint64) *harness {
	t.Helper()
	h := &harness{
		keys:  &fakeKeys{},
		chain: &fakeChain{balances: balances},
		pump:  newFakePump(),
		out:   new(bytes.Buffer),
	}
	for range memeTable {
		k, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		h.mints = append(h.mints, k)
	}
	return h
}

func (h *harness) launcher(settings Settings) *Launcher {
	next := 0
	start := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	clock := []time.Time{start, start.Add(25 * time.Second)}
	ticks := 0
	return New(context.Background(), settings, h.keys, h.chain, h.pump,
		WithOutput(h.out),
		WithMintGenerator(func() (solana.PrivateKey, error) {
			k := h.mints[next]
			next++
			return k, nil
		}),
		WithClock(func() time.Time {
			now := clock[ticks]
			if ticks < len(clock)-1 {
				ticks++
			}
			return now
		}),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			h.sleeps = append(h.sleeps, d)
			return ctx.Err()
		}),
		WithFileReader(func(name string) ([]byte, error) {
			h.reads = append(h.reads, name)
			return []byte("png:" + name), nil
		}),
	)
}

func TestRun_MissingEndpoint(t *testing.T) {
	h := newHarness(t, 1)
	settings := testSettings()
	settings.Endpoint = ""

	summary, err := h.launcher(settings).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusMissingEndpoint, summary.Status)
	assert.Contains(t, h.out.String(), "Please set HELIUS_RPC_URL in .env file")
	assert.Contains(t, h.out.String(), "https://www.helius.dev")

	assert.Empty(t, h.keys.calls)
	assert.Zero(t, h.chain.calls)
	assert.Zero(t, h.pump.globalCalls)
	assert.Empty(t, h.pump.curveCalls)
}

func TestRun_ZeroBalance(t *testing.T) {
	h := newHarness(t, 0)

	summary, err := h.launcher(testSettings()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusUnfunded, summary.Status)

	payer := h.keys.keys["test-account"].PublicKey()
	assert.Equal(t, payer, summary.Payer)
	assert.Contains(t, h.out.String(), "Please send some SOL to the test-account: "+payer.String())
	assert.Equal(t, []string{"test-account", "mint"}, h.keys.calls)

	assert.Equal(t, 1, h.pump.globalCalls)
	assert.Empty(t, h.pump.curveCalls)
	assert.Empty(t, h.pump.creates)
	assert.NotContains(t, h.out.String(), "Creating Meme")
	assert.Nil(t, summary.Stats)
}

func TestRun_AllSuccess(t *testing.T) {
	h := newHarness(t, 2_000_000_000, 2_000_000_000, 1_500_000_000)

	summary, err := h.launcher(testSettings()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, summary.Status)
	out := h.out.String()

	assert.Equal(t, 10, summary.Stats.Successes)
	assert.Equal(t, 10, summary.Stats.Attempts)
	require.Len(t, h.pump.creates, 10)
	require.Len(t, summary.Attempts, 10)

	payer := h.keys.keys["test-account"].PublicKey()
	seen := map[solana.PublicKey]bool{}
	for i, a := range summary.Attempts {
		assert.Equal(t, OutcomeCreated, a.Outcome)
		assert.Equal(t, h.mints[i].PublicKey(), a.Mint)
		assert.False(t, seen[a.Mint], "mint reused")
		seen[a.Mint] = true
		assert.Contains(t, out, fmt.Sprintf("✅ Success %d: https://pump.fun/%s\n", i+1, a.Mint))
		assert.Contains(t, out, fmt.Sprintf("--- Creating Meme %d/10 ---\nMint: %s\n", i+1, a.Mint))

		c := h.pump.creates[i]
		assert.Equal(t, payer, c.payer)
		assert.Equal(t, a.Mint, c.mint)
		assert.Equal(t, memeTable[i].Name, c.meta.Name)
		assert.Equal(t, memeTable[i].Symbol, c.meta.Symbol)
		assert.Equal(t, memeTable[i].Description, c.meta.Description)
		assert.Equal(t, []byte("png:etc/random.png"), c.meta.File)
		assert.Equal(t, "random.png", c.meta.FileName)
		assert.Zero(t, c.buy)
		assert.Equal(t, uint64(100), c.slippage)
		assert.Equal(t, &pump.PriorityFee{UnitLimit: 250_000, UnitPrice: 250_000}, c.fee)
	}
	// the persisted mint never signs a launch
	assert.False(t, seen[h.keys.keys["mint"].PublicKey()])

	// global before and after the balance gate
	assert.Equal(t, 2, h.pump.globalCalls)
	assert.Equal(t, 2, strings.Count(out, "GlobalAccount {"))

	// persisted mint once, then lookup and refetch per fresh mint
	require.Len(t, h.pump.curveCalls, 1+2*10)
	assert.Equal(t, h.keys.keys["mint"].PublicKey(), h.pump.curveCalls[0])

	assert.Len(t, h.sleeps, 10)
	for _, d := range h.sleeps {
		assert.Equal(t, time.Second, d)
	}
	assert.NotContains(t, out, "❌")
	assert.Contains(t, out, "🎯 Successful Creations: 10/10")
	assert.Contains(t, out, "💸 Average SOL per Meme: 0.0500 SOL")
}

func TestRun_FailureAtK(t *testing.T) {
	const k = 4
	h := newHarness(t, 1_000_000_000)
	h.pump.fail = func(n int) bool { return n == k }

	summary, err := h.launcher(testSettings()).Run(context.Background())
	require.NoError(t, err)
	out := h.out.String()

	assert.Equal(t, 9, summary.Stats.Successes)
	assert.Equal(t, 1, strings.Count(out, "❌"))
	assert.Contains(t, out, fmt.Sprintf("❌ Create failed for meme %d\n", k))
	assert.NotContains(t, out, fmt.Sprintf("✅ Success %d:", k))

	failed := summary.Attempts[k-1]
	assert.Equal(t, OutcomeFailed, failed.Outcome)
	assert.EqualError(t, failed.Err, "blockhash not found")

	// no retry, and the next token is still attempted
	assert.Len(t, h.pump.creates, 10)
	assert.Equal(t, OutcomeCreated, summary.Attempts[k].Outcome)
	assert.Contains(t, out, fmt.Sprintf("✅ Success %d: https://pump.fun/%s", k+1, h.mints[k].PublicKey()))
	assert.Len(t, h.sleeps, 10)
}

func TestRun_AllFailOmitsAverageSpend(t *testing.T) {
	h := newHarness(t, 1_000_000_000, 1_000_000_000, 999_000_000)
	h.pump.fail = func(int) bool { return true }

	summary, err := h.launcher(testSettings()).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Stats.Successes)
	assert.Equal(t, 10, strings.Count(h.out.String(), "❌"))
	assert.Contains(t, h.out.String(), "💸 Total SOL Spent: 0.0010 SOL")
	assert.NotContains(t, h.out.String(), "Average SOL per Meme")
}

func TestRun_AlreadyExists(t *testing.T) {
	h := newHarness(t, 1_000_000_000)
	h.pump.curves[h.mints[1].PublicKey()] = &pump.BondingCurveAccount{}

	summary, err := h.launcher(testSettings()).Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, h.out.String(), "Meme 2 already exists\n")
	assert.Equal(t, OutcomeExists, summary.Attempts[1].Outcome)
	assert.Len(t, h.pump.creates, 9)
	for _, c := range h.pump.creates {
		assert.NotEqual(t, h.mints[1].PublicKey(), c.mint)
	}
	assert.Equal(t, 9, summary.Stats.Successes)
	assert.Len(t, h.sleeps, 10)
}

func TestRun_TokenImage(t *testing.T) {
	h := newHarness(t, 1_000_000_000)
	settings := testSettings()
	settings.Tokens = []config.TokenSpec{
		{Name: "A", Symbol: "A", Image: "art/a.jpg"},
		{Name: "B", Symbol: "B"},
	}

	_, err := h.launcher(settings).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"art/a.jpg", "etc/random.png"}, h.reads)
	assert.Equal(t, "a.jpg", h.pump.creates[0].meta.FileName)
	assert.Contains(t, h.out.String(), "🎯 Successful Creations: 2/2")
}

func TestRun_NetworkErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("balance", func(t *testing.T) {
		h := newHarness(t, 1)
		h.chain.err = boom
		_, err := h.launcher(testSettings()).Run(context.Background())
		assert.True(t, errors.Is(err, boom))
	})
	t.Run("curve lookup", func(t *testing.T) {
		h := newHarness(t, 1)
		h.pump.curveErr = boom
		_, err := h.launcher(testSettings()).Run(context.Background())
		assert.True(t, errors.Is(err, boom))
		assert.Empty(t, h.pump.creates)
	})
	t.Run("create", func(t *testing.T) {
		h := newHarness(t, 1)
		h.pump.createErr = boom
		_, err := h.launcher(testSettings()).Run(context.Background())
		assert.True(t, errors.Is(err, boom))
		assert.NotContains(t, h.out.String(), "STATISTICS")
	})
}

func TestRun_Canceled(t *testing.T) {
	h := newHarness(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	l := h.launcher(testSettings())
	l.sleep = func(context.Context, time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := l.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, h.pump.creates, 1)
}

func TestRun_CanceledDuringCreate(t *testing.T) {
	h := newHarness(t, 1)
	h.pump.createErr = errors.Wrap(context.Canceled, "confirm")

	_, err := h.launcher(testSettings()).Run(context.Background())
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NotContains(t, h.out.String(), "Create failed")
	assert.Empty(t, h.sleeps)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, sleepContext(ctx, time.Hour))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "completed", StatusCompleted.String())
	assert.Equal(t, "unfunded", StatusUnfunded.String())
	assert.Equal(t, "status(9)", Status(9).String())
}
