package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pump-launcher/internal/config"
	"pump-launcher/internal/dex/pump"
	"pump-launcher/internal/rpctest"
	"pump-launcher/internal/svc"
)

func testContext(t *testing.T, endpoint string) *svc.ServiceContext {
	var c config.Config
	c.Rpc.Endpoint = endpoint
	c.Rpc.Commitment = "confirmed"
	c.Launch.KeysDir = filepath.Join(t.TempDir(), ".keys")
	c.Launch.PayerKey = "test-account"
	c.Launch.MintKey = "mint"
	return svc.NewServiceContext(c)
}

func borsh(t *testing.T, v interface{}) []byte {
	buf := new(bytes.Buffer)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(v))
	return buf.Bytes()
}

func TestKeys(t *testing.T) {
	svcCtx := testContext(t, "")
	var out bytes.Buffer
	require.NoError(t, NewWallet(context.Background(), svcCtx).Keys(&out))

	payer, err := svcCtx.Keystore.Load("test-account")
	require.NoError(t, err)
	mint, err := svcCtx.Keystore.Load("mint")
	require.NoError(t, err)
	assert.Equal(t, "test-account: "+payer.PublicKey().String()+"\nmint: "+mint.PublicKey().String()+"\n", out.String())

	// a second call reuses the stored keys
	var again bytes.Buffer
	require.NoError(t, NewWallet(context.Background(), svcCtx).Keys(&again))
	assert.Equal(t, out.String(), again.String())
}

func TestBalance(t *testing.T) {
	srv := rpctest.New(t)
	svcCtx := testContext(t, srv.URL)
	_, err := svcCtx.Keystore.GetOrCreate("test-account")
	require.NoError(t, err)

	srv.Result("getBalance", rpctest.Context(1_500_000_000))

	var out bytes.Buffer
	require.NoError(t, NewWallet(context.Background(), svcCtx).Balance(&out, "test-account", ""))
	assert.Equal(t, "test-account:1.5 SOL\n", out.String())
	assert.Zero(t, srv.Calls("getTokenAccountBalance"))
}

func TestBalance_WithMint(t *testing.T) {
	srv := rpctest.New(t)
	svcCtx := testContext(t, srv.URL)
	_, err := svcCtx.Keystore.GetOrCreate("test-account")
	require.NoError(t, err)
	mint := solana.NewWallet().PublicKey()

	accounts := map[solana.PublicKey][]byte{
		pump.GetBondingCurvePDA(mint): borsh(t, pump.BondingCurveAccount{
			Discriminator:        pump.BondingCurveAccountDiscriminator,
			VirtualTokenReserves: 1_073_000_000_000_000,
			VirtualSOLReserves:   30_000_000_000,
			RealTokenReserves:    793_100_000_000_000,
			TokenTotalSupply:     1_000_000_000_000_000,
		}),
		pump.GetGlobalAccountPDA(): borsh(t, &pump.GlobalAccount{
			Discriminator:  pump.GlobalAccountDiscriminator,
			Initialized:    true,
			FeeBasisPoints: 100,
		}),
	}
	srv.Result("getBalance", rpctest.Context(2_000_000_000))
	srv.Result("getTokenAccountBalance", rpctest.Context(map[string]interface{}{
		"amount":         "1000000000000",
		"decimals":       6,
		"uiAmount":       1000000.0,
		"uiAmountString": "1000000",
	}))
	srv.Handle("getAccountInfo", func(params []json.RawMessage) (interface{}, *rpctest.Error) {
		var addr string
		require.NoError(t, json.Unmarshal(params[0], &addr))
		data, ok := accounts[solana.MustPublicKeyFromBase58(addr)]
		if !ok {
			return rpctest.Context(nil), nil
		}
		return rpctest.Context(rpctest.Account(pump.PUMPManager, data)), nil
	})

	var out bytes.Buffer
	require.NoError(t, NewWallet(context.Background(), svcCtx).Balance(&out, "test-account", mint.String()))
	assert.Contains(t, out.String(), "test-account:2 SOL\n")
	assert.Contains(t, out.String(), ": 1000000\n")
	assert.Contains(t, out.String(), "sell value 0.0277 SOL")
}

func TestBalance_Errors(t *testing.T) {
	var out bytes.Buffer
	err := NewWallet(context.Background(), testContext(t, "")).Balance(&out, "test-account", "")
	assert.EqualError(t, err, "HELIUS_RPC_URL is not set")

	srv := rpctest.New(t)
	err = NewWallet(context.Background(), testContext(t, srv.URL)).Balance(&out, "nobody", "")
	assert.Error(t, err)
	assert.Zero(t, srv.Calls("getBalance"))

	svcCtx := testContext(t, srv.URL)
	_, err = svcCtx.Keystore.GetOrCreate("test-account")
	require.NoError(t, err)
	srv.Result("getBalance", rpctest.Context(1))
	err = NewWallet(context.Background(), svcCtx).Balance(&out, "test-account", "not-a-mint")
	assert.Error(t, err)
}

func TestBalance_TokenLookupFails(t *testing.T) {
	srv := rpctest.New(t)
	svcCtx := testContext(t, srv.URL)
	_, err := svcCtx.Keystore.GetOrCreate("test-account")
	require.NoError(t, err)

	srv.Result("getBalance", rpctest.Context(1_000_000_000))
	srv.Handle("getTokenAccountBalance", func([]json.RawMessage) (interface{}, *rpctest.Error) {
		return nil, &rpctest.Error{Code: -32005, Message: "node is behind"}
	})

	var out bytes.Buffer
	err = NewWallet(context.Background(), svcCtx).Balance(&out, "test-account", solana.NewWallet().PublicKey().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node is behind")
	assert.NotContains(t, out.String(), "no token account")
}
