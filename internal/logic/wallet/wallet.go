package wallet

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"pump-launcher/internal/global"
	"pump-launcher/internal/svc"
)

type Wallet struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewWallet(ctx context.Context, svcCtx *svc.ServiceContext) *Wallet {
	return &Wallet{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Keys prints the public key of every named keypair, creating missing ones.
func (l *Wallet) Keys(out io.Writer, names ...string) error {
	if len(names) == 0 {
		names = []string{l.svcCtx.Config.Launch.PayerKey, l.svcCtx.Config.Launch.MintKey}
	}
	for _, name := range names {
		key, err := l.svcCtx.Keystore.GetOrCreate(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", name, key.PublicKey())
	}
	return nil
}

// Balance prints the SOL balance of a stored key and, when mint is set, its token
// balance valued on the bonding curve.
func (l *Wallet) Balance(out io.Writer, name string, mint string) error {
	if l.svcCtx.Config.Rpc.Endpoint == "" {
		return errors.New("HELIUS_RPC_URL is not set")
	}
	key, err := l.svcCtx.Keystore.Load(name)
	if err != nil {
		return errors.Wrapf(err, "load key %s", name)
	}
	owner := key.PublicKey()

	lamports, err := l.svcCtx.Connection.GetBalance(l.ctx, owner)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s:%s SOL\n", name, strconv.FormatFloat(global.LamportsToSOL(lamports), 'f', -1, 64))

	if mint == "" {
		return nil
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return errors.Wrapf(err, "invalid mint %q", mint)
	}

	balance, err := l.svcCtx.Connection.GetTokenBalance(l.ctx, owner, mintKey)
	if err != nil {
		return err
	}
	if balance == nil {
		fmt.Fprintf(out, "%s %s: no token account\n", name, global.ShortAddress(mintKey))
		return nil
	}
	fmt.Fprintf(out, "%s %s: %s\n", name, owner, balance.UiAmount)

	curve, err := l.svcCtx.Pump.GetBondingCurveAccount(l.ctx, mintKey)
	if err != nil {
		return err
	}
	if curve == nil || curve.Complete {
		l.Infof("%s is not on a live bonding curve", mintKey)
		return nil
	}
	g, err := l.svcCtx.Pump.GetGlobalAccount(l.ctx)
	if err != nil {
		return err
	}
	value, err := curve.SellPrice(balance.Amount, g.FeeBasisPoints)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  price %.10f SOL, sell value %.4f SOL\n", curve.PricePerToken(), global.LamportsToSOL(value))
	return nil
}
