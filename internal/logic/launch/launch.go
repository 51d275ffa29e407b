package launch

import (
	"context"
	"io"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"pump-launcher/internal/config"
	"pump-launcher/internal/dex/pump"
	"pump-launcher/internal/launcher"
	"pump-launcher/internal/svc"
)

type Launch struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewLaunch(ctx context.Context, svcCtx *svc.ServiceContext) *Launch {
	return &Launch{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *Launch) Launch(out io.Writer) (*launcher.Summary, error) {
	c := l.svcCtx.Config

	// without an endpoint the launcher only prints guidance
	var tokens []config.TokenSpec
	if c.Rpc.Endpoint != "" {
		var err error
		if tokens, err = config.LoadTokens(c.Launch.TokensFile); err != nil {
			return nil, err
		}
		l.Infof("loaded %d tokens from %s", len(tokens), c.Launch.TokensFile)
	}

	settings := launcher.Settings{
		Endpoint:            c.Rpc.Endpoint,
		PayerKey:            c.Launch.PayerKey,
		MintKey:             c.Launch.MintKey,
		Tokens:              tokens,
		ImagePath:           c.Launch.ImagePath,
		InitialBuyLamports:  c.Launch.InitialBuyLamports,
		SlippageBasisPoints: c.Launch.SlippageBasisPoints,
		PriorityFee: &pump.PriorityFee{
			UnitLimit: c.Launch.UnitLimit,
			UnitPrice: c.Launch.UnitPrice,
		},
		Delay:     c.Launch.Delay,
		ViewerURL: c.Pump.ViewerURL,
	}

	summary, err := launcher.New(l.ctx, settings,
		l.svcCtx.Keystore,
		l.svcCtx.Connection,
		l.svcCtx.Pump,
		launcher.WithOutput(out),
	).Run(l.ctx)
	if err != nil {
		return summary, err
	}

	if c.Launch.ReportFile != "" && len(summary.Attempts) > 0 {
		if err := launcher.WriteReport(c.Launch.ReportFile, time.Now(), summary.Attempts); err != nil {
			l.Errorf("write report %s: %v", c.Launch.ReportFile, err)
		} else {
			l.Infof("appended %d attempts to %s", len(summary.Attempts), c.Launch.ReportFile)
		}
	}
	return summary, nil
}
