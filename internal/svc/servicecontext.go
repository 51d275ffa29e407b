package svc

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"pump-launcher/internal/config"
	"pump-launcher/internal/dex/pump"
	"pump-launcher/internal/global"
	"pump-launcher/internal/keystore"
)

type ServiceContext struct {
	Config config.Config

	Rpc        *rpc.Client
	Connection *global.Connection
	Pump       *pump.SDK
	Keystore   *keystore.Store
}

func NewServiceContext(c config.Config) *ServiceContext {
	client := global.NewRPCClient(c.Rpc.Endpoint, c.Rpc.RequestsPerSecond, c.Rpc.Burst)

	// the provider wallet never signs; launches are signed by the keystore keys
	provider := &pump.Provider{
		Client:     client,
		Wallet:     solana.NewWallet().PrivateKey,
		Commitment: c.Rpc.CommitmentType(),
	}

	return &ServiceContext{
		Config:     c,
		Rpc:        client,
		Connection: global.NewConnection(client, c.Rpc.CommitmentType()),
		Pump: pump.NewSDK(provider,
			pump.WithUploader(pump.NewMetadataUploader(c.Pump.IpfsURL, c.Pump.UploadTimeout)),
			pump.WithConfirm(c.Pump.ConfirmTimeout, c.Pump.PollInterval),
		),
		Keystore: keystore.New(c.Launch.KeysDir),
	}
}
