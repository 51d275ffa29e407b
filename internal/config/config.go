package config

import (
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

type Config struct {
	Log    LogConf
	Banner BannerConf
	Rpc    RpcConf
	Pump   PumpConf
	Launch LaunchConf
}

type LogConf struct {
	logx.LogConf
}

type BannerConf struct {
	Text     string `json:",default=PUMP"`
	Color    string `json:",default=green"`
	FontName string `json:",default=standard,options=big|larry3d|starwars|standard"`
	Disable  bool   `json:",optional"`
}

type RpcConf struct {
	// usually ${HELIUS_RPC_URL}; empty means the launch cannot start
	Endpoint          string  `json:",optional"`
	Commitment        string  `json:",default=finalized,options=processed|confirmed|finalized"`
	RequestsPerSecond float64 `json:",default=10"`
	Burst             int     `json:",default=5"`
}

type PumpConf struct {
	IpfsURL        string        `json:",default=https://pump.fun/api/ipfs"`
	ViewerURL      string        `json:",default=https://pump.fun/"`
	UploadTimeout  time.Duration `json:",default=30s"`
	ConfirmTimeout time.Duration `json:",default=60s"`
	PollInterval   time.Duration `json:",default=500ms"`
}

type LaunchConf struct {
	KeysDir             string        `json:",default=.keys"`
	PayerKey            string        `json:",default=test-account"`
	MintKey             string        `json:",default=mint"`
	TokensFile          string        `json:",default=etc/tokens.yaml"`
	ImagePath           string        `json:",default=etc/random.png"`
	InitialBuyLamports  uint64        `json:",default=0"`
	SlippageBasisPoints uint64        `json:",default=100"`
	UnitLimit           uint32        `json:",default=250000"`
	UnitPrice           uint64        `json:",default=250000"`
	Delay               time.Duration `json:",default=1s"`
	// CSV file the attempts are appended to; empty disables the report
	ReportFile string `json:",optional"`
}

func (c RpcConf) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(c.Commitment)
}

// Load reads a config file, expanding ${VAR} references from the environment.
func Load(path string) (Config, error) {
	var c Config
	if err := conf.Load(path, &c, conf.UseEnv()); err != nil {
		return Config{}, err
	}
	return c, nil
}

func MustLoad(path string) Config {
	var c Config
	conf.MustLoad(path, &c, conf.UseEnv())
	return c
}
