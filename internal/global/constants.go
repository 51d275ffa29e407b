package global

// Contains constants shared by the launcher, the pump client and the CLI.

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
)

var (
	// Big numbers that are used many times in the code
	Float1Lamp = new(big.Float).SetUint64(solana.LAMPORTS_PER_SOL)
	F1Lamp     = float64(solana.LAMPORTS_PER_SOL)
	Big10000   = big.NewInt(10000)
)
