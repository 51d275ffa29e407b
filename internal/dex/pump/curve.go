package pump

import (
	"math/big"

	"pump-launcher/internal/global"
)

// InitialBuyPrice quotes how many tokens amountSol lamports buy from a fresh curve.
func (g *GlobalAccount) InitialBuyPrice(amountSol uint64) uint64 {
	if amountSol == 0 {
		return 0
	}
	return quoteBuy(
		new(big.Int).SetUint64(amountSol),
		g.InitialVirtualSOLReserves,
		g.InitialVirtualTokenReserves,
		g.InitialRealTokenReserves,
	)
}

// BuyPrice quotes how many tokens amountSol lamports buy from this curve.
func (bc *BondingCurveAccount) BuyPrice(amountSol uint64) (uint64, error) {
	if bc.Complete {
		return 0, ErrCurveComplete
	}
	if amountSol == 0 {
		return 0, nil
	}
	return quoteBuy(
		new(big.Int).SetUint64(amountSol),
		bc.VirtualSOLReserves,
		bc.VirtualTokenReserves,
		bc.RealTokenReserves,
	), nil
}

// SellPrice quotes the lamports received for amount tokens after the protocol fee.
func (bc *BondingCurveAccount) SellPrice(amount uint64, feeBasisPoints uint64) (uint64, error) {
	if bc.Complete {
		return 0, ErrCurveComplete
	}
	if amount == 0 || bc.VirtualTokenReserves == 0 {
		return 0, nil
	}
	amountIn := new(big.Int).SetUint64(amount)
	// 按照常数乘积公式计算能拿多少 SOL
	n := new(big.Int).Mul(amountIn, new(big.Int).SetUint64(bc.VirtualSOLReserves))
	d := new(big.Int).Add(new(big.Int).SetUint64(bc.VirtualTokenReserves), amountIn)
	out := new(big.Int).Div(n, d)
	fee := pumpGetFee(out, feeBasisPoints)
	return new(big.Int).Sub(out, fee).Uint64(), nil
}

// PricePerToken is the spot price of one whole token in SOL.
func (bc *BondingCurveAccount) PricePerToken() float64 {
	if bc.VirtualTokenReserves == 0 {
		return 0
	}
	sol := new(big.Float).Quo(new(big.Float).SetUint64(bc.VirtualSOLReserves), global.Float1Lamp)
	tokens := global.ReduceDecimals(new(big.Int).SetUint64(bc.VirtualTokenReserves), int(DefaultDecimals))
	price, _ := new(big.Float).Quo(sol, tokens).Float64()
	return price
}

// MarketCapSOL values the whole supply at the spot price.
func (bc *BondingCurveAccount) MarketCapSOL() float64 {
	if bc.VirtualTokenReserves == 0 {
		return 0
	}
	n := new(big.Int).Mul(
		new(big.Int).SetUint64(bc.TokenTotalSupply),
		new(big.Int).SetUint64(bc.VirtualSOLReserves),
	)
	lamports := new(big.Int).Div(n, new(big.Int).SetUint64(bc.VirtualTokenReserves))
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(lamports), global.Float1Lamp).Float64()
	return f
}

// CalculateWithSlippageBuy raises amount by slippageBasisPoints / 10000.
func CalculateWithSlippageBuy(amount uint64, slippageBasisPoints uint64) uint64 {
	a := new(big.Int).SetUint64(amount)
	extra := new(big.Int).Mul(a, new(big.Int).SetUint64(slippageBasisPoints))
	extra.Div(extra, global.Big10000)
	return a.Add(a, extra).Uint64()
}

// quoteBuy is the constant product quote, clamped to the real token reserves.
func quoteBuy(amountIn *big.Int, virtualSOLReserves, virtualTokenReserves, realTokenReserves uint64) uint64 {
	solReserves := new(big.Int).SetUint64(virtualSOLReserves)
	tokenReserves := new(big.Int).SetUint64(virtualTokenReserves)

	// k = sol_reserve * token_reserve
	k := new(big.Int).Mul(solReserves, tokenReserves)
	newSOLReserves := new(big.Int).Add(solReserves, amountIn)

	// Pump curves always round UP the token reserve by adding 1
	newTokenReserves := new(big.Int).Div(k, newSOLReserves)
	newTokenReserves.Add(newTokenReserves, big.NewInt(1))

	amountOut := new(big.Int).Sub(tokenReserves, newTokenReserves)
	if amountOut.Sign() < 0 {
		return 0
	}
	if amountOut.Cmp(new(big.Int).SetUint64(realTokenReserves)) > 0 {
		return realTokenReserves
	}
	return amountOut.Uint64()
}

func pumpGetFee(amount *big.Int, feeBP uint64) *big.Int {
	temp := new(big.Int).Mul(amount, new(big.Int).SetUint64(feeBP))
	return temp.Div(temp, global.Big10000)
}
