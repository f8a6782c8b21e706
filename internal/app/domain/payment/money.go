// Package payment defines payment records and fixed-point money conversions.
//
// Two distinct unit scales are in play and must never be mixed: sBTC amounts
// use the satoshi scale (10^8 per BTC) and STX amounts use the micro-STX
// scale (10^6 per STX). Each scale gets its own named conversion pair.
package payment

import "math"

const (
	// SatoshisPerBTC is the smallest-unit scale for the Bitcoin-denominated
	// asset.
	SatoshisPerBTC = 100_000_000

	// MicroSTXPerSTX is the smallest-unit scale for the ledger-native asset.
	MicroSTXPerSTX = 1_000_000
)

// Fee estimation constants. The base fee is 1000 satoshis expressed in BTC;
// the rate is 0.01% of the payment amount.
const (
	BaseFeeBTC = 0.00001
	FeeRate    = 0.0001
)

// BTCToSatoshis converts a display BTC amount to satoshis, rounding down.
// Floor rounding is one-directional: converting back loses at most one
// satoshi and never fabricates value.
func BTCToSatoshis(btc float64) uint64 {
	if btc <= 0 {
		return 0
	}
	return uint64(math.Floor(btc * SatoshisPerBTC))
}

// SatoshisToBTC converts satoshis to a display BTC amount.
func SatoshisToBTC(sats uint64) float64 {
	return float64(sats) / SatoshisPerBTC
}

// STXToMicro converts a display STX amount to micro-STX, rounding down.
func STXToMicro(stx float64) uint64 {
	if stx <= 0 {
		return 0
	}
	return uint64(math.Floor(stx * MicroSTXPerSTX))
}

// MicroToSTX converts micro-STX to a display STX amount.
func MicroToSTX(micro uint64) float64 {
	return float64(micro) / MicroSTXPerSTX
}

// EstimateFee returns the estimated transaction fee in BTC for a payment of
// the given display amount: the flat base fee or the proportional rate,
// whichever is larger. Monotonically non-decreasing in amount.
func EstimateFee(amountBTC float64) float64 {
	return math.Max(BaseFeeBTC, amountBTC*FeeRate)
}
