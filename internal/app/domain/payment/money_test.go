package payment

import (
	"testing"
)

func TestBTCSatoshiRoundTrip(t *testing.T) {
	for _, btc := range []float64{0, 0.00000001, 0.001, 0.00123456, 1, 21.5, 999.99999999} {
		sats := BTCToSatoshis(btc)
		back := SatoshisToBTC(sats)
		diff := btc - back
		if diff < 0 || diff >= 1.0/SatoshisPerBTC {
			t.Fatalf("round trip for %v BTC drifted by %v (floor must lose at most one satoshi)", btc, diff)
		}
	}
}

func TestSTXMicroRoundTrip(t *testing.T) {
	for _, stx := range []float64{0, 0.000001, 0.5, 1, 1000.123456, 42} {
		micro := STXToMicro(stx)
		back := MicroToSTX(micro)
		diff := stx - back
		if diff < 0 || diff >= 1.0/MicroSTXPerSTX {
			t.Fatalf("round trip for %v STX drifted by %v", stx, diff)
		}
	}
}

func TestScalesAreDistinct(t *testing.T) {
	// One unit of display currency maps to different smallest-unit counts
	// per asset; a shared conversion would silently pick the wrong exponent.
	if BTCToSatoshis(1) != 100_000_000 {
		t.Fatalf("BTC scale wrong: %d", BTCToSatoshis(1))
	}
	if STXToMicro(1) != 1_000_000 {
		t.Fatalf("STX scale wrong: %d", STXToMicro(1))
	}
}

func TestConversionFloorsNegative(t *testing.T) {
	if BTCToSatoshis(-1) != 0 || STXToMicro(-0.5) != 0 {
		t.Fatal("negative display amounts must convert to zero smallest units")
	}
}

func TestEstimateFeeFloor(t *testing.T) {
	for _, amount := range []float64{0, 0.0001, 0.001, 0.01, 1, 100} {
		fee := EstimateFee(amount)
		if fee < BaseFeeBTC {
			t.Fatalf("fee %v below base fee for amount %v", fee, amount)
		}
	}
}

func TestEstimateFeeMonotonic(t *testing.T) {
	amounts := []float64{0, 0.001, 0.01, 0.1, 1, 10, 1000}
	prev := EstimateFee(amounts[0])
	for _, amount := range amounts[1:] {
		fee := EstimateFee(amount)
		if fee < prev {
			t.Fatalf("fee decreased from %v to %v at amount %v", prev, fee, amount)
		}
		prev = fee
	}
}

func TestEstimateFeeCrossover(t *testing.T) {
	// Below 0.1 BTC the flat base fee dominates; above it the rate does.
	if EstimateFee(0.05) != BaseFeeBTC {
		t.Fatalf("expected base fee for small amount, got %v", EstimateFee(0.05))
	}
	if got := EstimateFee(1); got != 1*FeeRate {
		t.Fatalf("expected proportional fee for large amount, got %v", got)
	}
}
