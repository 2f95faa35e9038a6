package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPlatformFeeTruncates(t *testing.T) {
	rate := d("0.025")
	tests := []struct {
		price string
		fee   string
	}{
		{"200", "5"},
		{"100", "2.5"},
		{"0.99", "0.02"},     // 0.02475
		{"10.39", "0.25"},    // 0.25975, rounding would give 0.26
		{"0.01", "0"},        // 0.00025
		{"1234.56", "30.86"}, // 30.864
		{"1000000000", "25000000"},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			fee, received := SplitSale(d(tt.price), rate)
			if !fee.Equal(d(tt.fee)) {
				t.Errorf("PlatformFee(%s) = %s, want %s", tt.price, fee, tt.fee)
			}
			if !fee.Add(received).Equal(d(tt.price)) {
				t.Errorf("fee %s + received %s != price %s", fee, received, tt.price)
			}
		})
	}
}

func TestCentsRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "12.3", "999999999.99", "-250.5", "1000000000000000"} {
		cents, err := ToCents(d(s))
		if err != nil {
			t.Fatalf("ToCents(%s) failed: %v", s, err)
		}
		if got := FromCents(cents); !got.Equal(d(s)) {
			t.Errorf("round trip of %s gave %s", s, got)
		}
	}
	if cents, _ := ToCents(d("12.30")); cents != 1230 {
		t.Errorf("Expected 1230 cents, got %d", cents)
	}
}

func TestToCentsRefusesOutOfRange(t *testing.T) {
	for _, s := range []string{
		"1000000000000000.01",
		"-1000000000000000.01",
		"100000000000000000000", // would wrap int64 cents
		"200000000000000000",
	} {
		cents, err := ToCents(d(s))
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ToCents(%s) = %d, %v; want ErrOutOfRange", s, cents, err)
		}
	}
}

func TestHasValidPrecision(t *testing.T) {
	if !HasValidPrecision(d("10.50")) || !HasValidPrecision(d("10.5000")) {
		t.Error("Expected trailing zeros to be accepted")
	}
	if HasValidPrecision(d("10.505")) {
		t.Error("Expected three decimal places to be rejected")
	}
}

func TestCanAffordRoundsBothSides(t *testing.T) {
	if !CanAfford(d("99.999"), d("100")) {
		t.Error("99.999 rounds to 100.00 and should cover a 100 bet")
	}
	if CanAfford(d("99.99"), d("100")) {
		t.Error("99.99 should not cover a 100 bet")
	}
}

func TestFloor2(t *testing.T) {
	if got := Floor2(d("20.999")); !got.Equal(d("20.99")) {
		t.Errorf("Floor2 = %s", got)
	}
}
