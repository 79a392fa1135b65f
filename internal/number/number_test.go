package number

import (
	"math/big"
	"testing"
)

func TestNewApproximateNormalises(t *testing.T) {
	tests := []struct {
		name         string
		mantissa     float64
		exponent     int64
		wantMantissa float64
		wantExponent int64
	}{
		{"already normalised", 1.5, 10, 1.5, 10},
		{"too large rescales up", 64.0, 3, 6.4, 4},
		{"too small rescales down", 0.5, 3, 5, 2},
		{"negative mantissa", -25.0, 0, -2.5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewApproximate(big.NewFloat(tt.mantissa), big.NewInt(tt.exponent))
			want := NewApproximate(big.NewFloat(tt.wantMantissa), big.NewInt(tt.wantExponent))
			if !got.Equal(want) {
				t.Fatalf("NewApproximate(%v, %v) = %v, want %v", tt.mantissa, tt.exponent, got, want)
			}
		})
	}
}

func TestNegate(t *testing.T) {
	tests := []struct {
		name string
		in   Number
		want Number
	}{
		{"exact", NewExactInt64(5), NewExactInt64(-5)},
		{"approximate", NewApproximate(big.NewFloat(2.5), big.NewInt(100)), NewApproximate(big.NewFloat(-2.5), big.NewInt(100))},
		{"digits", NewApproximateDigits(false, big.NewInt(50)), NewApproximateDigits(true, big.NewInt(50))},
		{"complex infinity is self-negating", NewComplexInfinity(), NewComplexInfinity()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Negate(); !got.Equal(tt.want) {
				t.Fatalf("Negate() = %v, want %v", got, tt.want)
			}
			// Negation must be an involution for every variant.
			if back := tt.in.Negate().Negate(); !back.Equal(tt.in) {
				t.Fatalf("Negate().Negate() = %v, want original %v", back, tt.in)
			}
		})
	}
}

func TestIsNegative(t *testing.T) {
	if NewExactInt64(-3).IsNegative() != true {
		t.Fatal("expected -3 to be negative")
	}
	if NewExactInt64(3).IsNegative() != false {
		t.Fatal("expected 3 to not be negative")
	}
	if NewComplexInfinity().IsNegative() != false {
		t.Fatal("ComplexInfinity has no sign")
	}
}

func TestCompareOrdersByKindThenValue(t *testing.T) {
	a := NewExactInt64(100)
	b := NewFloat(big.NewFloat(1))
	if a.Compare(b) >= 0 {
		t.Fatalf("Exact should sort before Float by Kind, got Compare=%d", a.Compare(b))
	}
	if NewExactInt64(1).Compare(NewExactInt64(2)) >= 0 {
		t.Fatal("1 should compare less than 2")
	}
}

func TestEqualDistinguishesVariants(t *testing.T) {
	exact := NewExactInt64(120)
	digits := NewApproximateDigits(false, big.NewInt(120))
	if exact.Equal(digits) {
		t.Fatal("Exact(120) must not equal ApproximateDigits(false, 120)")
	}
}
