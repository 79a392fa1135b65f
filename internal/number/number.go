// Package number implements the tagged Number value described in
// SPEC_FULL.md §3: the single value type threaded through the calculator and
// formatter. Go has no sum types, so the variants are modeled as a single
// struct carrying a Kind discriminant plus the union of possible fields -
// the same flat-struct-with-discriminant idiom the teacher's
// pkgs/stdlib/decorator.go uses for its own closed enums.
package number

import (
	"math/big"
)

// Kind discriminates which variant of Number is populated.
type Kind int

const (
	// Exact is a closed-form arbitrary-precision integer.
	Exact Kind = iota
	// Float is a high-precision binary float, used for non-integer values.
	Float
	// Approximate is a (mantissa, base-10 exponent) pair: value ≈ mantissa × 10^exponent.
	Approximate
	// ApproximateDigits carries only a signed digit count, no mantissa.
	ApproximateDigits
	// ApproximateDigitsTower carries an iterated power-of-ten depth and a base.
	ApproximateDigitsTower
	// ComplexInfinity signals an undefined result (e.g. factorial of a negative integer).
	ComplexInfinity
)

// Number is the tagged value threaded through Job evaluation and formatting.
// Only the fields relevant to Kind are meaningful; all others are zero.
type Number struct {
	Kind Kind

	// Exact
	Int *big.Int

	// Float
	Real *big.Float

	// Approximate: mantissa kept normalised to [1, 10) when finite.
	Mantissa *big.Float
	Exponent *big.Int

	// ApproximateDigits
	DigitsNegative bool // the underlying value was negative
	Digits         *big.Int

	// ApproximateDigitsTower
	TowerValueNegative bool
	TowerNegative      bool // the tower's own sign flag (distinct from value sign)
	TowerDepth         uint64
	TowerBase          *big.Int
}

// NewExact wraps an integer as an Exact Number.
func NewExact(n *big.Int) Number {
	return Number{Kind: Exact, Int: new(big.Int).Set(n)}
}

// NewExactInt64 is a convenience constructor for small literal integers.
func NewExactInt64(n int64) Number {
	return NewExact(big.NewInt(n))
}

// NewFloat wraps a high-precision float as a Float Number.
func NewFloat(f *big.Float) Number {
	return Number{Kind: Float, Real: new(big.Float).Set(f)}
}

// NewApproximate builds a normalised Approximate Number: mantissa is rescaled
// into [1, 10) and exponent adjusted to compensate, per invariant I-N1.
func NewApproximate(mantissa *big.Float, exponent *big.Int) Number {
	m := new(big.Float).Set(mantissa)
	e := new(big.Int).Set(exponent)
	normalizeApproximate(m, e)
	return Number{Kind: Approximate, Mantissa: m, Exponent: e}
}

// normalizeApproximate rescales m into [1, 10) (for finite nonzero m),
// adjusting e to preserve m × 10^e. Mutates m and e in place.
func normalizeApproximate(m *big.Float, e *big.Int) {
	if m.Sign() == 0 {
		return
	}
	ten := big.NewFloat(10)
	absM := new(big.Float).Abs(m)
	for absM.Cmp(ten) >= 0 {
		m.Quo(m, ten)
		absM.Quo(absM, ten)
		e.Add(e, big.NewInt(1))
	}
	one := big.NewFloat(1)
	for absM.Sign() != 0 && absM.Cmp(one) < 0 {
		m.Mul(m, ten)
		absM.Mul(absM, ten)
		e.Sub(e, big.NewInt(1))
	}
}

// NewApproximateDigits builds an ApproximateDigits Number. digits may be
// negative (meaning the value is a fraction with |digits| leading zeros).
func NewApproximateDigits(negative bool, digits *big.Int) Number {
	return Number{
		Kind:           ApproximateDigits,
		DigitsNegative: negative,
		Digits:         new(big.Int).Set(digits),
	}
}

// NewApproximateDigitsTower builds a power-of-ten tower Number. depth must be
// >= 1 (invariant I-N2: depth=0 is not a valid tower - use ApproximateDigits).
func NewApproximateDigitsTower(valueNegative, towerNegative bool, depth uint64, base *big.Int) Number {
	return Number{
		Kind:               ApproximateDigitsTower,
		TowerValueNegative: valueNegative,
		TowerNegative:      towerNegative,
		TowerDepth:         depth,
		TowerBase:          new(big.Int).Set(base),
	}
}

// NewComplexInfinity constructs the symbolic undefined-result value.
func NewComplexInfinity() Number {
	return Number{Kind: ComplexInfinity}
}

// IsZero reports whether this Number is the Exact value zero.
func (n Number) IsZero() bool {
	return n.Kind == Exact && n.Int.Sign() == 0
}

// Negate returns the negation of n, per invariant I-N3 (every variant has a
// well-defined negation).
func (n Number) Negate() Number {
	switch n.Kind {
	case Exact:
		return NewExact(new(big.Int).Neg(n.Int))
	case Float:
		return NewFloat(new(big.Float).Neg(n.Real))
	case Approximate:
		return NewApproximate(new(big.Float).Neg(n.Mantissa), n.Exponent)
	case ApproximateDigits:
		return NewApproximateDigits(!n.DigitsNegative, n.Digits)
	case ApproximateDigitsTower:
		return NewApproximateDigitsTower(!n.TowerValueNegative, n.TowerNegative, n.TowerDepth, n.TowerBase)
	case ComplexInfinity:
		return n
	default:
		return n
	}
}

// IsNegative reports the sign of the represented value where that is
// meaningful (false for ComplexInfinity, which has no sign).
func (n Number) IsNegative() bool {
	switch n.Kind {
	case Exact:
		return n.Int.Sign() < 0
	case Float:
		return n.Real.Sign() < 0
	case Approximate:
		return n.Mantissa.Sign() < 0
	case ApproximateDigits:
		return n.DigitsNegative
	case ApproximateDigitsTower:
		return n.TowerValueNegative
	default:
		return false
	}
}

// Equal reports deep equality, used by tests (go-cmp compares
// big.Int/big.Float by content via this method, since go-cmp's default
// unexported-field diffing panics on big.Int/big.Float internals).
func (n Number) Equal(o Number) bool {
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case Exact:
		return n.Int.Cmp(o.Int) == 0
	case Float:
		return n.Real.Cmp(o.Real) == 0
	case Approximate:
		return n.Mantissa.Cmp(o.Mantissa) == 0 && n.Exponent.Cmp(o.Exponent) == 0
	case ApproximateDigits:
		return n.DigitsNegative == o.DigitsNegative && n.Digits.Cmp(o.Digits) == 0
	case ApproximateDigitsTower:
		return n.TowerValueNegative == o.TowerValueNegative &&
			n.TowerNegative == o.TowerNegative &&
			n.TowerDepth == o.TowerDepth &&
			n.TowerBase.Cmp(o.TowerBase) == 0
	case ComplexInfinity:
		return true
	default:
		return false
	}
}

// Compare provides a total order over Number for Job.Compare / sorting, not
// a mathematical ordering. Kind is the primary key; within a Kind, fields are
// compared lexicographically in declaration order, except that Approximate
// compares Exponent before Mantissa.
func (n Number) Compare(o Number) int {
	if n.Kind != o.Kind {
		if n.Kind < o.Kind {
			return -1
		}
		return 1
	}
	switch n.Kind {
	case Exact:
		return n.Int.Cmp(o.Int)
	case Float:
		return n.Real.Cmp(o.Real)
	case Approximate:
		if c := n.Exponent.Cmp(o.Exponent); c != 0 {
			return c
		}
		return n.Mantissa.Cmp(o.Mantissa)
	case ApproximateDigits:
		if n.DigitsNegative != o.DigitsNegative {
			if n.DigitsNegative {
				return -1
			}
			return 1
		}
		return n.Digits.Cmp(o.Digits)
	case ApproximateDigitsTower:
		if n.TowerValueNegative != o.TowerValueNegative {
			if n.TowerValueNegative {
				return -1
			}
			return 1
		}
		if n.TowerNegative != o.TowerNegative {
			if n.TowerNegative {
				return -1
			}
			return 1
		}
		if n.TowerDepth != o.TowerDepth {
			if n.TowerDepth < o.TowerDepth {
				return -1
			}
			return 1
		}
		return n.TowerBase.Cmp(o.TowerBase)
	case ComplexInfinity:
		return 0
	default:
		return 0
	}
}
