package parser

import "math/big"

// Decimal-digit literals for the recognized mathematical constants, good to
// roughly 200 decimal digits - parsed at the configured float precision by
// newConstants. Mirrors original_source/factorion-lib/src/parse.rs's
// LazyLock-precomputed constant Floats.
const (
	piDigits  = "3.14159265358979323846264338327950288419716939937510582097494459230781640628620899862803482534211706798214808651328230664709384460955058223172535940812848111745028410270193852110555964462294895493038196"
	eDigits   = "2.71828182845904523536028747135266249775724709369995957496696762772407663035354759457138217852516642742746639193200305992181741359662904357290033429526059563073813232862794349076323382988075319525101901"
	phiDigits = "1.61803398874989484820458683436563811772030917980576286213544862270526046281890244970720720418939113748475408807538689175212663386222353693179318006076672635443338908659593958290563832266131992829026788"
)

// constants holds the recognized literal-constant Floats at a fixed
// precision, precomputed once per Parser so repeated recognition ("e", "pi",
// "tau", ...) in one text does not reparse the digit strings.
type constants struct {
	e, pi, phi, tau *big.Float
}

func newConstants(precisionBits uint) *constants {
	if precisionBits == 0 {
		precisionBits = 1000
	}
	parse := func(s string) *big.Float {
		f, _, err := big.ParseFloat(s, 10, precisionBits, big.ToNearestEven)
		if err != nil {
			// Digit literals above are fixed and known-valid; a parse
			// failure here indicates a corrupted constant table.
			panic("parser: invalid built-in constant literal: " + s)
		}
		return f
	}
	pi := parse(piDigits)
	tau := new(big.Float).SetPrec(precisionBits).Mul(pi, big.NewFloat(2))
	return &constants{
		e:   parse(eDigits),
		pi:  pi,
		phi: parse(phiDigits),
		tau: tau,
	}
}
