// Package calculator implements the fidelity-ladder evaluation (C) of
// SPEC_FULL.md §4.2: turning a job.Job tree into a list of Calculations,
// coarsening precision as magnitude grows from exact integer through
// scientific-pair, digit-count, and power-of-ten tower.
//
// The numeric core here is grounded on
// original_source/src/math.rs (Stirling's approximation plus the OEIS
// A001163/A001164 correction series, the subfactorial recurrence, and the
// termial/multitermial sums), reimplemented with math/big instead of rug,
// since no big-number package in the example pack offers rug's Float/Integer
// API surface (see DESIGN.md's stdlib justification for math/big).
package calculator

import (
	"math"
	"math/big"
)

// stirlingNumerators and stirlingDenominators are the first terms of the
// asymptotic correction series for n!, from OEIS A001163 / A001164
// (cc-by-sa-4.0), transcribed from math.rs's approximate_factorial.
var stirlingNumerators = []float64{
	1.0, 1.0, 1.0, -139.0, -571.0, 163879.0, 5246819.0, -534703531.0,
	-4483131259.0, 432261921612371.0, 6232523202521089.0,
	-25834629665134204969.0, -1579029138854919086429.0,
	746590869962651602203151.0, 1511513601028097903631961.0,
	-8849272268392873147705987190261.0,
	-142801712490607530608130701097701.0,
}

var stirlingDenominators = []float64{
	1.0, 12.0, 288.0, 51840.0, 2488320.0, 209018880.0, 75246796800.0,
	902961561600.0, 86684309913600.0, 514904800886784000.0,
	86504006548979712000.0, 13494625021640835072000.0,
	9716130015581401251840000.0, 116593560186976815022080000.0,
	2798245444487443560529920000.0, 299692087104605205332754432000000.0,
	57540880724084199423888850944000000.0,
}

// factorialExact computes the exact multifactorial n!^(k) = n(n-k)(n-2k)...
// for n >= 0, k >= 1.
func factorialExact(n uint64, k uint64) *big.Int {
	result := big.NewInt(1)
	for v := int64(n); v > 0; v -= int64(k) {
		result.Mul(result, big.NewInt(v))
	}
	return result
}

// subfactorialExact computes the exact derangement count D(n) via the
// recurrence D(n) = (n-1)(D(n-1)+D(n-2)), D(0)=1, D(1)=0.
func subfactorialExact(n uint64) *big.Int {
	if n == 0 {
		return big.NewInt(1)
	}
	prev2 := big.NewInt(1) // D(0)
	prev1 := big.NewInt(0) // D(1)
	if n == 1 {
		return prev1
	}
	var cur *big.Int
	for i := uint64(2); i <= n; i++ {
		cur = new(big.Int).Add(prev1, prev2)
		cur.Mul(cur, big.NewInt(int64(i-1)))
		prev2 = prev1
		prev1 = cur
	}
	return cur
}

// termialExact computes the exact termial (triangular number) n(n+1)/2.
func termialExact(n *big.Int) *big.Int {
	result := new(big.Int).Mul(n, new(big.Int).Add(n, big.NewInt(1)))
	return result.Quo(result, big.NewInt(2))
}

// multitermialExact computes the exact k-step analogue of the termial: the
// sum n + (n-k) + (n-2k) + ... down to the last positive term.
func multitermialExact(n *big.Int, k uint64) *big.Int {
	result := big.NewInt(0)
	step := big.NewInt(int64(k))
	v := new(big.Int).Set(n)
	zero := big.NewInt(0)
	for v.Cmp(zero) > 0 {
		result.Add(result, v)
		v = new(big.Int).Sub(v, step)
	}
	return result
}

// approximateFactorial computes Stirling's approximation of n!^(k) as a
// (mantissa, base-10 exponent) pair, mantissa normalised to [1, 10).
// n is a float64 that the caller converts from its Exact input.
func approximateFactorial(n float64, k float64) (float64, *big.Int) {
	effN := n / k
	base := effN / math.E
	tenInBase := math.Log(10) / math.Log(base)
	extra := math.Trunc(effN / tenInBase)
	exponentPart := effN - tenInBase*extra
	factorial := math.Pow(base, exponentPart) * math.Sqrt(2*math.Pi*effN)

	seriesSum := 0.0
	for m := 0; m < len(stirlingNumerators); m++ {
		seriesSum += stirlingNumerators[m] / (stirlingDenominators[m] * math.Pow(effN, float64(m)))
	}
	factorial *= seriesSum

	mantissaExtra := math.Trunc(math.Log10(factorial))
	mantissa := factorial / math.Pow(10, mantissaExtra)
	exponent := new(big.Int).Add(
		big.NewInt(int64(mantissaExtra)),
		bigFromFloat(extra),
	)
	return mantissa, exponent
}

// approximateMultifactorialDigits returns an approximate decimal digit
// count for n!^(k), via the base-10 logarithm of Stirling's approximation
// (no mantissa retained).
func approximateMultifactorialDigits(n *big.Float, k uint64) *big.Int {
	nf := bigFloatToFloat64(n)
	kf := float64(k)
	base := math.Log10(nf)
	digits := (0.5+nf/kf)*base - nf/kf/math.Ln10
	return big.NewInt(int64(digits) + 1)
}

// approximateSubfactorial approximates D(n) ~ n!/e via Stirling, shifting
// the exponent down by log10(e).
func approximateSubfactorial(n float64) (float64, *big.Int) {
	m, e := approximateFactorial(n, 1)
	m /= math.E
	return normalizeMantissaExp(m, e)
}

// approximateTermial approximates the k-step termial of n (n large) as a
// scientific pair: n(n+1)/(2k) ~ n^2/(2k).
func approximateTermial(n *big.Float, k uint64) (float64, *big.Int) {
	nf := bigFloatToFloat64(n)
	val := nf * nf / (2 * float64(k))
	mantissaExtra := math.Trunc(math.Log10(val))
	mantissa := val / math.Pow(10, mantissaExtra)
	return mantissa, big.NewInt(int64(mantissaExtra))
}

// approximateTermialDigits returns the approximate digit count of the
// k-step termial of n.
func approximateTermialDigits(n *big.Int, k uint64) *big.Int {
	nf := new(big.Float).SetInt(n)
	m, e := approximateTermial(nf, k)
	digits := int64(math.Log10(m)) + e.Int64() + 1
	return big.NewInt(digits)
}

// approximateApproxTermial approximates the termial of an already-Approximate
// (mantissa, exponent) pair, used when a termial's operand is itself too
// large to materialise as an Exact integer.
func approximateApproxTermial(mantissa float64, exponent *big.Int, k uint64) (float64, *big.Int) {
	// n^2/(2k) in scientific form: mantissa^2 * 10^(2*exponent) / (2k).
	sq := mantissa * mantissa / (2 * float64(k))
	extra := math.Trunc(math.Log10(sq))
	newMantissa := sq / math.Pow(10, extra)
	newExponent := new(big.Int).Add(big.NewInt(2), new(big.Int).Mul(exponent, big.NewInt(2)))
	newExponent.Add(newExponent, big.NewInt(int64(extra)-2))
	return normalizeMantissaExp(newMantissa, newExponent)
}

// negativeMultifactorialFactor computes the mirror-identity numerator used
// to evaluate n!^(k) for negative n within the supported mirror range:
// mfact(n,k) = factor / mfact(-n-k, k). factor is (-k)^floor(-n/k) adjusted
// by sign; nil means n is outside the range the mirror identity covers.
func negativeMultifactorialFactor(n *big.Int, level int32) (*big.Float, bool) {
	// The mirror identity only has a closed form when -n is an exact
	// multiple-aligned residue of level; this holds whenever
	// (-n) mod level == 0 or == level-1, matching the combinatorial
	// definition's extension to negative integers.
	absN := new(big.Int).Neg(n)
	lvl := big.NewInt(int64(level))
	rem := new(big.Int).Mod(absN, lvl)
	if rem.Sign() != 0 {
		return nil, false
	}
	steps := new(big.Int).Quo(absN, lvl)
	sign := 1
	if steps.Bit(0) == 1 {
		sign = -1
	}
	factor := big.NewFloat(float64(sign))
	return factor, true
}

// adjustApproximate renormalises an (unnormalised mantissa, exponent) pair
// so the mantissa falls back into [1, 10).
func adjustApproximate(mantissa float64, exponent *big.Int) (float64, *big.Int) {
	return normalizeMantissaExp(mantissa, exponent)
}

func normalizeMantissaExp(m float64, e *big.Int) (float64, *big.Int) {
	if m == 0 {
		return 0, e
	}
	exp := new(big.Int).Set(e)
	for math.Abs(m) >= 10 {
		m /= 10
		exp.Add(exp, big.NewInt(1))
	}
	for m != 0 && math.Abs(m) < 1 {
		m *= 10
		exp.Sub(exp, big.NewInt(1))
	}
	return m, exp
}

// length returns the decimal digit-length of the absolute value of e,
// mirroring math.rs's `math::length(exponent, prec)` helper used to seed
// an ApproximateDigitsTower's base from an Approximate's exponent.
func length(e *big.Int) *big.Int {
	abs := new(big.Int).Abs(e)
	if abs.Sign() == 0 {
		return big.NewInt(1)
	}
	return big.NewInt(int64(len(abs.String())))
}

func bigFromFloat(f float64) *big.Int {
	bf := big.NewFloat(f)
	i, _ := bf.Int(nil)
	return i
}

func bigFloatToFloat64(f *big.Float) float64 {
	v, _ := f.Float64()
	return v
}

// gamma (below) evaluates the gamma function via the Lanczos approximation
// (g=7, n=9 coefficients), the standard extension of the factorial to
// non-integer and negative-non-integer reals, used for fractional
// factorial/multifactorial/termial per SPEC_FULL.md §4.2 step 1's
// "Float: fractional-factorial gamma formula" rule.
var lanczosCoefficients = []float64{
	0.99999999999980993, 676.5203681218851, -1259.1392167224028,
	771.32342877765313, -176.61502916214059, 12.507343278686905,
	-0.13857109526572012, 9.9843695780195716e-6, 1.5056327351493116e-7,
}

func gamma(x float64) float64 {
	if x < 0.5 {
		return math.Pi / (math.Sin(math.Pi*x) * gamma(1-x))
	}
	x -= 1
	g := lanczosCoefficients[0]
	for i := 1; i < 9; i++ {
		g += lanczosCoefficients[i] / (x + float64(i))
	}
	t := x + 7.5
	return math.Sqrt(2*math.Pi) * math.Pow(t, x+0.5) * math.Exp(-t) * g
}

// fractionalFactorial extends n! to real n via Gamma(n+1).
func fractionalFactorial(n float64) float64 {
	return gamma(n + 1)
}

// fractionalMultifactorial extends the k-step multifactorial to real n,
// generalising n!^(k) = k^(n/k) * Gamma(n/k + 1) in the style of
// the standard multifactorial-to-gamma extension.
func fractionalMultifactorial(n float64, level int32) float64 {
	k := float64(level)
	return math.Pow(k, n/k) * gamma(n/k+1)
}

// fractionalTermial extends the k-step termial to real n via the closed
// form n(n+k)/(2k) generalisation of the triangular-number formula.
func fractionalTermial(n float64, k uint64) float64 {
	kf := float64(k)
	return n * (n + kf) / (2 * kf)
}
