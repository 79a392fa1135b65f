package calculator

import (
	"math/big"

	"github.com/tolik518/factorion-go/internal/job"
	"github.com/tolik518/factorion-go/internal/number"
)

// Thresholds carries the configuration-controlled fidelity boundaries from
// SPEC_FULL.md §4.2's dispatch table. All fields are required; the
// recommended defaults are built by cmd/factorion-cli's defaultConfig.
type Thresholds struct {
	UpperCalculationLimit           *big.Int
	UpperApproximationLimit         *big.Int
	UpperSubfactorialLimit          *big.Int
	UpperTermialLimit               *big.Int
	UpperTermialApproximationLimit  *big.Int
	IntegerConstructionLimit        int
}

// Calculation is one node's evaluation result, carrying enough of the chain
// to render formatter step text (SPEC_FULL.md §3).
type Calculation struct {
	Value  number.Number
	Steps  []Step
	Result number.Number
}

// Step is one (level, negative) pair applied during evaluation, innermost
// first in Calculation.Steps.
type Step struct {
	Level    int32
	Negative uint32
}

// ThreadHistory is the abstract per-thread de-duplication collaborator
// (SPEC_FULL.md §4.2's "limit hit" hook). It lives outside the core; the
// calculator only calls it, never implements it. A nil ThreadHistory
// disables suppression entirely.
type ThreadHistory interface {
	// Observe records that j is about to be answered and returns the
	// updated count of times this job has been answered in this thread.
	Observe(j job.Job) int
	// ShouldSuppress reports whether j has already reached the configured
	// per-thread answer limit and should be dropped instead of answered.
	ShouldSuppress(j job.Job) bool
}

// Outcome is the result of evaluating one top-level Job.
type Outcome struct {
	Calculations      []Calculation
	NumberTooBig      bool
	LimitHit          bool
}

// Evaluate evaluates jobs into calculations per SPEC_FULL.md §4.2:
// innermost-first per-node dispatch, optional thread-history suppression,
// then a final stable sort by step-chain depth. The calculations are not
// sorted by value and not deduplicated.
func Evaluate(jobs []job.Job, t Thresholds, includeSteps bool, history ThreadHistory) Outcome {
	var out Outcome
	for _, j := range jobs {
		if history != nil && history.ShouldSuppress(j) {
			out.LimitHit = true
			continue
		}
		if history != nil {
			history.Observe(j)
		}
		calcs, ok := executeJob(j, t, includeSteps)
		if !ok {
			out.NumberTooBig = true
			continue
		}
		out.Calculations = append(out.Calculations, calcs...)
	}
	sortByDepth(out.Calculations)
	return out
}

// executeJob flattens j (innermost Num first) and evaluates each level
// outward, exactly mirroring calculation_tasks.rs's CalculationJob::execute:
// unwind to the Number leaf, evaluate bottom-up, and carry a growing Steps
// chain for every (level, negative) pair applied along the way.
func executeJob(j job.Job, t Thresholds, includeSteps bool) ([]Calculation, bool) {
	type frame struct {
		level    int32
		negative uint32
	}
	var frames []frame
	cur := j
	for {
		frames = append(frames, frame{cur.Level, cur.Negative})
		if nested, ok := cur.Base.(*job.Job); ok {
			cur = *nested
			continue
		}
		break
	}
	leaf := cur.Base.(job.NumBase).Num

	// frames[len-1] is the innermost (leaf's own) level/negative.
	innerFrame := frames[len(frames)-1]
	result, ok := calculateAppropriate(leaf, innerFrame.level, innerFrame.negative, t)
	if !ok {
		return nil, false
	}
	steps := []Step{{innerFrame.level, innerFrame.negative}}
	calc := Calculation{Value: leaf, Steps: steps, Result: result}

	var out []Calculation
	if includeSteps {
		out = append(out, calc)
	}

	for i := len(frames) - 2; i >= 0; i-- {
		f := frames[i]
		next, ok := calculateAppropriate(calc.Result, f.level, f.negative, t)
		if !ok {
			if includeSteps {
				return out, true
			}
			return nil, false
		}
		newSteps := append(append([]Step{}, calc.Steps...), Step{f.level, f.negative})
		calc = Calculation{Value: calc.Value, Steps: newSteps, Result: next}
		if includeSteps {
			out = append(out, calc)
		}
	}
	if !includeSteps {
		out = []Calculation{calc}
	}
	return out, true
}

// calculateAppropriate is the per-node dispatch of SPEC_FULL.md §4.2 step 1
// (coercion) then step 2 (threshold-gated strategy selection).
func calculateAppropriate(num number.Number, level int32, negative uint32, t Thresholds) (number.Number, bool) {
	switch num.Kind {
	case number.ComplexInfinity:
		return number.NewComplexInfinity(), true

	case number.ApproximateDigitsTower:
		if num.TowerNegative {
			return number.NewFloat(big.NewFloat(0)), true
		}
		if num.TowerValueNegative {
			return number.NewComplexInfinity(), true
		}
		if level < 0 {
			return number.NewApproximateDigitsTower(false, false, num.TowerDepth, num.TowerBase), true
		}
		return number.NewApproximateDigitsTower(false, false, num.TowerDepth+1, num.TowerBase), true

	case number.ApproximateDigits:
		if num.Digits.Sign() < 0 {
			return number.NewFloat(big.NewFloat(0)), true
		}
		if num.DigitsNegative {
			return number.NewComplexInfinity(), true
		}
		if level < 0 {
			d := new(big.Int).Sub(num.Digits, big.NewInt(1))
			d.Mul(d, big.NewInt(2))
			d.Add(d, big.NewInt(1))
			return number.NewApproximateDigits(false, d), true
		}
		base := new(big.Int).Add(length(num.Digits), num.Digits)
		return number.NewApproximateDigitsTower(false, false, 1, base), true

	case number.Approximate:
		return calculateFromApproximate(num, level, negative, t)

	case number.Float:
		return calculateFromFloat(num, level, negative)

	case number.Exact:
		return calculateFromExact(num.Int, level, negative, t)

	default:
		return number.Number{}, false
	}
}

// safeUpperBoundExp bounds whether an Approximate's materialised value
// still fits as a finite float64, mirroring
// math::APPROX_FACT_SAFE_UPPER_BOUND_FACTOR's intent without requiring an
// arbitrary-precision float library for the check itself.
const safeUpperBoundExp = 300

func calculateFromApproximate(num number.Number, level int32, negative uint32, t Thresholds) (number.Number, bool) {
	mantissaF, _ := num.Mantissa.Float64()
	if num.Exponent.CmpAbs(big.NewInt(safeUpperBoundExp)) < 0 {
		// Small enough to materialise as an Exact integer and continue.
		exp := num.Exponent.Int64()
		scaled := new(big.Float).SetPrec(num.Mantissa.Prec()).Copy(num.Mantissa)
		scaled.Mul(scaled, pow10(exp, num.Mantissa.Prec()))
		asInt, _ := scaled.Int(nil)
		return calculateFromExact(asInt, level, negative, t)
	}
	if mantissaF < 0 {
		return number.NewComplexInfinity(), true
	}
	if level < 0 {
		m, e := approximateApproxTermial(mantissaF, num.Exponent, uint64(-level))
		return number.NewApproximate(big.NewFloat(m), e), true
	}
	base := new(big.Int).Add(length(num.Exponent), num.Exponent)
	return number.NewApproximateDigitsTower(false, false, 1, base), true
}

func calculateFromFloat(num number.Number, level int32, negative uint32) (number.Number, bool) {
	if level == 0 {
		return number.Number{}, false // subfactorial of a non-integer is undefined
	}
	f, _ := num.Real.Float64()
	sign := 1.0
	if negative%2 != 0 {
		sign = -1.0
	}
	switch {
	case level < 0:
		res := fractionalTermial(f, uint64(-level)) * sign
		if !isFinite(res) {
			return number.Number{}, false
		}
		return number.NewFloat(big.NewFloat(res)), true
	case level == 1:
		res := fractionalFactorial(f) * sign
		if !isFinite(res) {
			return number.Number{}, false
		}
		return number.NewFloat(big.NewFloat(res)), true
	default:
		res := fractionalMultifactorial(f, level) * sign
		if !isFinite(res) {
			return number.Number{}, false
		}
		return number.NewFloat(big.NewFloat(res)), true
	}
}

func calculateFromExact(n *big.Int, level int32, negative uint32, t Thresholds) (number.Number, bool) {
	switch {
	case level > 0:
		return calculateFactorialLike(n, level, negative, t)
	case level == 0:
		return calculateSubfactorial(n, negative, t)
	default:
		return calculateTermial(n, level, negative, t)
	}
}

func calculateFactorialLike(n *big.Int, level int32, negative uint32, t Thresholds) (number.Number, bool) {
	if n.Sign() < 0 {
		if level == 1 {
			return number.NewComplexInfinity(), true
		}
		factor, ok := negativeMultifactorialFactor(n, level)
		if !ok {
			return number.NewComplexInfinity(), true
		}
		// rem==0 (guaranteed by negativeMultifactorialFactor) means |n| is
		// an exact multiple of level, so the mirror argument -n-level is
		// always >= 0: the recursion always terminates in one more step.
		mirrorArg := new(big.Int).Neg(n)
		mirrorArg.Sub(mirrorArg, big.NewInt(int64(level)))
		inner, ok := calculateFactorialLike(mirrorArg, level, 0, t)
		if !ok {
			return number.Number{}, false
		}
		if inner.Kind == number.Exact {
			innerF := new(big.Float).SetInt(inner.Int)
			return number.NewFloat(new(big.Float).Quo(factor, innerF)), true
		}
		return inner, true
	}

	applySign := func(num number.Number) number.Number {
		if negative%2 != 0 {
			return num.Negate()
		}
		return num
	}

	if n.Cmp(t.UpperApproximationLimit) > 0 {
		digits := approximateMultifactorialDigits(new(big.Float).SetInt(n), uint64(level))
		return number.NewApproximateDigits(negative%2 != 0, digits), true
	}
	if n.Cmp(t.UpperCalculationLimit) > 0 {
		nf, _ := new(big.Float).SetInt(n).Float64()
		m, e := approximateFactorial(nf, float64(level))
		return applySign(number.NewApproximate(big.NewFloat(m), e)), true
	}
	return applySign(number.NewExact(factorialExact(n.Uint64(), uint64(level)))), true
}

func calculateSubfactorial(n *big.Int, negative uint32, t Thresholds) (number.Number, bool) {
	if n.Sign() < 0 {
		return number.NewComplexInfinity(), true
	}
	applySign := func(num number.Number) number.Number {
		if negative%2 != 0 {
			return num.Negate()
		}
		return num
	}
	if n.Cmp(t.UpperApproximationLimit) > 0 {
		digits := approximateMultifactorialDigits(new(big.Float).SetInt(n), 1)
		return number.NewApproximateDigits(negative%2 != 0, digits), true
	}
	if n.Cmp(t.UpperSubfactorialLimit) > 0 {
		nf, _ := new(big.Float).SetInt(n).Float64()
		m, e := approximateSubfactorial(nf)
		return applySign(number.NewApproximate(big.NewFloat(m), e)), true
	}
	return applySign(number.NewExact(subfactorialExact(n.Uint64()))), true
}

func calculateTermial(n *big.Int, level int32, negative uint32, t Thresholds) (number.Number, bool) {
	k := uint64(-level)
	applySign := func(num number.Number) number.Number {
		if negative%2 != 0 {
			return num.Negate()
		}
		return num
	}
	if n.Cmp(t.UpperTermialApproximationLimit) > 0 {
		digits := approximateTermialDigits(n, k)
		return number.NewApproximateDigits(negative%2 != 0, digits), true
	}
	if n.Cmp(t.UpperTermialLimit) > 0 {
		m, e := approximateTermial(new(big.Float).SetInt(n), k)
		return applySign(number.NewApproximate(big.NewFloat(m), e)), true
	}
	var result *big.Int
	if level < -1 {
		result = multitermialExact(n, k)
	} else {
		result = termialExact(n)
	}
	return applySign(number.NewExact(result)), true
}

func isFinite(f float64) bool {
	return f == f && f < 1e308 && f > -1e308
}

func pow10(exp int64, prec uint) *big.Float {
	neg := exp < 0
	if neg {
		exp = -exp
	}
	result := big.NewFloat(1).SetPrec(prec)
	ten := big.NewFloat(10).SetPrec(prec)
	for i := int64(0); i < exp; i++ {
		result.Mul(result, ten)
	}
	if neg {
		result.Quo(big.NewFloat(1).SetPrec(prec), result)
	}
	return result
}

// sortByDepth stable-sorts calcs by ascending step-chain depth (shallower
// first), per SPEC_FULL.md §4.2's per-job post-processing rule.
func sortByDepth(calcs []Calculation) {
	for i := 1; i < len(calcs); i++ {
		for k := i; k > 0 && len(calcs[k-1].Steps) > len(calcs[k].Steps); k-- {
			calcs[k-1], calcs[k] = calcs[k], calcs[k-1]
		}
	}
}
