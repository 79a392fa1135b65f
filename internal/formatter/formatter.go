// Package formatter implements the reply construction (F) of
// SPEC_FULL.md §4.3: turning a list of calculator.Calculation into a single
// size-bounded reply string, with progressive degradation when the natural
// rendering would exceed the configured budget.
//
// Grounded on
// original_source/factorion-lib/src/calculation_results.rs's
// Calculation::format/get_factorial_level_string and math.rs's round(), the
// 45-entry Latin ordinal table transcribed verbatim (public-domain Latin
// numerals, not the teacher's own invention).
package formatter

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/tolik518/factorion-go/internal/calculator"
	"github.com/tolik518/factorion-go/internal/locale"
	"github.com/tolik518/factorion-go/internal/number"
)

// ordinalPrefixes is the level>=2 multifactorial ordinal table, index 0
// unused (levels start at 2).
var ordinalPrefixes = [...]string{
	2: "double-", 3: "triple-", 4: "quadruple-", 5: "quintuple-",
	6: "sextuple-", 7: "septuple-", 8: "octuple-", 9: "nonuple-",
	10: "decuple-", 11: "undecuple-", 12: "duodecuple-", 13: "tredecuple-",
	14: "quattuordecuple-", 15: "quindecuple-", 16: "sexdecuple-",
	17: "septendecuple-", 18: "octodecuple-", 19: "novemdecuple-",
	20: "vigintuple-", 21: "unvigintuple-", 22: "duovigintuple-",
	23: "trevigintuple-", 24: "quattuorvigintuple-", 25: "quinvigintuple-",
	26: "sexvigintuple-", 27: "septenvigintuple-", 28: "octovigintuple-",
	29: "novemvigintuple-", 30: "trigintuple-", 31: "untrigintuple-",
	32: "duotrigintuple-", 33: "tretrigintuple-", 34: "quattuortrigintuple-",
	35: "quintrigintuple-", 36: "sextrigintuple-", 37: "septentrigintuple-",
	38: "octotrigintuple-", 39: "novemtrigintuple-", 40: "quadragintuple-",
	41: "unquadragintuple-", 42: "duoquadragintuple-",
	43: "trequadragintuple-", 44: "quattuorquadragintuple-",
	45: "quinquadragintuple-",
}

func ordinalPrefix(level int32) string {
	if level >= 2 && int(level) < len(ordinalPrefixes) {
		return ordinalPrefixes[level]
	}
	return fmt.Sprintf("%d-", level)
}

// footerTemplate is the fixed disclaimer appended to every reply.
const footerTemplate = "\n*^(%s)*"

// numberDecimalsScientific is the mantissa precision used when shortening
// an Exact integer to scientific notation (30, mirroring
// calculation_results.rs's NUMBER_DECIMALS_SCIENTIFIC). It is a fixed
// constant: Config.NumberDecimalsScientific is not passed to the formatter
// and does not change the rendered mantissa.
const numberDecimalsScientific = 30

// Options configures a single Format call.
type Options struct {
	MaxLength int // total budget, footer already reserved out of this
	Notify    string
	NoNote    bool
	Locale    locale.Locale
}

// Format renders calcs into a single reply string within opts.MaxLength
// (plus the footer), applying the shortening/dropping/aggressive
// degradation ladder of SPEC_FULL.md §4.3 until it fits, or falling back to
// a fixed apology.
func Format(calcs []calculator.Calculation, opts Options) string {
	footer := fmt.Sprintf(footerTemplate, opts.Locale.BotDisclaimer())
	budget := opts.MaxLength

	tooBig := tenPow(budget)

	if body, ok := tryRender(calcs, opts, tooBig, false, false, budget); ok {
		return body + footer
	}
	if body, ok := tryRender(calcs, opts, tooBig, true, false, budget); ok {
		return body + footer
	}
	remaining := append([]calculator.Calculation{}, calcs...)
	for len(remaining) > 0 {
		remaining = remaining[:len(remaining)-1]
		if len(remaining) == 0 {
			break
		}
		if body, ok := tryRender(remaining, opts, tooBig, true, false, budget); ok {
			return body + footer
		}
	}
	if len(calcs) == 1 {
		if body, ok := tryRender(calcs, opts, tooBig, true, true, budget); ok {
			return body + footer
		}
	}
	return "Sorry, the result is too large to fit in a reply." + footer
}

func tryRender(calcs []calculator.Calculation, opts Options, tooBig *big.Int, forceShorten, aggressive bool, budget int) (string, bool) {
	var b strings.Builder
	if opts.Notify != "" {
		fmt.Fprintf(&b, "Hey %s!\n\n", opts.Notify)
	}
	if !opts.NoNote {
		if note := selectNote(calcs, opts.Locale, tooBig, forceShorten); note != "" {
			b.WriteString(note)
			b.WriteString("\n\n")
		}
	}
	for _, c := range calcs {
		b.WriteString(renderCalculation(c, opts.Locale, tooBig, forceShorten, aggressive))
	}
	if note := factorionNote(calcs, opts.Locale); note != "" {
		b.WriteString(note)
	}
	body := b.String()
	if len(body) > budget {
		return "", false
	}
	return body, true
}

func tenPow(digits int) *big.Int {
	if digits <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
}

// renderCalculation renders one Calculation line: step-chain + value + verb
// + result, matching Calculation::format's assembly order.
func renderCalculation(c calculator.Calculation, l locale.Locale, tooBig *big.Int, forceShorten, aggressive bool) string {
	var prefix string
	if aggressive {
		prefix = l.FormatOf().AllThat + " "
	} else {
		prefix = renderStepChain(c.Steps, l)
	}
	prefix = capitalizeFirst(prefix)

	verb := "is"
	if c.Result.Kind == number.ApproximateDigits || c.Result.Kind == number.ApproximateDigitsTower {
		verb = "has"
	}
	approxWord := approximateWord(c)

	valueStr := renderNumber(c.Value, l, tooBig, forceShorten, aggressive)
	resultStr := renderNumber(c.Result, l, tooBig, forceShorten, aggressive)

	return fmt.Sprintf("%s%s %s%s %s\n\n", prefix, valueStr, verb, approxWord, resultStr)
}

func approximateWord(c calculator.Calculation) string {
	switch {
	case c.Result.Kind == number.ApproximateDigitsTower:
		return " on the order of"
	case c.Result.Kind == number.Approximate, c.Result.Kind == number.ApproximateDigits, c.Result.Kind == number.Float:
		return " approximately"
	case c.Value.Kind == number.Float:
		return " approximately"
	default:
		return ""
	}
}

// renderStepChain walks steps outer->inner, mirroring Calculation::format's
// fold over steps.iter().rev().
func renderStepChain(steps []calculator.Step, l locale.Locale) string {
	var b strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		negStr := ""
		if s.Negative > 0 {
			negStr = "negative "
		}
		negStrength := ""
		if s.Negative > 1 {
			negStrength = ordinalPrefix(int32(s.Negative)) + "y "
		}
		switch {
		case s.Level == -1:
			fmt.Fprintf(&b, "the %s%stermial of ", negStrength, negStr)
		case s.Level < -1:
			fmt.Fprintf(&b, "%s%s%stermial of ", negStrength, negStr, ordinalPrefix(-s.Level))
		case s.Level == 1:
			fmt.Fprintf(&b, "the %s%sfactorial of ", negStrength, negStr)
		case s.Level == 0:
			fmt.Fprintf(&b, "%s%ssubfactorial of ", negStrength, negStr)
		default: // >=2
			fmt.Fprintf(&b, "%s%s%sfactorial of ", negStrength, negStr, ordinalPrefix(s.Level))
		}
	}
	return b.String()
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// renderNumber renders a Number per its Kind, applying scientific
// shortening when the integer is too long, force-shorten, or aggressive
// tetration mode, per SPEC_FULL.md §4.3's shortening/tower rendering rules.
func renderNumber(n number.Number, l locale.Locale, tooBig *big.Int, forceShorten, aggressive bool) string {
	switch n.Kind {
	case number.Exact:
		if isTooLong(n.Int, tooBig) || forceShorten {
			return renderScientific(n.Int)
		}
		return n.Int.String()
	case number.Float:
		return n.Real.Text('g', 10)
	case number.Approximate:
		m := new(big.Float).Copy(n.Mantissa)
		return fmt.Sprintf("%s × 10^%s", roundMantissaString(m), n.Exponent.String())
	case number.ApproximateDigits:
		sign := ""
		if n.DigitsNegative {
			sign = "-"
		}
		return fmt.Sprintf("%s%s digits", sign, n.Digits.String())
	case number.ApproximateDigitsTower:
		if aggressive {
			return renderAggressiveTower(n)
		}
		return renderTower(n)
	case number.ComplexInfinity:
		return "undefined (complex infinity)"
	default:
		return "?"
	}
}

func isTooLong(n *big.Int, tooBig *big.Int) bool {
	return new(big.Int).Abs(n).Cmp(tooBig) >= 0
}

// renderScientific implements the scientific-notation integer-shortening
// rule: top NUMBER_DECIMALS_SCIENTIFIC+2 digits, half-up rounding with
// carry over trailing 9s, trim trailing zeros, insert a decimal point.
func renderScientific(n *big.Int) string {
	neg := n.Sign() < 0
	digits := new(big.Int).Abs(n).String()
	l := int64(len(digits) - 1) // floor(log10(|n|))

	keep := numberDecimalsScientific + 2
	if keep > len(digits) {
		keep = len(digits)
	}
	mantissaDigits := digits[:keep]
	carried := false
	if keep < len(digits) && digits[keep] >= '5' {
		mantissaDigits, carried = roundDigitString(mantissaDigits)
	}
	if carried {
		l++
	}
	mantissaDigits = strings.TrimRight(mantissaDigits, "0")
	if mantissaDigits == "" {
		mantissaDigits = "0"
	}

	var mantissa string
	if len(mantissaDigits) > 1 {
		mantissa = mantissaDigits[:1] + "." + mantissaDigits[1:]
	} else {
		mantissa = mantissaDigits
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("roughly %s%s × 10^%d", sign, mantissa, l)
}

// roundDigitString rounds a decimal digit string up by one in its last
// place, carrying over trailing 9s. Returns the rounded string and whether
// the carry overflowed the leading digit (prepending a "1").
func roundDigitString(s string) (string, bool) {
	b := []byte(s)
	i := len(b) - 1
	for i >= 0 {
		if b[i] == '9' {
			b[i] = '0'
			i--
			continue
		}
		b[i]++
		return string(b), false
	}
	return "1" + string(b), true
}

func roundMantissaString(m *big.Float) string {
	return m.Text('f', 4)
}

// renderTower renders a power-of-ten tower: depth d with base b.
func renderTower(n number.Number) string {
	base := n.TowerBase.String()
	if n.TowerDepth == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString("10^(")
	for i := uint64(0); i < n.TowerDepth-1; i++ {
		b.WriteString(`10\^`)
	}
	b.WriteString("(")
	b.WriteString(base)
	b.WriteString(`\)`)
	b.WriteString(")")
	return b.String()
}

// renderAggressiveTower renders a tower in tetration notation
// ("^(d+extra)10"), reducing the base below 10 by repeated log10.
func renderAggressiveTower(n number.Number) string {
	extra := 0
	base := new(big.Int).Set(n.TowerBase)
	ten := big.NewInt(10)
	for base.Cmp(ten) >= 0 {
		base = big.NewInt(int64(len(base.String())))
		extra++
	}
	return fmt.Sprintf("^(%d)10", int(n.TowerDepth)+extra)
}

// selectNote picks the first applicable note template, per SPEC_FULL.md
// §4.3's priority order: tower > digits > approx > round > too_big.
func selectNote(calcs []calculator.Calculation, l locale.Locale, tooBig *big.Int, forceShorten bool) string {
	notes := l.NotesOf()
	mult := len(calcs) > 1
	pick := func(single, plural string) string {
		if mult {
			return plural
		}
		return single
	}
	hasKind := func(k number.Kind) bool {
		for _, c := range calcs {
			if c.Result.Kind == k {
				return true
			}
		}
		return false
	}
	if hasKind(number.ApproximateDigitsTower) {
		return pick(notes.Tower, notes.TowerMult)
	}
	if hasKind(number.ApproximateDigits) {
		return pick(notes.Digits, notes.DigitsMult)
	}
	if hasKind(number.Approximate) {
		return pick(notes.Approx, notes.ApproxMult)
	}
	for _, c := range calcs {
		if c.Value.Kind == number.Float && c.Result.Kind != number.Float {
			return pick(notes.Round, notes.RoundMult)
		}
	}
	for _, c := range calcs {
		if c.Result.Kind == number.Exact && (isTooLong(c.Result.Int, tooBig) || forceShorten) {
			return pick(notes.TooBig, notes.TooBigMult)
		}
	}
	return ""
}

// factorionNote returns the factorion-flavour line if any Calculation's
// Exact result equals 145 or 40585.
func factorionNote(calcs []calculator.Calculation, l locale.Locale) string {
	for _, c := range calcs {
		if c.Result.Kind != number.Exact {
			continue
		}
		if c.Result.Int.Cmp(big.NewInt(145)) == 0 || c.Result.Int.Cmp(big.NewInt(40585)) == 0 {
			return fmt.Sprintf("Interesting! %s is a factorion, a number that equals the sum of the factorials of its digits.\n\n", c.Result.Int.String())
		}
	}
	return ""
}
