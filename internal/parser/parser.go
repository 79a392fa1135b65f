// Package parser implements the single-pass, non-regex expression parser
// (P) from SPEC_FULL.md §4.1: a hand-written character-level state machine
// that locates factorial/termial-like fragments in free-form text and
// produces a sorted, deduplicated list of job.Job trees.
//
// The scanning idiom (rune-at-a-time with a non-progress watchdog) is
// grounded on _examples/opal-lang-opal/pkgs/lexer/lexer.go. The grammar and
// state transitions are grounded on
// original_source/factorion-lib/src/parse.rs's single-pass implementation
// rather than the teacher's two-phase lex-then-parse split, per DESIGN.md's
// "Deviations from the teacher's architecture".
package parser

import (
	"fmt"
	"math/big"
	"unicode"

	"github.com/tolik518/factorion-go/internal/job"
	"github.com/tolik518/factorion-go/internal/number"
)

// maxStuckAttempts bounds how many consecutive non-progress iterations the
// watchdog tolerates before it concludes the scanner is stuck, mirroring
// lexer.go's maxStuckAttempts = 3 convention.
const maxStuckAttempts = 3

// Options configures a single Parse call. TermialEnabled gates recognition
// of the postfix '?' (termial) operator. FloatPrecision and
// IntegerConstructionLimit come from the process-wide Config (SPEC_FULL.md
// §6); a Parser never reads global state itself.
type Options struct {
	TermialEnabled          bool
	FloatPrecision          uint
	IntegerConstructionLimit int
}

// Parse scans text for factorial-like fragments and returns the sorted,
// deduplicated list of Job trees a sensible reader would regard as explicit
// expressions. Parse never panics on malformed input and always terminates;
// the only panic it can raise is the internal watchdog (ErrParseWatchdog
// territory), which signals a scanner bug, not bad input.
func Parse(text string, opts Options) []job.Job {
	p := &parserState{
		runes:        []rune(text),
		termial:      opts.TermialEnabled,
		intConstruct: opts.IntegerConstructionLimit,
		constants:    newConstants(opts.FloatPrecision),
		lastPos:      -1,
	}
	p.run()
	return job.SortDedup(p.results)
}

// frame is one entry of the paren stack: SPEC_FULL.md's
// "(pending_sign_run, optional_prefix_level, poisoned_flag)".
type frame struct {
	sign        uint32
	prefixLevel *int32 // non-nil means a prefix bang preceded '(' (0 = subfactorial)
	poisoned    bool
	base        job.Base // the one job/number found inside this paren so far
	sawOperand  bool     // true once base is set; a second operand poisons
	numSign     uint32   // sign magnitude still pending on a bare Number base;
	// seeds the Negative count of the first Job that wraps it with a real
	// operator (see handleCloseParen), since a bare Number only ever carries
	// sign as value parity, never as a magnitude of its own.
}

type parserState struct {
	runes   []rune
	i       int
	termial bool

	intConstruct int
	constants    *constants

	results []job.Job
	stack   []frame

	currentNegative uint32

	// watchdog state
	lastPos     int
	stuckStreak int
}

func (p *parserState) run() {
	for p.i < len(p.runes) {
		p.checkProgress()
		r := p.runes[p.i]

		switch {
		case r == '\\':
			p.handleEscape()
		case r == '>' && p.matchAt(p.i, ">!") || p.matchAt(p.i, "&gt;!"):
			// lookahead-only match for '>' handled inside tryConsumeSpoiler
			if !p.tryConsumeSpoiler() {
				p.consumeNonPOI(1)
			}
		case r == ':' && p.matchAt(p.i, "://"):
			p.consumeURI()
		case isSignChar(r):
			p.consumeSignRun()
		case r == '(':
			p.handleOpenParen()
		case r == ')':
			p.handleCloseParen()
		case r == '!':
			p.handleBang()
		case isDigit(r) || r == '.' || r == ',':
			p.handleNumberStart()
		case isConstantStart(r):
			if !p.tryConsumeConstant() {
				p.consumeNonPOI(1)
			}
		case unicode.IsSpace(r):
			p.consumeWhitespace()
		default:
			p.consumeNonPOI(1)
		}
	}
}

// checkProgress is the non-progress watchdog: it panics if the scan position
// fails to advance for maxStuckAttempts consecutive calls, the exact pattern
// lexer.go's checkStuck uses (position/line/column there; position alone
// here, since this scanner has no line/column concept).
func (p *parserState) checkProgress() {
	if p.i == p.lastPos {
		p.stuckStreak++
		if p.stuckStreak >= maxStuckAttempts {
			panic(fmt.Sprintf(
				"parser: no forward progress at rune %d (stuck %d times): %q",
				p.i, p.stuckStreak, p.contextWindow(),
			))
		}
		return
	}
	p.stuckStreak = 0
	p.lastPos = p.i
}

func (p *parserState) contextWindow() string {
	start := p.i - 10
	if start < 0 {
		start = 0
	}
	end := p.i + 10
	if end > len(p.runes) {
		end = len(p.runes)
	}
	return string(p.runes[start:end])
}

// --- character classification -------------------------------------------------

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isSignChar(r rune) bool { return r == '-' }

func isConstantStart(r rune) bool {
	switch r {
	case 'e', 'p', 't', 'π', 'ɸ', 'τ':
		return true
	}
	return false
}

// --- low-level scanning helpers -----------------------------------------------

func (p *parserState) peekAt(offset int) rune {
	idx := p.i + offset
	if idx < 0 || idx >= len(p.runes) {
		return 0
	}
	return p.runes[idx]
}

// matchAt reports whether literal occurs starting at absolute rune index idx.
func (p *parserState) matchAt(idx int, literal string) bool {
	lit := []rune(literal)
	if idx+len(lit) > len(p.runes) {
		return false
	}
	for k, r := range lit {
		if p.runes[idx+k] != r {
			return false
		}
	}
	return true
}

// consumeNonPOI advances n runes and applies the "non-whitespace non-POI
// text poisons the innermost paren and clears the pending sign" rule.
func (p *parserState) consumeNonPOI(n int) {
	if len(p.stack) > 0 {
		p.stack[len(p.stack)-1].poisoned = true
	}
	p.currentNegative = 0
	p.i += n
}

// consumeWhitespace advances over a run of whitespace without poisoning the
// innermost paren - parens may contain whitespace (SPEC_FULL.md §4.1) -
// mirroring parse.rs's text.trim_start(), which runs before the poison
// check so pure whitespace between a number and ')' never counts against
// it. A pending sign is still cleared, the same as consumeNonPOI.
func (p *parserState) consumeWhitespace() {
	for p.i < len(p.runes) && unicode.IsSpace(p.runes[p.i]) {
		p.i++
	}
	p.currentNegative = 0
}

// --- escape, spoiler, URI handling ---------------------------------------------

func (p *parserState) handleEscape() {
	// "\" escapes the next delimiter-start token (spoiler/URI marker) if
	// present, consuming it without entering that mode; otherwise it is
	// consumed as ordinary text.
	if p.peekAt(1) == '>' || p.matchAt(p.i+1, "&gt;") {
		p.i++ // consume backslash only; the following '>' becomes ordinary text
		p.consumeNonPOI(1)
		return
	}
	if p.matchAt(p.i+1, "://") {
		p.i += 4 // backslash + "://" neutralised as plain text
		return
	}
	p.i++ // lone backslash: ordinary text
}

// tryConsumeSpoiler handles both ">!...!<" and "&gt;!...!&lt;" spoiler
// blocks. On a start marker with no matching end, only the start marker
// character(s) are skipped - the "!" that follows is left for normal
// processing, since ">!5" with no closing tag must still recognize the "!"
// as a prefix subfactorial operator (see DESIGN.md decision #2).
func (p *parserState) tryConsumeSpoiler() bool {
	var markerLen int
	var endLit string
	switch {
	case p.matchAt(p.i, ">!"):
		markerLen = 1 // only ">" is the marker; "!" is a separate operator token
		endLit = "!<"
	case p.matchAt(p.i, "&gt;!"):
		markerLen = 4 // "&gt;"
		endLit = "!&lt;"
	default:
		return false
	}
	end := p.findSpoilerEnd(p.i+markerLen, endLit)
	if end < 0 {
		p.i += markerLen
		return true
	}
	p.i = end + len([]rune(endLit))
	return true
}

// findSpoilerEnd scans forward from start for endLit, respecting '\'
// escapes of the end marker, and returns the rune index where it begins, or
// -1 if not found before EOF.
func (p *parserState) findSpoilerEnd(start int, endLit string) int {
	for k := start; k < len(p.runes); k++ {
		if p.runes[k] == '\\' && p.matchAt(k+1, endLit) {
			k++ // skip the escaped end marker and keep scanning
			continue
		}
		if p.matchAt(k, endLit) {
			return k
		}
	}
	return -1
}

func (p *parserState) consumeURI() {
	p.i += 3 // "://"
	for p.i < len(p.runes) && !unicode.IsSpace(p.runes[p.i]) {
		p.i++
	}
}

// --- sign runs -----------------------------------------------------------------

func (p *parserState) consumeSignRun() {
	start := p.i
	for p.i < len(p.runes) && p.runes[p.i] == '-' {
		p.i++
	}
	p.currentNegative = uint32(p.i - start)
}

// --- parens ----------------------------------------------------------------

func (p *parserState) handleOpenParen() {
	p.stack = append(p.stack, frame{sign: p.currentNegative})
	p.currentNegative = 0
	p.i++
}

func (p *parserState) handleCloseParen() {
	p.i++
	if len(p.stack) == 0 {
		// Unmatched ')': dropped silently.
		return
	}
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	if top.poisoned || !top.sawOperand {
		p.propagatePoison()
		return
	}

	base := top.base
	carry := top.numSign
	if top.prefixLevel != nil {
		j := job.Job{Base: base, Level: *top.prefixLevel}
		if _, wasNum := base.(job.NumBase); wasNum {
			j.Negative = carry
			carry = 0
		}
		base = &j
	}
	before := base
	base = p.consumePostfixRuns(base)
	if _, wasNum := before.(job.NumBase); wasNum {
		if j, ok := base.(*job.Job); ok {
			j.Negative += carry
			carry = 0
		}
	}

	final := p.finalizeNode(base, top.sign)
	if _, stillNum := final.(job.NumBase); stillNum {
		carry += top.sign
	} else {
		carry = 0
	}
	p.placeCompletedNode(final, carry)
}

// propagatePoison marks the new innermost paren (if any) as poisoned, or
// drops the value entirely if we are back at the top level.
func (p *parserState) propagatePoison() {
	if len(p.stack) > 0 {
		p.stack[len(p.stack)-1].poisoned = true
	}
}

// placeCompletedNode either records base as a top-level result (only when it
// is an explicit operator node - a bare Number is never itself a
// factorial-like expression), or installs it as the current paren's operand
// (poisoning if one was already present). carry is any sign magnitude still
// pending on a bare Number base (see handleCloseParen); it is threaded onto
// the enclosing frame so a later operator can seed its Negative count from
// the whole chain of signs the number has passed through.
func (p *parserState) placeCompletedNode(base job.Base, carry uint32) {
	if base == nil {
		return
	}
	if len(p.stack) == 0 {
		if j, ok := base.(*job.Job); ok {
			p.results = append(p.results, *j)
		}
		return
	}
	top := &p.stack[len(p.stack)-1]
	if top.sawOperand {
		top.poisoned = true
		return
	}
	top.base = base
	if j, ok := base.(*job.Job); ok {
		jc := *j
		top.base = &jc
	} else {
		top.numSign = carry
	}
	top.sawOperand = true
}

// finalizeNode wraps base in a Job carrying the accumulated sign if base is
// already a Job (has an operator attached), or negates a bare Number in
// place by pendingSign's parity otherwise, per "negative binds to the
// result of this node" / "unary minus binds weaker than postfix" and
// SPEC_FULL.md §4.1's ')' combine rule ("parity on Number negates"). A bare
// Number is never itself an explicit factorial-like expression, but the
// sign-adjusted value is still returned so callers (handleCloseParen via
// placeCompletedNode) can use it as an enclosing paren's operand instead of
// dropping it.
func (p *parserState) finalizeNode(base job.Base, pendingSign uint32) job.Base {
	switch b := base.(type) {
	case *job.Job:
		b.Negative += pendingSign
		return b
	case job.NumBase:
		n := b.Num
		if pendingSign%2 == 1 {
			n = n.Negate()
		}
		return job.NumBase{Num: n}
	default:
		return nil
	}
}

// --- prefix bang ---------------------------------------------------------------

func (p *parserState) handleBang() {
	start := p.i
	for p.i < len(p.runes) && p.runes[p.i] == '!' {
		p.i++
	}
	run := p.i - start

	if run >= 2 {
		// Prefix run of >=2 '!' aborts this attempt and discards a
		// following number, preventing "!!!1!" from leaking a spurious job.
		p.currentNegative = 0
		if isDigit(p.peekAt(0)) || p.peekAt(0) == '.' {
			p.skipNumberLiteral()
		}
		return
	}

	// Exactly one prefix '!'.
	switch {
	case p.peekAt(0) == '(':
		level := int32(0)
		p.handleOpenParen()
		p.stack[len(p.stack)-1].prefixLevel = &level
	case isDigit(p.peekAt(0)) || p.peekAt(0) == '.':
		n, ok := p.parseNumberLiteral()
		if !ok {
			return
		}
		// Subfactorial (level 0) applies innermost, directly to n; any
		// postfix run that follows wraps that result outward.
		inner := job.Job{Base: job.NumBase{Num: n}, Level: 0}
		wrapped := p.consumePostfixRuns(&inner)
		final := p.finalizeNode(wrapped, p.currentNegative)
		p.currentNegative = 0
		p.placeCompletedNode(final, 0)
	default:
		// Prefix '!' not followed by a number or '(': inert, drop the sign.
		p.currentNegative = 0
	}
}

// skipNumberLiteral advances past a number literal without constructing a
// Number, used to discard the operand after an invalid "!!" prefix run.
func (p *parserState) skipNumberLiteral() {
	for p.i < len(p.runes) && (isDigit(p.runes[p.i]) || p.runes[p.i] == '.' || p.runes[p.i] == ',') {
		p.i++
	}
}

// --- postfix operator runs ------------------------------------------------------

// consumePostfixRuns repeatedly consumes a run of '!' or a run of '?'
// (termial only if enabled), wrapping base deeper for each distinct run
// encountered, in the order they appear (inner-to-outer).
func (p *parserState) consumePostfixRuns(base job.Base) job.Base {
	for {
		switch {
		case p.peekAt(0) == '!':
			start := p.i
			for p.peekAt(0) == '!' {
				p.i++
			}
			k := int32(p.i - start)
			j := job.Job{Base: base, Level: k}
			base = &j
		case p.termial && p.peekAt(0) == '?':
			start := p.i
			for p.peekAt(0) == '?' {
				p.i++
			}
			k := int32(p.i - start)
			j := job.Job{Base: base, Level: -k}
			base = &j
		default:
			return base
		}
	}
}

// --- numbers and constants ------------------------------------------------------

func (p *parserState) handleNumberStart() {
	inParen := len(p.stack) > 0

	n, ok := p.parseNumberLiteral()
	if !ok {
		p.consumeNonPOI(1)
		return
	}

	base := p.consumePostfixRuns(job.NumBase{Num: n})
	if _, isJob := base.(*job.Job); isJob {
		final := p.finalizeNode(base, p.currentNegative)
		p.currentNegative = 0
		p.placeCompletedNode(final, 0)
		return
	}

	// No operator attached to this number: the pending sign only ever
	// applies to the number's own value, via parity (see parse.rs's
	// in-parens number branch).
	sign := p.currentNegative
	if sign%2 == 1 {
		n = n.Negate()
	}
	p.currentNegative = 0
	if inParen {
		top := &p.stack[len(p.stack)-1]
		if top.sawOperand {
			top.poisoned = true
			return
		}
		top.base = job.NumBase{Num: n}
		top.numSign = sign
		top.sawOperand = true
		return
	}
	// Bare number outside parens with no operator: nothing further to do.
}

// parseNumberLiteral implements the number grammar: integer part, optional
// decimal part, optional exponent, optional fraction (not after an exponent,
// and only when no postfix operator follows the denominator - see
// SPEC_FULL.md §4.1's fraction rule).
func (p *parserState) parseNumberLiteral() (number.Number, bool) {
	intPart := p.consumeDigits()
	decPart := ""
	if r := p.peekAt(0); r == '.' || r == ',' {
		save := p.i
		p.i++
		d := p.consumeDigits()
		if d == "" {
			p.i = save
		} else {
			decPart = d
		}
	}
	if intPart == "" && decPart == "" {
		return number.Number{}, false
	}

	hasExp := false
	expVal := 0
	if r := p.peekAt(0); r == 'e' || r == 'E' {
		save := p.i
		p.i++
		sign := 1
		if p.peekAt(0) == '+' {
			p.i++
		} else if p.peekAt(0) == '-' {
			sign = -1
			p.i++
		}
		ed := p.consumeDigits()
		if ed == "" {
			p.i = save
		} else {
			hasExp = true
			expVal = sign * atoiSafe(ed)
		}
	}

	hasFrac := false
	fracPart := ""
	if !hasExp && p.peekAt(0) == '/' {
		save := p.i
		p.i++
		fd := p.consumeDigits()
		if fd == "" {
			p.i = save
		} else if p.peekAt(0) == '!' || (p.termial && p.peekAt(0) == '?') {
			// Op binds to the denominator: the fraction is not a fraction.
			intPart = fd
			decPart = ""
		} else {
			fracPart = fd
			hasFrac = true
		}
	}

	return p.buildNumber(intPart, decPart, hasExp, expVal, fracPart, hasFrac), true
}

func (p *parserState) consumeDigits() string {
	start := p.i
	for p.i < len(p.runes) && isDigit(p.runes[p.i]) {
		p.i++
	}
	return string(p.runes[start:p.i])
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// buildNumber decides Exact vs Float per the integer_construction_limit rule
// in SPEC_FULL.md §4.1. It never produces an Approximate: a literal outside
// the construction limit becomes a Float.
func (p *parserState) buildNumber(intPart, decPart string, hasExp bool, exp int, fracPart string, hasFrac bool) number.Number {
	if hasFrac {
		num := p.parseFloatParts(intPart, decPart)
		den := p.parseFloatParts(fracPart, "")
		if den.Sign() == 0 {
			return number.NewFloat(big.NewFloat(0))
		}
		return number.NewFloat(new(big.Float).Quo(num, den))
	}

	limit := p.intConstruct
	if limit == 0 {
		limit = 1_000_000
	}

	if decPart == "" && !hasExp {
		n := new(big.Int)
		n.SetString(orZero(intPart), 10)
		return number.NewExact(n)
	}

	decimals := len(decPart)
	intDigits := len(intPart) + decimals

	if exp >= decimals && exp <= limit-intDigits {
		digits := intPart + decPart
		n := new(big.Int)
		n.SetString(orZero(digits), 10)
		shift := exp - decimals
		if shift > 0 {
			n.Mul(n, pow10Int(shift))
		}
		return number.NewExact(n)
	}

	f := p.parseFloatParts(intPart, decPart)
	if hasExp {
		f.Mul(f, pow10Float(p.constants, exp))
	}
	return number.NewFloat(f)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (p *parserState) parseFloatParts(intPart, decPart string) *big.Float {
	lit := orZero(intPart)
	if decPart != "" {
		lit += "." + decPart
	}
	prec := p.constants.e.Prec()
	f, _, err := big.ParseFloat(lit, 10, prec, big.ToNearestEven)
	if err != nil {
		return big.NewFloat(0).SetPrec(prec)
	}
	return f
}

func pow10Int(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func pow10Float(c *constants, n int) *big.Float {
	prec := c.e.Prec()
	result := big.NewFloat(1).SetPrec(prec)
	ten := big.NewFloat(10).SetPrec(prec)
	neg := n < 0
	if neg {
		n = -n
	}
	for i := 0; i < n; i++ {
		result.Mul(result, ten)
	}
	if neg {
		result.Quo(big.NewFloat(1).SetPrec(prec), result)
	}
	return result
}

// tryConsumeConstant matches e/pi/phi/tau and their Unicode symbol forms,
// rejecting a match if it is adjacent to a letter on either side (the "pie"
// / "tauon" rejection rule).
func (p *parserState) tryConsumeConstant() bool {
	if p.isLetterBefore() {
		return false
	}
	var lit string
	var val *big.Float
	switch {
	case p.matchAt(p.i, "pi"):
		lit, val = "pi", p.constants.pi
	case p.matchAt(p.i, "phi"):
		lit, val = "phi", p.constants.phi
	case p.matchAt(p.i, "tau"):
		lit, val = "tau", p.constants.tau
	case p.peekAt(0) == 'e':
		lit, val = "e", p.constants.e
	case p.peekAt(0) == 'π':
		lit, val = "π", p.constants.pi
	case p.peekAt(0) == 'ɸ':
		lit, val = "ɸ", p.constants.phi
	case p.peekAt(0) == 'τ':
		lit, val = "τ", p.constants.tau
	default:
		return false
	}
	end := p.i + len([]rune(lit))
	if end < len(p.runes) && unicode.IsLetter(p.runes[end]) {
		return false
	}

	n := number.NewFloat(val)
	p.i = end
	base := p.consumePostfixRuns(job.NumBase{Num: n})
	final := p.finalizeNode(base, p.currentNegative)
	p.currentNegative = 0
	p.placeCompletedNode(final, 0)
	return true
}

func (p *parserState) isLetterBefore() bool {
	if p.i == 0 {
		return false
	}
	return unicode.IsLetter(p.runes[p.i-1])
}
