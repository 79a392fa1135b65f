package parser

import (
	"math/big"
	"testing"

	"github.com/tolik518/factorion-go/internal/job"
	"github.com/tolik518/factorion-go/internal/number"
)

func defaultOpts() Options {
	return Options{TermialEnabled: true, FloatPrecision: 200, IntegerConstructionLimit: 1_000_000}
}

func mustJob(t *testing.T, n int64, level int32, negative uint32) job.Job {
	t.Helper()
	return job.New(number.NewExactInt64(n), level, negative)
}

func TestParseScenario1SimpleFactorial(t *testing.T) {
	got := Parse("5!", defaultOpts())
	want := []job.Job{mustJob(t, 5, 1, 0)}
	if len(got) != 1 || !got[0].Equal(want[0]) {
		t.Fatalf("Parse(5!) = %+v, want %+v", got, want)
	}
}

func TestParseScenario2MultiFactorial(t *testing.T) {
	got := Parse("10!!!", defaultOpts())
	want := mustJob(t, 10, 3, 0)
	if len(got) != 1 || !got[0].Equal(want) {
		t.Fatalf("Parse(10!!!) = %+v, want %+v", got, want)
	}
}

func TestParseScenario3Subfactorial(t *testing.T) {
	got := Parse("!5", defaultOpts())
	want := mustJob(t, 5, 0, 0)
	if len(got) != 1 || !got[0].Equal(want) {
		t.Fatalf("Parse(!5) = %+v, want %+v", got, want)
	}
}

func TestParseScenario4TermialDisabled(t *testing.T) {
	opts := defaultOpts()
	opts.TermialEnabled = false
	got := Parse("15??", opts)
	if len(got) != 0 {
		t.Fatalf("Parse(15??) with termial disabled = %+v, want empty", got)
	}
}

func TestParseScenario5SpoilerClosedIsSkipped(t *testing.T) {
	got := Parse(">!5! !<", defaultOpts())
	if len(got) != 0 {
		t.Fatalf("Parse(>!5! !<) = %+v, want empty (fully spoilered)", got)
	}
}

func TestParseScenario5SpoilerUnclosedLeavesBangLive(t *testing.T) {
	got := Parse(">!5 a factorial 15!", defaultOpts())
	want := []job.Job{
		mustJob(t, 5, 0, 0),
		mustJob(t, 15, 1, 0),
	}
	got = job.SortDedup(got)
	want = job.SortDedup(want)
	if len(got) != len(want) {
		t.Fatalf("Parse(>!5 a factorial 15!) = %+v, want %+v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("Parse(>!5 a factorial 15!)[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseScenario6ParenPoisonedByNonNumeric(t *testing.T) {
	got := Parse("(x-2)!", defaultOpts())
	if len(got) != 0 {
		t.Fatalf("Parse((x-2)!) = %+v, want empty (poisoned paren)", got)
	}
}

func TestParseNestedMixedPostfixOperators(t *testing.T) {
	// "2!?" -> Job{Base: Job{Base: Num(2), Level: 1}, Level: -1}, matching
	// the nested-on-operator-transition shape pinned by comment.rs's
	// test_extraction_dedup.
	got := Parse("2!?", defaultOpts())
	if len(got) != 1 {
		t.Fatalf("Parse(2!?) = %+v, want exactly one job", got)
	}
	outer := got[0]
	if outer.Level != -1 {
		t.Fatalf("outer level = %d, want -1 (single '?')", outer.Level)
	}
	inner, ok := outer.Base.(*job.Job)
	if !ok {
		t.Fatalf("outer.Base = %T, want *job.Job (nested)", outer.Base)
	}
	if inner.Level != 1 {
		t.Fatalf("inner level = %d, want 1 (single '!')", inner.Level)
	}
	if _, ok := inner.Base.(job.NumBase); !ok {
		t.Fatalf("inner.Base = %T, want job.NumBase", inner.Base)
	}
}

func TestParseParenWrappedThenFactorialNestsOneLevel(t *testing.T) {
	// "(2!?)!" -> outer level 1 wraps the "2!?" job as computed above.
	got := Parse("(2!?)!", defaultOpts())
	if len(got) != 1 {
		t.Fatalf("Parse((2!?)!) = %+v, want exactly one job", got)
	}
	if got[0].Level != 1 {
		t.Fatalf("outer level = %d, want 1", got[0].Level)
	}
	if _, ok := got[0].Base.(*job.Job); !ok {
		t.Fatalf("outer.Base = %T, want *job.Job", got[0].Base)
	}
}

func TestParseParenWithTrailingWhitespaceIsNotPoisoned(t *testing.T) {
	// Whitespace inside parens must not poison them (SPEC_FULL.md §4.1:
	// "parens may contain ... whitespace").
	got := Parse("(15 )!", defaultOpts())
	want := mustJob(t, 15, 1, 0)
	if len(got) != 1 || !got[0].Equal(want) {
		t.Fatalf("Parse((15 )!) = %+v, want %+v", got, want)
	}
}

func TestParseScenarioPinnedNestedSignOnlyParens(t *testing.T) {
	// The worked example pinned by SPEC_FULL.md §4.1 (there typeset with
	// Unicode minus signs for visual distinction between nesting levels;
	// NEGATION in parse.rs is the plain ASCII hyphen, used here): three
	// sign-only wrapper parens around a negated 3, closed by two
	// factorials. The outer job's Negative is 1 (its own popped sign);
	// the inner job's Negative is 3 (the direct number sign plus the two
	// sign-only parens' popped signs, all carried forward until the
	// first '!' attaches an operator).
	got := Parse("-(-(-(-3))!)!", defaultOpts())
	if len(got) != 1 {
		t.Fatalf("Parse(pinned example) = %+v, want exactly one job", got)
	}
	outer := got[0]
	if outer.Level != 1 || outer.Negative != 1 {
		t.Fatalf("outer = %+v, want Level=1 Negative=1", outer)
	}
	inner, ok := outer.Base.(*job.Job)
	if !ok {
		t.Fatalf("outer.Base = %T, want *job.Job", outer.Base)
	}
	if inner.Level != 1 || inner.Negative != 3 {
		t.Fatalf("inner = %+v, want Level=1 Negative=3", *inner)
	}
	nb, ok := inner.Base.(job.NumBase)
	if !ok {
		t.Fatalf("inner.Base = %T, want job.NumBase", inner.Base)
	}
	want := number.NewExactInt64(3)
	if !nb.Num.Equal(want) {
		t.Fatalf("operand = %v, want 3", nb.Num)
	}
}

func TestParseNegativeSignBindsToOutermostNode(t *testing.T) {
	got := Parse("-5!", defaultOpts())
	if len(got) != 1 {
		t.Fatalf("Parse(-5!) = %+v, want exactly one job", got)
	}
	if got[0].Negative != 1 {
		t.Fatalf("Negative = %d, want 1", got[0].Negative)
	}
	if got[0].Level != 1 {
		t.Fatalf("Level = %d, want 1", got[0].Level)
	}
}

func TestParseDedupIgnoresRepeatedText(t *testing.T) {
	got := Parse("5! 5!", defaultOpts())
	if len(got) != 1 {
		t.Fatalf("Parse(5! 5!) = %+v, want deduplicated to one job", got)
	}
}

func TestParseFractionNotFollowedByOperatorIsFloat(t *testing.T) {
	got := Parse("a 1.5/2 b", defaultOpts())
	if len(got) != 0 {
		t.Fatalf("Parse(1.5/2) with no operator = %+v, want empty (no job, bare float)", got)
	}
}

func TestParseFractionFollowedByBangRebindsToDenominator(t *testing.T) {
	got := Parse("10/2!", defaultOpts())
	if len(got) != 1 {
		t.Fatalf("Parse(10/2!) = %+v, want exactly one job (postfix binds to denominator)", got)
	}
	nb, ok := got[0].Base.(job.NumBase)
	if !ok {
		t.Fatalf("Base = %T, want job.NumBase", got[0].Base)
	}
	want := number.NewExactInt64(2)
	if !nb.Num.Equal(want) {
		t.Fatalf("operand = %v, want 2 (denominator only, numerator+slash discarded)", nb.Num)
	}
}

func TestParseParenWrappedFractionFactorial(t *testing.T) {
	got := Parse("(10/2)!", defaultOpts())
	if len(got) != 1 {
		t.Fatalf("Parse((10/2)!) = %+v, want exactly one job", got)
	}
	if got[0].Level != 1 {
		t.Fatalf("Level = %d, want 1", got[0].Level)
	}
	nb, ok := got[0].Base.(job.NumBase)
	if !ok || nb.Num.Kind != number.Float {
		t.Fatalf("Base = %+v, want a Float job.NumBase for 10/2", got[0].Base)
	}
}

func TestParseURISkipped(t *testing.T) {
	got := Parse("see https://example.com/5!/page for 3!", defaultOpts())
	if len(got) != 1 {
		t.Fatalf("Parse with URI = %+v, want exactly the 3! job", got)
	}
	if got[0].Level != 1 {
		t.Fatalf("unexpected job: %+v", got[0])
	}
}

func TestParseWatchdogTerminatesOnAdversarialInput(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Parse panicked on adversarial input: %v", r)
		}
	}()
	// Pathological runs of operators/parens must not hang or panic the
	// watchdog; they should simply fail to produce jobs.
	Parse("((((((((((", defaultOpts())
	Parse("!!!!!!!!!!", defaultOpts())
	Parse(")))))))))) ", defaultOpts())
}

func TestParseConstantRecognition(t *testing.T) {
	got := Parse("e!", defaultOpts())
	if len(got) != 1 {
		t.Fatalf("Parse(e!) = %+v, want exactly one job", got)
	}
	nb, ok := got[0].Base.(job.NumBase)
	if !ok || nb.Num.Kind != number.Float {
		t.Fatalf("Base = %+v, want Float job.NumBase for e", got[0].Base)
	}
}

func TestParseConstantRejectedWhenAdjacentToLetters(t *testing.T) {
	got := Parse("tree!", defaultOpts())
	if len(got) != 0 {
		t.Fatalf("Parse(tree!) = %+v, want empty ('e' inside a word is not the constant)", got)
	}
}

func TestParseEscapedSpoilerMarkerIsOrdinaryText(t *testing.T) {
	got := Parse(`\>!hello 3!`, defaultOpts())
	if len(got) != 1 {
		t.Fatalf("Parse with escaped spoiler marker = %+v, want exactly the 3! job", got)
	}
}

func TestBuildNumberExactWithinConstructionLimit(t *testing.T) {
	opts := defaultOpts()
	p := &parserState{constants: newConstants(opts.FloatPrecision), intConstruct: opts.IntegerConstructionLimit}
	n := p.buildNumber("1", "5", true, 2, "", false)
	if n.Kind != number.Exact {
		t.Fatalf("buildNumber(1.5e2) kind = %v, want Exact", n.Kind)
	}
	want := big.NewInt(150)
	if n.Int.Cmp(want) != 0 {
		t.Fatalf("buildNumber(1.5e2) = %v, want %v", n.Int, want)
	}
}
