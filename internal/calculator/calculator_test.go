package calculator

import (
	"math/big"
	"testing"

	"github.com/tolik518/factorion-go/internal/job"
	"github.com/tolik518/factorion-go/internal/number"
)

func recommendedThresholds() Thresholds {
	tenTo300 := new(big.Int).Exp(big.NewInt(10), big.NewInt(300), nil)
	tenTo10000 := new(big.Int).Exp(big.NewInt(10), big.NewInt(10000), nil)
	return Thresholds{
		UpperCalculationLimit:          big.NewInt(1_000_000),
		UpperApproximationLimit:        tenTo300,
		UpperSubfactorialLimit:         big.NewInt(1_000_000),
		UpperTermialLimit:              tenTo10000,
		UpperTermialApproximationLimit: new(big.Int).Mul(tenTo10000, big.NewInt(1000)),
		IntegerConstructionLimit:       1_000_000,
	}
}

func TestEvaluateScenario1SimpleFactorial(t *testing.T) {
	jobs := []job.Job{job.New(number.NewExactInt64(5), 1, 0)}
	out := Evaluate(jobs, recommendedThresholds(), true, nil)
	if len(out.Calculations) != 1 {
		t.Fatalf("expected 1 calculation, got %d", len(out.Calculations))
	}
	want := number.NewExactInt64(120)
	if !out.Calculations[0].Result.Equal(want) {
		t.Fatalf("5! = %v, want 120", out.Calculations[0].Result)
	}
}

func TestEvaluateScenario2TripleFactorial(t *testing.T) {
	jobs := []job.Job{job.New(number.NewExactInt64(10), 3, 0)}
	out := Evaluate(jobs, recommendedThresholds(), false, nil)
	want := number.NewExactInt64(280)
	if len(out.Calculations) != 1 || !out.Calculations[0].Result.Equal(want) {
		t.Fatalf("10!!! = %+v, want 280", out.Calculations)
	}
}

func TestEvaluateScenario3Subfactorial(t *testing.T) {
	jobs := []job.Job{job.New(number.NewExactInt64(5), 0, 0)}
	out := Evaluate(jobs, recommendedThresholds(), false, nil)
	want := number.NewExactInt64(44)
	if len(out.Calculations) != 1 || !out.Calculations[0].Result.Equal(want) {
		t.Fatalf("subfactorial(5) = %+v, want 44", out.Calculations)
	}
}

func TestEvaluateZeroFactorialIsOne(t *testing.T) {
	jobs := []job.Job{job.New(number.NewExactInt64(0), 1, 0)}
	out := Evaluate(jobs, recommendedThresholds(), false, nil)
	want := number.NewExactInt64(1)
	if len(out.Calculations) != 1 || !out.Calculations[0].Result.Equal(want) {
		t.Fatalf("0! = %+v, want 1", out.Calculations)
	}
}

func TestEvaluateNegativeOneFactorialIsNegatedOne(t *testing.T) {
	// "-1!" -> factorial of 1 with negative=1 applied at the outer node,
	// then the inner factorial(1)=1 negated -> -1, which is still a finite
	// Exact value; ComplexInfinity only arises from factorial of a
	// negative integer at level=1, covered by the next test.
	jobs := []job.Job{job.New(number.NewExactInt64(1), 1, 1)}
	out := Evaluate(jobs, recommendedThresholds(), false, nil)
	want := number.NewExactInt64(-1)
	if len(out.Calculations) != 1 || !out.Calculations[0].Result.Equal(want) {
		t.Fatalf("-1! = %+v, want -1", out.Calculations)
	}
}

func TestEvaluateFactorialOfNegativeIntegerLevelOneIsComplexInfinity(t *testing.T) {
	jobs := []job.Job{job.New(number.NewExactInt64(-5), 1, 0)}
	out := Evaluate(jobs, recommendedThresholds(), false, nil)
	if len(out.Calculations) != 1 || out.Calculations[0].Result.Kind != number.ComplexInfinity {
		t.Fatalf("(-5)! = %+v, want ComplexInfinity", out.Calculations)
	}
}

func TestEvaluateAboveCalculationLimitProducesApproximate(t *testing.T) {
	th := recommendedThresholds()
	jobs := []job.Job{job.New(number.NewExact(new(big.Int).Add(th.UpperCalculationLimit, big.NewInt(1))), 1, 0)}
	out := Evaluate(jobs, th, false, nil)
	if len(out.Calculations) != 1 || out.Calculations[0].Result.Kind != number.Approximate {
		t.Fatalf("(limit+1)! = %+v, want Approximate", out.Calculations)
	}
}

func TestEvaluateNestedJobChainsSteps(t *testing.T) {
	inner := job.New(number.NewExactInt64(3), 1, 0) // 3! = 6
	outer := job.Wrap(inner, 1, 0)                  // 6!
	out := Evaluate([]job.Job{outer}, recommendedThresholds(), true, nil)
	if len(out.Calculations) != 2 {
		t.Fatalf("expected 2 calculations (one per nesting level), got %d", len(out.Calculations))
	}
	want := number.NewExactInt64(720)
	last := out.Calculations[len(out.Calculations)-1]
	if !last.Result.Equal(want) {
		t.Fatalf("(3!)! = %v, want 720", last.Result)
	}
}

func TestEvaluateThreadHistorySuppression(t *testing.T) {
	jobs := []job.Job{job.New(number.NewExactInt64(5), 1, 0)}
	out := Evaluate(jobs, recommendedThresholds(), false, suppressAll{})
	if len(out.Calculations) != 0 || !out.LimitHit {
		t.Fatalf("expected all jobs suppressed and LimitHit set, got %+v", out)
	}
}

type suppressAll struct{}

func (suppressAll) Observe(job.Job) int           { return 0 }
func (suppressAll) ShouldSuppress(job.Job) bool { return true }

func TestSortByDepthOrdersShallowestFirst(t *testing.T) {
	calcs := []Calculation{
		{Steps: []Step{{1, 0}, {1, 0}}},
		{Steps: []Step{{1, 0}}},
	}
	sortByDepth(calcs)
	if len(calcs[0].Steps) != 1 {
		t.Fatalf("expected shallowest calculation first, got %+v", calcs)
	}
}
