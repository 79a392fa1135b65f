// Package job implements the parsed, unevaluated operation tree described in
// SPEC_FULL.md §3: Job = (base, level, negative), where base is either a
// Number literal or a nested Job. This is the output type of the parser and
// the input type of the calculator.
package job

import (
	"github.com/tolik518/factorion-go/internal/number"
)

// Base is the closed union `Number | *Job` for a Job's operand. It is
// implemented by NumBase and *Job only; the unexported marker method keeps
// the set closed, matching the ast-node-interface convention used for small
// closed sums elsewhere in this corpus.
type Base interface {
	isJobBase()
}

// NumBase wraps a leaf Number operand.
type NumBase struct {
	Num number.Number
}

func (NumBase) isJobBase() {}

// Job implements Base so that a Job can be nested as another Job's operand
// (the `Calc(Box<CalculationJob>)` edge in the original implementation).
func (*Job) isJobBase() {}

// Job is a single unary operation node: level encodes multi-factorial
// (level>0), subfactorial (level==0), or multi-termial (level<0); negative
// counts leading unary minus signs applied to this node's result.
type Job struct {
	Base     Base
	Level    int32
	Negative uint32
}

// New constructs a Job over a Number leaf.
func New(n number.Number, level int32, negative uint32) Job {
	return Job{Base: NumBase{Num: n}, Level: level, Negative: negative}
}

// Wrap constructs a Job whose operand is another Job (a chained/nested
// calculation, e.g. "(5!)!").
func Wrap(inner Job, level int32, negative uint32) Job {
	innerCopy := inner
	return Job{Base: &innerCopy, Level: level, Negative: negative}
}

// Compare provides the total order over Job that the parser's output
// contract (SPEC_FULL.md §4.1) requires for sorting and dedup: lexicographic
// over (base, level, negative).
func (j Job) Compare(o Job) int {
	if c := compareBase(j.Base, o.Base); c != 0 {
		return c
	}
	if j.Level != o.Level {
		if j.Level < o.Level {
			return -1
		}
		return 1
	}
	if j.Negative != o.Negative {
		if j.Negative < o.Negative {
			return -1
		}
		return 1
	}
	return 0
}

// Equal reports whether j and o are identical Job trees.
func (j Job) Equal(o Job) bool {
	return j.Compare(o) == 0
}

func compareBase(a, b Base) int {
	aIsNum, aNum := asNum(a)
	bIsNum, bNum := asNum(b)
	switch {
	case aIsNum && bIsNum:
		return aNum.Compare(bNum)
	case aIsNum && !bIsNum:
		return -1
	case !aIsNum && bIsNum:
		return 1
	default:
		return a.(*Job).Compare(*b.(*Job))
	}
}

func asNum(b Base) (bool, number.Number) {
	if nb, ok := b.(NumBase); ok {
		return true, nb.Num
	}
	return false, number.Number{}
}

// Sort sorts jobs in place using the total order defined by Compare.
func Sort(jobs []Job) {
	// Simple insertion sort: job lists are small (one per factorial-like
	// fragment found in a single comment), so O(n^2) is not a concern and
	// it keeps the dependency list free of sort.Slice closures per call site.
	for i := 1; i < len(jobs); i++ {
		for k := i; k > 0 && jobs[k-1].Compare(jobs[k]) > 0; k-- {
			jobs[k-1], jobs[k] = jobs[k], jobs[k-1]
		}
	}
}

// Dedup removes adjacent duplicates from a sorted slice, returning the
// deduplicated prefix. jobs must already be sorted (see Sort).
func Dedup(jobs []Job) []Job {
	if len(jobs) == 0 {
		return jobs
	}
	out := jobs[:1]
	for _, j := range jobs[1:] {
		if !out[len(out)-1].Equal(j) {
			out = append(out, j)
		}
	}
	return out
}

// SortDedup sorts jobs and removes duplicates, returning the result.
func SortDedup(jobs []Job) []Job {
	Sort(jobs)
	return Dedup(jobs)
}
