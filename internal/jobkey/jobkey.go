// Package jobkey turns a job.Job tree into a short, deterministic
// fingerprint for use as a ThreadHistory map key. Two structurally equal
// Jobs (job.Job.Equal) always produce the same key, regardless of pointer
// identity or big.Int/big.Float internal representation.
//
// Grounded on opal-lang-opal's core/planfmt/canonical.go: build an
// intermediate, pointer-free canonical form first, CBOR-encode it
// deterministically, then hash the encoded bytes rather than the original
// struct (which would otherwise bake in map-iteration-order or pointer
// nondeterminism).
package jobkey

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/tolik518/factorion-go/internal/job"
	"github.com/tolik518/factorion-go/internal/number"
)

// canonicalJob is the pointer-free, CBOR-friendly mirror of job.Job.
type canonicalJob struct {
	Level    int32
	Negative uint32
	Num      *canonicalNumber `cbor:"num,omitempty"`
	Nested   *canonicalJob    `cbor:"nested,omitempty"`
}

// canonicalNumber mirrors number.Number's Kind-discriminated fields as
// strings, since big.Int/big.Float have no stable CBOR encoding of their
// own and their .String() form is exactly the value-equality surface
// Number.Equal already uses.
type canonicalNumber struct {
	Kind   number.Kind
	Int    string `cbor:"int,omitempty"`
	Real   string `cbor:"real,omitempty"`
	Mant   string `cbor:"mant,omitempty"`
	Exp    string `cbor:"exp,omitempty"`
	Digits string `cbor:"digits,omitempty"`
	DigNeg bool   `cbor:"dig_neg,omitempty"`
	TowerV bool   `cbor:"tower_v,omitempty"`
	TowerN bool   `cbor:"tower_n,omitempty"`
	TowerD uint64 `cbor:"tower_d,omitempty"`
	TowerB string `cbor:"tower_b,omitempty"`
}

func canonicalizeNumber(n number.Number) *canonicalNumber {
	cn := &canonicalNumber{Kind: n.Kind}
	switch n.Kind {
	case number.Exact:
		cn.Int = n.Int.String()
	case number.Float:
		cn.Real = n.Real.Text('g', -1)
	case number.Approximate:
		cn.Mant = n.Mantissa.Text('g', -1)
		cn.Exp = n.Exponent.String()
	case number.ApproximateDigits:
		cn.Digits = n.Digits.String()
		cn.DigNeg = n.DigitsNegative
	case number.ApproximateDigitsTower:
		cn.TowerV = n.TowerValueNegative
		cn.TowerN = n.TowerNegative
		cn.TowerD = n.TowerDepth
		cn.TowerB = n.TowerBase.String()
	}
	return cn
}

func canonicalize(j job.Job) canonicalJob {
	cj := canonicalJob{Level: j.Level, Negative: j.Negative}
	switch base := j.Base.(type) {
	case job.NumBase:
		cj.Num = canonicalizeNumber(base.Num)
	case *job.Job:
		nested := canonicalize(*base)
		cj.Nested = &nested
	}
	return cj
}

// Key is a fixed-size BLAKE2b-256 fingerprint of a canonicalized Job tree.
type Key [32]byte

// String renders k as hex, for logging and map-key display.
func (k Key) String() string {
	return fmt.Sprintf("%x", [32]byte(k))
}

// For computes the deterministic fingerprint of j. Two Jobs for which
// j.Equal(o) holds always produce the same Key.
func For(j job.Job) (Key, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return Key{}, fmt.Errorf("jobkey: failed to build CBOR encoder: %w", err)
	}
	data, err := encMode.Marshal(canonicalize(j))
	if err != nil {
		return Key{}, fmt.Errorf("jobkey: CBOR encoding failed: %w", err)
	}
	return blake2b.Sum256(data), nil
}
