// Package locale implements the versioned, forward-compatible locale/format
// schema described in SPEC_FULL.md §4.3/§6: an opaque, JSON-decoded value
// the CORE consumes but never loads from disk itself (loading from disk is
// a host responsibility). Grounded on
// original_source/factorion-lib/src/locale.rs's `Locale::V1(v1::Locale)`
// tagged union; the Rust file's `get_field!`/`set_field!` macros are
// collapsed into ordinary Go accessor methods, since Go has no macro system.
package locale

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Locale is the tagged union over schema versions. Only V1 exists today;
// a future V2 would add a case here without breaking existing JSON.
type Locale struct {
	Version int    `json:"version"`
	V1      *V1    `json:"v1,omitempty"`
}

// V1 is the version-1 locale payload.
type V1 struct {
	BotDisclaimer string `json:"bot_disclaimer"`
	Notes         Notes  `json:"notes"`
	Format        Format `json:"format"`
}

// Notes holds the note templates selected by Formatter.selectNote.
type Notes struct {
	Tower       string `json:"tower"`
	TowerMult   string `json:"tower_mult"`
	Digits      string `json:"digits"`
	DigitsMult  string `json:"digits_mult"`
	Approx      string `json:"approx"`
	ApproxMult  string `json:"approx_mult"`
	Round       string `json:"round"`
	RoundMult   string `json:"round_mult"`
	TooBig      string `json:"too_big"`
	TooBigMult  string `json:"too_big_mult"`
	Remove      string `json:"remove"`
	Tetration   string `json:"tetration"`
	NoPost      string `json:"no_post"`
	Mention     string `json:"mention"`
}

// Format holds the phrase templates used to build step-chain text.
type Format struct {
	CapitalizeCalc bool              `json:"capitalize_calc"`
	Termial        string            `json:"termial"`
	Factorial      string            `json:"factorial"`
	Uple           string            `json:"uple"`
	Sub            string            `json:"sub"`
	Negative       string            `json:"negative"`
	NumOverrides   map[int32]string  `json:"num_overrides"`
	ForceNum       bool              `json:"force_num"`
	Nest           string            `json:"nest"`
	RoughNumber    string            `json:"rough_number"`
	Exact          string            `json:"exact"`
	Rough          string            `json:"rough"`
	Approx         string            `json:"approx"`
	Digits         string            `json:"digits"`
	Order          string            `json:"order"`
	AllThat        string            `json:"all_that"`
	NumberFormat   NumFormat         `json:"number_format"`
}

// NumFormat controls locale-specific number rendering (e.g. decimal comma
// vs decimal point).
type NumFormat struct {
	Decimal string `json:"decimal"`
}

// Parse decodes a Locale from JSON bytes already produced by a host's own
// file-loading layer (the core never touches the filesystem itself).
func Parse(data []byte) (Locale, error) {
	var l Locale
	if err := json.Unmarshal(data, &l); err != nil {
		return Locale{}, err
	}
	return l, nil
}

// BotDisclaimer returns the configured bot-identification string appended
// by the Comment pipeline's footer.
func (l Locale) BotDisclaimer() string {
	if l.V1 != nil {
		return l.V1.BotDisclaimer
	}
	return ""
}

// NotesOf returns the note templates for this locale.
func (l Locale) NotesOf() Notes {
	if l.V1 != nil {
		return l.V1.Notes
	}
	return Notes{}
}

// FormatOf returns the phrase templates for this locale.
func (l Locale) FormatOf() Format {
	if l.V1 != nil {
		return l.V1.Format
	}
	return Format{}
}

// localeSchemaJSON validates the shape of a v1 locale document before
// Parse's json.Unmarshal is trusted, same compile-once pattern as
// internal/config's configSchemaJSON.
const localeSchemaJSON = `{
	"type": "object",
	"required": ["version"],
	"properties": {
		"version": {"type": "integer", "minimum": 1},
		"v1": {
			"type": "object",
			"required": ["bot_disclaimer", "notes", "format"],
			"properties": {
				"bot_disclaimer": {"type": "string"},
				"notes": {"type": "object"},
				"format": {"type": "object"}
			}
		}
	}
}`

var (
	validatorOnce sync.Once
	validator     *jsonschema.Schema
	validatorErr  error
)

func getValidator() (*jsonschema.Schema, error) {
	validatorOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		url := "schema://locale.json"
		if err := compiler.AddResource(url, strings.NewReader(localeSchemaJSON)); err != nil {
			validatorErr = err
			return
		}
		validator, validatorErr = compiler.Compile(url)
	})
	return validator, validatorErr
}

// Validate schema-checks raw against the locale document shape without
// decoding it into a Go struct, for CLI/host-side pre-flight checks before
// Parse.
func Validate(raw []byte) error {
	v, err := getValidator()
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	return v.Validate(generic)
}

// Default is the built-in English locale used when no host-supplied locale
// is configured, mirroring locale.rs's get_en() default-locale convenience.
func Default() Locale {
	return Locale{
		Version: 1,
		V1: &V1{
			BotDisclaimer: "This action was performed by a bot.",
			Notes: Notes{
				Tower:      "Note: the result is too large to display in full, so it's shown as a power tower.",
				TowerMult:  "Note: some results are too large to display in full, so they're shown as power towers.",
				Digits:     "Note: the result is too large to display in full, so only the digit count is shown.",
				DigitsMult: "Note: some results are too large to display in full, so only digit counts are shown.",
				Approx:     "Note: the result has been approximated.",
				ApproxMult: "Note: some results have been approximated.",
				Round:      "Note: the result has been rounded to the nearest whole number.",
				RoundMult:  "Note: some results have been rounded to the nearest whole number.",
				TooBig:     "Note: the result has been shortened.",
				TooBigMult: "Note: some results have been shortened.",
				Remove:     "Note: some results have been removed to fit the reply length.",
				Tetration:  "Note: the result is shown in tetration notation.",
				NoPost:     "",
				Mention:    "",
			},
			Format: Format{
				CapitalizeCalc: true,
				Termial:        "the termial of",
				Factorial:      "the factorial of",
				Uple:           "-factorial of",
				Sub:            "subfactorial of",
				Negative:       "negative",
				NumOverrides:   map[int32]string{},
				ForceNum:       false,
				Nest:           "that of",
				RoughNumber:    "roughly",
				Exact:          "is",
				Rough:          "is approximately",
				Approx:         "is roughly",
				Digits:         "has approximately %s digits",
				Order:          "th",
				AllThat:        "All that of",
				NumberFormat:   NumFormat{Decimal: "."},
			},
		},
	}
}
