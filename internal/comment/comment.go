// Package comment implements the four-state Comment pipeline of
// SPEC_FULL.md §4.4: Constructed -> Extracted -> Calculated -> (reply
// string), plus the Status/Commands bitsets and command-token recognition
// used to drive it.
//
// Grounded line-for-line on
// original_source/factorion-lib/src/comment.rs's Comment<Meta, S>
// type-state struct, Status/Commands bitwise-OR-able structs (the
// impl_all_bitwise! macro expansion, collapsed here into ordinary Go
// methods since Go has no macro system), contains_comb! pre-check, and
// Commands::from_comment_text/overrides_from_comment_text token tables.
package comment

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tolik518/factorion-go/internal/calculator"
	"github.com/tolik518/factorion-go/internal/config"
	"github.com/tolik518/factorion-go/internal/formatter"
	"github.com/tolik518/factorion-go/internal/job"
	"github.com/tolik518/factorion-go/internal/locale"
	"github.com/tolik518/factorion-go/internal/parser"
)

// Status is a bitset of pipeline outcomes, OR-able at each stage.
type Status struct {
	AlreadyRepliedOrRejected bool
	NotReplied               bool
	NumberTooBigToCalculate  bool
	NoFactorial              bool
	ReplyWouldBeTooLong      bool
	FactorialsFound          bool
}

// Or returns the bitwise-or of s and o (true wins in each field), mirroring
// Status's impl_all_bitwise!-generated BitOr.
func (s Status) Or(o Status) Status {
	return Status{
		AlreadyRepliedOrRejected: s.AlreadyRepliedOrRejected || o.AlreadyRepliedOrRejected,
		NotReplied:               s.NotReplied || o.NotReplied,
		NumberTooBigToCalculate:  s.NumberTooBigToCalculate || o.NumberTooBigToCalculate,
		NoFactorial:              s.NoFactorial || o.NoFactorial,
		ReplyWouldBeTooLong:      s.ReplyWouldBeTooLong || o.ReplyWouldBeTooLong,
		FactorialsFound:          s.FactorialsFound || o.FactorialsFound,
	}
}

// Commands is a bitset of behaviour toggles recognised from comment text or
// supplied by the host as pre-commands.
type Commands struct {
	Shorten  bool
	Steps    bool
	Termial  bool
	NoNote   bool
	PostOnly bool
}

// And returns the bitwise-and of c and o, used to apply overrides on top of
// recognised/pre-supplied commands.
func (c Commands) And(o Commands) Commands {
	return Commands{
		Shorten:  c.Shorten && o.Shorten,
		Steps:    c.Steps && o.Steps,
		Termial:  c.Termial && o.Termial,
		NoNote:   c.NoNote && o.NoNote,
		PostOnly: c.PostOnly && o.PostOnly,
	}
}

// Or returns the bitwise-or of c and o.
func (c Commands) Or(o Commands) Commands {
	return Commands{
		Shorten:  c.Shorten || o.Shorten,
		Steps:    c.Steps || o.Steps,
		Termial:  c.Termial || o.Termial,
		NoNote:   c.NoNote || o.NoNote,
		PostOnly: c.PostOnly || o.PostOnly,
	}
}

// containsCommandFormat checks the three literal recognition forms
// (`!command`, `[command]`, `\[command\]`), then layers a forgiving
// fuzzy-token check on top - strictly additive, never a replacement for the
// exact forms, so recognition only gets more permissive, never less.
func containsCommandFormat(text, command string) bool {
	if strings.Contains(text, "\\["+command+"\\]") ||
		strings.Contains(text, "["+command+"]") ||
		strings.Contains(text, "!"+command) {
		return true
	}
	return containsCommandFuzzy(text, command)
}

// containsCommandFuzzy checks each bracketed or bang-prefixed token in text
// against command with a small edit-distance tolerance: a token matches when
// it contains every letter of command in order and is at most one edit away,
// e.g. "!shortenn" for "shorten". A token with a letter missing does not
// match.
func containsCommandFuzzy(text, command string) bool {
	for _, tok := range extractCandidateTokens(text) {
		if len(tok) == 0 {
			continue
		}
		ranks := fuzzy.RankFindFold(command, []string{tok})
		if len(ranks) > 0 && ranks[0].Distance <= 1 {
			return true
		}
	}
	return false
}

// extractCandidateTokens pulls out the bang-prefixed word and bracketed
// phrase occurring anywhere in text, the same lexical positions the exact
// forms check.
func extractCandidateTokens(text string) []string {
	var tokens []string
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, "!.,;:")
		if strings.HasPrefix(word, "[") || strings.Contains(text, "!"+word) {
			tokens = append(tokens, strings.Trim(word, "[]"))
		}
	}
	return tokens
}

// FromText recognises the positive command tokens present in text: short/
// shorten, steps/all, termial/triangle, no note/no_note.
func FromText(text string) Commands {
	return Commands{
		Shorten: containsCommandFormat(text, "short") || containsCommandFormat(text, "shorten"),
		Steps:   containsCommandFormat(text, "steps") || containsCommandFormat(text, "all"),
		Termial: containsCommandFormat(text, "termial") || containsCommandFormat(text, "triangle"),
		NoNote: containsCommandFormat(text, "no note") || containsCommandFormat(text, "no_note"),
	}
}

// OverridesFromText recognises the negative/override tokens (long, no
// steps/no_steps, no termial/no_termial, note) and returns the mask to AND
// against the positively-recognised commands - a set bit here means "not
// overridden", matching overrides_from_comment_text's inverted polarity.
func OverridesFromText(text string) Commands {
	return Commands{
		Shorten:  !containsCommandFormat(text, "long"),
		Steps:    !(containsCommandFormat(text, "no steps") || containsCommandFormat(text, "no_steps")),
		Termial:  !(containsCommandFormat(text, "no termial") || containsCommandFormat(text, "no_termial")),
		NoNote:   !containsCommandFormat(text, "note"),
		PostOnly: true,
	}
}

// footerReserve is extra slack subtracted from the host-supplied max_length
// to leave room for the bot disclaimer footer plus a small margin, mirroring
// comment.rs's `max_length - FOOTER_TEXT.len() - 10`.
const footerReserve = 60

// Comment is the four-state pipeline value. S is the payload for the
// current stage: string (Constructed) -> []job.Job (Extracted) ->
// []calculator.Calculation (Calculated).
type Comment[Meta any, S any] struct {
	Meta      Meta
	Payload   S
	Notify    string
	Status    Status
	Commands  Commands
	MaxLength int
}

// Constructed is the Comment alias for the raw-text stage.
type Constructed[Meta any] = Comment[Meta, string]

// Extracted is the Comment alias for the parsed-jobs stage.
type Extracted[Meta any] = Comment[Meta, []job.Job]

// Calculated is the Comment alias for the evaluated-calculations stage.
type Calculated[Meta any] = Comment[Meta, []calculator.Calculation]

// New takes a raw comment, finds the factorials and commands, and packages
// it, checking first whether it might have something to calculate at all.
func New[Meta any](text string, meta Meta, preCommands Commands, maxLength int) Constructed[Meta] {
	overrides := OverridesFromText(text)
	commands := FromText(text).Or(preCommands).And(overrides)

	var status Status
	payload := text
	if !mightHaveFactorial(text) {
		status.NoFactorial = true
		payload = ""
	}

	return Constructed[Meta]{
		Meta:      meta,
		Payload:   payload,
		Status:    status,
		Commands:  commands,
		MaxLength: maxLength - footerReserve,
	}
}

// NewAlreadyReplied constructs an empty Comment with
// AlreadyRepliedOrRejected set, for threads that have already hit their
// per-thread answer limit.
func NewAlreadyReplied[Meta any](meta Meta, maxLength int) Constructed[Meta] {
	return Constructed[Meta]{
		Meta:      meta,
		Status:    Status{AlreadyRepliedOrRejected: true},
		MaxLength: maxLength - footerReserve,
	}
}

// poiLeft/poiRight mirror contains_comb!'s two
// character classes: a "numeric-like" token immediately adjacent to a
// postfix operator in either order.
var poiLeft = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", ")", "e", "pi", "phi", "tau", "π", "ɸ", "τ"}
var poiRight = []string{"!", "?"}

// mightHaveFactorial is the cheap pre-check run before the full parser:
// does text contain any adjacency of a numeric-like token and a postfix
// operator, in either order? If not, the parser would find nothing anyway.
func mightHaveFactorial(text string) bool {
	for _, l := range poiLeft {
		for _, r := range poiRight {
			if strings.Contains(text, l+r) {
				return true
			}
		}
	}
	for _, r := range poiRight {
		for _, l := range poiLeft {
			if strings.Contains(text, r+l) {
				return true
			}
		}
	}
	return false
}

// Extract runs the parser over the Constructed payload, per SPEC_FULL.md
// §4.4's Constructed::extract(&config) -> Extracted.
func (c Constructed[Meta]) Extract(cfg *config.Config) Extracted[Meta] {
	jobs := parser.Parse(c.Payload, parser.Options{
		TermialEnabled:           c.Commands.Termial,
		FloatPrecision:           cfg.FloatPrecision,
		IntegerConstructionLimit: cfg.Thresholds.IntegerConstructionLimit,
	})

	status := c.Status
	if len(jobs) == 0 {
		status.NoFactorial = true
	}

	return Extracted[Meta]{
		Meta:      c.Meta,
		Payload:   jobs,
		Notify:    c.Notify,
		Status:    status,
		Commands:  c.Commands,
		MaxLength: c.MaxLength,
	}
}

// Calc evaluates every extracted Job, per SPEC_FULL.md §4.4's
// Extracted::calc(&config) -> Calculated. history may be nil to disable
// per-thread suppression.
func (c Extracted[Meta]) Calc(cfg *config.Config, history calculator.ThreadHistory) Calculated[Meta] {
	outcome := calculator.Evaluate(c.Payload, cfg.Thresholds, c.Commands.Steps, history)

	status := c.Status
	if outcome.NumberTooBig {
		status.NumberTooBigToCalculate = true
	}
	if outcome.LimitHit {
		status.AlreadyRepliedOrRejected = true
	}
	if len(outcome.Calculations) == 0 {
		status.NoFactorial = true
	} else {
		status.FactorialsFound = true
	}

	return Calculated[Meta]{
		Meta:      c.Meta,
		Payload:   outcome.Calculations,
		Notify:    c.Notify,
		Status:    status,
		Commands:  c.Commands,
		MaxLength: c.MaxLength,
	}
}

// GetReply does the formatting for the final reply text, per SPEC_FULL.md
// §4.4's Calculated::get_reply(&config, formatting) -> string.
func (c Calculated[Meta]) GetReply(loc locale.Locale) string {
	return formatter.Format(c.Payload, formatter.Options{
		MaxLength: c.MaxLength,
		Notify:    c.Notify,
		NoNote:    c.Commands.NoNote,
		Locale:    loc,
	})
}

// AddStatus merges extra into c.Status, mirroring comment.rs's generic
// add_status helper available at every stage.
func (c *Comment[Meta, S]) AddStatus(extra Status) {
	c.Status = c.Status.Or(extra)
}

// DebugString renders enough of a Comment for CLI debugging output.
func (c Comment[Meta, S]) DebugString() string {
	return fmt.Sprintf("status=%+v commands=%+v max_length=%d", c.Status, c.Commands, c.MaxLength)
}
