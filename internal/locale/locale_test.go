package locale

import "testing"

func TestParseV1RoundTrips(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"v1": {
			"bot_disclaimer": "test bot",
			"notes": {"tower": "T", "tower_mult": "", "digits": "", "digits_mult": "",
				"approx": "", "approx_mult": "", "round": "", "round_mult": "",
				"too_big": "", "too_big_mult": "", "remove": "", "tetration": "",
				"no_post": "", "mention": ""},
			"format": {"capitalize_calc": true, "termial": "", "factorial": "", "uple": "",
				"sub": "", "negative": "", "num_overrides": {"145": "interesting"},
				"force_num": false, "nest": "", "rough_number": "", "exact": "", "rough": "",
				"approx": "", "digits": "", "order": "", "all_that": "",
				"number_format": {"decimal": "."}}
		}
	}`)
	l, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if l.BotDisclaimer() != "test bot" {
		t.Fatalf("BotDisclaimer() = %q, want %q", l.BotDisclaimer(), "test bot")
	}
	if l.NotesOf().Tower != "T" {
		t.Fatalf("NotesOf().Tower = %q, want %q", l.NotesOf().Tower, "T")
	}
	if l.FormatOf().NumOverrides[145] != "interesting" {
		t.Fatalf("NumOverrides[145] = %q, want %q", l.FormatOf().NumOverrides[145], "interesting")
	}
}

func TestDefaultLocaleIsUsable(t *testing.T) {
	l := Default()
	if l.BotDisclaimer() == "" {
		t.Fatal("Default() locale must have a non-empty bot disclaimer")
	}
	if l.FormatOf().Factorial == "" {
		t.Fatal("Default() locale must have a non-empty factorial phrase")
	}
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	data := []byte(`{"version": 1, "v1": {"bot_disclaimer": "x", "notes": {}, "format": {}}}`)
	if err := Validate(data); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsMissingVersion(t *testing.T) {
	data := []byte(`{"v1": {"bot_disclaimer": "x", "notes": {}, "format": {}}}`)
	if err := Validate(data); err == nil {
		t.Fatal("Validate() = nil, want error for missing version field")
	}
}
