// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"regexp"
	"testing"

	"piiscan/internal/detector"
)

func TestDetectIBANInText(t *testing.T) {
	text := "Bitte überweisen Sie den Betrag auf CH93 0076 2011 6238 5295 7 bis Ende Monat."
	matches := NewEngine().Detect(text)

	var found bool
	for _, m := range matches {
		if m.Type == detector.TypeIBAN {
			found = true
			if m.Text != "CH93 0076 2011 6238 5295 7" {
				t.Errorf("IBAN match text = %q", m.Text)
			}
			if text[m.Start:m.End] != m.Text {
				t.Errorf("span [%d:%d) does not re-slice to match text", m.Start, m.End)
			}
		}
	}
	if !found {
		t.Fatal("no IBAN match found")
	}
}

func TestDetectMultilineEmail(t *testing.T) {
	text := "Kontaktieren Sie service\n@beispiel-ag.ch für Rückfragen."
	matches := NewEngine().Detect(text)

	var found bool
	for _, m := range matches {
		if m.Type == detector.TypeEmail {
			found = true
			if text[m.Start:m.End] != m.Text {
				t.Errorf("span mismatch for %q", m.Text)
			}
		}
	}
	if !found {
		t.Fatal("email split across line break not detected")
	}
}

func TestPhoneSuppressedByProductContext(t *testing.T) {
	clean := "Erreichbar unter Tel. 044 123 45 67 am Morgen."
	suppressed := "Art.-Nr. 044 123 45 67 sofort lieferbar."

	hasPhone := func(text string) bool {
		for _, m := range NewEngine().Detect(text) {
			if m.Type == detector.TypePhone {
				return true
			}
		}
		return false
	}

	if !hasPhone(clean) {
		t.Error("plain phone number not detected")
	}
	if hasPhone(suppressed) {
		t.Error("phone-shaped product code not suppressed")
	}
}

func TestContextWindowConfigurable(t *testing.T) {
	// Product keyword 30+ chars before the number: inside the default
	// 50-char window, outside a narrow one.
	text := "Art.-Nr. 8832: erreichbar unter 044 123 45 67."

	hasPhone := func(e *Engine) bool {
		for _, m := range e.Detect(text) {
			if m.Type == detector.TypePhone {
				return true
			}
		}
		return false
	}

	if hasPhone(NewEngine()) {
		t.Error("default window did not suppress the phone near a product keyword")
	}

	narrow := NewEngine()
	narrow.SetContextWindow(10)
	if !hasPhone(narrow) {
		t.Error("narrow window still suppresses a phone far from the keyword")
	}
}

func TestCapturingGroupReportsGroupSpan(t *testing.T) {
	text := "Ihr Ansprechpartner: Hans Muster, Tel. 044 123 45 67"
	matches := NewEngine().Detect(text)

	var person *Match
	for i, m := range matches {
		if m.Type == detector.TypePerson {
			person = &matches[i]
		}
	}
	if person == nil {
		t.Fatal("person near Tel. not detected")
	}
	if person.Text != "Hans Muster" {
		t.Errorf("person text = %q, want %q", person.Text, "Hans Muster")
	}
	if text[person.Start:person.End] != "Hans Muster" {
		t.Errorf("group span [%d:%d) not recomputed to absolute offsets", person.Start, person.End)
	}
}

func TestPriorityOverlapResolution(t *testing.T) {
	low := Rule{
		Name:  "low",
		Type:  detector.TypeDate,
		Regex: regexp.MustCompile(`XXY`),
	}
	high := Rule{
		Name:  "high",
		Type:  detector.TypeIBAN,
		Regex: regexp.MustCompile(`YYY`),
	}

	// The low-priority match starts first and is accepted before the
	// high-priority one arrives; the latter must evict it.
	engine := NewEngineWithRules([]Rule{low, high})
	matches := engine.Detect("XXYYY")

	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Type != detector.TypeIBAN {
		t.Errorf("surviving match type = %s, want IBAN", matches[0].Type)
	}
}

func TestLowerPriorityOverlapDropped(t *testing.T) {
	high := Rule{
		Name:  "high",
		Type:  detector.TypeIBAN,
		Regex: regexp.MustCompile(`XXY`),
	}
	low := Rule{
		Name:  "low",
		Type:  detector.TypeDate,
		Regex: regexp.MustCompile(`YYY`),
	}

	engine := NewEngineWithRules([]Rule{high, low})
	matches := engine.Detect("XXYYY")

	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Type != detector.TypeIBAN {
		t.Errorf("surviving match type = %s, want IBAN", matches[0].Type)
	}
}

func TestMaskedAVSDetected(t *testing.T) {
	text := "AHV-Nummer: 756.XXXX.XXXX.XX bereits anonymisiert."
	matches := NewEngine().Detect(text)

	var found bool
	for _, m := range matches {
		if m.Type == detector.TypeAVS {
			found = true
		}
	}
	if !found {
		t.Error("masked AVS placeholder not detected")
	}
}

func TestNoOverlapsInEngineOutput(t *testing.T) {
	text := "Rechnung an Hans Muster, Tel. 044 123 45 67, AHV 756.9217.0769.85, " +
		"IBAN CH93 0076 2011 6238 5295 7, fällig am 15.06.2024, 8001 Zürich"
	matches := NewEngine().Detect(text)

	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		if cur.Start < prev.End {
			t.Errorf("overlapping matches %s[%d:%d) and %s[%d:%d)",
				prev.Type, prev.Start, prev.End, cur.Type, cur.Start, cur.End)
		}
	}
}
