// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"strings"
	"testing"

	"piiscan/internal/detector"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"CHF 1'234.50", 1234.50},
		{"1.234,50 EUR", 1234.50},
		{"1,234.50", 1234.50},
		{"1.234", 1234},
		{"1.234.567", 1234567},
		{"12,50", 12.50},
		{"1,234", 1234},
		{"Fr. 99.90", 99.90},
		{"€ 250", 250},
		{"0.05", 0.05},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseAmount(tc.input)
			if err != nil {
				t.Fatalf("ParseAmount(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}

	if _, err := ParseAmount("CHF "); err == nil {
		t.Error("empty amount did not error")
	}
}

func TestExtractInvoiceNumber(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"german", "Rechnung Nr. 2024-0012 vom 15.06.2024", "2024-0012"},
		{"german compound", "Rechnungsnummer: RE-4711", "RE-4711"},
		{"french", "Facture no 2024/88 du 15 juin", "2024/88"},
		{"english", "Invoice No. INV-2024-001", "INV-2024-001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entities := NewExtractor().Extract(tc.text)
			for _, e := range entities {
				if e.Type == detector.TypeInvoiceNumber && e.Text == tc.want {
					return
				}
			}
			t.Errorf("invoice number %q not extracted from %q", tc.want, tc.text)
		})
	}
}

func TestExtractAmountWithCurrency(t *testing.T) {
	entities := NewExtractor().Extract("Total CHF 1'234.50 inkl. MwSt.")

	for _, e := range entities {
		if e.Type == detector.TypeAmount {
			if e.Meta.AmountValue != 1234.50 {
				t.Errorf("amount value = %v, want 1234.50", e.Meta.AmountValue)
			}
			if e.Meta.Currency != "CHF" {
				t.Errorf("currency = %q, want CHF", e.Meta.Currency)
			}
			return
		}
	}
	t.Fatal("no amount entity extracted")
}

func TestHeaderBoostAppliedOnlyInHeader(t *testing.T) {
	header := "Rechnung Nr. 2024-0012\n"
	body := strings.Repeat("Lorem ipsum dolor sit amet. ", 40)
	footer := "Rechnung Nr. 2024-0099\n"
	text := header + body + footer

	entities := NewExtractor().Extract(text)

	var boosted, plain *detector.Entity
	for i, e := range entities {
		if e.Type != detector.TypeInvoiceNumber {
			continue
		}
		switch e.Text {
		case "2024-0012":
			boosted = &entities[i]
		case "2024-0099":
			plain = &entities[i]
		}
	}
	if boosted == nil || plain == nil {
		t.Fatal("expected invoice numbers in header and footer")
	}
	if boosted.Meta.PositionBoost == 0 {
		t.Error("header entity carries no position boost")
	}
	if plain.Meta.PositionBoost != 0 {
		t.Error("footer entity carries a position boost")
	}
	if boosted.Confidence <= plain.Confidence {
		t.Errorf("header confidence %v not above footer confidence %v",
			boosted.Confidence, plain.Confidence)
	}
}

func TestExtractValidatedReferences(t *testing.T) {
	text := "Zahlbar an CH93 0076 2011 6238 5295 7, Referenz RF18 5390 0754 7034, MwSt CHE-105.805.649 MWST"
	entities := NewExtractor().Extract(text)

	found := map[detector.EntityType]bool{}
	for _, e := range entities {
		found[e.Type] = true
	}
	for _, want := range []detector.EntityType{detector.TypeIBAN, detector.TypePaymentRef, detector.TypeVATNumber} {
		if !found[want] {
			t.Errorf("%s not extracted", want)
		}
	}
}

func TestExtractRejectsInvalidChecksums(t *testing.T) {
	text := "Konto CH94 0076 2011 6238 5295 7, Referenz RF19 5390 0754 7034"
	for _, e := range NewExtractor().Extract(text) {
		if e.Type == detector.TypeIBAN || e.Type == detector.TypePaymentRef {
			t.Errorf("checksum-invalid %s %q extracted", e.Type, e.Text)
		}
	}
}

func TestMergeKeepsHigherConfidenceOnOverlap(t *testing.T) {
	existing := []detector.Entity{
		detector.NewEntity(detector.TypeAmount, "1'234.50", 10, 18, 0.6, detector.SourceML),
	}
	extracted := []detector.Entity{
		detector.NewEntity(detector.TypeAmount, "CHF 1'234.50", 6, 18, 0.8, detector.SourceRule),
		detector.NewEntity(detector.TypeInvoiceNumber, "2024-0012", 30, 39, 0.85, detector.SourceRule),
	}

	merged := Merge(existing, extracted)
	if len(merged) != 2 {
		t.Fatalf("got %d entities, want 2", len(merged))
	}
	if merged[0].Confidence != 0.8 || merged[0].Source != detector.SourceRule {
		t.Errorf("overlap not resolved toward higher confidence: %+v", merged[0])
	}
	if merged[1].Type != detector.TypeInvoiceNumber {
		t.Errorf("non-overlapping entity lost")
	}
}

func TestMergeKeepsExistingWhenStronger(t *testing.T) {
	existing := []detector.Entity{
		detector.NewEntity(detector.TypeAmount, "CHF 1'234.50", 6, 18, 0.9, detector.SourceML),
	}
	extracted := []detector.Entity{
		detector.NewEntity(detector.TypeAmount, "1'234.50", 10, 18, 0.8, detector.SourceRule),
	}

	merged := Merge(existing, extracted)
	if len(merged) != 1 {
		t.Fatalf("got %d entities, want 1", len(merged))
	}
	if merged[0].Source != detector.SourceML {
		t.Error("weaker extracted entity replaced the stronger existing one")
	}
}
