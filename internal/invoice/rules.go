// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package invoice layers invoice-specific pattern tables on top of the
// generic detector engine. It owns its own rule set so other document
// types can register comparable extension modules without touching shared
// code.
package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"piiscan/internal/detector"
	"piiscan/internal/patterns"
)

// Extractor holds the invoice pattern tables and the positional boost
// configuration.
type Extractor struct {
	// HeaderBoost is added to the confidence of entities whose span falls
	// within the first HeaderFraction of the document, where invoice
	// metadata typically lives.
	HeaderBoost    float64
	HeaderFraction float64

	invoiceNumber *regexp.Regexp
	amount        *regexp.Regexp
	vat           *regexp.Regexp
	qrReference   *regexp.Regexp
	esrReference  *regexp.Regexp
	iban          *regexp.Regexp
}

// NewExtractor compiles the invoice pattern tables.
func NewExtractor() *Extractor {
	return &Extractor{
		HeaderBoost:    0.2,
		HeaderFraction: 0.2,
		// Invoice-number phrases in German, French and English; the number
		// itself is the first capturing group after the phrase.
		invoiceNumber: regexp.MustCompile(`(?i)(?:Rechnungs?[ \-]?(?:Nr|Nummer)\.?|Facture[ ]n[o°º]?\.?|Invoice[ ](?:No|Number|#)\.?)[ :]*([A-Z0-9][A-Z0-9\-/.]{2,19})`),
		amount:        regexp.MustCompile(`(?:CHF|EUR|Fr\.|€)[ ]?(\d{1,3}(?:['.,]\d{3})*(?:[.,]\d{2})?)|(\d{1,3}(?:['.,]\d{3})*(?:[.,]\d{2})?)[ ]?(?:CHF|EUR|Fr\.|€)`),
		vat:           regexp.MustCompile(`\b(?:CHE[-. ]?\d{3}[. ]?\d{3}[. ]?\d{3}(?:[ ]?(?:MWST|TVA|IVA))?|ATU\d{8}|DE\d{9}|FR[A-Z0-9]{2}\d{9}|IT\d{11})\b`),
		qrReference:   regexp.MustCompile(`\bRF\d{2}(?:[ ]?[A-Z0-9]{1,4}){1,6}\b`),
		esrReference:  regexp.MustCompile(`\b\d{2}[ ]?\d{5}[ ]?\d{5}[ ]?\d{5}[ ]?\d{5}[ ]?\d{5}\b|\b\d{27}\b|\b\d{16}\b`),
		iban:          regexp.MustCompile(`\b[A-Z]{2}\d{2}(?:[ ]?[A-Z0-9]{4}){2,7}(?:[ ]?[A-Z0-9]{1,3})?\b`),
	}
}

// Extract runs all invoice rules over text and returns entities with the
// positional boost already applied.
func (e *Extractor) Extract(text string) []detector.Entity {
	var entities []detector.Entity
	headerEnd := int(float64(len(text)) * e.HeaderFraction)

	add := func(t detector.EntityType, start, end int, confidence float64, meta detector.Meta) {
		if start >= end {
			return
		}
		if start < headerEnd {
			confidence += e.HeaderBoost
			if confidence > 1.0 {
				confidence = 1.0
			}
			meta.PositionBoost = e.HeaderBoost
		}
		ent := detector.NewEntity(t, text[start:end], start, end, confidence, detector.SourceRule)
		ent.Meta = meta
		entities = append(entities, ent)
	}

	for _, loc := range e.invoiceNumber.FindAllStringSubmatchIndex(text, -1) {
		if loc[2] >= 0 {
			add(detector.TypeInvoiceNumber, loc[2], loc[3], 0.85, detector.Meta{RuleName: "invoice-number"})
		}
	}

	for _, loc := range e.amount.FindAllStringSubmatchIndex(text, -1) {
		value, err := ParseAmount(text[loc[0]:loc[1]])
		if err != nil {
			continue
		}
		add(detector.TypeAmount, loc[0], loc[1], 0.8, detector.Meta{
			RuleName:    "currency-amount",
			AmountValue: value,
			Currency:    detectCurrency(text[loc[0]:loc[1]]),
		})
	}

	for _, loc := range e.vat.FindAllStringIndex(text, -1) {
		if patterns.ValidVAT(text[loc[0]:loc[1]]) {
			add(detector.TypeVATNumber, loc[0], loc[1], 0.9, detector.Meta{RuleName: "vat"})
		}
	}

	for _, loc := range e.qrReference.FindAllStringIndex(text, -1) {
		if patterns.ValidCreditorReference(text[loc[0]:loc[1]]) {
			add(detector.TypePaymentRef, loc[0], loc[1], 0.95, detector.Meta{RuleName: "qr-reference"})
		}
	}
	for _, loc := range e.esrReference.FindAllStringIndex(text, -1) {
		if patterns.ValidESR(text[loc[0]:loc[1]]) {
			add(detector.TypePaymentRef, loc[0], loc[1], 0.95, detector.Meta{RuleName: "esr-reference"})
		}
	}

	for _, loc := range e.iban.FindAllStringIndex(text, -1) {
		if patterns.ValidIBAN(text[loc[0]:loc[1]]) {
			add(detector.TypeIBAN, loc[0], loc[1], 0.98, detector.Meta{RuleName: "iban"})
		}
	}

	return entities
}

var currencyTokens = []string{"CHF", "EUR", "Fr.", "€"}

func detectCurrency(s string) string {
	for _, tok := range currencyTokens {
		if strings.Contains(s, tok) {
			if tok == "€" {
				return "EUR"
			}
			if tok == "Fr." {
				return "CHF"
			}
			return tok
		}
	}
	return ""
}

// ParseAmount converts an amount string to a numeric value, disambiguating
// Swiss apostrophe thousands separators (1'234.50) from European dot
// thousands with comma decimals (1.234,50) and plain decimal forms.
func ParseAmount(s string) (float64, error) {
	cleaned := s
	for _, tok := range currencyTokens {
		cleaned = strings.ReplaceAll(cleaned, tok, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in amount %q", s)
	}

	switch {
	case strings.Contains(cleaned, "'"):
		// Swiss convention: apostrophe thousands, dot decimal.
		cleaned = strings.ReplaceAll(cleaned, "'", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case strings.Contains(cleaned, ".") && strings.Contains(cleaned, ","):
		// Both present: the later one is the decimal separator.
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Contains(cleaned, ","):
		// Comma only: decimal if exactly two trailing digits, thousands
		// separator otherwise.
		idx := strings.LastIndex(cleaned, ",")
		if len(cleaned)-idx-1 == 2 {
			cleaned = strings.ReplaceAll(cleaned[:idx], ",", "") + "." + cleaned[idx+1:]
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Count(cleaned, ".") > 1:
		// Multiple dots can only be thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	case strings.Contains(cleaned, "."):
		idx := strings.LastIndex(cleaned, ".")
		if len(cleaned)-idx-1 == 3 {
			// A single dot with three trailing digits is a thousands
			// separator (EU convention), not a decimal point.
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return value, nil
}

// Merge folds extracted entities into an existing list using the shared
// overlap rule: on overlap the higher-confidence entity survives.
func Merge(existing, extracted []detector.Entity) []detector.Entity {
	merged := make([]detector.Entity, len(existing))
	copy(merged, existing)

	for _, ent := range extracted {
		conflict := false
		for i, old := range merged {
			if !old.Overlaps(ent) {
				continue
			}
			conflict = true
			if ent.Confidence > old.Confidence {
				merged[i] = ent
			}
			break
		}
		if !conflict {
			merged = append(merged, ent)
		}
	}
	return merged
}
