// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"piiscan/internal/detector"
)

// Priority orders entity types when matches from different rules overlap.
// Higher wins. IBAN sits on top because its checksum makes it the least
// ambiguous; loose numeric shapes (dates, generic IDs) sit at the bottom.
const (
	PriorityIBAN         = 100
	PriorityAVS          = 95
	PriorityPaymentRef   = 90
	PriorityVAT          = 85
	PriorityUID          = 80
	PriorityEmail        = 75
	PriorityPhone        = 70
	PriorityPassport     = 65
	PriorityBankAccount  = 60
	PriorityLicensePlate = 55
	PriorityPostalCity   = 50
	PriorityPerson       = 45
	PriorityDate         = 20
	PriorityIDNumber     = 10
)

// typePriority maps every engine-produced type to its overlap priority.
var typePriority = map[detector.EntityType]int{
	detector.TypeIBAN:         PriorityIBAN,
	detector.TypeAVS:          PriorityAVS,
	detector.TypePaymentRef:   PriorityPaymentRef,
	detector.TypeVATNumber:    PriorityVAT,
	detector.TypeUID:          PriorityUID,
	detector.TypeEmail:        PriorityEmail,
	detector.TypePhone:        PriorityPhone,
	detector.TypePassport:     PriorityPassport,
	detector.TypeBankAccount:  PriorityBankAccount,
	detector.TypeLicensePlate: PriorityLicensePlate,
	detector.TypePostalCity:   PriorityPostalCity,
	detector.TypePerson:       PriorityPerson,
	detector.TypeDate:         PriorityDate,
	detector.TypeIDNumber:     PriorityIDNumber,
}

// baseConfidence is the confidence a rule match carries before any pass
// level adjustment. Checksum-backed types score high; structural-only
// shapes score lower.
var baseConfidence = map[detector.EntityType]float64{
	detector.TypeIBAN:         0.98,
	detector.TypeAVS:          0.98,
	detector.TypePaymentRef:   0.95,
	detector.TypeVATNumber:    0.9,
	detector.TypeUID:          0.95,
	detector.TypeEmail:        0.95,
	detector.TypePhone:        0.85,
	detector.TypePassport:     0.7,
	detector.TypeBankAccount:  0.8,
	detector.TypeLicensePlate: 0.75,
	detector.TypePostalCity:   0.8,
	detector.TypePerson:       0.75,
	detector.TypeDate:         0.7,
	detector.TypeIDNumber:     0.5,
}

// BaseConfidence returns the engine-level confidence for a type, or 0.5
// for types it does not know.
func BaseConfidence(t detector.EntityType) float64 {
	if c, ok := baseConfidence[t]; ok {
		return c
	}
	return 0.5
}

// defaultContextWindow is the context radius validators inspect when the
// engine carries no configured override.
const defaultContextWindow = 50

// RuleContext gives a validator the placement of its candidate inside the
// full document so it can inspect surrounding text. ContextWindow carries
// the engine-configured context radius.
type RuleContext struct {
	FullText      string
	Start         int
	End           int
	ContextWindow int
}

// Window returns up to n characters of context on each side of the match.
func (c RuleContext) Window(n int) string {
	start := c.Start - n
	if start < 0 {
		start = 0
	}
	end := c.End + n
	if end > len(c.FullText) {
		end = len(c.FullText)
	}
	return c.FullText[start:end]
}

// Context returns the surrounding text at the configured window size,
// falling back to the default for a zero-value context.
func (c RuleContext) Context() string {
	n := c.ContextWindow
	if n <= 0 {
		n = defaultContextWindow
	}
	return c.Window(n)
}

// Rule pairs a compiled matcher with a validator. Group, when non-zero,
// designates the capturing group reported as the entity span instead of
// the whole match.
type Rule struct {
	Name     string
	Type     detector.EntityType
	Regex    *regexp.Regexp
	Validate func(match string, ctx RuleContext) bool
	Group    int
}

// productContextWords suppress phone matches inside product/SKU/model
// vocabulary. PDF extractions of catalogs and order forms are full of
// dash-delimited numeric codes that otherwise pass phone shape checks.
var productContextWords = []string{
	"artikel", "art.-nr", "art-nr", "art. nr", "artikelnummer",
	"produkt", "product", "produit", "sku", "model", "modell", "modèle",
	"serien", "serial", "série", "bestell", "order no", "référence article",
	"item", "部品", "typ ", "type no", "version", "firmware",
}

var dashCodeShape = regexp.MustCompile(`^\d{2,4}-\d{2,4}-\d{2,4}$`)

func validPhone(match string, ctx RuleContext) bool {
	trimmed := strings.TrimSpace(match)
	if dashCodeShape.MatchString(trimmed) {
		return false
	}
	window := strings.ToLower(ctx.Context())
	for _, w := range productContextWords {
		if strings.Contains(window, w) {
			return false
		}
	}
	digits := 0
	for _, c := range trimmed {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return digits >= 9 && digits <= 15
}

// passportKeywords gate the loose letter+digits passport shape; without a
// nearby keyword the pattern matches far too many reference codes.
var passportKeywords = []string{
	"passport", "passeport", "reisepass", "pass nr", "pass-nr", "passnummer",
	"passaporto", "travel document",
}

func validPassport(match string, ctx RuleContext) bool {
	window := strings.ToLower(ctx.Context())
	for _, w := range passportKeywords {
		if strings.Contains(window, w) {
			return true
		}
	}
	return false
}

var swissCantons = map[string]bool{
	"AG": true, "AI": true, "AR": true, "BE": true, "BL": true, "BS": true,
	"FR": true, "GE": true, "GL": true, "GR": true, "JU": true, "LU": true,
	"NE": true, "NW": true, "OW": true, "SG": true, "SH": true, "SO": true,
	"SZ": true, "TG": true, "TI": true, "UR": true, "VD": true, "VS": true,
	"ZG": true, "ZH": true,
}

func validLicensePlate(match string, ctx RuleContext) bool {
	s := strings.ToUpper(strings.TrimSpace(match))
	if len(s) < 4 {
		return false
	}
	return swissCantons[s[:2]]
}

var dateParts = regexp.MustCompile(`^([0-3]?\d)\.([01]?\d)\.((?:19|20)\d{2})$`)

func validDateMatch(match string, _ RuleContext) bool {
	m := dateParts.FindStringSubmatch(strings.TrimSpace(match))
	if m == nil {
		return false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	return ValidDate(day, month, year)
}

func validPostalCity(match string, _ RuleContext) bool {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimPrefix(match, "CH-"), "CH "))
	if len(fields) < 2 {
		return false
	}
	return ValidSwissPostalCode(fields[0])
}

// validSwissBankAccount checks the legacy postal account shape XX-YYYYYY-C
// where C is the recursive mod-10 check digit over the first two parts.
func validSwissBankAccount(match string, _ RuleContext) bool {
	parts := strings.Split(strings.TrimSpace(match), "-")
	if len(parts) != 3 || len(parts[2]) != 1 {
		return false
	}
	if !allDigits(parts[0]) || !allDigits(parts[1]) || !allDigits(parts[2]) {
		return false
	}
	// The check digit is computed over the zero-padded 8-digit base.
	base := parts[0] + strings.Repeat("0", 6-len(parts[1])) + parts[1]
	return mod10Recursive(base) == int(parts[2][0]-'0')
}

// defaultRules builds the static rule table. Compiled once at engine
// construction; Go's RE2 engine keeps every pattern linear-time.
func defaultRules() []Rule {
	return []Rule{
		{
			Name:  "iban",
			Type:  detector.TypeIBAN,
			Regex: regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}(?:[ ]?[A-Z0-9]{4}){2,7}(?:[ ]?[A-Z0-9]{1,3})?\b`),
			Validate: func(match string, _ RuleContext) bool {
				return ValidIBAN(match)
			},
		},
		{
			Name:  "avs",
			Type:  detector.TypeAVS,
			Regex: regexp.MustCompile(`\b756[.\- ]?\d{4}[.\- ]?\d{4}[.\- ]?\d{2}\b`),
			Validate: func(match string, _ RuleContext) bool {
				return ValidAVS(match)
			},
		},
		{
			Name:  "avs-masked",
			Type:  detector.TypeAVS,
			Regex: regexp.MustCompile(`\b756[.\- ]?[0-9Xx*]{4}[.\- ]?[0-9Xx*]{4}[.\- ]?[0-9Xx*]{2}\b`),
			Validate: func(match string, _ RuleContext) bool {
				return MaskedAVS(match)
			},
		},
		{
			Name:  "creditor-reference",
			Type:  detector.TypePaymentRef,
			Regex: regexp.MustCompile(`\bRF[0-9]{2}(?:[ ]?[A-Z0-9]{1,4}){1,6}\b`),
			Validate: func(match string, _ RuleContext) bool {
				return ValidCreditorReference(match)
			},
		},
		{
			Name:  "esr-reference",
			Type:  detector.TypePaymentRef,
			Regex: regexp.MustCompile(`\b\d{2}[ ]?\d{5}[ ]?\d{5}[ ]?\d{5}[ ]?\d{5}[ ]?\d{5}\b|\b\d{16}\b`),
			Validate: func(match string, _ RuleContext) bool {
				return ValidESR(match)
			},
		},
		{
			Name:  "vat-eu",
			Type:  detector.TypeVATNumber,
			Regex: regexp.MustCompile(`\b(?:ATU\d{8}|BE[01]\d{9}|DE\d{9}|FR[A-Z0-9]{2}\d{9}|IT\d{11}|NL\d{9}B\d{2}|LU\d{8}|PL\d{10}|DK\d{8}|SE\d{12})\b`),
			Validate: func(match string, _ RuleContext) bool {
				return ValidVAT(match)
			},
		},
		{
			Name:  "uid-ch",
			Type:  detector.TypeUID,
			Regex: regexp.MustCompile(`\bCHE[-. ]?\d{3}[. ]?\d{3}[. ]?\d{3}(?:[ ]?(?:MWST|TVA|IVA))?\b`),
			Validate: func(match string, _ RuleContext) bool {
				return ValidUID(match)
			},
		},
		{
			Name: "email",
			Type: detector.TypeEmail,
			// The \n alternates absorb local parts or domains split across a
			// line break, which PDF text extraction produces routinely.
			Regex: regexp.MustCompile(`[A-Za-z0-9._%+\-]+\n?@\n?[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
			Validate: func(match string, _ RuleContext) bool {
				return strings.Count(match, "@") == 1
			},
		},
		{
			Name:     "phone-ch",
			Type:     detector.TypePhone,
			Regex:    regexp.MustCompile(`(?:\+41|0041|\+49|\+33|\+39|\+43)[ ]?(?:\(0\))?[ ]?\d(?:[ ./\-]?\d){7,11}\b|\b0\d{2}[ /.\-]?\d{3}[ .\-]?\d{2}[ .\-]?\d{2}\b`),
			Validate: validPhone,
		},
		{
			Name:     "passport",
			Type:     detector.TypePassport,
			Regex:    regexp.MustCompile(`\b[A-Z]\d{7}\b`),
			Validate: validPassport,
		},
		{
			Name:     "bank-account-ch",
			Type:     detector.TypeBankAccount,
			Regex:    regexp.MustCompile(`\b\d{2}-\d{1,6}-\d\b`),
			Validate: validSwissBankAccount,
		},
		{
			Name:     "license-plate-ch",
			Type:     detector.TypeLicensePlate,
			Regex:    regexp.MustCompile(`\b[A-Z]{2}[ \-]?\d{3,6}\b`),
			Validate: validLicensePlate,
		},
		{
			Name:     "postal-city-ch",
			Type:     detector.TypePostalCity,
			Regex:    regexp.MustCompile(`\b(?:CH[\- ])?\d{4} [A-ZÄÖÜ][\p{L}]+(?:[ \-][\p{L}]+)?\b`),
			Validate: validPostalCity,
		},
		{
			Name: "person-near-tel",
			Type: detector.TypePerson,
			// Matches "Hans Muster, Tel. 044 ..." but reports only the name.
			Regex: regexp.MustCompile(`([A-ZÄÖÜ][\p{L}]+ [A-ZÄÖÜ][\p{L}]+)[,:]?[ ]?(?:Tel|Tél|Telefon|Direktwahl|Natel)\b`),
			Validate: func(match string, _ RuleContext) bool {
				return true
			},
			Group: 1,
		},
		{
			Name:     "date-dmy",
			Type:     detector.TypeDate,
			Regex:    regexp.MustCompile(`\b[0-3]?\d\.[01]?\d\.(?:19|20)\d{2}\b`),
			Validate: validDateMatch,
		},
	}
}
