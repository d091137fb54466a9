// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"strconv"
	"strings"
)

// ibanLengths maps ISO country codes to the exact IBAN length for that
// country. A candidate with a known country code but the wrong length is
// rejected before any checksum work.
var ibanLengths = map[string]int{
	"AD": 24, "AE": 23, "AL": 28, "AT": 20, "AZ": 28, "BA": 20, "BE": 16,
	"BG": 22, "BH": 22, "BR": 29, "CH": 21, "CR": 22, "CY": 28, "CZ": 24,
	"DE": 22, "DK": 18, "DO": 28, "EE": 20, "ES": 24, "FI": 18, "FO": 18,
	"FR": 27, "GB": 22, "GE": 22, "GI": 23, "GL": 18, "GR": 27, "GT": 28,
	"HR": 21, "HU": 28, "IE": 22, "IL": 23, "IS": 26, "IT": 27, "JO": 30,
	"KW": 30, "KZ": 20, "LB": 28, "LI": 21, "LT": 20, "LU": 20, "LV": 21,
	"MC": 27, "MD": 24, "ME": 22, "MK": 19, "MR": 27, "MT": 31, "MU": 30,
	"NL": 18, "NO": 15, "PK": 24, "PL": 28, "PS": 29, "PT": 25, "QA": 29,
	"RO": 24, "RS": 22, "SA": 24, "SE": 24, "SI": 19, "SK": 24, "SM": 27,
	"TN": 24, "TR": 26, "UA": 29, "VG": 24, "XK": 20,
}

// ValidIBAN verifies an IBAN candidate: structure, per-country length, and
// the ISO 13616 mod-97 checksum. Whitespace separators are stripped first.
func ValidIBAN(candidate string) bool {
	iban := strings.ToUpper(strings.Join(strings.Fields(candidate), ""))
	if len(iban) < 5 {
		return false
	}
	for i, c := range iban {
		switch {
		case i < 2 && (c < 'A' || c > 'Z'):
			return false
		case i >= 2 && i < 4 && (c < '0' || c > '9'):
			return false
		case i >= 4 && !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z'):
			return false
		}
	}
	want, known := ibanLengths[iban[:2]]
	if !known || len(iban) != want {
		return false
	}

	// Rearrange: move the country code and check digits to the end, then
	// expand letters to two-digit numbers (A=10 .. Z=35).
	rearranged := iban[4:] + iban[:4]
	var sb strings.Builder
	sb.Grow(len(rearranged) * 2)
	for _, c := range rearranged {
		if c >= 'A' && c <= 'Z' {
			sb.WriteString(strconv.Itoa(int(c-'A') + 10))
		} else {
			sb.WriteRune(c)
		}
	}

	return mod97(sb.String()) == 1
}

// mod97 computes the remainder digit by digit so arbitrarily long numeric
// strings never overflow.
func mod97(digits string) int {
	rem := 0
	for i := 0; i < len(digits); i++ {
		rem = (rem*10 + int(digits[i]-'0')) % 97
	}
	return rem
}

// ValidAVS verifies a Swiss AVS/AHV social security number: the fixed 756
// country prefix, exactly 13 digits once separators are stripped, and the
// EAN-13 check digit.
func ValidAVS(candidate string) bool {
	digits := stripSeparators(candidate)
	if len(digits) != 13 || !strings.HasPrefix(digits, "756") {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return ean13CheckDigit(digits[:12]) == int(digits[12]-'0')
}

// MaskedAVS reports whether a candidate is an already-redacted AVS number
// (756 prefix with placeholder characters). These are accepted as valid so
// a re-scan of partially anonymized documents still recognizes them.
func MaskedAVS(candidate string) bool {
	s := stripSeparators(candidate)
	if len(s) != 13 || !strings.HasPrefix(s, "756") {
		return false
	}
	masked := false
	for _, c := range s[3:] {
		switch {
		case c == 'X' || c == 'x' || c == '*':
			masked = true
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return masked
}

// ean13CheckDigit computes the EAN-13 check digit over 12 digits using
// alternating weights 1 and 3.
func ean13CheckDigit(digits12 string) int {
	sum := 0
	for i, c := range digits12 {
		d := int(c - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return (10 - sum%10) % 10
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', ' ':
			return -1
		}
		return r
	}, s)
}

// ValidESR verifies an ESR/QR payment reference (16 or 27 digits) using the
// Swiss recursive mod-10 algorithm.
func ValidESR(candidate string) bool {
	digits := stripSeparators(candidate)
	if len(digits) != 16 && len(digits) != 27 {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return mod10Recursive(digits[:len(digits)-1]) == int(digits[len(digits)-1]-'0')
}

var mod10Table = [10]int{0, 9, 4, 6, 8, 2, 7, 1, 3, 5}

func mod10Recursive(digits string) int {
	carry := 0
	for _, c := range digits {
		carry = mod10Table[(carry+int(c-'0'))%10]
	}
	return (10 - carry) % 10
}

// ValidCreditorReference verifies an ISO 11649 creditor reference
// (RF + 2 check digits + up to 21 alphanumerics) via mod-97.
func ValidCreditorReference(candidate string) bool {
	ref := strings.ToUpper(strings.Join(strings.Fields(candidate), ""))
	if len(ref) < 5 || len(ref) > 25 || !strings.HasPrefix(ref, "RF") {
		return false
	}
	rearranged := ref[4:] + ref[:4]
	var sb strings.Builder
	for _, c := range rearranged {
		switch {
		case c >= '0' && c <= '9':
			sb.WriteRune(c)
		case c >= 'A' && c <= 'Z':
			sb.WriteString(strconv.Itoa(int(c-'A') + 10))
		default:
			return false
		}
	}
	return mod97(sb.String()) == 1
}

// ValidUID verifies a Swiss business identification number (CHE prefix,
// nine digits) using the official mod-11 check with weights 5,4,3,2,7,6,5,4.
func ValidUID(candidate string) bool {
	s := strings.ToUpper(stripSeparators(candidate))
	s = strings.TrimSuffix(s, "MWST")
	s = strings.TrimSuffix(s, "TVA")
	s = strings.TrimSuffix(s, "IVA")
	s = strings.TrimSpace(strings.TrimPrefix(s, "CHE"))
	if len(s) != 9 {
		return false
	}
	weights := [8]int{5, 4, 3, 2, 7, 6, 5, 4}
	sum := 0
	for i := 0; i < 8; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * weights[i]
	}
	check := 11 - sum%11
	if check == 11 {
		check = 0
	}
	if check == 10 {
		// No valid check digit exists for this base number.
		return false
	}
	return check == int(s[8]-'0')
}

// vatFormats holds structural VAT number shapes per EU country. Lengths and
// character classes only; most countries publish no offline checksum.
var vatFormats = map[string]func(string) bool{
	"AT": func(s string) bool { return len(s) == 9 && s[0] == 'U' && allDigits(s[1:]) },
	"BE": func(s string) bool { return len(s) == 10 && (s[0] == '0' || s[0] == '1') && allDigits(s) },
	"DE": func(s string) bool { return len(s) == 9 && allDigits(s) },
	"FR": func(s string) bool { return len(s) == 11 && allDigits(s[2:]) },
	"IT": func(s string) bool { return len(s) == 11 && allDigits(s) },
	"NL": func(s string) bool { return len(s) == 12 && allDigits(s[:9]) && s[9] == 'B' && allDigits(s[10:]) },
	"LU": func(s string) bool { return len(s) == 8 && allDigits(s) },
	"ES": func(s string) bool { return len(s) == 9 },
	"PL": func(s string) bool { return len(s) == 10 && allDigits(s) },
	"DK": func(s string) bool { return len(s) == 8 && allDigits(s) },
	"SE": func(s string) bool { return len(s) == 12 && allDigits(s) },
}

// ValidVAT verifies an EU VAT number against the per-country structural
// table. Swiss CHE numbers are routed through the UID check instead.
func ValidVAT(candidate string) bool {
	s := strings.ToUpper(stripSeparators(candidate))
	if strings.HasPrefix(s, "CHE") {
		return ValidUID(candidate)
	}
	if len(s) < 4 {
		return false
	}
	check, known := vatFormats[s[:2]]
	if !known {
		return false
	}
	return check(s[2:])
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

var daysInMonth = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// ValidDate applies range sanity to a DD.MM.YYYY candidate.
func ValidDate(day, month, year int) bool {
	if year < 1900 || year > 2100 {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysInMonth[month]
}

// ValidSwissPostalCode accepts the NPA range 1000-9999.
func ValidSwissPostalCode(code string) bool {
	if len(code) != 4 || !allDigits(code) {
		return false
	}
	n, _ := strconv.Atoi(code)
	return n >= 1000 && n <= 9999
}
