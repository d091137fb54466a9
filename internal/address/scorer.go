// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"strings"

	"piiscan/internal/detector"
)

// Factor maxima for the five-part weighted score.
const (
	maxCompleteness = 1.0
	maxPattern      = 0.3
	maxPostal       = 0.2
	maxCity         = 0.1
	maxCountry      = 0.1
)

// Scorer computes the richer multi-factor confidence over a linked
// GroupedAddress and applies the review/auto-anonymize thresholds. Both
// thresholds are configuration, not constants.
type Scorer struct {
	ReviewThreshold        float64
	AutoAnonymizeThreshold float64
}

// NewScorer returns a scorer with the default thresholds.
func NewScorer() *Scorer {
	return &Scorer{ReviewThreshold: 0.6, AutoAnonymizeThreshold: 0.8}
}

// ScoredAddress is a GroupedAddress with its factor breakdown and the
// derived review decision.
type ScoredAddress struct {
	Address          detector.GroupedAddress
	Confidence       float64
	Factors          []detector.ScoreFactor
	FlaggedForReview bool
	AutoAnonymize    bool
}

// Score evaluates five independently weighted factors and normalizes the
// sum against the total attainable weight, clamped to [0,1]. Flagging uses
// strict less-than; auto-anonymization uses greater-or-equal.
func (s *Scorer) Score(addr detector.GroupedAddress) ScoredAddress {
	factors := []detector.ScoreFactor{
		{Name: "completeness", Score: completenessScore(addr), Max: maxCompleteness},
		{Name: "pattern", Score: patternScore(addr.Pattern), Max: maxPattern},
		{Name: "postal_code", Score: postalScore(addr), Max: maxPostal},
		{Name: "city", Score: cityScore(addr), Max: maxCity},
		{Name: "country", Score: countryScore(addr), Max: maxCountry},
	}

	var sum, max float64
	for _, f := range factors {
		sum += f.Score
		max += f.Max
	}
	confidence := sum / max
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return ScoredAddress{
		Address:          addr,
		Confidence:       confidence,
		Factors:          factors,
		FlaggedForReview: confidence < s.ReviewThreshold,
		AutoAnonymize:    confidence >= s.AutoAnonymizeThreshold,
	}
}

// completenessScore rewards each distinct component type present.
func completenessScore(addr detector.GroupedAddress) float64 {
	seen := make(map[detector.ComponentType]bool)
	for _, comp := range addr.Components {
		seen[comp.Type] = true
	}
	score := 0.2 * float64(len(seen))
	if score > maxCompleteness {
		score = maxCompleteness
	}
	return score
}

func patternScore(pattern detector.AddressPattern) float64 {
	switch pattern {
	case detector.PatternSwiss, detector.PatternEU:
		return maxPattern
	case detector.PatternAlternative:
		return maxPattern * 0.8
	case detector.PatternPartial:
		return maxPattern * 0.5
	default:
		return 0
	}
}

// postalScore grades the postal component: full credit for a code
// confirmed against the reference table, partial credit for plausible EU
// five-digit or Austrian-style four-digit shapes, a floor for anything
// unverified.
func postalScore(addr detector.GroupedAddress) float64 {
	postal := addr.Breakdown.Postal
	if postal == nil {
		return 0
	}
	code := strings.TrimLeft(postal.Text, "CHFLDAI-")
	if _, ok := LookupPostalCode(code); ok {
		return maxPostal
	}
	switch {
	case len(code) == 5 && allASCIIDigits(code):
		return maxPostal * 0.8
	case len(code) == 4 && allASCIIDigits(code):
		return maxPostal * 0.7
	default:
		return maxPostal * 0.3
	}
}

// cityScore grades the city component: confirmed name, or a postal code
// preceding an unconfirmed name, or the unverified floor.
func cityScore(addr detector.GroupedAddress) float64 {
	city := addr.Breakdown.City
	if city == nil {
		return 0
	}
	if IsKnownCity(city.Text) {
		return maxCity
	}
	if postal := addr.Breakdown.Postal; postal != nil && postal.End <= city.Start {
		return maxCity * 0.5
	}
	return maxCity * 0.3
}

// countryScore gives full credit for an explicit country token and half
// credit for a country inferred from a prefixed postal code ("CH-8001").
func countryScore(addr detector.GroupedAddress) float64 {
	if addr.Breakdown.Country != nil {
		return maxCountry
	}
	if postal := addr.Breakdown.Postal; postal != nil {
		if idx := strings.IndexByte(postal.Text, '-'); idx > 0 {
			return maxCountry * 0.5
		}
	}
	return 0
}

func allASCIIDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
