// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"testing"

	"piiscan/internal/detector"
)

func groupedSwiss() detector.GroupedAddress {
	street := comp(detector.CompStreetName, "Bahnhofstrasse", 0)
	number := comp(detector.CompStreetNumber, "10", 15)
	postal := comp(detector.CompPostalCode, "8001", 19)
	city := comp(detector.CompCity, "Zürich", 24)
	return detector.GroupedAddress{
		ID:         "g1",
		Components: []detector.AddressComponent{street, number, postal, city},
		Breakdown: detector.ComponentBreakdown{
			Street: &street,
			Number: &number,
			Postal: &postal,
			City:   &city,
		},
		Pattern: detector.PatternSwiss,
	}
}

func TestScoreFullSwissAddress(t *testing.T) {
	scored := NewScorer().Score(groupedSwiss())

	if scored.Confidence < 0.8 {
		t.Errorf("confidence %v below auto-anonymize band for a full address", scored.Confidence)
	}
	if scored.FlaggedForReview {
		t.Error("full address flagged for review")
	}
	if !scored.AutoAnonymize {
		t.Error("full address not marked for auto-anonymization")
	}
	if len(scored.Factors) != 5 {
		t.Errorf("got %d factors, want 5", len(scored.Factors))
	}
}

func TestScoreMonotonicInCompleteness(t *testing.T) {
	full := groupedSwiss()

	partial := full
	partial.Components = partial.Components[:2]
	partial.Breakdown.Postal = nil
	partial.Breakdown.City = nil
	partial.Pattern = detector.PatternPartial

	scorer := NewScorer()
	if scorer.Score(partial).Confidence >= scorer.Score(full).Confidence {
		t.Error("removing components did not lower the score")
	}
}

func TestScoreThresholdEdges(t *testing.T) {
	// Thresholds use strict less-than for review and greater-or-equal for
	// auto-anonymization, checked exactly at the boundary.
	scorer := &Scorer{ReviewThreshold: 0.6, AutoAnonymizeThreshold: 0.8}

	addr := groupedSwiss()
	scored := scorer.Score(addr)

	edge := &Scorer{ReviewThreshold: scored.Confidence, AutoAnonymizeThreshold: scored.Confidence}
	edgeScored := edge.Score(addr)
	if edgeScored.FlaggedForReview {
		t.Error("confidence exactly at the review threshold was flagged")
	}
	if !edgeScored.AutoAnonymize {
		t.Error("confidence exactly at the auto-anonymize threshold was not selected")
	}
}

func TestPostalScoreGrades(t *testing.T) {
	base := groupedSwiss()

	known := postalScore(base)
	if known != maxPostal {
		t.Errorf("table-confirmed postal code scored %v, want %v", known, maxPostal)
	}

	fiveDigit := base
	p := comp(detector.CompPostalCode, "10115", 19)
	fiveDigit.Breakdown.Postal = &p
	if got := postalScore(fiveDigit); got != maxPostal*0.8 {
		t.Errorf("five-digit postal scored %v, want %v", got, maxPostal*0.8)
	}

	prefixed := base
	pp := comp(detector.CompPostalCode, "CH-8001", 19)
	prefixed.Breakdown.Postal = &pp
	if got := postalScore(prefixed); got != maxPostal {
		t.Errorf("prefixed known postal scored %v, want %v", got, maxPostal)
	}

	missing := base
	missing.Breakdown.Postal = nil
	if got := postalScore(missing); got != 0 {
		t.Errorf("absent postal scored %v, want 0", got)
	}
}

func TestCityScoreGrades(t *testing.T) {
	base := groupedSwiss()
	if got := cityScore(base); got != maxCity {
		t.Errorf("known city scored %v, want %v", got, maxCity)
	}

	unknown := base
	city := comp(detector.CompCity, "Niemandsdorf", 24)
	unknown.Breakdown.City = &city
	if got := cityScore(unknown); got != maxCity*0.5 {
		t.Errorf("unknown city after postal scored %v, want %v", got, maxCity*0.5)
	}

	floating := unknown
	floating.Breakdown.Postal = nil
	if got := cityScore(floating); got != maxCity*0.3 {
		t.Errorf("unknown city without postal scored %v, want %v", got, maxCity*0.3)
	}
}

func TestCountryScoreFromPrefixedPostal(t *testing.T) {
	base := groupedSwiss()
	if got := countryScore(base); got != 0 {
		t.Errorf("no country evidence scored %v, want 0", got)
	}

	prefixed := base
	p := comp(detector.CompPostalCode, "CH-8001", 19)
	prefixed.Breakdown.Postal = &p
	if got := countryScore(prefixed); got != maxCountry*0.5 {
		t.Errorf("prefixed postal scored %v, want %v", got, maxCountry*0.5)
	}

	explicit := base
	country := comp(detector.CompCountry, "Schweiz", 32)
	explicit.Breakdown.Country = &country
	if got := countryScore(explicit); got != maxCountry {
		t.Errorf("explicit country scored %v, want %v", got, maxCountry)
	}
}
