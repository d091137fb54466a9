// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"strings"
	"testing"

	"piiscan/internal/detector"
)

func comp(t detector.ComponentType, text string, start int) detector.AddressComponent {
	return detector.AddressComponent{
		ID:    text,
		Type:  t,
		Text:  text,
		Start: start,
		End:   start + len(text),
	}
}

func TestDetectPatternSwiss(t *testing.T) {
	group := []detector.AddressComponent{
		comp(detector.CompStreetName, "Bahnhofstrasse", 0),
		comp(detector.CompStreetNumber, "10", 15),
		comp(detector.CompPostalCode, "8001", 19),
		comp(detector.CompCity, "Zürich", 24),
	}
	if got := DetectPattern(group); got != detector.PatternSwiss {
		t.Errorf("pattern = %s, want SWISS", got)
	}
}

func TestDetectPatternAlternative(t *testing.T) {
	group := []detector.AddressComponent{
		comp(detector.CompPostalCode, "8001", 0),
		comp(detector.CompCity, "Zürich", 5),
		comp(detector.CompStreetName, "Bahnhofstrasse", 13),
		comp(detector.CompStreetNumber, "10", 28),
	}
	if got := DetectPattern(group); got != detector.PatternAlternative {
		t.Errorf("pattern = %s, want ALTERNATIVE", got)
	}
}

func TestDetectPatternEU(t *testing.T) {
	group := []detector.AddressComponent{
		comp(detector.CompStreetName, "Bahnhofstrasse", 0),
		comp(detector.CompStreetNumber, "10", 15),
		comp(detector.CompPostalCode, "8001", 19),
		comp(detector.CompCity, "Zürich", 24),
		comp(detector.CompCountry, "Schweiz", 32),
	}
	if got := DetectPattern(group); got != detector.PatternEU {
		t.Errorf("pattern = %s, want EU", got)
	}
}

func TestDetectPatternPartialAndNone(t *testing.T) {
	partial := []detector.AddressComponent{
		comp(detector.CompStreetName, "Bahnhofstrasse", 0),
		comp(detector.CompPostalCode, "8001", 20),
	}
	if got := DetectPattern(partial); got != detector.PatternPartial {
		t.Errorf("pattern = %s, want PARTIAL", got)
	}

	none := []detector.AddressComponent{
		comp(detector.CompCity, "Zürich", 0),
	}
	if got := DetectPattern(none); got != detector.PatternNone {
		t.Errorf("pattern = %s, want NONE", got)
	}
}

func TestGroupByProximityBoundary(t *testing.T) {
	linker := NewLinker()

	build := func(gap int, newline bool) (string, []detector.AddressComponent) {
		filler := strings.Repeat(" ", gap)
		if newline {
			filler = "\n" + strings.Repeat(" ", gap-1)
		}
		text := "Bahnhofstrasse" + filler + "8001"
		return text, []detector.AddressComponent{
			comp(detector.CompStreetName, "Bahnhofstrasse", 0),
			comp(detector.CompPostalCode, "8001", 14+gap),
		}
	}

	cases := []struct {
		name    string
		gap     int
		newline bool
		grouped bool
	}{
		{"exactly 50 no newline", 50, false, true},
		{"51 no newline", 51, false, false},
		{"100 with newline", 100, true, true},
		{"101 with newline", 101, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, comps := build(tc.gap, tc.newline)
			groups := linker.GroupByProximity(text, comps)
			if tc.grouped && len(groups) != 1 {
				t.Errorf("expected one group, got %d", len(groups))
			}
			if !tc.grouped && len(groups) != 0 {
				t.Errorf("expected no group, got %d", len(groups))
			}
		})
	}
}

func TestCalculateConfidenceMonotonic(t *testing.T) {
	swiss := []detector.AddressComponent{
		comp(detector.CompStreetName, "Bahnhofstrasse", 0),
		comp(detector.CompPostalCode, "8001", 20),
		comp(detector.CompCity, "Zürich", 25),
	}
	partial := []detector.AddressComponent{
		comp(detector.CompStreetName, "Bahnhofstrasse", 0),
		comp(detector.CompPostalCode, "8001", 20),
	}

	cSwiss := CalculateConfidence(swiss, detector.PatternSwiss)
	cPartial := CalculateConfidence(partial, detector.PatternPartial)
	if cSwiss <= cPartial {
		t.Errorf("confidence(SWISS)=%v not greater than confidence(PARTIAL)=%v", cSwiss, cPartial)
	}

	cEU := CalculateConfidence(swiss, detector.PatternEU)
	cAlt := CalculateConfidence(swiss, detector.PatternAlternative)
	if cEU < cAlt {
		t.Errorf("confidence(EU)=%v below confidence(ALTERNATIVE)=%v", cEU, cAlt)
	}
}

func TestCalculateConfidenceCapped(t *testing.T) {
	group := []detector.AddressComponent{
		comp(detector.CompStreetName, "Bahnhofstrasse", 0),
		comp(detector.CompStreetNumber, "10", 15),
		comp(detector.CompPostalCode, "8001", 19),
		comp(detector.CompCity, "Zürich", 24),
		comp(detector.CompCountry, "Schweiz", 32),
		comp(detector.CompRegion, "Zürich", 41),
		comp(detector.CompRegion, "Zürich", 49),
		comp(detector.CompRegion, "Zürich", 57),
	}
	if got := CalculateConfidence(group, detector.PatternEU); got > 1.0 {
		t.Errorf("confidence %v exceeds cap", got)
	}
}

func TestLinkStampsComponentsAndStatus(t *testing.T) {
	text := "Bahnhofstrasse 10, 8001 Zürich"
	comps := []detector.AddressComponent{
		comp(detector.CompStreetName, "Bahnhofstrasse", 0),
		comp(detector.CompStreetNumber, "10", 15),
		comp(detector.CompPostalCode, "8001", 19),
		comp(detector.CompCity, "Zürich", 24),
	}

	result := NewLinker().Link(text, comps)
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	group := result.Groups[0]

	if group.Pattern != detector.PatternSwiss {
		t.Errorf("pattern = %s, want SWISS", group.Pattern)
	}
	if group.ValidationStatus != detector.StatusValid {
		t.Errorf("status = %s, want valid", group.ValidationStatus)
	}
	if group.Text != text {
		t.Errorf("group text = %q, want full span", group.Text)
	}
	for _, member := range group.Components {
		if !member.Linked || member.LinkedToGroupID != group.ID {
			t.Errorf("component %s not stamped with group id", member.Text)
		}
	}
	// Originals must stay untouched: linking copies, never aliases.
	for _, original := range comps {
		if original.Linked {
			t.Errorf("original component %s was mutated", original.Text)
		}
	}
	if len(result.Unlinked) != 0 {
		t.Errorf("unexpected unlinked components: %d", len(result.Unlinked))
	}
}

func TestLinkLeavesIsolatedComponentUnlinked(t *testing.T) {
	text := "Zürich" + strings.Repeat(" ", 200) + "Bahnhofstrasse 10, 8001 Zürich"
	comps := []detector.AddressComponent{
		comp(detector.CompCity, "Zürich", 0),
		comp(detector.CompStreetName, "Bahnhofstrasse", 207),
		comp(detector.CompStreetNumber, "10", 222),
		comp(detector.CompPostalCode, "8001", 226),
		{ID: "city2", Type: detector.CompCity, Text: "Zürich", Start: 231, End: 238},
	}

	result := NewLinker().Link(text, comps)
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	if len(result.Unlinked) != 1 || result.Unlinked[0].Start != 0 {
		t.Errorf("expected the isolated leading city to stay unlinked")
	}
}
