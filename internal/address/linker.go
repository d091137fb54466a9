// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"piiscan/internal/detector"
	"piiscan/internal/observability"
)

// Linker groups classified components into candidate addresses by
// character proximity, classifies each group's pattern, and assigns an
// additive confidence.
type Linker struct {
	// MaxGap is the allowed character distance between consecutive
	// components; MaxGapNewline applies instead when a line break sits
	// between them, since addresses routinely wrap.
	MaxGap        int
	MaxGapNewline int

	observer *observability.Observer
}

// NewLinker returns a linker with the standard 50/100 thresholds.
func NewLinker() *Linker {
	return &Linker{MaxGap: 50, MaxGapNewline: 100}
}

// SetObserver attaches the observability component.
func (l *Linker) SetObserver(o *observability.Observer) {
	l.observer = o
}

// LinkResult is the output of one Link call. Components absorbed into a
// group are copied and tagged; the originals in Unlinked stay untouched.
type LinkResult struct {
	Groups   []detector.GroupedAddress
	Unlinked []detector.AddressComponent
}

// minComponents is the smallest component count that can realize each
// pattern; the confidence formula rewards anything beyond it.
var minComponents = map[detector.AddressPattern]int{
	detector.PatternEU:          4,
	detector.PatternSwiss:       3,
	detector.PatternAlternative: 3,
	detector.PatternPartial:     2,
	detector.PatternNone:        1,
}

// GroupByProximity sorts components by start offset and sweeps left to
// right, accumulating a group while the gap to the previous component
// stays within threshold. A group is closed (and kept only with two or
// more members) when the gap is exceeded.
func (l *Linker) GroupByProximity(text string, comps []detector.AddressComponent) [][]detector.AddressComponent {
	if len(comps) == 0 {
		return nil
	}
	sorted := make([]detector.AddressComponent, len(comps))
	copy(sorted, comps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var groups [][]detector.AddressComponent
	current := []detector.AddressComponent{sorted[0]}
	for _, comp := range sorted[1:] {
		prev := current[len(current)-1]
		gap := comp.Start - prev.End
		limit := l.MaxGap
		if strings.Contains(safeSlice(text, prev.End, comp.Start), "\n") {
			limit = l.MaxGapNewline
		}
		if gap <= limit {
			current = append(current, comp)
			continue
		}
		if len(current) >= 2 {
			groups = append(groups, current)
		}
		current = []detector.AddressComponent{comp}
	}
	if len(current) >= 2 {
		groups = append(groups, current)
	}
	return groups
}

// DetectPattern classifies a component group. Five terminal states keyed
// on component-type presence and the relative text order of street and
// postal code:
//
//	EU          street + postal + city + country
//	SWISS       street + postal + city, street before postal
//	ALTERNATIVE street + postal + city, postal before street
//	PARTIAL     (street or number) + (postal or city)
//	NONE        everything else
func DetectPattern(group []detector.AddressComponent) detector.AddressPattern {
	var streetPos, postalPos = -1, -1
	var hasStreet, hasNumber, hasPostal, hasCity, hasCountry bool
	for _, comp := range group {
		switch comp.Type {
		case detector.CompStreetName:
			hasStreet = true
			if streetPos < 0 {
				streetPos = comp.Start
			}
		case detector.CompStreetNumber:
			hasNumber = true
		case detector.CompPostalCode:
			hasPostal = true
			if postalPos < 0 {
				postalPos = comp.Start
			}
		case detector.CompCity:
			hasCity = true
		case detector.CompCountry:
			hasCountry = true
		}
	}

	switch {
	case hasStreet && hasPostal && hasCity && hasCountry:
		return detector.PatternEU
	case hasStreet && hasPostal && hasCity && streetPos < postalPos:
		return detector.PatternSwiss
	case hasStreet && hasPostal && hasCity:
		return detector.PatternAlternative
	case (hasStreet || hasNumber) && (hasPostal || hasCity):
		return detector.PatternPartial
	default:
		return detector.PatternNone
	}
}

// patternBase is the starting confidence per pattern.
var patternBase = map[detector.AddressPattern]float64{
	detector.PatternSwiss:       0.85,
	detector.PatternEU:          0.85,
	detector.PatternAlternative: 0.75,
	detector.PatternPartial:     0.5,
	detector.PatternNone:        0.3,
}

// CalculateConfidence scores a group additively: pattern base, a small
// reward per component beyond the pattern's minimum, and bonuses for the
// street+number and postal+city pairings. Capped at 1.0 so every factor
// stays independently auditable.
func CalculateConfidence(group []detector.AddressComponent, pattern detector.AddressPattern) float64 {
	confidence := patternBase[pattern]
	if extra := len(group) - minComponents[pattern]; extra > 0 {
		confidence += 0.02 * float64(extra)
	}

	var hasStreet, hasNumber, hasPostal, hasCity bool
	for _, comp := range group {
		switch comp.Type {
		case detector.CompStreetName:
			hasStreet = true
		case detector.CompStreetNumber:
			hasNumber = true
		case detector.CompPostalCode:
			hasPostal = true
		case detector.CompCity:
			hasCity = true
		}
	}
	if hasStreet && hasNumber {
		confidence += 0.05
	}
	if hasPostal && hasCity {
		confidence += 0.05
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// statusFor derives the validation status from the pattern.
func statusFor(pattern detector.AddressPattern) detector.ValidationStatus {
	switch pattern {
	case detector.PatternSwiss, detector.PatternEU:
		return detector.StatusValid
	case detector.PatternAlternative:
		return detector.StatusPartial
	default:
		return detector.StatusUncertain
	}
}

// Link runs the full grouping: proximity sweep, pattern detection,
// scoring, and GroupedAddress assembly. Components absorbed into a group
// are copied and stamped with the group id; everything else comes back in
// Unlinked.
func (l *Linker) Link(text string, comps []detector.AddressComponent) LinkResult {
	var finish func(bool, map[string]any)
	if l.observer != nil {
		finish = l.observer.StartTiming("address_linker", "link", "")
	}

	groups := l.GroupByProximity(text, comps)
	linked := make(map[string]bool)
	var result LinkResult

	for _, group := range groups {
		pattern := DetectPattern(group)
		if pattern == detector.PatternNone {
			continue
		}
		groupID := uuid.NewString()
		start, end := group[0].Start, group[0].End
		members := make([]detector.AddressComponent, 0, len(group))
		var breakdown detector.ComponentBreakdown
		for _, comp := range group {
			if comp.Start < start {
				start = comp.Start
			}
			if comp.End > end {
				end = comp.End
			}
			member := comp // copy, never alias
			member.Linked = true
			member.LinkedToGroupID = groupID
			members = append(members, member)
			linked[comp.ID] = true

			m := members[len(members)-1]
			switch comp.Type {
			case detector.CompStreetName:
				if breakdown.Street == nil {
					breakdown.Street = &m
				}
			case detector.CompStreetNumber:
				if breakdown.Number == nil {
					breakdown.Number = &m
				}
			case detector.CompPostalCode:
				if breakdown.Postal == nil {
					breakdown.Postal = &m
				}
			case detector.CompCity:
				if breakdown.City == nil {
					breakdown.City = &m
				}
			case detector.CompCountry:
				if breakdown.Country == nil {
					breakdown.Country = &m
				}
			}
		}

		result.Groups = append(result.Groups, detector.GroupedAddress{
			ID:               groupID,
			Components:       members,
			Breakdown:        breakdown,
			Pattern:          pattern,
			Text:             safeSlice(text, start, end),
			Start:            start,
			End:              end,
			Confidence:       CalculateConfidence(group, pattern),
			ValidationStatus: statusFor(pattern),
		})
	}

	for _, comp := range comps {
		if !linked[comp.ID] {
			result.Unlinked = append(result.Unlinked, comp)
		}
	}

	if finish != nil {
		finish(true, map[string]any{
			"components": len(comps),
			"groups":     len(result.Groups),
			"unlinked":   len(result.Unlinked),
		})
	}
	return result
}
