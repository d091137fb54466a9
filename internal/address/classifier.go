// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package address labels address component fragments, links them into
// grouped addresses by spatial proximity, and scores the groupings.
package address

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"piiscan/internal/detector"
)

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Classifier labels text fragments as address component types. It is
// deliberately dumb about grouping; the Linker decides what belongs
// together.
type Classifier struct {
	streetDE   *regexp.Regexp
	streetFR   *regexp.Regexp
	postalCode *regexp.Regexp
	cityWord   *regexp.Regexp
	poBox      *regexp.Regexp
}

// NewClassifier compiles the component patterns.
func NewClassifier() *Classifier {
	return &Classifier{
		// German/Swiss style: "Bahnhofstrasse 10", "Untere Gasse 4a"
		streetDE: regexp.MustCompile(`([A-ZÄÖÜ][\p{L}]*(?:strasse|straße|gasse|weg|platz|allee|ring|halde|rain|matte)|[A-ZÄÖÜ][\p{L}]+(?:er)? (?:Strasse|Straße|Gasse|Weg|Platz|Allee))[ ]?(\d+[a-zA-Z]?)?`),
		// French style: "12 rue du Rhône", "avenue de la Gare 3"
		streetFR: regexp.MustCompile(`(?:(\d+[a-z]?),? )?((?:[Rr]ue|[Aa]venue|[Cc]hemin|[Rr]oute|[Pp]lace|[Bb]oulevard|[Qq]uai|[Vv]ia) (?:de la |de |du |des |d')?[A-ZÄÖÜ][\p{L}\- ]+?)(?: (\d+[a-z]?))?(?:[,\n]|$)`),
		postalCode: regexp.MustCompile(`\b(?:CH-|FL-|D-|A-|F-|I-)?(\d{4,5})\b`),
		cityWord:   regexp.MustCompile(`\b[A-ZÄÖÜ][\p{L}]+(?:[\- ][\p{L}]+)*\b`),
		poBox:      regexp.MustCompile(`\b(?:Postfach|Case postale|Casella postale|P\.?O\.? Box)[ ]?\d*\b`),
	}
}

func newComponent(t detector.ComponentType, text string, start, end int, confidence float64) detector.AddressComponent {
	return detector.AddressComponent{
		ID:         uuid.NewString(),
		Type:       t,
		Text:       text,
		Start:      start,
		End:        end,
		Confidence: confidence,
	}
}

// Classify scans text and returns labeled address components ordered by
// start offset. Components may be dense or sparse; no grouping happens here.
func (c *Classifier) Classify(text string) []detector.AddressComponent {
	var comps []detector.AddressComponent
	taken := make([]bool, len(text))

	claim := func(start, end int) bool {
		for i := start; i < end; i++ {
			if taken[i] {
				return false
			}
		}
		for i := start; i < end; i++ {
			taken[i] = true
		}
		return true
	}

	// Streets first so street words are not later misread as city names.
	for _, loc := range c.streetDE.FindAllStringSubmatchIndex(text, -1) {
		nameStart, nameEnd := loc[2], loc[3]
		if nameStart < 0 || !claim(nameStart, nameEnd) {
			continue
		}
		comps = append(comps, newComponent(detector.CompStreetName, text[nameStart:nameEnd], nameStart, nameEnd, 0.85))
		if numStart, numEnd := loc[4], loc[5]; numStart >= 0 && claim(numStart, numEnd) {
			comps = append(comps, newComponent(detector.CompStreetNumber, text[numStart:numEnd], numStart, numEnd, 0.8))
		}
	}
	for _, loc := range c.streetFR.FindAllStringSubmatchIndex(text, -1) {
		nameStart, nameEnd := loc[4], loc[5]
		if nameStart < 0 || !claim(nameStart, nameEnd) {
			continue
		}
		comps = append(comps, newComponent(detector.CompStreetName, text[nameStart:nameEnd], nameStart, nameEnd, 0.8))
		for _, g := range []int{1, 3} {
			if numStart, numEnd := loc[2*g], loc[2*g+1]; numStart >= 0 && claim(numStart, numEnd) {
				comps = append(comps, newComponent(detector.CompStreetNumber, text[numStart:numEnd], numStart, numEnd, 0.75))
				break
			}
		}
	}

	for _, loc := range c.poBox.FindAllStringIndex(text, -1) {
		if claim(loc[0], loc[1]) {
			comps = append(comps, newComponent(detector.CompStreetName, text[loc[0]:loc[1]], loc[0], loc[1], 0.8))
		}
	}

	for _, loc := range c.postalCode.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		code := text[loc[2]:loc[3]]
		if len(code) == 4 && !validNPARange(code) {
			continue
		}
		if !claim(start, end) {
			continue
		}
		conf := 0.7
		if _, ok := LookupPostalCode(code); ok {
			conf = 0.9
		}
		comps = append(comps, newComponent(detector.CompPostalCode, text[start:end], start, end, conf))
	}

	// Countries and regions before generic city words.
	for _, loc := range c.cityWord.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		key := normalizeKey(word)
		switch {
		case countryNames[key] != "":
			if claim(loc[0], loc[1]) {
				comps = append(comps, newComponent(detector.CompCountry, word, loc[0], loc[1], 0.9))
			}
		case IsKnownCity(key):
			if claim(loc[0], loc[1]) {
				comps = append(comps, newComponent(detector.CompCity, word, loc[0], loc[1], 0.85))
			}
		case cantonNames[key] && strings.Contains(strings.ToLower(safeSlice(text, loc[0]-7, loc[0])), "kanton"):
			if claim(loc[0], loc[1]) {
				comps = append(comps, newComponent(detector.CompRegion, word, loc[0], loc[1], 0.7))
			}
		}
	}

	sortComponents(comps)
	return comps
}

func validNPARange(code string) bool {
	return code >= "1000" && code <= "9999"
}

func safeSlice(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ""
	}
	return text[start:end]
}

func sortComponents(comps []detector.AddressComponent) {
	sort.SliceStable(comps, func(i, j int) bool {
		return comps[i].Start < comps[j].Start
	})
}
