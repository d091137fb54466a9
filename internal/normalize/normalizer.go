// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package normalize canonicalizes document text before detection and keeps
// an index map so entity spans found in the normalized text can be translated
// back to original-document offsets.
package normalize

import "strings"

// Result is the output of one Normalize call. StartMap[i] is the original
// offset of the first byte consumed to produce normalized byte i; EndMap[i]
// is the original offset just past the last byte consumed for it. Both have
// exactly len(NormalizedText) entries.
type Result struct {
	NormalizedText string
	StartMap       []int
	EndMap         []int
}

// obfuscation replacements applied during normalization. Longer forms are
// listed first so they win over their substrings.
var replacements = []struct {
	from string
	to   string
}{
	{" (at) ", "@"},
	{" [at] ", "@"},
	{"(at)", "@"},
	{"[at]", "@"},
	{" (dot) ", "."},
	{" [dot] ", "."},
	{"(dot)", "."},
	{"[dot]", "."},
}

// Normalize canonicalizes whitespace and common obfuscation patterns:
// CRLF/CR become LF, non-breaking spaces become spaces, runs of spaces and
// tabs collapse to one space, and spelled-out email obfuscations collapse
// to their literal characters. The transform is pure; callers translate
// spans back through MapSpan.
func Normalize(text string) Result {
	var sb strings.Builder
	sb.Grow(len(text))
	startMap := make([]int, 0, len(text))
	endMap := make([]int, 0, len(text))

	emit := func(s string, origStart, origEnd int) {
		for j := 0; j < len(s); j++ {
			startMap = append(startMap, origStart)
			endMap = append(endMap, origEnd)
		}
		sb.WriteString(s)
	}

	i := 0
	for i < len(text) {
		// Obfuscation patterns first.
		if to, n := matchReplacement(text[i:]); n > 0 {
			emit(to, i, i+n)
			i += n
			continue
		}

		c := text[i]
		switch {
		case c == '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				emit("\n", i, i+2)
				i += 2
			} else {
				emit("\n", i, i+1)
				i++
			}
		case c == 0xc2 && i+1 < len(text) && text[i+1] == 0xa0:
			// U+00A0 non-breaking space
			emit(" ", i, i+2)
			i += 2
		case c == ' ' || c == '\t':
			j := i
			for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
				j++
			}
			emit(" ", i, j)
			i = j
		default:
			emit(string(c), i, i+1)
			i++
		}
	}

	return Result{
		NormalizedText: sb.String(),
		StartMap:       startMap,
		EndMap:         endMap,
	}
}

func matchReplacement(s string) (string, int) {
	for _, r := range replacements {
		if len(s) >= len(r.from) && strings.EqualFold(s[:len(r.from)], r.from) {
			return r.to, len(r.from)
		}
	}
	return "", 0
}

// MapSpan translates a half-open span in the normalized text back to
// original-document coordinates. The second return value is false when the
// span does not fit the index map; callers must then drop the entity rather
// than guess.
func (r Result) MapSpan(start, end int) (int, int, bool) {
	if start < 0 || end <= start || end > len(r.StartMap) {
		return 0, 0, false
	}
	return r.StartMap[start], r.EndMap[end-1], true
}
