// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package normalize

import (
	"strings"
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	original := "Zeile eins\r\nZeile zwei"
	result := Normalize(original)

	if result.NormalizedText != "Zeile eins\nZeile zwei" {
		t.Fatalf("normalized = %q", result.NormalizedText)
	}

	// "zwei" in the normalized text must map back past the CRLF pair.
	start := strings.Index(result.NormalizedText, "zwei")
	origStart, origEnd, ok := result.MapSpan(start, start+4)
	if !ok {
		t.Fatal("MapSpan failed on a valid span")
	}
	if original[origStart:origEnd] != "zwei" {
		t.Errorf("mapped span [%d:%d) = %q, want %q", origStart, origEnd, original[origStart:origEnd], "zwei")
	}
}

func TestNormalizeCollapsesWhitespaceRuns(t *testing.T) {
	result := Normalize("a \t  b c")
	if result.NormalizedText != "a b c" {
		t.Errorf("normalized = %q, want %q", result.NormalizedText, "a b c")
	}
}

func TestNormalizeDeobfuscatesEmail(t *testing.T) {
	original := "john (at) example (dot) com"
	result := Normalize(original)

	if result.NormalizedText != "john@example.com" {
		t.Fatalf("normalized = %q", result.NormalizedText)
	}

	// The whole email maps back to the whole obfuscated original.
	origStart, origEnd, ok := result.MapSpan(0, len(result.NormalizedText))
	if !ok {
		t.Fatal("MapSpan failed on full span")
	}
	if origStart != 0 || origEnd != len(original) {
		t.Errorf("full span mapped to [%d:%d), want [0:%d)", origStart, origEnd, len(original))
	}
}

func TestNormalizeBracketObfuscation(t *testing.T) {
	result := Normalize("info[at]firma[dot]ch")
	if result.NormalizedText != "info@firma.ch" {
		t.Errorf("normalized = %q", result.NormalizedText)
	}
}

func TestMapSpanRejectsInvalidSpans(t *testing.T) {
	result := Normalize("abc")
	cases := []struct{ start, end int }{
		{-1, 2},
		{2, 2},
		{3, 2},
		{0, 4},
	}
	for _, tc := range cases {
		if _, _, ok := result.MapSpan(tc.start, tc.end); ok {
			t.Errorf("MapSpan(%d,%d) accepted an invalid span", tc.start, tc.end)
		}
	}
}

func TestNormalizeMapsEveryByte(t *testing.T) {
	original := "a  b\r\nc d (at) e"
	result := Normalize(original)

	if len(result.StartMap) != len(result.NormalizedText) || len(result.EndMap) != len(result.NormalizedText) {
		t.Fatalf("index maps have %d/%d entries for %d bytes",
			len(result.StartMap), len(result.EndMap), len(result.NormalizedText))
	}
	for i := range result.NormalizedText {
		if result.StartMap[i] >= result.EndMap[i] {
			t.Errorf("byte %d has empty original range [%d:%d)", i, result.StartMap[i], result.EndMap[i])
		}
		if result.EndMap[i] > len(original) {
			t.Errorf("byte %d maps past the original text", i)
		}
	}
}
