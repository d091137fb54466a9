// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlainTextExtraction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.txt")
	content := "Sehr geehrter Herr Muster\nIBAN CH93 0076 2011 6238 5295 7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewRegistry().ExtractText(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != content {
		t.Errorf("extracted text differs from file content")
	}
}

func TestRegistryRejectsUnknownFormat(t *testing.T) {
	if _, err := NewRegistry().ExtractText("scan.exe"); err == nil {
		t.Error("unsupported extension accepted")
	}
}

func TestCanHandleByExtension(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"a.txt", true},
		{"a.CSV", true},
		{"a.eml", true},
		{"a.pdf", false},
		{"a", false},
	}
	plain := &PlainTextExtractor{}
	for _, tc := range cases {
		if got := plain.CanHandle(tc.path); got != tc.want {
			t.Errorf("CanHandle(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}

	if !(&PDFExtractor{}).CanHandle("doc.pdf") {
		t.Error("PDF extractor rejects .pdf")
	}
	if !(&XLSXExtractor{}).CanHandle("sheet.xlsx") {
		t.Error("XLSX extractor rejects .xlsx")
	}
}
