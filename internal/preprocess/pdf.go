// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts page text from PDF files.
type PDFExtractor struct{}

// CanHandle accepts .pdf files.
func (e *PDFExtractor) CanHandle(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ExtractText walks every page and concatenates its plain text. Pages that
// fail to decode are skipped; partial text beats no text for detection.
func (e *PDFExtractor) ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no extractable text in %s", path)
	}
	return sb.String(), nil
}
