// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor extracts cell text from spreadsheet files, one row per
// line with tab-separated cells, so downstream offsets are stable and
// line-oriented context heuristics keep working.
type XLSXExtractor struct{}

// CanHandle accepts .xlsx and .xlsm files.
func (e *XLSXExtractor) CanHandle(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// ExtractText reads every sheet row by row.
func (e *XLSXExtractor) ExtractText(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no cell text in %s", path)
	}
	return sb.String(), nil
}
