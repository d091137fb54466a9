// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package preprocess turns supported file formats into plain text the
// detection pipeline can scan. Plain text extraction only; format
// conversion and layout reconstruction are out of scope.
package preprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor extracts plain text from one file format.
type Extractor interface {
	// CanHandle reports whether the extractor supports the file.
	CanHandle(path string) bool
	// ExtractText returns the file's plain text.
	ExtractText(path string) (string, error)
}

// Registry dispatches a file to the first extractor that handles it.
type Registry struct {
	extractors []Extractor
}

// NewRegistry returns a registry with the standard extractors.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			&PDFExtractor{},
			&XLSXExtractor{},
			&PlainTextExtractor{},
		},
	}
}

// ExtractText extracts text from path via the first matching extractor.
func (r *Registry) ExtractText(path string) (string, error) {
	for _, ex := range r.extractors {
		if ex.CanHandle(path) {
			return ex.ExtractText(path)
		}
	}
	return "", fmt.Errorf("unsupported file type: %s", path)
}

// PlainTextExtractor reads text-like files as-is.
type PlainTextExtractor struct{}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".log": true,
	".json": true, ".xml": true, ".html": true, ".eml": true,
}

// CanHandle accepts known text extensions.
func (e *PlainTextExtractor) CanHandle(path string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}

// ExtractText reads the whole file.
func (e *PlainTextExtractor) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
