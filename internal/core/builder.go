// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core wires configuration, observability and the standard pass
// set into a ready-to-run pipeline. Shared by the CLI and the web server.
package core

import (
	"os"

	"piiscan/internal/address"
	"piiscan/internal/config"
	"piiscan/internal/detector"
	"piiscan/internal/invoice"
	"piiscan/internal/observability"
	"piiscan/internal/patterns"
	"piiscan/internal/pipeline"
)

// Standard pass ordering. The pattern engine runs first so later passes
// can see its entities; the deny-list filter runs last so it sees
// everything.
const (
	OrderPatterns = 10
	OrderML       = 20
	OrderAddress  = 30
	OrderInvoice  = 40
	OrderDenyList = 90
)

// BuildOptions customizes pipeline assembly.
type BuildOptions struct {
	Config *config.Config
	// MLDetector, when non-nil, is registered as the model-backed pass.
	MLDetector pipeline.EntityDetector
	Observer   *observability.Observer
}

// BuildPipeline assembles the standard pipeline from configuration:
// pattern engine, optional ML pass, address subsystem, invoice extension
// and (with extended features) the deny-list filter.
func BuildPipeline(opts BuildOptions) *pipeline.Pipeline {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	observer := opts.Observer
	if observer == nil {
		level := observability.LevelMetrics
		if cfg.Pipeline.Debug {
			level = observability.LevelDebug
		}
		observer = observability.New(level, os.Stderr)
	}

	p := pipeline.New(pipeline.Config{
		AutoAnonymizeThreshold: cfg.Pipeline.AutoAnonymizeThreshold,
		EnableNormalization:    cfg.Pipeline.EnableNormalization,
		DefaultLanguage:        cfg.Pipeline.DefaultLanguage,
	}, observer)

	enabled := func(name string) bool {
		if v, ok := cfg.Pipeline.EnabledPasses[name]; ok {
			return v
		}
		return true
	}

	engine := patterns.NewEngine()
	engine.SetContextWindow(cfg.Pipeline.ContextWindowSize)
	engine.SetObserver(observer)
	p.Register(&pipeline.PatternPass{Engine: engine}, OrderPatterns, enabled("patterns"))

	if opts.MLDetector != nil {
		p.Register(&pipeline.MLPass{
			Detector:            opts.MLDetector,
			ConfidenceThreshold: cfg.Pipeline.MLConfidenceThreshold,
		}, OrderML, enabled("ml"))
	}

	addressPass := pipeline.NewAddressPass()
	addressPass.Linker.SetObserver(observer)
	addressPass.Scorer = &address.Scorer{
		ReviewThreshold:        cfg.Address.ReviewThreshold,
		AutoAnonymizeThreshold: cfg.Address.AutoAnonymizeThreshold,
	}
	p.Register(addressPass, OrderAddress, enabled("address"))

	p.Register(&pipeline.InvoicePass{Extractor: invoice.NewExtractor()}, OrderInvoice, enabled("invoice"))

	if cfg.Pipeline.EnableExtendedFeatures {
		p.Register(pipeline.NewDenyListPass(cfg.DenyList), OrderDenyList, enabled("denylist"))
	}

	return p
}

// ScanText is the one-call convenience used by the CLI: build the standard
// pipeline and process a single document.
func ScanText(cfg *config.Config, text, documentID, language string) detector.DetectionResult {
	p := BuildPipeline(BuildOptions{Config: cfg})
	return p.Process(text, documentID, language)
}
