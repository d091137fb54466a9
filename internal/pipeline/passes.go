// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"strings"

	"piiscan/internal/address"
	"piiscan/internal/detector"
	"piiscan/internal/invoice"
	"piiscan/internal/patterns"
)

// PatternPass runs the rule-based pattern/checksum engine and appends its
// matches to the entity list.
type PatternPass struct {
	Engine *patterns.Engine
}

func (p *PatternPass) Name() string { return "patterns" }

func (p *PatternPass) Execute(text string, entities []detector.Entity, _ *detector.PipelineContext) ([]detector.Entity, error) {
	matches := p.Engine.Detect(text)
	out := make([]detector.Entity, len(entities), len(entities)+len(matches))
	copy(out, entities)
	for _, m := range matches {
		ent := detector.NewEntity(m.Type, m.Text, m.Start, m.End, patterns.BaseConfidence(m.Type), detector.SourceRule)
		ent.Meta.RuleName = m.Rule
		out = append(out, ent)
	}
	return out, nil
}

// AddressPass classifies address components, links them into grouped
// addresses and scores the groups. Each accepted group becomes one ADDRESS
// entity; components that link nowhere produce nothing on their own.
type AddressPass struct {
	Classifier *address.Classifier
	Linker     *address.Linker
	Scorer     *address.Scorer
}

// NewAddressPass builds the pass with default subcomponents.
func NewAddressPass() *AddressPass {
	return &AddressPass{
		Classifier: address.NewClassifier(),
		Linker:     address.NewLinker(),
		Scorer:     address.NewScorer(),
	}
}

func (p *AddressPass) Name() string { return "address" }

func (p *AddressPass) Execute(text string, entities []detector.Entity, _ *detector.PipelineContext) ([]detector.Entity, error) {
	comps := p.Classifier.Classify(text)
	if len(comps) == 0 {
		return entities, nil
	}
	linked := p.Linker.Link(text, comps)

	out := make([]detector.Entity, len(entities), len(entities)+len(linked.Groups))
	copy(out, entities)
	for _, group := range linked.Groups {
		scored := p.Scorer.Score(group)
		ent := detector.NewEntity(detector.TypeAddress, group.Text, group.Start, group.End, scored.Confidence, detector.SourceLinked)
		ent.FlaggedForReview = scored.FlaggedForReview
		ent.Meta.GroupID = group.ID
		ent.Meta.MatchedPattern = string(group.Pattern)
		ent.Meta.ScoreFactors = scored.Factors
		ent.Meta.AutoAnonymize = scored.AutoAnonymize
		out = append(out, ent)
	}
	return out, nil
}

// InvoicePass layers the invoice rule extension over the list. Its results
// merge by the shared overlap rule: higher confidence wins.
type InvoicePass struct {
	Extractor *invoice.Extractor
}

func (p *InvoicePass) Name() string { return "invoice" }

var invoiceMarkers = []string{"rechnung", "facture", "invoice"}

func (p *InvoicePass) Execute(text string, entities []detector.Entity, ctx *detector.PipelineContext) ([]detector.Entity, error) {
	extracted := p.Extractor.Extract(text)
	if len(extracted) > 0 && ctx.DocumentType == "" {
		lower := strings.ToLower(text)
		for _, marker := range invoiceMarkers {
			if strings.Contains(lower, marker) {
				ctx.DocumentType = "invoice"
				break
			}
		}
	}
	return invoice.Merge(entities, extracted), nil
}

// EntityDetector is the collaborator contract for an external model-backed
// detector. It must yield entities in the same shape rule passes produce,
// with spans into the text it was handed.
type EntityDetector func(text, language string) ([]detector.Entity, error)

// MLPass adapts an external model-backed detector into a pipeline pass.
// Predictions below the configured threshold are discarded.
type MLPass struct {
	Detector            EntityDetector
	ConfidenceThreshold float64
}

func (p *MLPass) Name() string { return "ml" }

func (p *MLPass) Execute(text string, entities []detector.Entity, ctx *detector.PipelineContext) ([]detector.Entity, error) {
	predicted, err := p.Detector(text, ctx.Language)
	if err != nil {
		return nil, err
	}
	out := make([]detector.Entity, len(entities), len(entities)+len(predicted))
	copy(out, entities)
	for _, ent := range predicted {
		if ent.Confidence < p.ConfidenceThreshold {
			continue
		}
		ent.Source = detector.SourceML
		out = append(out, ent)
	}
	return out, nil
}

// DenyListPass removes entities whose exact text is on the configured
// deny list (terms the operator never wants anonymized, such as the
// organization's own name). Removed counts land in the result metadata.
type DenyListPass struct {
	Terms map[string]bool
}

// NewDenyListPass builds the pass from a list of terms, keyed lowercase.
func NewDenyListPass(terms []string) *DenyListPass {
	m := make(map[string]bool, len(terms))
	for _, t := range terms {
		m[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &DenyListPass{Terms: m}
}

func (p *DenyListPass) Name() string { return "denylist" }

func (p *DenyListPass) Execute(_ string, entities []detector.Entity, ctx *detector.PipelineContext) ([]detector.Entity, error) {
	if len(p.Terms) == 0 {
		return entities, nil
	}
	out := entities[:0:0]
	for _, ent := range entities {
		if p.Terms[strings.ToLower(ent.Text)] {
			ctx.DenyFiltered++
			continue
		}
		out = append(out, ent)
	}
	return out, nil
}
