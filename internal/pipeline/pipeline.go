// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline sequences the detection passes over one shared entity
// list: normalization, language detection, registered passes in order,
// offset repair, deduplication and review flagging.
package pipeline

import (
	"fmt"
	"sort"
	"time"

	"piiscan/internal/detector"
	"piiscan/internal/normalize"
	"piiscan/internal/observability"
)

// Pass is one stage of the pipeline. Execute receives the working text,
// the entity list as it stands, and the per-document context, and returns
// a replacement list. Passes may add, transform or remove entities; the
// orchestrator assumes nothing about append-only behavior.
type Pass interface {
	Name() string
	Execute(text string, entities []detector.Entity, ctx *detector.PipelineContext) ([]detector.Entity, error)
}

// Config holds the knobs the orchestrator itself consumes. Per-pass
// settings (ML threshold, context window, deny list) are applied where the
// passes are built, not here.
type Config struct {
	AutoAnonymizeThreshold float64
	EnableNormalization    bool
	DefaultLanguage        string
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		AutoAnonymizeThreshold: 0.6,
		EnableNormalization:    true,
		DefaultLanguage:        "de",
	}
}

type registeredPass struct {
	pass    Pass
	order   int
	seq     int
	enabled bool
}

// Pipeline owns the ordered pass registry. One Pipeline may process many
// documents; each Process call gets its own PipelineContext and entity
// list, so independent documents can run on separate goroutines.
type Pipeline struct {
	cfg      Config
	observer *observability.Observer
	passes   []registeredPass
	nextSeq  int
}

// New creates a pipeline with no passes registered.
func New(cfg Config, observer *observability.Observer) *Pipeline {
	return &Pipeline{cfg: cfg, observer: observer}
}

// Register adds a pass at the given order. Equal orders keep registration
// order. Disabled passes stay registered but are skipped.
func (p *Pipeline) Register(pass Pass, order int, enabled bool) {
	p.passes = append(p.passes, registeredPass{
		pass:    pass,
		order:   order,
		seq:     p.nextSeq,
		enabled: enabled,
	})
	p.nextSeq++
	sort.SliceStable(p.passes, func(i, j int) bool {
		if p.passes[i].order != p.passes[j].order {
			return p.passes[i].order < p.passes[j].order
		}
		return p.passes[i].seq < p.passes[j].seq
	})
}

// SetEnabled toggles a registered pass by name.
func (p *Pipeline) SetEnabled(name string, enabled bool) {
	for i := range p.passes {
		if p.passes[i].pass.Name() == name {
			p.passes[i].enabled = enabled
		}
	}
}

// Process runs the full pipeline over one document. It always returns a
// result; individual pass failures are recorded in the metadata and do not
// abort the run.
func (p *Pipeline) Process(text, documentID, language string) detector.DetectionResult {
	started := time.Now()

	original := text
	working := text
	var norm *normalize.Result
	if p.cfg.EnableNormalization {
		r := normalize.Normalize(original)
		norm = &r
		working = r.NormalizedText
	}

	if language == "" {
		language = DetectLanguage(working, p.cfg.DefaultLanguage)
	}
	ctx := detector.NewPipelineContext(documentID, language)

	var entities []detector.Entity
	var passResults []detector.PassResult
	for _, rp := range p.passes {
		if !rp.enabled {
			continue
		}
		result := p.runPass(rp.pass, working, entities, ctx)
		passResults = append(passResults, result.stats)
		ctx.PassStats[rp.pass.Name()] = result.stats
		if !result.stats.Failed {
			entities = result.entities
		}
	}

	if norm != nil {
		entities = repairOffsets(entities, original, norm, p.observer, ctx.DocumentID)
	}

	entities = Dedupe(entities)
	flagged := p.flagForReview(entities)

	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Start < entities[j].Start
	})

	counts := make(map[detector.EntityType]int)
	for _, e := range entities {
		counts[e.Type]++
	}

	docType := ctx.DocumentType
	if docType == "" {
		docType = "document"
	}

	return detector.DetectionResult{
		DocumentID:   ctx.DocumentID,
		DocumentType: docType,
		Language:     language,
		Entities:     entities,
		Metadata: detector.ResultMetadata{
			TotalDuration: time.Since(started),
			PassResults:   passResults,
			EntityCounts:  counts,
			FlaggedCount:  flagged,
			DenyFiltered:  ctx.DenyFiltered,
		},
	}
}

type passOutcome struct {
	entities []detector.Entity
	stats    detector.PassResult
}

// runPass executes one pass with panic isolation. A failing pass is logged
// and skipped; the pipeline continues on the list as it stood before.
func (p *Pipeline) runPass(pass Pass, text string, entities []detector.Entity, ctx *detector.PipelineContext) (outcome passOutcome) {
	start := time.Now()
	before := idSet(entities)
	outcome.entities = entities
	outcome.stats = detector.PassResult{Name: pass.Name()}

	defer func() {
		if r := recover(); r != nil {
			outcome.entities = entities
			outcome.stats.Failed = true
			outcome.stats.Error = fmt.Sprintf("panic: %v", r)
		}
		outcome.stats.Duration = time.Since(start)
		if !outcome.stats.Failed {
			after := idSet(outcome.entities)
			for id := range after {
				if !before[id] {
					outcome.stats.EntitiesAdded++
				}
			}
			for id := range before {
				if !after[id] {
					outcome.stats.EntitiesRemoved++
				}
			}
		}
		p.observer.Log(observability.Record{
			Component:  "pipeline",
			Operation:  "pass:" + pass.Name(),
			DocumentID: ctx.DocumentID,
			DurationMs: outcome.stats.Duration.Milliseconds(),
			Success:    !outcome.stats.Failed,
			Error:      outcome.stats.Error,
			MatchCount: len(outcome.entities),
		})
	}()

	result, err := pass.Execute(text, entities, ctx)
	if err != nil {
		outcome.stats.Failed = true
		outcome.stats.Error = err.Error()
		return outcome
	}
	outcome.entities = result
	return outcome
}

func idSet(entities []detector.Entity) map[string]bool {
	set := make(map[string]bool, len(entities))
	for _, e := range entities {
		set[e.ID] = true
	}
	return set
}

// repairOffsets remaps every entity span from normalized-text coordinates
// back to the original document and re-slices the text from the original
// string. Trusting a pass-reported string after normalization would let a
// drifted span leak the wrong substring; entities the index map cannot
// account for are dropped.
func repairOffsets(entities []detector.Entity, original string, norm *normalize.Result, observer *observability.Observer, documentID string) []detector.Entity {
	repaired := entities[:0]
	for _, e := range entities {
		start, end, ok := norm.MapSpan(e.Start, e.End)
		if !ok || start < 0 || end > len(original) || start >= end {
			observer.Log(observability.Record{
				Component:  "pipeline",
				Operation:  "offset_repair_drop",
				DocumentID: documentID,
				Success:    false,
				Error:      fmt.Sprintf("span [%d,%d) of %s outside index map", e.Start, e.End, e.Type),
			})
			continue
		}
		e.Start, e.End = start, end
		e.Text = original[start:end]
		repaired = append(repaired, e)
	}
	return repaired
}

// Dedupe resolves overlapping entities with a greedy interval sweep: sort
// by start, longer span first on ties, then walk keeping a last-accepted
// cursor. An overlapping entity is dropped unless its confidence strictly
// exceeds the accepted one, in which case it replaces it. Greedy rather
// than globally optimal, deliberately, for speed and determinism.
func Dedupe(entities []detector.Entity) []detector.Entity {
	if len(entities) < 2 {
		return entities
	}
	sorted := make([]detector.Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return (sorted[i].End - sorted[i].Start) > (sorted[j].End - sorted[j].Start)
	})

	out := sorted[:0]
	for _, e := range sorted {
		if len(out) == 0 {
			out = append(out, e)
			continue
		}
		last := &out[len(out)-1]
		if e.Start >= last.End {
			out = append(out, e)
			continue
		}
		// Identical span and type found by both detector families: keep
		// the stronger entity but record the agreement.
		if e.Start == last.Start && e.End == last.End && e.Type == last.Type && e.Source != last.Source {
			if e.Confidence > last.Confidence {
				e.Source = detector.SourceBoth
				*last = e
			} else {
				last.Source = detector.SourceBoth
			}
			continue
		}
		if e.Confidence > last.Confidence {
			*last = e
		}
	}
	return out
}

// flagForReview marks entities below the auto-anonymize threshold and
// derives Selected for the rest. Flag condition is strict less-than; an
// entity already flagged by an earlier stage stays flagged.
func (p *Pipeline) flagForReview(entities []detector.Entity) int {
	flagged := 0
	for i := range entities {
		if entities[i].Confidence < p.cfg.AutoAnonymizeThreshold {
			entities[i].FlaggedForReview = true
		}
		entities[i].Selected = entities[i].Confidence >= p.cfg.AutoAnonymizeThreshold
		if entities[i].FlaggedForReview {
			flagged++
		}
	}
	return flagged
}
