// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package patterns implements the rule-based detector engine: a static
// registry of regex matchers paired with checksum or structural validators.
package patterns

import (
	"sort"

	"piiscan/internal/detector"
	"piiscan/internal/observability"
)

// Match is a raw candidate produced by one rule. Offsets are half-open
// into the text handed to Detect.
type Match struct {
	Text     string
	Type     detector.EntityType
	Rule     string
	Start    int
	End      int
	Priority int
}

// Engine runs every registered rule over a document and resolves overlaps
// between its own matches by type priority before results leave it.
type Engine struct {
	rules         []Rule
	contextWindow int
	observer      *observability.Observer
}

// NewEngine builds the engine with the default rule table.
func NewEngine() *Engine {
	return &Engine{rules: defaultRules(), contextWindow: defaultContextWindow}
}

// NewEngineWithRules builds an engine over a caller-supplied rule table.
func NewEngineWithRules(rules []Rule) *Engine {
	return &Engine{rules: rules, contextWindow: defaultContextWindow}
}

// SetContextWindow overrides the context radius handed to validators.
// Non-positive values keep the current setting.
func (e *Engine) SetContextWindow(n int) {
	if n > 0 {
		e.contextWindow = n
	}
}

// SetObserver attaches the observability component.
func (e *Engine) SetObserver(o *observability.Observer) {
	e.observer = o
}

// Detect runs all rules over text and returns validated, overlap-resolved
// matches ordered by start offset.
func (e *Engine) Detect(text string) []Match {
	var finish func(bool, map[string]any)
	if e.observer != nil {
		finish = e.observer.StartTiming("pattern_engine", "detect", "")
	}

	var candidates []Match
	for _, rule := range e.rules {
		locs := rule.Regex.FindAllStringSubmatchIndex(text, -1)
		for _, loc := range locs {
			start, end := loc[0], loc[1]
			if rule.Group > 0 {
				// Report the designated capturing group. Submatch indexes
				// are absolute within text, so no offset arithmetic against
				// the outer match is needed, but the group may be empty.
				gs, ge := loc[2*rule.Group], loc[2*rule.Group+1]
				if gs < 0 || ge <= gs {
					continue
				}
				start, end = gs, ge
			}
			candidate := text[start:end]
			ctx := RuleContext{FullText: text, Start: start, End: end, ContextWindow: e.contextWindow}
			if rule.Validate != nil && !rule.Validate(candidate, ctx) {
				continue
			}
			candidates = append(candidates, Match{
				Text:     candidate,
				Type:     rule.Type,
				Rule:     rule.Name,
				Start:    start,
				End:      end,
				Priority: typePriority[rule.Type],
			})
		}
	}

	resolved := resolveByPriority(candidates)

	if finish != nil {
		finish(true, map[string]any{
			"candidates": len(candidates),
			"matches":    len(resolved),
		})
	}
	return resolved
}

// resolveByPriority drops or evicts overlapping matches so that for any
// overlap the higher-priority type survives. Candidates are considered in
// start order with priority as the tie break.
func resolveByPriority(candidates []Match) []Match {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].Priority > candidates[j].Priority
	})

	var accepted []Match
	for _, m := range candidates {
		overlaps := false
		beatsAll := true
		for _, o := range accepted {
			if o.End > m.Start && m.End > o.Start {
				overlaps = true
				if o.Priority >= m.Priority {
					beatsAll = false
					break
				}
			}
		}
		switch {
		case !overlaps:
			accepted = append(accepted, m)
		case beatsAll:
			// Evict every overlapping lower-priority match in favor of m.
			kept := accepted[:0]
			for _, o := range accepted {
				if !(o.End > m.Start && m.End > o.Start) {
					kept = append(kept, o)
				}
			}
			accepted = append(kept, m)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}
