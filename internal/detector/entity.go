// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"time"

	"github.com/google/uuid"
)

// EntityType categorizes a detected piece of PII.
type EntityType string

const (
	TypePerson        EntityType = "PERSON"
	TypeOrg           EntityType = "ORG"
	TypeAddress       EntityType = "ADDRESS"
	TypeEmail         EntityType = "EMAIL"
	TypePhone         EntityType = "PHONE"
	TypeIBAN          EntityType = "IBAN"
	TypeBankAccount   EntityType = "BANK_ACCOUNT"
	TypeDate          EntityType = "DATE"
	TypeAmount        EntityType = "AMOUNT"
	TypeVATNumber     EntityType = "VAT_NUMBER"
	TypeUID           EntityType = "UID"
	TypeInvoiceNumber EntityType = "INVOICE_NUMBER"
	TypePaymentRef    EntityType = "PAYMENT_REF"
	TypeIDNumber      EntityType = "ID_NUMBER"
	TypeAVS           EntityType = "AVS_NUMBER"
	TypePassport      EntityType = "PASSPORT"
	TypeLicensePlate  EntityType = "LICENSE_PLATE"
	TypePostalCity    EntityType = "POSTAL_CITY"
)

// Source records which stage of the pipeline produced an entity.
type Source string

const (
	SourceML     Source = "ML"
	SourceRule   Source = "RULE"
	SourceBoth   Source = "BOTH"
	SourceLinked Source = "LINKED"
	SourceManual Source = "MANUAL"
)

// Meta carries pass-specific annotations on an entity. Fields are optional;
// a pass only sets what it knows about.
type Meta struct {
	RuleName       string        `json:"rule_name,omitempty"`
	MatchedPattern string        `json:"matched_pattern,omitempty"`
	PositionBoost  float64       `json:"position_boost,omitempty"`
	AmountValue    float64       `json:"amount_value,omitempty"`
	Currency       string        `json:"currency,omitempty"`
	ScoreFactors   []ScoreFactor `json:"score_factors,omitempty"`
	GroupID        string        `json:"group_id,omitempty"`
	AutoAnonymize  bool          `json:"auto_anonymize,omitempty"`
	DenyListed     bool          `json:"deny_listed,omitempty"`
}

// ScoreFactor is one independently weighted contribution to an address score.
type ScoreFactor struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Max   float64 `json:"max"`
}

// Entity is the universal unit of detection. Start and End are half-open
// character offsets into the original document text; Text must always equal
// originalText[Start:End] once the pipeline has finished offset repair.
type Entity struct {
	ID               string     `json:"id"`
	Type             EntityType `json:"type"`
	Text             string     `json:"text"`
	Start            int        `json:"start"`
	End              int        `json:"end"`
	Confidence       float64    `json:"confidence"`
	Source           Source     `json:"source"`
	FlaggedForReview bool       `json:"flagged_for_review"`
	Selected         bool       `json:"selected"`
	Meta             Meta       `json:"meta,omitempty"`
}

// NewEntity creates an entity with a fresh identifier.
func NewEntity(t EntityType, text string, start, end int, confidence float64, source Source) Entity {
	return Entity{
		ID:         uuid.NewString(),
		Type:       t,
		Text:       text,
		Start:      start,
		End:        end,
		Confidence: confidence,
		Source:     source,
	}
}

// Overlaps reports whether two spans share at least one character.
func (e Entity) Overlaps(other Entity) bool {
	return e.Start < other.End && other.Start < e.End
}

// ComponentType restricts address fragments to the recognized component kinds.
type ComponentType string

const (
	CompStreetName   ComponentType = "STREET_NAME"
	CompStreetNumber ComponentType = "STREET_NUMBER"
	CompPostalCode   ComponentType = "POSTAL_CODE"
	CompCity         ComponentType = "CITY"
	CompCountry      ComponentType = "COUNTRY"
	CompRegion       ComponentType = "REGION"
)

// AddressComponent is a labeled fragment of an address. It follows the same
// span contract as Entity. Linked and LinkedToGroupID are set once a linker
// absorbs the component into a GroupedAddress.
type AddressComponent struct {
	ID              string        `json:"id"`
	Type            ComponentType `json:"type"`
	Text            string        `json:"text"`
	Start           int           `json:"start"`
	End             int           `json:"end"`
	Confidence      float64       `json:"confidence"`
	Linked          bool          `json:"linked"`
	LinkedToGroupID string        `json:"linked_to_group_id,omitempty"`
}

// AddressPattern is the recognized ordering/composition of a component group.
type AddressPattern string

const (
	PatternSwiss       AddressPattern = "SWISS"
	PatternEU          AddressPattern = "EU"
	PatternAlternative AddressPattern = "ALTERNATIVE"
	PatternPartial     AddressPattern = "PARTIAL"
	PatternNone        AddressPattern = "NONE"
)

// ValidationStatus is derived deterministically from the pattern.
type ValidationStatus string

const (
	StatusValid     ValidationStatus = "valid"
	StatusPartial   ValidationStatus = "partial"
	StatusUncertain ValidationStatus = "uncertain"
)

// ComponentBreakdown records which component filled each address slot.
// Nil fields mean the slot is absent.
type ComponentBreakdown struct {
	Street  *AddressComponent `json:"street,omitempty"`
	Number  *AddressComponent `json:"number,omitempty"`
	Postal  *AddressComponent `json:"postal,omitempty"`
	City    *AddressComponent `json:"city,omitempty"`
	Country *AddressComponent `json:"country,omitempty"`
}

// GroupedAddress is a set of components linked into one physical address.
// Components are copied in, never aliased, so later mutation of the group
// cannot corrupt a standalone component another pass still holds.
type GroupedAddress struct {
	ID               string             `json:"id"`
	Components       []AddressComponent `json:"components"`
	Breakdown        ComponentBreakdown `json:"breakdown"`
	Pattern          AddressPattern     `json:"pattern"`
	Text             string             `json:"text"`
	Start            int                `json:"start"`
	End              int                `json:"end"`
	Confidence       float64            `json:"confidence"`
	ValidationStatus ValidationStatus   `json:"validation_status"`
}

// PassResult captures what one pass did to the entity list.
type PassResult struct {
	Name            string        `json:"name"`
	EntitiesAdded   int           `json:"entities_added"`
	EntitiesRemoved int           `json:"entities_removed"`
	Duration        time.Duration `json:"duration_ms"`
	Failed          bool          `json:"failed,omitempty"`
	Error           string        `json:"error,omitempty"`
}

// ResultMetadata is the per-document summary block of a DetectionResult.
type ResultMetadata struct {
	TotalDuration time.Duration      `json:"total_duration_ms"`
	PassResults   []PassResult       `json:"pass_results"`
	EntityCounts  map[EntityType]int `json:"entity_counts"`
	FlaggedCount  int                `json:"flagged_count"`
	DenyFiltered  int                `json:"deny_filtered,omitempty"`
}

// DetectionResult is the terminal output of one Process call. The entity
// list is ordered by start offset and owned by the caller from here on.
type DetectionResult struct {
	DocumentID   string         `json:"document_id"`
	DocumentType string         `json:"document_type"`
	Language     string         `json:"language"`
	Entities     []Entity       `json:"entities"`
	Metadata     ResultMetadata `json:"metadata"`
}

// PipelineContext is per-document transient state threaded through all
// passes. It is created once per Process call and never reused.
type PipelineContext struct {
	DocumentID string
	Language   string
	StartedAt  time.Time
	PassStats  map[string]PassResult

	// Hints passes leave for later passes. Written by earlier passes,
	// read by later ones; discarded with the context.
	DocumentType string
	HeaderLimit  int // offset of the end of the header region, 0 if unknown
	DenyFiltered int // entities removed by the deny-list filter
}

// NewPipelineContext creates the transient state for one document.
func NewPipelineContext(documentID, language string) *PipelineContext {
	if documentID == "" {
		documentID = uuid.NewString()
	}
	return &PipelineContext{
		DocumentID: documentID,
		Language:   language,
		StartedAt:  time.Now(),
		PassStats:  make(map[string]PassResult),
	}
}
