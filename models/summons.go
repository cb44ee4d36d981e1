package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SectionKey identifies one of the eight fixed summons sections
type SectionKey string

const (
	SectionAanzegging   SectionKey = "AANZEGGING"
	SectionJurisdiction SectionKey = "JURISDICTION"
	SectionFacts        SectionKey = "FACTS"
	SectionLegalGrounds SectionKey = "LEGAL_GROUNDS"
	SectionDefenses     SectionKey = "DEFENSES"
	SectionEvidence     SectionKey = "EVIDENCE"
	SectionClaims       SectionKey = "CLAIMS"
	SectionExhibits     SectionKey = "EXHIBITS"
)

// SectionOrder lists all sections in step order (steps 1-8)
var SectionOrder = []SectionKey{
	SectionAanzegging,
	SectionJurisdiction,
	SectionFacts,
	SectionLegalGrounds,
	SectionDefenses,
	SectionEvidence,
	SectionClaims,
	SectionExhibits,
}

// StepOrder returns the 1-based step number of a section, or 0 for an
// unknown key.
func (k SectionKey) StepOrder() int {
	for i, key := range SectionOrder {
		if key == k {
			return i + 1
		}
	}
	return 0
}

// IsValidSectionKey reports whether k is one of the eight fixed sections
func IsValidSectionKey(k SectionKey) bool {
	return k.StepOrder() != 0
}

// SectionStatus represents the status of a summons section
type SectionStatus string

const (
	SectionStatusPending      SectionStatus = "pending"
	SectionStatusGenerating   SectionStatus = "generating"
	SectionStatusDraft        SectionStatus = "draft"
	SectionStatusNeedsChanges SectionStatus = "needs_changes"
	SectionStatusApproved     SectionStatus = "approved"
)

// sectionTransitions is the full transition table for section statuses.
// Approved is terminal; resetting an approved section is out of scope.
var sectionTransitions = map[SectionStatus][]SectionStatus{
	SectionStatusPending:      {SectionStatusGenerating},
	SectionStatusGenerating:   {SectionStatusDraft, SectionStatusPending, SectionStatusNeedsChanges},
	SectionStatusDraft:        {SectionStatusApproved, SectionStatusNeedsChanges},
	SectionStatusNeedsChanges: {SectionStatusGenerating},
	SectionStatusApproved:     {},
}

// CanTransition reports whether a section may move from one status to another.
// Generating may fall back to pending or needs_changes: a failed generation
// call restores the section to whichever state it was in before the attempt.
func CanTransition(from, to SectionStatus) bool {
	for _, next := range sectionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SectionStatuses maps section keys to their current status
type SectionStatuses map[SectionKey]SectionStatus

// sectionGates maps each section to its generation prerequisite. The rules
// are deliberately spelled out per section rather than derived from step
// numbers: CLAIMS unlocks as soon as FACTS is approved (skipping steps 4-6),
// and LEGAL_GROUNDS needs both FACTS and CLAIMS approved. Everything else is
// plain previous-step gating. AANZEGGING is fixed statutory text and is never
// generated.
var sectionGates = map[SectionKey]func(SectionStatuses) bool{
	SectionAanzegging:   func(SectionStatuses) bool { return false },
	SectionJurisdiction: allApproved(SectionAanzegging),
	SectionFacts:        allApproved(SectionJurisdiction),
	SectionLegalGrounds: allApproved(SectionFacts, SectionClaims),
	SectionDefenses:     allApproved(SectionLegalGrounds),
	SectionEvidence:     allApproved(SectionDefenses),
	SectionClaims:       allApproved(SectionFacts),
	SectionExhibits:     allApproved(SectionClaims),
}

func allApproved(keys ...SectionKey) func(SectionStatuses) bool {
	return func(statuses SectionStatuses) bool {
		for _, key := range keys {
			if statuses[key] != SectionStatusApproved {
				return false
			}
		}
		return true
	}
}

// GateOpen reports whether the prerequisites for generating a section are
// met, regardless of the section's own status.
func GateOpen(key SectionKey, statuses SectionStatuses) bool {
	gate, ok := sectionGates[key]
	if !ok {
		return false
	}
	return gate(statuses)
}

// CanGenerate reports whether a section may be generated right now: its
// prerequisites must be met and it must be awaiting a (re)generation.
func CanGenerate(key SectionKey, statuses SectionStatuses) bool {
	status := statuses[key]
	if status != SectionStatusPending && status != SectionStatusNeedsChanges {
		return false
	}
	return GateOpen(key, statuses)
}

// AanzeggingText is the fixed aanzegging required by art. 111 Rv. It is
// inserted verbatim when a summons is created and is never generated.
const AanzeggingText = `De gedaagde wordt aangezegd dat:
a. indien gedaagde niet op de eerstdienende dag in de procedure verschijnt, en de voorgeschreven termijnen en formaliteiten in acht zijn genomen, de kantonrechter verstek tegen gedaagde zal verlenen en de vordering zal toewijzen, tenzij deze de kantonrechter onrechtmatig of ongegrond voorkomt;
b. gedaagde op de zitting kan verschijnen in persoon of bij gemachtigde;
c. voor het voeren van verweer geen griffierecht verschuldigd is in kantonzaken;
d. gedaagde schriftelijk of mondeling op de zitting kan antwoorden.`

// SectionWarnings is a list of generation warnings stored as JSONB
type SectionWarnings []string

// Value implements driver.Valuer for JSONB
func (w SectionWarnings) Value() (driver.Value, error) {
	return json.Marshal(w)
}

// Scan implements sql.Scanner for JSONB
func (w *SectionWarnings) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*w = nil
		return nil
	}

	if len(bytes) == 0 {
		*w = nil
		return nil
	}

	return json.Unmarshal(bytes, w)
}

// Summons represents the generated summons document for a case
type Summons struct {
	ID        uuid.UUID `json:"id"`
	CaseID    uuid.UUID `json:"case_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SummonsSection represents one of the eight sections of a summons
type SummonsSection struct {
	ID              uuid.UUID       `json:"id"`
	SummonsID       uuid.UUID       `json:"summons_id"`
	Key             SectionKey      `json:"key"`
	StepOrder       int             `json:"step_order"`
	Status          SectionStatus   `json:"status"`
	GeneratedText   *string         `json:"generated_text,omitempty"`
	UserFeedback    *string         `json:"user_feedback,omitempty"`
	GenerationCount int             `json:"generation_count"`
	Warnings        SectionWarnings `json:"warnings,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
