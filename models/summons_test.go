package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// freshStatuses returns the statuses of a newly created summons: the
// aanzegging is pre-approved fixed text, everything else is pending.
func freshStatuses() SectionStatuses {
	statuses := make(SectionStatuses, len(SectionOrder))
	for _, key := range SectionOrder {
		statuses[key] = SectionStatusPending
	}
	statuses[SectionAanzegging] = SectionStatusApproved
	return statuses
}

func TestStepOrder(t *testing.T) {
	assert.Equal(t, 1, SectionAanzegging.StepOrder())
	assert.Equal(t, 3, SectionFacts.StepOrder())
	assert.Equal(t, 4, SectionLegalGrounds.StepOrder())
	assert.Equal(t, 7, SectionClaims.StepOrder())
	assert.Equal(t, 8, SectionExhibits.StepOrder())
	assert.Equal(t, 0, SectionKey("INTRO").StepOrder())
	assert.False(t, IsValidSectionKey("INTRO"))
}

func TestAanzeggingNeverGeneratable(t *testing.T) {
	statuses := freshStatuses()
	assert.False(t, CanGenerate(SectionAanzegging, statuses))

	// Not even if someone forces it back to pending.
	statuses[SectionAanzegging] = SectionStatusPending
	assert.False(t, CanGenerate(SectionAanzegging, statuses))
}

func TestDefaultSequentialGating(t *testing.T) {
	statuses := freshStatuses()

	// Aanzegging is pre-approved, so jurisdiction is immediately open.
	assert.True(t, CanGenerate(SectionJurisdiction, statuses))
	assert.False(t, CanGenerate(SectionFacts, statuses))

	statuses[SectionJurisdiction] = SectionStatusApproved
	assert.True(t, CanGenerate(SectionFacts, statuses))

	// Defenses needs legal grounds, evidence needs defenses.
	assert.False(t, CanGenerate(SectionDefenses, statuses))
	assert.False(t, CanGenerate(SectionEvidence, statuses))
}

func TestClaimsUnlocksOnFactsApproval(t *testing.T) {
	statuses := freshStatuses()
	statuses[SectionJurisdiction] = SectionStatusApproved
	statuses[SectionFacts] = SectionStatusApproved

	// Claims (step 7) must open the moment facts (step 3) is approved,
	// with steps 4-6 still pending.
	assert.Equal(t, SectionStatusPending, statuses[SectionLegalGrounds])
	assert.Equal(t, SectionStatusPending, statuses[SectionDefenses])
	assert.Equal(t, SectionStatusPending, statuses[SectionEvidence])
	assert.True(t, CanGenerate(SectionClaims, statuses))
}

func TestLegalGroundsNeedsBothFactsAndClaims(t *testing.T) {
	statuses := freshStatuses()
	statuses[SectionJurisdiction] = SectionStatusApproved
	statuses[SectionFacts] = SectionStatusApproved

	// Claims still in draft: legal grounds stays locked.
	statuses[SectionClaims] = SectionStatusDraft
	assert.False(t, CanGenerate(SectionLegalGrounds, statuses))

	statuses[SectionClaims] = SectionStatusApproved
	assert.True(t, CanGenerate(SectionLegalGrounds, statuses))
}

func TestExhibitsGatedOnClaims(t *testing.T) {
	statuses := freshStatuses()
	statuses[SectionJurisdiction] = SectionStatusApproved
	statuses[SectionFacts] = SectionStatusApproved
	assert.False(t, CanGenerate(SectionExhibits, statuses))

	statuses[SectionClaims] = SectionStatusApproved
	assert.True(t, CanGenerate(SectionExhibits, statuses))
}

func TestCanGenerateRequiresPendingOrNeedsChanges(t *testing.T) {
	statuses := freshStatuses()

	statuses[SectionJurisdiction] = SectionStatusGenerating
	assert.False(t, CanGenerate(SectionJurisdiction, statuses))

	statuses[SectionJurisdiction] = SectionStatusDraft
	assert.False(t, CanGenerate(SectionJurisdiction, statuses))

	statuses[SectionJurisdiction] = SectionStatusNeedsChanges
	assert.True(t, CanGenerate(SectionJurisdiction, statuses))
}

func TestSectionTransitions(t *testing.T) {
	tests := []struct {
		from    SectionStatus
		to      SectionStatus
		allowed bool
	}{
		{SectionStatusPending, SectionStatusGenerating, true},
		{SectionStatusPending, SectionStatusDraft, false},
		{SectionStatusGenerating, SectionStatusDraft, true},
		{SectionStatusGenerating, SectionStatusPending, true},
		{SectionStatusGenerating, SectionStatusNeedsChanges, true},
		{SectionStatusDraft, SectionStatusApproved, true},
		{SectionStatusDraft, SectionStatusNeedsChanges, true},
		{SectionStatusDraft, SectionStatusGenerating, false},
		{SectionStatusNeedsChanges, SectionStatusGenerating, true},
		{SectionStatusNeedsChanges, SectionStatusApproved, false},
		{SectionStatusApproved, SectionStatusGenerating, false},
		{SectionStatusApproved, SectionStatusDraft, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to),
			"transition %s -> %s", tt.from, tt.to)
	}
}
