package service

import (
	"testing"

	"github.com/doclegal/rechtstreeks-sub002/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerSetTextTrimsAndDropsEmpty(t *testing.T) {
	ledger := NewResponseLedger(uuid.New(), nil)

	ledger.SetText("req-1", "  betaald op 3 maart  ")
	draft, ok := ledger.Draft("req-1")
	require.True(t, ok)
	assert.Equal(t, "betaald op 3 maart", *draft.Value)

	// clearing the field removes the draft instead of storing a blank
	ledger.SetText("req-1", "   ")
	_, ok = ledger.Draft("req-1")
	assert.False(t, ok)
	assert.False(t, ledger.HasDrafts())
}

func TestLedgerNotAvailableOverwritesText(t *testing.T) {
	ledger := NewResponseLedger(uuid.New(), nil)

	ledger.SetText("req-1", "half ingevuld antwoord")
	ledger.SetNotAvailable("req-1")

	draft, ok := ledger.Draft("req-1")
	require.True(t, ok)
	assert.Equal(t, models.ResponseKindNotAvailable, draft.Kind)
	assert.Nil(t, draft.Value)
}

func TestLedgerDocumentOverwritesDraft(t *testing.T) {
	ledger := NewResponseLedger(uuid.New(), nil)
	docID := uuid.New()

	ledger.SetText("req-1", "tekst")
	ledger.SetDocument("req-1", docID, "huurovereenkomst.pdf")

	draft, ok := ledger.Draft("req-1")
	require.True(t, ok)
	assert.Equal(t, models.ResponseKindDocument, draft.Kind)
	assert.Equal(t, docID, *draft.DocumentID)
	assert.Equal(t, "huurovereenkomst.pdf", *draft.DocumentName)
}

func TestLedgerSavedWinsOverDraft(t *testing.T) {
	caseID := uuid.New()
	val := "opgeslagen antwoord"
	saved := []*models.MissingInfoResponse{
		{CaseID: caseID, RequirementID: "req-1", Kind: models.ResponseKindText, Value: &val},
	}
	ledger := NewResponseLedger(caseID, saved)

	ledger.SetText("req-1", "nieuwe concepttekst")

	active, ok := ledger.Active("req-1")
	require.True(t, ok)
	assert.Equal(t, "opgeslagen antwoord", *active.Value)

	// edit mode flips precedence to the draft until the next submission
	ledger.EnterEditMode("req-1")
	active, ok = ledger.Active("req-1")
	require.True(t, ok)
	assert.Equal(t, "nieuwe concepttekst", *active.Value)
}

func TestLedgerRemoveLeavesSavedUntouched(t *testing.T) {
	caseID := uuid.New()
	val := "bewaard"
	saved := []*models.MissingInfoResponse{
		{CaseID: caseID, RequirementID: "req-1", Kind: models.ResponseKindText, Value: &val},
	}
	ledger := NewResponseLedger(caseID, saved)

	ledger.SetText("req-1", "concept")
	ledger.EnterEditMode("req-1")
	ledger.Remove("req-1")

	_, ok := ledger.Draft("req-1")
	assert.False(t, ok)
	got, ok := ledger.Saved("req-1")
	require.True(t, ok)
	assert.Equal(t, "bewaard", *got.Value)
}

func TestLedgerDrainEmptyFails(t *testing.T) {
	ledger := NewResponseLedger(uuid.New(), nil)

	_, err := ledger.Drain()
	assert.ErrorIs(t, err, ErrNoDraftAnswers)

	// a submission consisting only of cleared fields is also empty
	ledger.SetText("req-1", "iets")
	ledger.SetText("req-1", "")
	_, err = ledger.Drain()
	assert.ErrorIs(t, err, ErrNoDraftAnswers)
}

func TestLedgerDrainReturnsSortedAndClears(t *testing.T) {
	ledger := NewResponseLedger(uuid.New(), nil)
	ledger.SetText("b-req", "twee")
	ledger.SetText("a-req", "een")
	ledger.SetNotAvailable("c-req")

	drafts, err := ledger.Drain()
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	assert.Equal(t, "a-req", drafts[0].RequirementID)
	assert.Equal(t, "b-req", drafts[1].RequirementID)
	assert.Equal(t, "c-req", drafts[2].RequirementID)

	assert.False(t, ledger.HasDrafts())
	_, err = ledger.Drain()
	assert.ErrorIs(t, err, ErrNoDraftAnswers)
}
