package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/doclegal/rechtstreeks-sub002/models"

	"github.com/google/uuid"
)

// ErrNoDraftAnswers is returned when a submission carries no usable answers
var ErrNoDraftAnswers = errors.New("no draft answers to submit")

// ResponseLedger tracks answers to requirements in two explicit maps: drafts
// (unsubmitted, mutable) and saved responses (persisted, authoritative).
// Keeping the maps separate makes the precedence rule mechanically obvious:
// a saved response always wins over a draft for the same requirement, and
// the two are never merged.
type ResponseLedger struct {
	caseID   uuid.UUID
	draft    map[string]*models.MissingInfoResponse
	saved    map[string]*models.MissingInfoResponse
	editMode map[string]bool
}

// NewResponseLedger creates a ledger seeded with the saved responses of a case
func NewResponseLedger(caseID uuid.UUID, saved []*models.MissingInfoResponse) *ResponseLedger {
	ledger := &ResponseLedger{
		caseID:   caseID,
		draft:    make(map[string]*models.MissingInfoResponse),
		saved:    make(map[string]*models.MissingInfoResponse, len(saved)),
		editMode: make(map[string]bool),
	}
	for _, resp := range saved {
		ledger.saved[resp.RequirementID] = resp
	}
	return ledger
}

// SetText records a text draft for a requirement. The value is trimmed; a
// value that is empty after trimming removes the draft entry instead of
// storing a blank answer.
func (l *ResponseLedger) SetText(requirementID, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		delete(l.draft, requirementID)
		return
	}
	l.draft[requirementID] = &models.MissingInfoResponse{
		CaseID:        l.caseID,
		RequirementID: requirementID,
		Kind:          models.ResponseKindText,
		Value:         &value,
	}
}

// SetDocument records a document draft, overwriting any prior draft
func (l *ResponseLedger) SetDocument(requirementID string, documentID uuid.UUID, documentName string) {
	l.draft[requirementID] = &models.MissingInfoResponse{
		CaseID:        l.caseID,
		RequirementID: requirementID,
		Kind:          models.ResponseKindDocument,
		DocumentID:    &documentID,
		DocumentName:  &documentName,
	}
}

// SetNotAvailable marks a requirement as unanswerable, overwriting any prior
// draft including text values.
func (l *ResponseLedger) SetNotAvailable(requirementID string) {
	l.draft[requirementID] = &models.MissingInfoResponse{
		CaseID:        l.caseID,
		RequirementID: requirementID,
		Kind:          models.ResponseKindNotAvailable,
	}
}

// Remove clears the draft for a requirement. Saved responses are untouched;
// they stay immutable until edit mode is entered and a new submission lands.
func (l *ResponseLedger) Remove(requirementID string) {
	delete(l.draft, requirementID)
}

// EnterEditMode allows the draft for a requirement to take display precedence
// over its saved response until the next submission.
func (l *ResponseLedger) EnterEditMode(requirementID string) {
	l.editMode[requirementID] = true
}

// Draft returns the draft answer for a requirement, if any
func (l *ResponseLedger) Draft(requirementID string) (*models.MissingInfoResponse, bool) {
	resp, ok := l.draft[requirementID]
	return resp, ok
}

// Saved returns the saved response for a requirement, if any
func (l *ResponseLedger) Saved(requirementID string) (*models.MissingInfoResponse, bool) {
	resp, ok := l.saved[requirementID]
	return resp, ok
}

// Active returns the answer that should be shown for a requirement. A saved
// response wins over a draft unless edit mode was explicitly entered for
// that requirement.
func (l *ResponseLedger) Active(requirementID string) (*models.MissingInfoResponse, bool) {
	if saved, ok := l.saved[requirementID]; ok && !l.editMode[requirementID] {
		return saved, true
	}
	if draft, ok := l.draft[requirementID]; ok {
		return draft, true
	}
	resp, ok := l.saved[requirementID]
	return resp, ok
}

// HasDrafts reports whether any unsubmitted draft exists
func (l *ResponseLedger) HasDrafts() bool {
	return len(l.draft) > 0
}

// Drafts returns all draft answers ordered by requirement id
func (l *ResponseLedger) Drafts() []*models.MissingInfoResponse {
	out := make([]*models.MissingInfoResponse, 0, len(l.draft))
	for _, resp := range l.draft {
		out = append(out, resp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RequirementID < out[j].RequirementID
	})
	return out
}

// Drain returns the full draft map for submission and clears it. An empty
// draft map is rejected before anything reaches the backend.
func (l *ResponseLedger) Drain() ([]*models.MissingInfoResponse, error) {
	if len(l.draft) == 0 {
		return nil, ErrNoDraftAnswers
	}
	out := l.Drafts()
	l.draft = make(map[string]*models.MissingInfoResponse)
	l.editMode = make(map[string]bool)
	return out, nil
}
