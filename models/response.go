package models

import (
	"time"

	"github.com/google/uuid"
)

// ResponseKind represents how a requirement was answered
type ResponseKind string

const (
	ResponseKindText         ResponseKind = "text"
	ResponseKindDocument     ResponseKind = "document"
	ResponseKindNotAvailable ResponseKind = "not_available"
)

// MissingInfoResponse is a persisted answer to a single requirement.
// A case holds at most one response per requirement id; re-submitting
// replaces the previous response rather than appending.
type MissingInfoResponse struct {
	ID            uuid.UUID    `json:"id"`
	CaseID        uuid.UUID    `json:"case_id"`
	RequirementID string       `json:"requirement_id"`
	Kind          ResponseKind `json:"kind"`
	Value         *string      `json:"value,omitempty"`
	DocumentID    *uuid.UUID   `json:"document_id,omitempty"`
	DocumentName  *string      `json:"document_name,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
