package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CaseStatus represents the status of a case
type CaseStatus string

const (
	CaseStatusIntake       CaseStatus = "intake"
	CaseStatusAwaitingInfo CaseStatus = "awaiting_info"
	CaseStatusComplete     CaseStatus = "complete"
	CaseStatusArchived     CaseStatus = "archived"
)

// AnalysisJSON holds the raw AI triage payload for a case.
// The payload shape has changed several times over the life of the product,
// so it is stored untyped and interpreted by the requirement extractor.
type AnalysisJSON map[string]interface{}

// Value implements driver.Valuer for JSONB
func (a AnalysisJSON) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *AnalysisJSON) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*a = nil
		return nil
	}

	if len(bytes) == 0 {
		*a = nil
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Case represents a kantonzaak intake case
type Case struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Status      CaseStatus   `json:"status"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Analysis    AnalysisJSON `json:"analysis,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
