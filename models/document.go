package models

import (
	"time"

	"github.com/google/uuid"
)

// Document represents an uploaded document entity
type Document struct {
	ID          uuid.UUID `json:"id"`
	CaseID      uuid.UUID `json:"case_id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mimetype"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}
