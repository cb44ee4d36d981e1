package models

// InputKind describes what kind of answer a requirement expects.
// An empty value means the requirement accepts either text or a document.
type InputKind string

const (
	InputKindText     InputKind = "text"
	InputKindDocument InputKind = "document"
)

// Requirement is a single missing-information item the system still needs
// from the user. Requirements are derived fresh from the latest AI analysis
// payload on every read and are never persisted on their own.
type Requirement struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Required  bool      `json:"required"`
	InputKind InputKind `json:"input_kind,omitempty"`
	Options   []string  `json:"options,omitempty"`
}

// CompletionSummary reports required-vs-answered counts for a case.
// Only saved responses count; local drafts never do.
type CompletionSummary struct {
	RequiredCount         int  `json:"required_count"`
	AnsweredRequiredCount int  `json:"answered_required_count"`
	Complete              bool `json:"complete"`
}
