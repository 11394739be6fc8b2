package models

import "time"

// Import row outcomes
const (
	ImportOutcomeSuccess = "success"
	ImportOutcomeSkipped = "skipped"
	ImportOutcomeError   = "error"
)

// ImportCandidate is a parsed spreadsheet row that passed required-field
// validation and is pending insertion.
type ImportCandidate struct {
	Account     string `json:"account"`
	DisplayName string `json:"display_name"`
	Password    string `json:"-"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

// ImportRowResult is the per-row log line of an import pass.
type ImportRowResult struct {
	Row     int    `json:"row"` // 1-based position within the batch
	Account string `json:"account"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
}

// ImportReport carries the tallies and per-row log of one import pass.
type ImportReport struct {
	Total        int               `json:"total"`
	SuccessCount int               `json:"success_count"`
	SkippedCount int               `json:"skipped_count"`
	ErrorCount   int               `json:"error_count"`
	Rows         []ImportRowResult `json:"rows"`
}

// ImportRun is the persisted record of a finished import pass.
type ImportRun struct {
	ID           string
	Actor        string // account handle of the admin who ran the import
	TotalRows    int
	SuccessCount int
	SkippedCount int
	ErrorCount   int
	StartedAt    time.Time
	FinishedAt   time.Time
}
