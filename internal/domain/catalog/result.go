package catalog

import (
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Strategy
// ---------------------------------------------------------------------------

// Strategy selects which records a sync run processes and how
type Strategy string

const (
	// StrategyFull pushes every linked record to the platform regardless of
	// detected change; unlinked records are skipped, never created
	StrategyFull Strategy = "FULL"
	// StrategySmartIncremental processes only records whose content changed
	StrategySmartIncremental Strategy = "SMART_INCREMENTAL"
	// StrategyCreateOnly creates platform products for unlinked records and
	// writes the issued ID back as the link
	StrategyCreateOnly Strategy = "CREATE_ONLY"
	// StrategyImport creates source pages for platform products no source
	// record links to (reverse direction, creation only)
	StrategyImport Strategy = "IMPORT"
)

// IsValid returns true if the strategy is valid
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyFull, StrategySmartIncremental, StrategyCreateOnly, StrategyImport:
		return true
	default:
		return false
	}
}

// String returns the string representation of Strategy
func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy parses a strategy name, case-insensitively
func ParseStrategy(raw string) (Strategy, error) {
	s := Strategy(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidStrategy
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// SyncStatus
// ---------------------------------------------------------------------------

// SyncStatus summarizes the outcome of a run
type SyncStatus string

const (
	// SyncStatusSuccess indicates every attempted record succeeded
	SyncStatusSuccess SyncStatus = "SUCCESS"
	// SyncStatusPartial indicates some records succeeded and some failed
	SyncStatusPartial SyncStatus = "PARTIAL"
	// SyncStatusFailed indicates every attempted record failed
	SyncStatusFailed SyncStatus = "FAILED"
)

// ---------------------------------------------------------------------------
// SyncError
// ---------------------------------------------------------------------------

// ErrorKind classifies a per-record failure
type ErrorKind string

const (
	// ErrorKindWrite indicates the mutation call failed outright
	ErrorKindWrite ErrorKind = "write"
	// ErrorKindPartialWrite indicates a multi-call update applied partially
	ErrorKindPartialWrite ErrorKind = "partial_write"
	// ErrorKindLinkInconsistency indicates creation succeeded but the link
	// write-back failed, leaving an unlinked source record with a live
	// platform counterpart
	ErrorKindLinkInconsistency ErrorKind = "link_inconsistency"
	// ErrorKindValidation indicates the record lacked a precondition for the
	// requested operation
	ErrorKindValidation ErrorKind = "validation"
)

// SyncError captures one failed record in a run
type SyncError struct {
	// SourceID identifies the failed record on the source side
	SourceID string `json:"source_id"`
	// Title is the product title, kept for operator-readable reports
	Title string `json:"title"`
	// Kind classifies the failure
	Kind ErrorKind `json:"kind"`
	// Message is the error detail
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// SyncResult
// ---------------------------------------------------------------------------

// SyncResult accumulates the outcome of one orchestration run. It is created
// per run, mutated only by the orchestrator's sequential loop, returned to
// the caller and discarded.
type SyncResult struct {
	// Strategy is the strategy that produced this result
	Strategy Strategy `json:"strategy"`
	// Total is the number of records considered by the strategy
	Total int `json:"total"`
	// Created is the number of platform records created
	Created int `json:"created"`
	// Synced is the number of platform records updated
	Synced int `json:"synced"`
	// Skipped is the number of records intentionally not attempted
	Skipped int `json:"skipped"`
	// Errors lists records that were attempted and failed
	Errors []SyncError `json:"errors"`
	// StartedAt is when the run began
	StartedAt time.Time `json:"started_at"`
	// CompletedAt is when the run finished
	CompletedAt time.Time `json:"completed_at"`
}

// NewSyncResult creates an empty result for a run
func NewSyncResult(strategy Strategy) *SyncResult {
	return &SyncResult{
		Strategy:  strategy,
		Errors:    make([]SyncError, 0),
		StartedAt: time.Now(),
	}
}

// RecordCreated counts a successful creation
func (r *SyncResult) RecordCreated() {
	r.Created++
}

// RecordSynced counts a successful update
func (r *SyncResult) RecordSynced() {
	r.Synced++
}

// RecordSkipped counts a record intentionally not attempted
func (r *SyncResult) RecordSkipped() {
	r.Skipped++
}

// RecordFailure records a per-record failure; the run continues
func (r *SyncResult) RecordFailure(p *Product, kind ErrorKind, err error) {
	entry := SyncError{
		SourceID: p.SourceID,
		Title:    p.Title,
		Kind:     kind,
	}
	if err != nil {
		entry.Message = err.Error()
	}
	r.Errors = append(r.Errors, entry)
}

// Complete stamps the completion time
func (r *SyncResult) Complete() {
	r.CompletedAt = time.Now()
}

// Status derives the overall outcome from the counters
func (r *SyncResult) Status() SyncStatus {
	if len(r.Errors) == 0 {
		return SyncStatusSuccess
	}
	if r.Created+r.Synced > 0 {
		return SyncStatusPartial
	}
	return SyncStatusFailed
}
