// Package model defines the data types shared by the console services, adapters and store.
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxAuditMessageLen = 1000
	// DefaultAuditPageSize is used when AuditListOptions.Limit is unset.
	DefaultAuditPageSize = 20
	maxAuditPageSize     = 100
)

// AuditOutcome records whether a console mutation succeeded.
type AuditOutcome string

const (
	AuditOutcomeSuccess AuditOutcome = "success"
	AuditOutcomeFailure AuditOutcome = "failure"
)

// Valid reports whether the outcome is supported.
func (o AuditOutcome) Valid() bool {
	return o == AuditOutcomeSuccess || o == AuditOutcomeFailure
}

// AuditEntry is one recorded console mutation.
type AuditEntry struct {
	ID        string       `json:"id"         db:"id"`
	Actor     string       `json:"actor"      db:"actor"`
	Resource  string       `json:"resource"   db:"resource"`
	Action    string       `json:"action"     db:"action"`
	TargetID  *string      `json:"target_id"  db:"target_id"`
	Outcome   AuditOutcome `json:"outcome"    db:"outcome"`
	Message   string       `json:"message"    db:"message"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// Normalize trims fields and truncates an overlong message.
func (e *AuditEntry) Normalize() {
	e.Actor = strings.TrimSpace(e.Actor)
	e.Resource = strings.TrimSpace(e.Resource)
	e.Action = strings.TrimSpace(e.Action)
	if e.TargetID != nil {
		id := strings.TrimSpace(*e.TargetID)
		if id == "" {
			e.TargetID = nil
		} else {
			e.TargetID = &id
		}
	}
	if utf8.RuneCountInString(e.Message) > maxAuditMessageLen {
		e.Message = string([]rune(e.Message)[:maxAuditMessageLen])
	}
}

// Validate checks required fields.
func (e AuditEntry) Validate() error {
	if e.Actor == "" {
		return errors.New("actor is required")
	}
	if e.Resource == "" {
		return errors.New("resource is required")
	}
	if e.Action == "" {
		return errors.New("action is required")
	}
	if !e.Outcome.Valid() {
		return errors.New("outcome must be success or failure")
	}
	return nil
}

// AuditListOptions selects one page of the audit trail.
type AuditListOptions struct {
	Page     int
	Limit    int
	Resource *string // exact match
	Actor    *string // substring match (ILIKE)
}

// Normalize clamps paging values.
func (o *AuditListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit <= 0 {
		o.Limit = DefaultAuditPageSize
	}
	if o.Limit > maxAuditPageSize {
		o.Limit = maxAuditPageSize
	}
}

// Offset is the row offset for the selected page.
func (o AuditListOptions) Offset() int {
	return (max(o.Page, 1) - 1) * o.Limit
}

// AuditPage is one page of audit entries.
type AuditPage struct {
	Entries    []AuditEntry
	TotalPages int
}
