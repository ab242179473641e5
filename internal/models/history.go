package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntryType distinguishes partner-level from document-level entries
type HistoryEntryType string

const (
	HistoryTypePartner  HistoryEntryType = "partner"
	HistoryTypeDocument HistoryEntryType = "document"
)

// HistoryAction identifies the transition a ledger entry records
type HistoryAction string

const (
	HistoryActionSubmitted        HistoryAction = "submitted"
	HistoryActionVerified         HistoryAction = "verified"
	HistoryActionRejected         HistoryAction = "rejected"
	HistoryActionDocumentUploaded HistoryAction = "document_uploaded"
	HistoryActionDocumentApproved HistoryAction = "document_approved"
	HistoryActionDocumentRejected HistoryAction = "document_rejected"
)

// VerificationHistoryEntry is one row of the append-only audit ledger.
// Exactly one entry is written per state transition, inside the same
// transaction as the transition itself. Entries are never mutated or
// deleted; there is intentionally no soft-delete column.
type VerificationHistoryEntry struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	PartnerID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"partner_id"`
	Type         HistoryEntryType `gorm:"type:varchar(20);not null" json:"type"`
	Action       HistoryAction    `gorm:"type:varchar(30);not null" json:"action"`
	By           *uuid.UUID       `gorm:"type:uuid" json:"by,omitempty"` // nil for system-generated entries
	DocumentID   *uuid.UUID       `gorm:"type:uuid" json:"document_id,omitempty"`
	DocumentName *string          `gorm:"type:varchar(255)" json:"document_name,omitempty"`
	Reason       *string          `gorm:"type:text" json:"reason,omitempty"`
	Notes        *string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
