package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentStatus represents the review state of an uploaded document
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// Terminal reports whether a document status permits no further review.
// A rejected document is replaced by a new upload, never re-opened.
func (s DocumentStatus) Terminal() bool {
	return s == DocumentStatusApproved || s == DocumentStatusRejected
}

// Document represents a verification document uploaded by a partner.
// Documents are created in pending, mutated only by an admin decision and,
// once the partner is past onboarding, are superseded rather than deleted so
// the audit trail stays intact.
type Document struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	PartnerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"partner_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	FileURL   string         `gorm:"type:text;not null" json:"file_url"`
	Status    DocumentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	// Set only once reviewed
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewNotes     *string    `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`

	// Points at the upload that superseded this one after a rejection
	ReplacedBy *uuid.UUID `gorm:"type:uuid" json:"replaced_by,omitempty"`

	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
