package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OnboardingStatus represents the verification state of a partner profile.
// It is the single stored source of truth; the "verified" boolean exposed by
// the API is derived from it and never persisted separately.
type OnboardingStatus string

const (
	OnboardingStatusIncomplete          OnboardingStatus = "incomplete"
	OnboardingStatusPendingVerification OnboardingStatus = "pending_verification"
	OnboardingStatusVerified            OnboardingStatus = "verified"
	OnboardingStatusRejected            OnboardingStatus = "rejected"
)

// Onboarding wizard steps. OnboardingStep records the furthest step reached.
const (
	OnboardingStepCompany   = 1
	OnboardingStepServices  = 2
	OnboardingStepLocations = 3
	OnboardingStepPortfolio = 4
	OnboardingStepDocuments = 5
	OnboardingStepReview    = 6
)

// PartnerProfile represents a marketplace partner undergoing verification.
// Profiles are never hard-deleted, only status-transitioned.
type PartnerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID" json:"-"`

	// Company info (onboarding section 1)
	CompanyName     string     `gorm:"type:varchar(255)" json:"company_name"`
	Handle          string     `gorm:"type:varchar(255);uniqueIndex" json:"handle"`
	Description     string     `gorm:"type:text" json:"description"`
	Website         *string    `gorm:"type:varchar(255)" json:"website"`
	ContactPhone    string     `gorm:"type:varchar(20)" json:"contact_phone"`
	Specializations StringList `gorm:"type:jsonb" json:"specializations"`

	OnboardingStep   int              `gorm:"default:1" json:"onboarding_step"`
	OnboardingStatus OnboardingStatus `gorm:"type:varchar(30);not null;default:'incomplete'" json:"onboarding_status"`

	// Set only while the profile is rejected
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	RejectionNotes  *string    `gorm:"type:text" json:"rejection_notes,omitempty"`
	RejectedBy      *uuid.UUID `gorm:"type:uuid" json:"rejected_by,omitempty"`
	RejectionDate   *time.Time `json:"rejection_date,omitempty"`

	// Set only while the profile is verified
	VerificationNotes *string    `gorm:"type:text" json:"verification_notes,omitempty"`
	VerifiedBy        *uuid.UUID `gorm:"type:uuid" json:"verified_by,omitempty"`
	VerificationDate  *time.Time `json:"verification_date,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`

	Services  []PartnerService  `gorm:"foreignKey:PartnerID" json:"services,omitempty"`
	Locations []PartnerLocation `gorm:"foreignKey:PartnerID" json:"locations,omitempty"`
	Portfolio []PortfolioImage  `gorm:"foreignKey:PartnerID" json:"portfolio,omitempty"`
	Documents []Document        `gorm:"foreignKey:PartnerID" json:"documents,omitempty"`

	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsVerified derives the bookable flag from the stored status.
func (p *PartnerProfile) IsVerified() bool {
	return p.OnboardingStatus == OnboardingStatusVerified
}

// PartnerService represents one bookable service offered by a partner
type PartnerService struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	PartnerID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"partner_id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	PriceCents   int64          `json:"price_cents"`
	Currency     string         `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	DurationMins int            `json:"duration_mins"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// PartnerLocation represents a service area covered by a partner
type PartnerLocation struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	PartnerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"partner_id"`
	City      string         `gorm:"type:varchar(100);not null" json:"city"`
	Region    string         `gorm:"type:varchar(100)" json:"region"`
	Country   string         `gorm:"type:varchar(2);not null" json:"country"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PortfolioImage represents one image in a partner's public portfolio
type PortfolioImage struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	PartnerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"partner_id"`
	FileURL   string         `gorm:"type:text;not null" json:"file_url"`
	Caption   string         `gorm:"type:varchar(255)" json:"caption"`
	Position  int            `gorm:"default:0" json:"position"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
