package verification

import (
	"context"

	"github.com/google/uuid"
	"github.com/partnerly/backend/internal/models"
)

// SectionCounts reports how many rows each child onboarding section has.
// Company info completeness is read off the profile itself.
type SectionCounts struct {
	Services  int64
	Locations int64
	Portfolio int64
}

// Store is the persistence boundary of the verification core. The production
// implementation wraps gorm; tests use the in-memory implementation.
//
// Transaction runs fn against a store view whose writes commit or roll back
// as a unit. The ledger append and the status mutation it audits always go
// through the same Transaction call.
type Store interface {
	PartnerByID(ctx context.Context, id uuid.UUID) (models.PartnerProfile, error)
	PartnerByUserID(ctx context.Context, userID uuid.UUID) (models.PartnerProfile, error)
	CreatePartner(ctx context.Context, p *models.PartnerProfile) error
	UpdatePartner(ctx context.Context, p *models.PartnerProfile) error
	PartnersByStatus(ctx context.Context, status models.OnboardingStatus, offset, limit int) ([]models.PartnerProfile, int64, error)
	SectionCounts(ctx context.Context, partnerID uuid.UUID) (SectionCounts, error)

	DocumentByID(ctx context.Context, partnerID, docID uuid.UUID) (models.Document, error)
	DocumentsByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.Document, error)
	CreateDocument(ctx context.Context, d *models.Document) error
	UpdateDocument(ctx context.Context, d *models.Document) error

	AppendHistory(ctx context.Context, e *models.VerificationHistoryEntry) error
	HistoryByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.VerificationHistoryEntry, error)

	Transaction(ctx context.Context, fn func(Store) error) error
}
