package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/partnerly/backend/internal/models"
	"gorm.io/gorm"
)

// GormStore is the postgres-backed Store used in production
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the given database handle
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) PartnerByID(ctx context.Context, id uuid.UUID) (models.PartnerProfile, error) {
	var p models.PartnerProfile
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, &NotFoundError{Resource: "partner", ID: id.String()}
		}
		return p, fmt.Errorf("error finding partner: %w", err)
	}
	return p, nil
}

func (s *GormStore) PartnerByUserID(ctx context.Context, userID uuid.UUID) (models.PartnerProfile, error) {
	var p models.PartnerProfile
	err := s.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, &NotFoundError{Resource: "partner", ID: userID.String()}
		}
		return p, fmt.Errorf("error finding partner by user: %w", err)
	}
	return p, nil
}

func (s *GormStore) CreatePartner(ctx context.Context, p *models.PartnerProfile) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("error creating partner: %w", err)
	}
	return nil
}

func (s *GormStore) UpdatePartner(ctx context.Context, p *models.PartnerProfile) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("error updating partner: %w", err)
	}
	return nil
}

func (s *GormStore) PartnersByStatus(ctx context.Context, status models.OnboardingStatus, offset, limit int) ([]models.PartnerProfile, int64, error) {
	var partners []models.PartnerProfile
	q := s.db.WithContext(ctx).Model(&models.PartnerProfile{}).Where("onboarding_status = ?", status)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting partners: %w", err)
	}

	err := q.Order("submitted_at asc").Offset(offset).Limit(limit).Find(&partners).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error listing partners: %w", err)
	}
	return partners, count, nil
}

func (s *GormStore) SectionCounts(ctx context.Context, partnerID uuid.UUID) (SectionCounts, error) {
	var counts SectionCounts
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.PartnerService{}).Where("partner_id = ?", partnerID).Count(&counts.Services).Error; err != nil {
		return counts, fmt.Errorf("error counting services: %w", err)
	}
	if err := db.Model(&models.PartnerLocation{}).Where("partner_id = ?", partnerID).Count(&counts.Locations).Error; err != nil {
		return counts, fmt.Errorf("error counting locations: %w", err)
	}
	if err := db.Model(&models.PortfolioImage{}).Where("partner_id = ?", partnerID).Count(&counts.Portfolio).Error; err != nil {
		return counts, fmt.Errorf("error counting portfolio images: %w", err)
	}
	return counts, nil
}

func (s *GormStore) DocumentByID(ctx context.Context, partnerID, docID uuid.UUID) (models.Document, error) {
	var d models.Document
	err := s.db.WithContext(ctx).First(&d, "id = ? AND partner_id = ?", docID, partnerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return d, &NotFoundError{Resource: "document", ID: docID.String()}
		}
		return d, fmt.Errorf("error finding document: %w", err)
	}
	return d, nil
}

func (s *GormStore) DocumentsByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).Where("partner_id = ?", partnerID).Order("created_at asc").Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return docs, nil
}

func (s *GormStore) CreateDocument(ctx context.Context, d *models.Document) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("error creating document: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateDocument(ctx context.Context, d *models.Document) error {
	if err := s.db.WithContext(ctx).Save(d).Error; err != nil {
		return fmt.Errorf("error updating document: %w", err)
	}
	return nil
}

func (s *GormStore) AppendHistory(ctx context.Context, e *models.VerificationHistoryEntry) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("error appending history entry: %w", err)
	}
	return nil
}

func (s *GormStore) HistoryByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.VerificationHistoryEntry, error) {
	var entries []models.VerificationHistoryEntry
	err := s.db.WithContext(ctx).Where("partner_id = ?", partnerID).Order("created_at asc").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("error listing history: %w", err)
	}
	return entries, nil
}

// Transaction runs fn inside a database transaction so a status mutation and
// its ledger entry commit as one unit.
func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
