package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/partnerly/backend/internal/models"
)

// Onboarding section names, in wizard order. These are the five
// independently-completable parts of a partner profile; all must be
// non-empty before the profile can be submitted for verification.
const (
	SectionCompany   = "company"
	SectionServices  = "services"
	SectionLocations = "locations"
	SectionPortfolio = "portfolio"
	SectionDocuments = "documents"
)

// Config carries the tunable policy choices of the verification core
type Config struct {
	// RequireDocumentResubmission makes rejected documents not count toward
	// the documents section, forcing a rejected partner to upload fresh
	// documents before resubmitting.
	RequireDocumentResubmission bool
}

// Service owns the partner verification state machine. All transitions are
// serialized per partner through the locker, and every transition writes its
// ledger entry in the same store transaction as the status mutation.
type Service struct {
	store  Store
	locker Locker
	cfg    Config
}

// NewService creates a verification service
func NewService(store Store, locker Locker, cfg Config) *Service {
	return &Service{store: store, locker: locker, cfg: cfg}
}

// Store exposes the service's persistence boundary to read-only callers
func (s *Service) Store() Store {
	return s.store
}

// StatusSummary is the partner-facing view of the verification state.
// Verified is derived from the status, never stored on its own.
type StatusSummary struct {
	PartnerID            uuid.UUID               `json:"partner_id"`
	OnboardingStatus     models.OnboardingStatus `json:"onboarding_status"`
	OnboardingStep       int                     `json:"onboarding_step"`
	OnboardingProgress   int                     `json:"onboarding_progress"`
	Verified             bool                    `json:"verified"`
	MissingSections      []string                `json:"missing_sections,omitempty"`
	AllDocumentsReviewed bool                    `json:"all_documents_reviewed"`
}

// GetOnboardingStatus returns the current verification state of a partner
func (s *Service) GetOnboardingStatus(ctx context.Context, partnerID uuid.UUID) (StatusSummary, error) {
	var summary StatusSummary

	p, err := s.store.PartnerByID(ctx, partnerID)
	if err != nil {
		return summary, err
	}

	missing, err := s.missingSections(ctx, s.store, &p)
	if err != nil {
		return summary, err
	}

	docs, err := s.store.DocumentsByPartner(ctx, partnerID)
	if err != nil {
		return summary, err
	}

	summary = StatusSummary{
		PartnerID:            p.ID,
		OnboardingStatus:     p.OnboardingStatus,
		OnboardingStep:       p.OnboardingStep,
		OnboardingProgress:   (5 - len(missing)) * 100 / 5,
		Verified:             p.IsVerified(),
		MissingSections:      missing,
		AllDocumentsReviewed: allReviewed(docs),
	}
	return summary, nil
}

// SubmitForVerification moves a partner from incomplete (or rejected, on
// resubmission) to pending_verification. The guard requires all five
// onboarding sections to be non-empty and is identical on both paths.
func (s *Service) SubmitForVerification(ctx context.Context, partnerID uuid.UUID) (models.PartnerProfile, error) {
	var result models.PartnerProfile

	release, err := s.locker.Acquire(ctx, partnerID)
	if err != nil {
		return result, err
	}
	defer release()

	err = s.store.Transaction(ctx, func(tx Store) error {
		p, err := tx.PartnerByID(ctx, partnerID)
		if err != nil {
			return err
		}

		switch p.OnboardingStatus {
		case models.OnboardingStatusIncomplete, models.OnboardingStatusRejected:
		default:
			return &InvalidStateTransitionError{
				Current:   p.OnboardingStatus,
				Requested: models.OnboardingStatusPendingVerification,
			}
		}

		missing, err := s.missingSections(ctx, tx, &p)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return &IncompleteProfileError{Missing: missing}
		}

		now := time.Now()
		p.OnboardingStatus = models.OnboardingStatusPendingVerification
		p.OnboardingStep = models.OnboardingStepReview
		p.SubmittedAt = &now
		clearRejection(&p)
		clearVerification(&p)

		if err := tx.UpdatePartner(ctx, &p); err != nil {
			return err
		}

		entry := models.VerificationHistoryEntry{
			PartnerID: p.ID,
			Type:      models.HistoryTypePartner,
			Action:    models.HistoryActionSubmitted,
			By:        &p.UserID,
		}
		if err := tx.AppendHistory(ctx, &entry); err != nil {
			return err
		}

		result = p
		return nil
	})
	return result, err
}

// VerifyPartner moves a pending_verification partner to verified. Documents
// may still be pending; the decision defers to the reviewing admin.
func (s *Service) VerifyPartner(ctx context.Context, partnerID, reviewerID uuid.UUID, notes string) (models.PartnerProfile, error) {
	var result models.PartnerProfile

	release, err := s.locker.Acquire(ctx, partnerID)
	if err != nil {
		return result, err
	}
	defer release()

	err = s.store.Transaction(ctx, func(tx Store) error {
		p, err := tx.PartnerByID(ctx, partnerID)
		if err != nil {
			return err
		}

		if p.OnboardingStatus != models.OnboardingStatusPendingVerification {
			return &InvalidStateTransitionError{
				Current:   p.OnboardingStatus,
				Requested: models.OnboardingStatusVerified,
			}
		}

		now := time.Now()
		p.OnboardingStatus = models.OnboardingStatusVerified
		p.VerifiedBy = &reviewerID
		p.VerificationDate = &now
		if notes != "" {
			p.VerificationNotes = &notes
		}
		clearRejection(&p)

		if err := tx.UpdatePartner(ctx, &p); err != nil {
			return err
		}

		entry := models.VerificationHistoryEntry{
			PartnerID: p.ID,
			Type:      models.HistoryTypePartner,
			Action:    models.HistoryActionVerified,
			By:        &reviewerID,
		}
		if notes != "" {
			entry.Notes = &notes
		}
		if err := tx.AppendHistory(ctx, &entry); err != nil {
			return err
		}

		result = p
		return nil
	})
	return result, err
}

// RejectPartner moves a pending_verification partner to rejected. A
// non-empty reason is required; it is surfaced on the partner's remediation
// screen.
func (s *Service) RejectPartner(ctx context.Context, partnerID, reviewerID uuid.UUID, reason, notes string) (models.PartnerProfile, error) {
	var result models.PartnerProfile

	if reason == "" {
		return result, &ValidationError{Field: "reason", Message: "rejection reason is required"}
	}

	release, err := s.locker.Acquire(ctx, partnerID)
	if err != nil {
		return result, err
	}
	defer release()

	err = s.store.Transaction(ctx, func(tx Store) error {
		p, err := tx.PartnerByID(ctx, partnerID)
		if err != nil {
			return err
		}

		if p.OnboardingStatus != models.OnboardingStatusPendingVerification {
			return &InvalidStateTransitionError{
				Current:   p.OnboardingStatus,
				Requested: models.OnboardingStatusRejected,
			}
		}

		now := time.Now()
		p.OnboardingStatus = models.OnboardingStatusRejected
		p.RejectionReason = &reason
		p.RejectedBy = &reviewerID
		p.RejectionDate = &now
		if notes != "" {
			p.RejectionNotes = &notes
		}
		clearVerification(&p)

		if err := tx.UpdatePartner(ctx, &p); err != nil {
			return err
		}

		entry := models.VerificationHistoryEntry{
			PartnerID: p.ID,
			Type:      models.HistoryTypePartner,
			Action:    models.HistoryActionRejected,
			By:        &reviewerID,
			Reason:    &reason,
		}
		if notes != "" {
			entry.Notes = &notes
		}
		if err := tx.AppendHistory(ctx, &entry); err != nil {
			return err
		}

		result = p
		return nil
	})
	return result, err
}

// missingSections evaluates the five-section completeness guard in wizard
// order against the given store view.
func (s *Service) missingSections(ctx context.Context, store Store, p *models.PartnerProfile) ([]string, error) {
	var missing []string

	if p.CompanyName == "" {
		missing = append(missing, SectionCompany)
	}

	counts, err := store.SectionCounts(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if counts.Services == 0 {
		missing = append(missing, SectionServices)
	}
	if counts.Locations == 0 {
		missing = append(missing, SectionLocations)
	}
	if counts.Portfolio == 0 {
		missing = append(missing, SectionPortfolio)
	}

	docs, err := store.DocumentsByPartner(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	usable := 0
	for _, d := range docs {
		if s.cfg.RequireDocumentResubmission && d.Status == models.DocumentStatusRejected {
			continue
		}
		usable++
	}
	if usable == 0 {
		missing = append(missing, SectionDocuments)
	}

	return missing, nil
}

func allReviewed(docs []models.Document) bool {
	if len(docs) == 0 {
		return false
	}
	for _, d := range docs {
		if d.Status == models.DocumentStatusPending {
			return false
		}
	}
	return true
}

func clearRejection(p *models.PartnerProfile) {
	p.RejectionReason = nil
	p.RejectionNotes = nil
	p.RejectedBy = nil
	p.RejectionDate = nil
}

func clearVerification(p *models.PartnerProfile) {
	p.VerificationNotes = nil
	p.VerifiedBy = nil
	p.VerificationDate = nil
}
