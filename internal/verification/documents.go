package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/partnerly/backend/internal/models"
)

// ReviewResult carries a reviewed document together with the owning
// partner's document-completeness signal. The signal is informational for
// the admin console; it does not change the partner's status on its own.
type ReviewResult struct {
	Document             models.Document `json:"document"`
	AllDocumentsReviewed bool            `json:"all_documents_reviewed"`
}

// UploadDocument creates a document in pending for the given partner. When
// the upload replaces a rejected document of the same name, the old one is
// marked superseded rather than deleted so the audit trail stays intact.
func (s *Service) UploadDocument(ctx context.Context, partnerID uuid.UUID, name, fileURL string) (models.Document, error) {
	var result models.Document

	if name == "" {
		return result, &ValidationError{Field: "name", Message: "document name is required"}
	}
	if fileURL == "" {
		return result, &ValidationError{Field: "file_url", Message: "file URL is required"}
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

		doc := models.Document{
			PartnerID: p.ID,
			Name:      name,
			FileURL:   fileURL,
			Status:    models.DocumentStatusPending,
		}
		if err := tx.CreateDocument(ctx, &doc); err != nil {
			return err
		}

		// Link the newest rejected document with the same name to its
		// replacement.
		existing, err := tx.DocumentsByPartner(ctx, p.ID)
		if err != nil {
			return err
		}
		for i := len(existing) - 1; i >= 0; i-- {
			old := existing[i]
			if old.ID != doc.ID && old.Name == name && old.Status == models.DocumentStatusRejected && old.ReplacedBy == nil {
				old.ReplacedBy = &doc.ID
				if err := tx.UpdateDocument(ctx, &old); err != nil {
					return err
				}
				break
			}
		}

		entry := models.VerificationHistoryEntry{
			PartnerID:    p.ID,
			Type:         models.HistoryTypeDocument,
			Action:       models.HistoryActionDocumentUploaded,
			By:           &p.UserID,
			DocumentID:   &doc.ID,
			DocumentName: &doc.Name,
		}
		if err := tx.AppendHistory(ctx, &entry); err != nil {
			return err
		}

		result = doc
		return nil
	})
	return result, err
}

// ApproveDocument marks a pending document approved. Approving an already
// approved document is a terminal no-op error: the document is returned
// unchanged and no ledger entry is written.
func (s *Service) ApproveDocument(ctx context.Context, partnerID, docID, reviewerID uuid.UUID, notes string) (ReviewResult, error) {
	return s.reviewDocument(ctx, partnerID, docID, reviewerID, models.DocumentStatusApproved, "", notes)
}

// RejectDocument marks a pending document rejected with the given reason
func (s *Service) RejectDocument(ctx context.Context, partnerID, docID, reviewerID uuid.UUID, reason, notes string) (ReviewResult, error) {
	if reason == "" {
		return ReviewResult{}, &ValidationError{Field: "reason", Message: "rejection reason is required"}
	}
	return s.reviewDocument(ctx, partnerID, docID, reviewerID, models.DocumentStatusRejected, reason, notes)
}

func (s *Service) reviewDocument(ctx context.Context, partnerID, docID, reviewerID uuid.UUID, decision models.DocumentStatus, reason, notes string) (ReviewResult, error) {
	var result ReviewResult

	release, err := s.locker.Acquire(ctx, partnerID)
	if err != nil {
		return result, err
	}
	defer release()

	err = s.store.Transaction(ctx, func(tx Store) error {
		doc, err := tx.DocumentByID(ctx, partnerID, docID)
		if err != nil {
			return err
		}

		if doc.Status.Terminal() {
			return &DocumentStateError{Current: doc.Status, Requested: decision}
		}

		now := time.Now()
		doc.Status = decision
		doc.ReviewedAt = &now
		doc.ReviewedBy = &reviewerID
		if notes != "" {
			doc.ReviewNotes = &notes
		}
		if reason != "" {
			doc.RejectionReason = &reason
		}

		if err := tx.UpdateDocument(ctx, &doc); err != nil {
			return err
		}

		action := models.HistoryActionDocumentApproved
		if decision == models.DocumentStatusRejected {
			action = models.HistoryActionDocumentRejected
		}
		entry := models.VerificationHistoryEntry{
			PartnerID:    partnerID,
			Type:         models.HistoryTypeDocument,
			Action:       action,
			By:           &reviewerID,
			DocumentID:   &doc.ID,
			DocumentName: &doc.Name,
		}
		if reason != "" {
			entry.Reason = &reason
		}
		if notes != "" {
			entry.Notes = &notes
		}
		if err := tx.AppendHistory(ctx, &entry); err != nil {
			return err
		}

		docs, err := tx.DocumentsByPartner(ctx, partnerID)
		if err != nil {
			return err
		}

		result = ReviewResult{Document: doc, AllDocumentsReviewed: allReviewed(docs)}
		return nil
	})
	return result, err
}
