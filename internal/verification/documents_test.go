package verification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerly/backend/internal/models"
)

func TestUploadDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending document with a ledger entry", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)

		doc, err := svc.UploadDocument(ctx, p.ID, "insurance.pdf", "https://cdn.example.com/docs/insurance.pdf")
		require.NoError(t, err)
		assert.Equal(t, models.DocumentStatusPending, doc.Status)
		assert.Equal(t, p.ID, doc.PartnerID)

		entries, err := svc.History(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.HistoryTypeDocument, entries[0].Type)
		assert.Equal(t, models.HistoryActionDocumentUploaded, entries[0].Action)
		require.NotNil(t, entries[0].DocumentName)
		assert.Equal(t, "insurance.pdf", *entries[0].DocumentName)
	})

	t.Run("requires name and file URL", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)

		var validation *ValidationError
		_, err := svc.UploadDocument(ctx, p.ID, "", "https://cdn.example.com/x.pdf")
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "name", validation.Field)

		_, err = svc.UploadDocument(ctx, p.ID, "x.pdf", "")
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "file_url", validation.Field)
	})

	t.Run("links the rejected predecessor to its replacement", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)
		old := seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusRejected)

		replacement, err := svc.UploadDocument(ctx, p.ID, "license.pdf", "https://cdn.example.com/docs/license-v2.pdf")
		require.NoError(t, err)

		stored, err := store.DocumentByID(ctx, p.ID, old.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.ReplacedBy)
		assert.Equal(t, replacement.ID, *stored.ReplacedBy)
	})

	t.Run("unknown partner", func(t *testing.T) {
		svc, _ := newTestService(Config{})
		_, err := svc.UploadDocument(ctx, uuid.New(), "x.pdf", "https://cdn.example.com/x.pdf")
		var notFound *NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestApproveDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("approves a pending document", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)
		doc := seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)
		reviewer := uuid.New()

		result, err := svc.ApproveDocument(ctx, p.ID, doc.ID, reviewer, "clear scan")
		require.NoError(t, err)
		assert.Equal(t, models.DocumentStatusApproved, result.Document.Status)
		require.NotNil(t, result.Document.ReviewedBy)
		assert.Equal(t, reviewer, *result.Document.ReviewedBy)
		require.NotNil(t, result.Document.ReviewedAt)
		assert.True(t, result.AllDocumentsReviewed)
	})

	t.Run("second approve is a terminal no-op error without a ledger entry", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)
		doc := seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)
		reviewer := uuid.New()

		first, err := svc.ApproveDocument(ctx, p.ID, doc.ID, reviewer, "")
		require.NoError(t, err)

		_, err = svc.ApproveDocument(ctx, p.ID, doc.ID, reviewer, "")
		var state *DocumentStateError
		require.ErrorAs(t, err, &state)
		assert.Equal(t, models.DocumentStatusApproved, state.Current)

		// Still exactly one review entry, and the document is unchanged.
		entries, err := svc.History(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		stored, err := store.DocumentByID(ctx, p.ID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Document.Status, stored.Status)
		assert.Equal(t, *first.Document.ReviewedAt, *stored.ReviewedAt)
	})

	t.Run("completeness signal stays false while any document is pending", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)
		first := seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)
		seedDocument(t, store, p.ID, "insurance.pdf", models.DocumentStatusPending)

		result, err := svc.ApproveDocument(ctx, p.ID, first.ID, uuid.New(), "")
		require.NoError(t, err)
		assert.False(t, result.AllDocumentsReviewed)
	})

	t.Run("document transitions never change the partner status", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusPendingVerification
		})
		doc := seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)

		_, err := svc.ApproveDocument(ctx, p.ID, doc.ID, uuid.New(), "")
		require.NoError(t, err)

		stored, err := store.PartnerByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OnboardingStatusPendingVerification, stored.OnboardingStatus)
	})
}

func TestRejectDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a reason", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)
		doc := seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)

		_, err := svc.RejectDocument(ctx, p.ID, doc.ID, uuid.New(), "", "")
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "reason", validation.Field)
	})

	t.Run("rejects a pending document with the reason on the ledger", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)
		doc := seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)

		result, err := svc.RejectDocument(ctx, p.ID, doc.ID, uuid.New(), "blurry", "rescan at 300dpi")
		require.NoError(t, err)
		assert.Equal(t, models.DocumentStatusRejected, result.Document.Status)
		require.NotNil(t, result.Document.RejectionReason)
		assert.Equal(t, "blurry", *result.Document.RejectionReason)

		entries, err := svc.History(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.HistoryActionDocumentRejected, entries[0].Action)
		require.NotNil(t, entries[0].Reason)
		assert.Equal(t, "blurry", *entries[0].Reason)
	})

	t.Run("reject after approve fails", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)
		doc := seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusApproved)

		_, err := svc.RejectDocument(ctx, p.ID, doc.ID, uuid.New(), "blurry", "")
		var state *DocumentStateError
		require.ErrorAs(t, err, &state)
		assert.Equal(t, models.DocumentStatusApproved, state.Current)
		assert.Equal(t, models.DocumentStatusRejected, state.Requested)
	})
}

func TestDocumentResubmissionPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected documents count by default", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusRejected
		})
		seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusRejected)

		_, err := svc.SubmitForVerification(ctx, p.ID)
		assert.NoError(t, err)
	})

	t.Run("resubmission requires fresh documents when configured", func(t *testing.T) {
		svc, store := newTestService(Config{RequireDocumentResubmission: true})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusRejected
		})
		seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusRejected)

		_, err := svc.SubmitForVerification(ctx, p.ID)
		var incomplete *IncompleteProfileError
		require.ErrorAs(t, err, &incomplete)
		assert.Equal(t, []string{SectionDocuments}, incomplete.Missing)

		seedDocument(t, store, p.ID, "license-v2.pdf", models.DocumentStatusPending)
		_, err = svc.SubmitForVerification(ctx, p.ID)
		assert.NoError(t, err)
	})
}
