package verification

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerly/backend/internal/models"
)

func newTestService(cfg Config) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, NewKeyedLocker(), cfg), store
}

// seedPartner creates an incomplete partner with the company, services,
// locations and portfolio sections filled. Documents are seeded separately.
func seedPartner(t *testing.T, store *MemoryStore, mutate func(*models.PartnerProfile)) models.PartnerProfile {
	t.Helper()

	p := models.PartnerProfile{
		UserID:           uuid.New(),
		CompanyName:      "Acme Studios",
		Handle:           "acme-studios",
		OnboardingStatus: models.OnboardingStatusIncomplete,
		OnboardingStep:   models.OnboardingStepDocuments,
		Services:         []models.PartnerService{{Name: "Portrait session", PriceCents: 15000}},
		Locations:        []models.PartnerLocation{{City: "Berlin", Country: "DE"}},
		Portfolio:        []models.PortfolioImage{{FileURL: "https://cdn.example.com/p1.jpg"}},
	}
	if mutate != nil {
		mutate(&p)
	}
	require.NoError(t, store.CreatePartner(context.Background(), &p))
	return p
}

func seedDocument(t *testing.T, store *MemoryStore, partnerID uuid.UUID, name string, status models.DocumentStatus) models.Document {
	t.Helper()

	d := models.Document{
		PartnerID: partnerID,
		Name:      name,
		FileURL:   "https://cdn.example.com/docs/" + name,
		Status:    status,
	}
	require.NoError(t, store.CreateDocument(context.Background(), &d))
	return d
}

func TestSubmitForVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds with all sections complete", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)
		seedDocument(t, store, p.ID, "business-license.pdf", models.DocumentStatusPending)

		updated, err := svc.SubmitForVerification(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OnboardingStatusPendingVerification, updated.OnboardingStatus)
		assert.Equal(t, models.OnboardingStepReview, updated.OnboardingStep)
		require.NotNil(t, updated.SubmittedAt)

		entries, err := svc.History(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.HistoryTypePartner, entries[0].Type)
		assert.Equal(t, models.HistoryActionSubmitted, entries[0].Action)
	})

	t.Run("new partner with only company info reports all other sections", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.Services = nil
			p.Locations = nil
			p.Portfolio = nil
		})

		_, err := svc.SubmitForVerification(ctx, p.ID)
		var incomplete *IncompleteProfileError
		require.ErrorAs(t, err, &incomplete)
		assert.Equal(t, []string{SectionServices, SectionLocations, SectionPortfolio, SectionDocuments}, incomplete.Missing)
	})

	t.Run("exactly the all-present combination succeeds", func(t *testing.T) {
		// Exhaustive check over all 2^5 section-presence combinations.
		for mask := 0; mask < 32; mask++ {
			svc, store := newTestService(Config{})
			hasCompany := mask&1 != 0
			hasServices := mask&2 != 0
			hasLocations := mask&4 != 0
			hasPortfolio := mask&8 != 0
			hasDocuments := mask&16 != 0

			p := seedPartner(t, store, func(p *models.PartnerProfile) {
				if !hasCompany {
					p.CompanyName = ""
				}
				if !hasServices {
					p.Services = nil
				}
				if !hasLocations {
					p.Locations = nil
				}
				if !hasPortfolio {
					p.Portfolio = nil
				}
			})
			if hasDocuments {
				seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)
			}

			_, err := svc.SubmitForVerification(ctx, p.ID)
			if mask == 31 {
				assert.NoError(t, err, "mask %05b should submit", mask)
				continue
			}

			var incomplete *IncompleteProfileError
			require.ErrorAs(t, err, &incomplete, "mask %05b should fail the guard", mask)
			assert.Len(t, incomplete.Missing, 5-popcount(mask), "mask %05b", mask)

			// A failed submit must not move the partner.
			stored, getErr := store.PartnerByID(ctx, p.ID)
			require.NoError(t, getErr)
			assert.Equal(t, models.OnboardingStatusIncomplete, stored.OnboardingStatus)
		}
	})

	t.Run("rejected partner resubmits through the same guard", func(t *testing.T) {
		svc, store := newTestService(Config{})
		reason := "documents unreadable"
		reviewer := uuid.New()
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusRejected
			p.RejectionReason = &reason
			p.RejectedBy = &reviewer
		})
		seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)

		updated, err := svc.SubmitForVerification(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OnboardingStatusPendingVerification, updated.OnboardingStatus)
		assert.Nil(t, updated.RejectionReason, "rejection metadata must be cleared on resubmission")
		assert.Nil(t, updated.RejectedBy)
	})

	t.Run("submit from pending_verification is rejected", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusPendingVerification
		})

		_, err := svc.SubmitForVerification(ctx, p.ID)
		var invalid *InvalidStateTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, models.OnboardingStatusPendingVerification, invalid.Current)
		assert.Equal(t, models.OnboardingStatusPendingVerification, invalid.Requested)
	})

	t.Run("unknown partner", func(t *testing.T) {
		svc, _ := newTestService(Config{})
		_, err := svc.SubmitForVerification(ctx, uuid.New())
		var notFound *NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestVerifyPartner(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies a pending partner", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusPendingVerification
		})
		reviewer := uuid.New()

		updated, err := svc.VerifyPartner(ctx, p.ID, reviewer, "docs look good")
		require.NoError(t, err)
		assert.Equal(t, models.OnboardingStatusVerified, updated.OnboardingStatus)
		assert.True(t, updated.IsVerified())
		require.NotNil(t, updated.VerifiedBy)
		assert.Equal(t, reviewer, *updated.VerifiedBy)
		require.NotNil(t, updated.VerificationDate)

		entries, err := svc.History(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.HistoryActionVerified, entries[0].Action)
	})

	t.Run("verified flag always derives from status", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusPendingVerification
		})

		for _, status := range []models.OnboardingStatus{
			models.OnboardingStatusIncomplete,
			models.OnboardingStatusPendingVerification,
			models.OnboardingStatusRejected,
		} {
			p.OnboardingStatus = status
			assert.False(t, p.IsVerified(), "status %s", status)
		}

		p.OnboardingStatus = models.OnboardingStatusPendingVerification
		require.NoError(t, store.UpdatePartner(ctx, &p))
		updated, err := svc.VerifyPartner(ctx, p.ID, uuid.New(), "")
		require.NoError(t, err)
		assert.True(t, updated.IsVerified())
	})

	t.Run("verify on incomplete partner fails with typed error", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, nil)

		_, err := svc.VerifyPartner(ctx, p.ID, uuid.New(), "")
		var invalid *InvalidStateTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, models.OnboardingStatusIncomplete, invalid.Current)
		assert.Equal(t, models.OnboardingStatusVerified, invalid.Requested)

		// Failure must leave no ledger entry behind.
		entries, histErr := svc.History(ctx, p.ID)
		require.NoError(t, histErr)
		assert.Empty(t, entries)
	})

	t.Run("verify is allowed with documents still pending", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusPendingVerification
		})
		seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)

		_, err := svc.VerifyPartner(ctx, p.ID, uuid.New(), "override: docs checked offline")
		assert.NoError(t, err)
	})
}

func TestRejectPartner(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a reason", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusPendingVerification
		})

		_, err := svc.RejectPartner(ctx, p.ID, uuid.New(), "", "notes")
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "reason", validation.Field)
	})

	t.Run("rejects a pending partner", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusPendingVerification
		})
		reviewer := uuid.New()

		updated, err := svc.RejectPartner(ctx, p.ID, reviewer, "incomplete business license", "resubmit with a current license")
		require.NoError(t, err)
		assert.Equal(t, models.OnboardingStatusRejected, updated.OnboardingStatus)
		assert.False(t, updated.IsVerified())
		require.NotNil(t, updated.RejectionReason)
		assert.Equal(t, "incomplete business license", *updated.RejectionReason)
		require.NotNil(t, updated.RejectedBy)
		assert.Equal(t, reviewer, *updated.RejectedBy)

		entries, err := svc.History(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.HistoryActionRejected, entries[0].Action)
		require.NotNil(t, entries[0].Reason)
		assert.Equal(t, "incomplete business license", *entries[0].Reason)
	})

	t.Run("reject on verified partner fails", func(t *testing.T) {
		svc, store := newTestService(Config{})
		p := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusVerified
		})

		_, err := svc.RejectPartner(ctx, p.ID, uuid.New(), "late", "")
		var invalid *InvalidStateTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, models.OnboardingStatusVerified, invalid.Current)
	})
}

func TestLedgerOrdering(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(Config{})
	p := seedPartner(t, store, nil)
	doc := seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)
	reviewer := uuid.New()

	_, err := svc.SubmitForVerification(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.ApproveDocument(ctx, p.ID, doc.ID, reviewer, "")
	require.NoError(t, err)
	_, err = svc.VerifyPartner(ctx, p.ID, reviewer, "")
	require.NoError(t, err)

	entries, err := svc.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	wantActions := []models.HistoryAction{
		models.HistoryActionSubmitted,
		models.HistoryActionDocumentApproved,
		models.HistoryActionVerified,
	}
	for i, e := range entries {
		assert.Equal(t, wantActions[i], e.Action)
		if i > 0 {
			assert.False(t, e.CreatedAt.Before(entries[i-1].CreatedAt), "ledger must be in non-decreasing commit order")
		}
	}
}

func TestGetOnboardingStatus(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(Config{})
	p := seedPartner(t, store, func(p *models.PartnerProfile) {
		p.Portfolio = nil
	})

	summary, err := svc.GetOnboardingStatus(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingStatusIncomplete, summary.OnboardingStatus)
	assert.False(t, summary.Verified)
	assert.Equal(t, []string{SectionPortfolio, SectionDocuments}, summary.MissingSections)
	assert.Equal(t, 60, summary.OnboardingProgress)
	assert.False(t, summary.AllDocumentsReviewed)
}

func TestConcurrentDecisionsAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(Config{})
	p := seedPartner(t, store, func(p *models.PartnerProfile) {
		p.OnboardingStatus = models.OnboardingStatusPendingVerification
	})
	reviewer := uuid.New()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.VerifyPartner(ctx, p.ID, reviewer, "")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.RejectPartner(ctx, p.ID, reviewer, "failed checks", "")
	}()
	wg.Wait()

	// Exactly one decision wins; the other observes the new state and is
	// rejected by the guard.
	var invalidCount int
	for _, err := range errs {
		if err == nil {
			continue
		}
		var invalid *InvalidStateTransitionError
		require.ErrorAs(t, err, &invalid)
		invalidCount++
	}
	assert.Equal(t, 1, invalidCount)

	entries, err := svc.History(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func popcount(mask int) int {
	n := 0
	for mask != 0 {
		n += mask & 1
		mask >>= 1
	}
	return n
}
