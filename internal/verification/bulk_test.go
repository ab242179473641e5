package verification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerly/backend/internal/models"
)

func TestApplyBulk(t *testing.T) {
	ctx := context.Background()

	submitted := func(t *testing.T, svc *Service, store *MemoryStore) models.PartnerProfile {
		t.Helper()
		p := seedPartner(t, store, nil)
		seedDocument(t, store, p.ID, "license.pdf", models.DocumentStatusPending)
		updated, err := svc.SubmitForVerification(ctx, p.ID)
		require.NoError(t, err)
		return updated
	}

	t.Run("verifies a whole batch", func(t *testing.T) {
		svc, store := newTestService(Config{})
		reviewer := uuid.New()

		ids := make([]uuid.UUID, 0, 3)
		for i := 0; i < 3; i++ {
			ids = append(ids, submitted(t, svc, store).ID)
		}

		result, err := svc.ApplyBulk(ctx, BulkActionVerify, ids, reviewer, "", "batch cleared")
		require.NoError(t, err)
		assert.ElementsMatch(t, ids, result.Succeeded)
		assert.Empty(t, result.Failed)

		for _, id := range ids {
			p, err := store.PartnerByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, models.OnboardingStatusVerified, p.OnboardingStatus)
		}
	})

	t.Run("a guard failure on one partner does not abort the rest", func(t *testing.T) {
		svc, store := newTestService(Config{})
		reviewer := uuid.New()

		a := submitted(t, svc, store)
		b := seedPartner(t, store, func(p *models.PartnerProfile) {
			p.OnboardingStatus = models.OnboardingStatusVerified
		})

		result, err := svc.ApplyBulk(ctx, BulkActionReject, []uuid.UUID{a.ID, b.ID}, reviewer, "policy breach", "")
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a.ID}, result.Succeeded)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, b.ID, result.Failed[0].PartnerID)
		assert.NotEmpty(t, result.Failed[0].Error)

		storedA, err := store.PartnerByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OnboardingStatusRejected, storedA.OnboardingStatus)

		// The failed partner keeps its state and gains no ledger entry.
		storedB, err := store.PartnerByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OnboardingStatusVerified, storedB.OnboardingStatus)
		entries, err := svc.History(ctx, b.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("unknown partners are reported without aborting", func(t *testing.T) {
		svc, store := newTestService(Config{})
		a := submitted(t, svc, store)
		ghost := uuid.New()

		result, err := svc.ApplyBulk(ctx, BulkActionVerify, []uuid.UUID{ghost, a.ID}, uuid.New(), "", "")
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a.ID}, result.Succeeded)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, ghost, result.Failed[0].PartnerID)
	})

	t.Run("the reject reason is validated before any partner is touched", func(t *testing.T) {
		svc, store := newTestService(Config{})
		a := submitted(t, svc, store)

		_, err := svc.ApplyBulk(ctx, BulkActionReject, []uuid.UUID{a.ID}, uuid.New(), "", "")
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "reason", validation.Field)

		stored, err := store.PartnerByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OnboardingStatusPendingVerification, stored.OnboardingStatus)
	})

	t.Run("rejects unknown actions and empty batches", func(t *testing.T) {
		svc, _ := newTestService(Config{})
		var validation *ValidationError

		_, err := svc.ApplyBulk(ctx, BulkAction("suspend"), []uuid.UUID{uuid.New()}, uuid.New(), "", "")
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "action", validation.Field)

		_, err = svc.ApplyBulk(ctx, BulkActionVerify, nil, uuid.New(), "", "")
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "partner_ids", validation.Field)
	})

	t.Run("identical reason lands on every rejected partner", func(t *testing.T) {
		svc, store := newTestService(Config{})
		reviewer := uuid.New()
		ids := []uuid.UUID{submitted(t, svc, store).ID, submitted(t, svc, store).ID}

		result, err := svc.ApplyBulk(ctx, BulkActionReject, ids, reviewer, "incomplete paperwork", "resubmit within 30 days")
		require.NoError(t, err)
		assert.Len(t, result.Succeeded, 2)

		for _, id := range ids {
			p, err := store.PartnerByID(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, p.RejectionReason)
			assert.Equal(t, "incomplete paperwork", *p.RejectionReason)
			require.NotNil(t, p.RejectedBy)
			assert.Equal(t, reviewer, *p.RejectedBy)
		}
	})
}
