package verification

import (
	"context"

	"github.com/google/uuid"
	"github.com/partnerly/backend/internal/models"
)

// History returns the partner's audit ledger in commit order, newest last.
// Entries are written exclusively by the transition methods on Service;
// nothing else appends to the ledger.
func (s *Service) History(ctx context.Context, partnerID uuid.UUID) ([]models.VerificationHistoryEntry, error) {
	if _, err := s.store.PartnerByID(ctx, partnerID); err != nil {
		return nil, err
	}
	return s.store.HistoryByPartner(ctx, partnerID)
}
