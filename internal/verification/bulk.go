package verification

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// BulkAction is an admin decision applied to a batch of partners
type BulkAction string

const (
	BulkActionVerify BulkAction = "verify"
	BulkActionReject BulkAction = "reject"
)

// BulkFailure records one partner the batch could not transition
type BulkFailure struct {
	PartnerID uuid.UUID `json:"partner_id"`
	Error     string    `json:"error"`
}

// BulkResult reports the outcome of a bulk decision per partner
type BulkResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// ApplyBulk applies a verify or reject decision to every partner in the
// batch. Partners are processed concurrently and independently: a guard
// failure on one (e.g. it is not pending_verification) is recorded as a
// per-partner failure and never aborts the rest of the batch. For reject,
// the reason is required up front and applied identically to every partner.
func (s *Service) ApplyBulk(ctx context.Context, action BulkAction, partnerIDs []uuid.UUID, reviewerID uuid.UUID, reason, notes string) (BulkResult, error) {
	switch action {
	case BulkActionVerify, BulkActionReject:
	default:
		return BulkResult{}, &ValidationError{Field: "action", Message: "action must be verify or reject"}
	}
	if action == BulkActionReject && reason == "" {
		return BulkResult{}, &ValidationError{Field: "reason", Message: "rejection reason is required for bulk reject"}
	}
	if len(partnerIDs) == 0 {
		return BulkResult{}, &ValidationError{Field: "partner_ids", Message: "at least one partner is required"}
	}

	errs := make([]error, len(partnerIDs))
	var wg sync.WaitGroup
	for i, id := range partnerIDs {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			var err error
			if action == BulkActionVerify {
				_, err = s.VerifyPartner(ctx, id, reviewerID, notes)
			} else {
				_, err = s.RejectPartner(ctx, id, reviewerID, reason, notes)
			}
			errs[i] = err
		}(i, id)
	}
	wg.Wait()

	result := BulkResult{
		Succeeded: make([]uuid.UUID, 0, len(partnerIDs)),
		Failed:    make([]BulkFailure, 0),
	}
	for i, id := range partnerIDs {
		if errs[i] != nil {
			result.Failed = append(result.Failed, BulkFailure{PartnerID: id, Error: errs[i].Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}
