package verification

import (
	"fmt"
	"strings"

	"github.com/partnerly/backend/internal/models"
)

// ValidationError reports a missing or malformed required field, e.g. an
// empty rejection reason.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// IncompleteProfileError reports a submit attempt with one or more
// onboarding sections still empty. Missing names the sections.
type IncompleteProfileError struct {
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("profile incomplete: missing %s", strings.Join(e.Missing, ", "))
}

// InvalidStateTransitionError reports an action not permitted from the
// partner's current state. It is surfaced to the caller, never silently
// corrected to the closest valid transition.
type InvalidStateTransitionError struct {
	Current   models.OnboardingStatus
	Requested models.OnboardingStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.Current, e.Requested)
}

// DocumentStateError reports a review decision on a document that is no
// longer pending.
type DocumentStateError struct {
	Current   models.DocumentStatus
	Requested models.DocumentStatus
}

func (e *DocumentStateError) Error() string {
	return fmt.Sprintf("document already %s, cannot mark %s", e.Current, e.Requested)
}

// NotFoundError reports an unknown partner or document ID
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConcurrencyConflictError reports a lost race for the per-partner lock.
// Callers should re-fetch the partner's state and retry.
type ConcurrencyConflictError struct {
	PartnerID string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent update in progress for partner %s, re-fetch and retry", e.PartnerID)
}

// UpstreamUnavailableError reports an unreachable collaborator (identity
// provider, object storage). It is never treated as a state change.
type UpstreamUnavailableError struct {
	Upstream string
	Err      error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Upstream, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}
