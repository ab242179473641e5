package verification

import "github.com/partnerly/backend/internal/models"

// RouteTarget is a client navigation target. Every entry point (post-login,
// post-signup, dashboard mount, onboarding mount) resolves its navigation
// through Resolve; there is exactly one copy of the decision table.
type RouteTarget string

const (
	RouteLogin                  RouteTarget = "LOGIN"
	RouteVerifyEmail            RouteTarget = "VERIFY_EMAIL"
	RouteRegisterBackendAccount RouteTarget = "REGISTER_BACKEND_ACCOUNT"
	RouteOnboarding             RouteTarget = "ONBOARDING"
	RouteVerificationPending    RouteTarget = "VERIFICATION_PENDING"
	RouteDashboard              RouteTarget = "DASHBOARD"
)

// RouteInput is the account state a routing decision is made from
type RouteInput struct {
	Authenticated        bool
	EmailVerified        bool
	BackendAccountExists bool
	Status               models.OnboardingStatus
}

// Resolve maps account state to a navigation target. Rules are evaluated
// top to bottom, first match wins. Any unrecognized or missing status
// degrades to VERIFICATION_PENDING; dashboard access is never granted on
// ambiguous state.
func Resolve(in RouteInput) RouteTarget {
	if !in.Authenticated {
		return RouteLogin
	}
	if !in.EmailVerified {
		return RouteVerifyEmail
	}
	if !in.BackendAccountExists {
		return RouteRegisterBackendAccount
	}

	switch in.Status {
	case models.OnboardingStatusIncomplete:
		return RouteOnboarding
	case models.OnboardingStatusPendingVerification, models.OnboardingStatusRejected:
		return RouteVerificationPending
	case models.OnboardingStatusVerified:
		return RouteDashboard
	default:
		return RouteVerificationPending
	}
}
