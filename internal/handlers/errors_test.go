package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerly/backend/internal/models"
	"github.com/partnerly/backend/internal/verification"
)

func respond(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	respondVerificationError(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder.Code, body
}

func TestRespondVerificationErrorValidation(t *testing.T) {
	code, body := respond(t, &verification.ValidationError{Field: "reason", Message: "reason is required"})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "reason", body["field"])
}

func TestRespondVerificationErrorIncompleteProfile(t *testing.T) {
	code, body := respond(t, &verification.IncompleteProfileError{Missing: []string{"services", "documents"}})

	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []interface{}{"services", "documents"}, body["missing_sections"])
}

func TestRespondVerificationErrorStateTransition(t *testing.T) {
	code, body := respond(t, &verification.InvalidStateTransitionError{
		Current:   models.OnboardingStatusVerified,
		Requested: models.OnboardingStatusVerified,
	})

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(models.OnboardingStatusVerified), body["current_status"])
}

func TestRespondVerificationErrorDocumentState(t *testing.T) {
	code, _ := respond(t, &verification.DocumentStateError{
		Current:   models.DocumentStatusApproved,
		Requested: models.DocumentStatusRejected,
	})

	assert.Equal(t, http.StatusConflict, code)
}

func TestRespondVerificationErrorNotFound(t *testing.T) {
	code, _ := respond(t, &verification.NotFoundError{Resource: "partner", ID: "abc"})

	assert.Equal(t, http.StatusNotFound, code)
}

func TestRespondVerificationErrorConcurrencyConflict(t *testing.T) {
	code, _ := respond(t, &verification.ConcurrencyConflictError{PartnerID: "abc"})

	assert.Equal(t, http.StatusConflict, code)
}

func TestRespondVerificationErrorUpstreamUnavailable(t *testing.T) {
	code, _ := respond(t, &verification.UpstreamUnavailableError{Upstream: "redis", Err: errors.New("dial timeout")})

	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestRespondVerificationErrorUnknownDefaultsTo500(t *testing.T) {
	code, body := respond(t, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, code)
	// Internal details never leak into the response body.
	assert.NotContains(t, body["error"], "boom")
}

func TestRespondVerificationErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("loading partner"), &verification.NotFoundError{Resource: "partner", ID: "abc"})
	code, _ := respond(t, wrapped)

	assert.Equal(t, http.StatusNotFound, code)
}
