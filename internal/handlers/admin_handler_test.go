package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/partnerly/backend/internal/models"
	"github.com/partnerly/backend/internal/verification"
)

// MockNotifier is a mock implementation of the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) EnqueueDecisionNotification(partnerID uuid.UUID, decision, reason string) error {
	args := m.Called(partnerID, decision, reason)
	return args.Error(0)
}

func (m *MockNotifier) EnqueueDocumentRejectedNotification(partnerID uuid.UUID, documentName, reason string) error {
	args := m.Called(partnerID, documentName, reason)
	return args.Error(0)
}

func (m *MockNotifier) EnqueueSubmissionNotification(partnerID uuid.UUID) error {
	args := m.Called(partnerID)
	return args.Error(0)
}

func (m *MockNotifier) EnqueueVerificationEmail(userID uuid.UUID, token string) error {
	args := m.Called(userID, token)
	return args.Error(0)
}

func (m *MockNotifier) EnqueuePasswordResetEmail(userID uuid.UUID, token string) error {
	args := m.Called(userID, token)
	return args.Error(0)
}

// setupAdminRouter wires the admin decision endpoints against the in-memory
// store, with the reviewing admin already authenticated.
func setupAdminRouter(notifier *MockNotifier, adminID uuid.UUID) (*gin.Engine, *verification.MemoryStore) {
	gin.SetMode(gin.TestMode)

	store := verification.NewMemoryStore()
	svc := verification.NewService(store, verification.NewKeyedLocker(), verification.Config{})
	handler := NewAdminHandler(nil, svc, notifier)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Set("user_id", adminID)
		c.Set("is_admin", true)
	})

	group := router.Group("/api/admin/partners")
	group.POST("/bulk", handler.BulkDecision)
	group.POST("/:id/verify", handler.VerifyPartner)
	group.POST("/:id/reject", handler.RejectPartner)
	group.POST("/:id/documents/:docId/approve", handler.ApproveDocument)
	group.POST("/:id/documents/:docId/reject", handler.RejectDocument)

	return router, store
}

func seedPartnerWithStatus(t *testing.T, store *verification.MemoryStore, status models.OnboardingStatus) models.PartnerProfile {
	t.Helper()

	now := time.Now()
	partner := models.PartnerProfile{
		UserID:           uuid.New(),
		CompanyName:      "Acme Studios",
		Handle:           "acme-studios",
		ContactPhone:     "+15550100",
		OnboardingStep:   models.OnboardingStepReview,
		OnboardingStatus: status,
		SubmittedAt:      &now,
	}
	require.NoError(t, store.CreatePartner(context.Background(), &partner))
	return partner
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest("POST", path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAdminVerifyEndpoint(t *testing.T) {
	adminID := uuid.New()
	notifier := new(MockNotifier)
	router, store := setupAdminRouter(notifier, adminID)
	partner := seedPartnerWithStatus(t, store, models.OnboardingStatusPendingVerification)

	notifier.On("EnqueueDecisionNotification", partner.ID, string(models.OnboardingStatusVerified), "").Return(nil)

	recorder := postJSON(t, router, "/api/admin/partners/"+partner.ID.String()+"/verify", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	stored, err := store.PartnerByID(context.Background(), partner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingStatusVerified, stored.OnboardingStatus)
	require.NotNil(t, stored.VerifiedBy)
	assert.Equal(t, adminID, *stored.VerifiedBy)

	notifier.AssertExpectations(t)
}

func TestAdminVerifyEndpointConflictBody(t *testing.T) {
	notifier := new(MockNotifier)
	router, store := setupAdminRouter(notifier, uuid.New())
	partner := seedPartnerWithStatus(t, store, models.OnboardingStatusIncomplete)

	recorder := postJSON(t, router, "/api/admin/partners/"+partner.ID.String()+"/verify", nil)
	require.Equal(t, http.StatusConflict, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, string(models.OnboardingStatusIncomplete), body["current_status"])
	assert.Equal(t, string(models.OnboardingStatusVerified), body["requested_status"])

	// No state change, no notification.
	notifier.AssertNotCalled(t, "EnqueueDecisionNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminRejectEndpoint(t *testing.T) {
	adminID := uuid.New()
	notifier := new(MockNotifier)
	router, store := setupAdminRouter(notifier, adminID)
	partner := seedPartnerWithStatus(t, store, models.OnboardingStatusPendingVerification)

	notifier.On("EnqueueDecisionNotification", partner.ID, string(models.OnboardingStatusRejected), "blurry documents").Return(nil)

	recorder := postJSON(t, router, "/api/admin/partners/"+partner.ID.String()+"/reject", DecisionRequest{
		Reason: "blurry documents",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	stored, err := store.PartnerByID(context.Background(), partner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingStatusRejected, stored.OnboardingStatus)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "blurry documents", *stored.RejectionReason)

	notifier.AssertExpectations(t)
}

func TestAdminRejectEndpointRequiresReason(t *testing.T) {
	notifier := new(MockNotifier)
	router, store := setupAdminRouter(notifier, uuid.New())
	partner := seedPartnerWithStatus(t, store, models.OnboardingStatusPendingVerification)

	recorder := postJSON(t, router, "/api/admin/partners/"+partner.ID.String()+"/reject", DecisionRequest{})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "reason", body["field"])

	stored, err := store.PartnerByID(context.Background(), partner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingStatusPendingVerification, stored.OnboardingStatus)
}

func TestAdminDocumentApproveEndpoint(t *testing.T) {
	notifier := new(MockNotifier)
	router, store := setupAdminRouter(notifier, uuid.New())
	partner := seedPartnerWithStatus(t, store, models.OnboardingStatusPendingVerification)

	doc := models.Document{
		PartnerID: partner.ID,
		Name:      "business-license",
		FileURL:   "https://files.example.com/license.pdf",
		Status:    models.DocumentStatusPending,
	}
	require.NoError(t, store.CreateDocument(context.Background(), &doc))

	path := "/api/admin/partners/" + partner.ID.String() + "/documents/" + doc.ID.String() + "/approve"
	recorder := postJSON(t, router, path, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Document             models.Document `json:"document"`
		AllDocumentsReviewed bool            `json:"all_documents_reviewed"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, models.DocumentStatusApproved, body.Document.Status)
	assert.True(t, body.AllDocumentsReviewed)

	// Approving the only document never touches the partner status.
	stored, err := store.PartnerByID(context.Background(), partner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingStatusPendingVerification, stored.OnboardingStatus)
}

func TestAdminBulkEndpointIsolatesFailures(t *testing.T) {
	adminID := uuid.New()
	notifier := new(MockNotifier)
	router, store := setupAdminRouter(notifier, adminID)

	pending := seedPartnerWithStatus(t, store, models.OnboardingStatusPendingVerification)
	incomplete := seedPartnerWithStatus(t, store, models.OnboardingStatusIncomplete)

	notifier.On("EnqueueDecisionNotification", pending.ID, string(models.OnboardingStatusVerified), "").Return(nil)

	recorder := postJSON(t, router, "/api/admin/partners/bulk", BulkRequest{
		Action:     string(verification.BulkActionVerify),
		PartnerIDs: []uuid.UUID{pending.ID, incomplete.ID},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var result verification.BulkResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, []uuid.UUID{pending.ID}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, incomplete.ID, result.Failed[0].PartnerID)

	stored, err := store.PartnerByID(context.Background(), incomplete.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingStatusIncomplete, stored.OnboardingStatus)

	notifier.AssertExpectations(t)
}
