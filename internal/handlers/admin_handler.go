package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partnerly/backend/internal/middleware"
	"github.com/partnerly/backend/internal/models"
	"github.com/partnerly/backend/internal/verification"
)

// AdminHandler serves the admin review surface
type AdminHandler struct {
	db       *gorm.DB
	svc      *verification.Service
	notifier Notifier
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, svc *verification.Service, notifier Notifier) *AdminHandler {
	return &AdminHandler{db: db, svc: svc, notifier: notifier}
}

// DecisionRequest is the body for verify and reject decisions
type DecisionRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// BulkRequest is the body for bulk decisions
type BulkRequest struct {
	Action     string      `json:"action" binding:"required"`
	PartnerIDs []uuid.UUID `json:"partner_ids" binding:"required"`
	Reason     string      `json:"reason"`
	Notes      string      `json:"notes"`
}

// ListPartners returns partners filtered by status, oldest submission first
func (h *AdminHandler) ListPartners(c *gin.Context) {
	status := models.OnboardingStatus(c.DefaultQuery("status", string(models.OnboardingStatusPendingVerification)))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	partners, total, err := h.svc.Store().PartnersByStatus(c.Request.Context(), status, (page-1)*pageSize, pageSize)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"partners":  partners,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetPartner returns one partner with sections, documents and the
// all-documents-reviewed signal
func (h *AdminHandler) GetPartner(c *gin.Context) {
	partnerID, ok := h.partnerID(c)
	if !ok {
		return
	}

	var partner models.PartnerProfile
	err := h.db.
		Preload("Services").
		Preload("Locations").
		Preload("Portfolio").
		Preload("Documents").
		First(&partner, "id = ?", partnerID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load partner"})
		}
		return
	}

	summary, err := h.svc.GetOnboardingStatus(c.Request.Context(), partner.ID)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"partner":                partner,
		"verified":               partner.IsVerified(),
		"missing_sections":       summary.MissingSections,
		"all_documents_reviewed": summary.AllDocumentsReviewed,
	})
}

// VerifyPartner approves a pending submission
func (h *AdminHandler) VerifyPartner(c *gin.Context) {
	partnerID, ok := h.partnerID(c)
	if !ok {
		return
	}
	reviewerID, _ := middleware.CurrentUserID(c)

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	partner, err := h.svc.VerifyPartner(c.Request.Context(), partnerID, reviewerID, req.Notes)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	if err := h.notifier.EnqueueDecisionNotification(partner.ID, string(models.OnboardingStatusVerified), ""); err != nil {
		log.Printf("failed to enqueue decision notification for %s: %v", partner.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Partner verified",
		"partner": partner,
	})
}

// RejectPartner rejects a pending submission with a required reason
func (h *AdminHandler) RejectPartner(c *gin.Context) {
	partnerID, ok := h.partnerID(c)
	if !ok {
		return
	}
	reviewerID, _ := middleware.CurrentUserID(c)

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	partner, err := h.svc.RejectPartner(c.Request.Context(), partnerID, reviewerID, req.Reason, req.Notes)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	if err := h.notifier.EnqueueDecisionNotification(partner.ID, string(models.OnboardingStatusRejected), req.Reason); err != nil {
		log.Printf("failed to enqueue decision notification for %s: %v", partner.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Partner rejected",
		"partner": partner,
	})
}

// ApproveDocument approves one document
func (h *AdminHandler) ApproveDocument(c *gin.Context) {
	partnerID, ok := h.partnerID(c)
	if !ok {
		return
	}
	docID, err := uuid.Parse(c.Param("docId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}
	reviewerID, _ := middleware.CurrentUserID(c)

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.ApproveDocument(c.Request.Context(), partnerID, docID, reviewerID, req.Notes)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document":               result.Document,
		"all_documents_reviewed": result.AllDocumentsReviewed,
	})
}

// RejectDocument rejects one document with a required reason
func (h *AdminHandler) RejectDocument(c *gin.Context) {
	partnerID, ok := h.partnerID(c)
	if !ok {
		return
	}
	docID, err := uuid.Parse(c.Param("docId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}
	reviewerID, _ := middleware.CurrentUserID(c)

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.RejectDocument(c.Request.Context(), partnerID, docID, reviewerID, req.Reason, req.Notes)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	if err := h.notifier.EnqueueDocumentRejectedNotification(partnerID, result.Document.Name, req.Reason); err != nil {
		log.Printf("failed to enqueue document notification for %s: %v", partnerID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"document":               result.Document,
		"all_documents_reviewed": result.AllDocumentsReviewed,
	})
}

// BulkDecision applies a verify or reject decision to a batch of partners
func (h *AdminHandler) BulkDecision(c *gin.Context) {
	reviewerID, _ := middleware.CurrentUserID(c)

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.ApplyBulk(c.Request.Context(), verification.BulkAction(req.Action), req.PartnerIDs, reviewerID, req.Reason, req.Notes)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	for _, id := range result.Succeeded {
		reason := ""
		decision := string(models.OnboardingStatusVerified)
		if verification.BulkAction(req.Action) == verification.BulkActionReject {
			decision = string(models.OnboardingStatusRejected)
			reason = req.Reason
		}
		if err := h.notifier.EnqueueDecisionNotification(id, decision, reason); err != nil {
			log.Printf("failed to enqueue decision notification for %s: %v", id, err)
		}
	}

	c.JSON(http.StatusOK, result)
}

// PartnerHistory returns the full verification history for one partner
func (h *AdminHandler) PartnerHistory(c *gin.Context) {
	partnerID, ok := h.partnerID(c)
	if !ok {
		return
	}

	entries, err := h.svc.History(c.Request.Context(), partnerID)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (h *AdminHandler) partnerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner ID"})
		return uuid.Nil, false
	}
	return id, true
}
