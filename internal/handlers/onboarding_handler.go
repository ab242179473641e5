package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/partnerly/backend/internal/middleware"
	"github.com/partnerly/backend/internal/models"
	"github.com/partnerly/backend/internal/services/storage"
	"github.com/partnerly/backend/internal/verification"
)

// maxUploadBytes caps document and portfolio uploads at 10 MB
const maxUploadBytes = 10 << 20

// OnboardingHandler handles the partner onboarding wizard
type OnboardingHandler struct {
	db       *gorm.DB
	svc      *verification.Service
	uploader storage.Uploader
	notifier Notifier
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(db *gorm.DB, svc *verification.Service, uploader storage.Uploader, notifier Notifier) *OnboardingHandler {
	return &OnboardingHandler{db: db, svc: svc, uploader: uploader, notifier: notifier}
}

// CompanyRequest is the company info step of the wizard
type CompanyRequest struct {
	CompanyName     string   `json:"company_name" binding:"required"`
	Description     string   `json:"description"`
	Website         *string  `json:"website"`
	ContactPhone    string   `json:"contact_phone"`
	Specializations []string `json:"specializations"`
}

// ServiceRequest is one service in the services step
type ServiceRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents" binding:"required"`
	Currency     string `json:"currency"`
	DurationMins int    `json:"duration_mins"`
}

// LocationRequest is one location in the locations step
type LocationRequest struct {
	City    string `json:"city" binding:"required"`
	Region  string `json:"region"`
	Country string `json:"country" binding:"required"`
}

// SaveCompany creates or updates the company info section
func (h *OnboardingHandler) SaveCompany(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var partner models.PartnerProfile
	err := h.db.Where("user_id = ?", userID).First(&partner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		partner = models.PartnerProfile{
			UserID:           userID,
			OnboardingStatus: models.OnboardingStatusIncomplete,
			OnboardingStep:   models.OnboardingStepCompany,
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load partner profile"})
		return
	}

	partner.CompanyName = req.CompanyName
	partner.Description = req.Description
	partner.Website = req.Website
	partner.ContactPhone = req.ContactPhone
	partner.Specializations = req.Specializations
	if partner.Handle == "" {
		handle, err := h.uniqueHandle(req.CompanyName, partner.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate handle"})
			return
		}
		partner.Handle = handle
	}
	bumpStep(&partner, models.OnboardingStepServices)

	if err := h.db.Save(&partner).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save company info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"partner": partner})
}

// SaveServices replaces the partner's service list
func (h *OnboardingHandler) SaveServices(c *gin.Context) {
	partner, ok := h.currentPartner(c)
	if !ok {
		return
	}

	var req struct {
		Services []ServiceRequest `json:"services" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	services := make([]models.PartnerService, 0, len(req.Services))
	for _, s := range req.Services {
		currency := s.Currency
		if currency == "" {
			currency = "USD"
		}
		services = append(services, models.PartnerService{
			PartnerID:    partner.ID,
			Name:         s.Name,
			Description:  s.Description,
			PriceCents:   s.PriceCents,
			Currency:     currency,
			DurationMins: s.DurationMins,
		})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("partner_id = ?", partner.ID).Delete(&models.PartnerService{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&services).Error; err != nil {
			return err
		}
		bumpStep(&partner, models.OnboardingStepLocations)
		return tx.Save(&partner).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save services"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// SaveLocations replaces the partner's location list
func (h *OnboardingHandler) SaveLocations(c *gin.Context) {
	partner, ok := h.currentPartner(c)
	if !ok {
		return
	}

	var req struct {
		Locations []LocationRequest `json:"locations" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	locations := make([]models.PartnerLocation, 0, len(req.Locations))
	for _, l := range req.Locations {
		locations = append(locations, models.PartnerLocation{
			PartnerID: partner.ID,
			City:      l.City,
			Region:    l.Region,
			Country:   l.Country,
		})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("partner_id = ?", partner.ID).Delete(&models.PartnerLocation{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&locations).Error; err != nil {
			return err
		}
		bumpStep(&partner, models.OnboardingStepPortfolio)
		return tx.Save(&partner).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save locations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// AddPortfolioImage uploads one portfolio image
func (h *OnboardingHandler) AddPortfolioImage(c *gin.Context) {
	partner, ok := h.currentPartner(c)
	if !ok {
		return
	}

	data, _, ok := readUpload(c, "image")
	if !ok {
		return
	}

	fileURL, err := h.uploader.UploadFile(c.Request.Context(), data, fmt.Sprintf("portfolio-%s-%s", partner.ID, uuid.New()))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store image"})
		return
	}

	var count int64
	if err := h.db.Model(&models.PortfolioImage{}).Where("partner_id = ?", partner.ID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save portfolio image"})
		return
	}

	image := models.PortfolioImage{
		PartnerID: partner.ID,
		FileURL:   fileURL,
		Caption:   c.PostForm("caption"),
		Position:  int(count),
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&image).Error; err != nil {
			return err
		}
		bumpStep(&partner, models.OnboardingStepDocuments)
		return tx.Save(&partner).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save portfolio image"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image": image})
}

// RemovePortfolioImage deletes one portfolio image
func (h *OnboardingHandler) RemovePortfolioImage(c *gin.Context) {
	partner, ok := h.currentPartner(c)
	if !ok {
		return
	}

	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	var image models.PortfolioImage
	if err := h.db.Where("id = ? AND partner_id = ?", imageID, partner.ID).First(&image).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	if err := h.db.Delete(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
		return
	}

	// Best effort; the row is already gone.
	if err := h.uploader.DeleteFile(c.Request.Context(), image.FileURL); err != nil {
		log.Printf("failed to delete portfolio file %s: %v", image.FileURL, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image removed"})
}

// UploadDocument uploads one verification document
func (h *OnboardingHandler) UploadDocument(c *gin.Context) {
	partner, ok := h.currentPartner(c)
	if !ok {
		return
	}

	data, filename, ok := readUpload(c, "file")
	if !ok {
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = filename
	}

	fileURL, err := h.uploader.UploadFile(c.Request.Context(), data, fmt.Sprintf("document-%s-%s", partner.ID, uuid.New()))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store document"})
		return
	}

	doc, err := h.svc.UploadDocument(c.Request.Context(), partner.ID, name, fileURL)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	bumpStep(&partner, models.OnboardingStepReview)
	if err := h.db.Save(&partner).Error; err != nil {
		// The document itself is stored; only the wizard step lagged.
		log.Printf("failed to bump onboarding step for %s: %v", partner.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// Submit submits the completed profile for verification
func (h *OnboardingHandler) Submit(c *gin.Context) {
	partner, ok := h.currentPartner(c)
	if !ok {
		return
	}

	updated, err := h.svc.SubmitForVerification(c.Request.Context(), partner.ID)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	if err := h.notifier.EnqueueSubmissionNotification(updated.ID); err != nil {
		log.Printf("failed to enqueue submission notification for %s: %v", updated.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile submitted for verification",
		"partner": updated,
	})
}

// Status returns the wizard status summary
func (h *OnboardingHandler) Status(c *gin.Context) {
	partner, ok := h.currentPartner(c)
	if !ok {
		return
	}

	summary, err := h.svc.GetOnboardingStatus(c.Request.Context(), partner.ID)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// currentPartner loads the authenticated user's partner profile
func (h *OnboardingHandler) currentPartner(c *gin.Context) (models.PartnerProfile, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return models.PartnerProfile{}, false
	}

	var partner models.PartnerProfile
	if err := h.db.Where("user_id = ?", userID).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complete the company info step first"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load partner profile"})
		}
		return models.PartnerProfile{}, false
	}

	return partner, true
}

// uniqueHandle derives a URL handle from the company name, suffixing on collision
func (h *OnboardingHandler) uniqueHandle(companyName string, selfID uuid.UUID) (string, error) {
	base := slug.Make(companyName)
	handle := base
	for i := 0; i < 10; i++ {
		var count int64
		err := h.db.Model(&models.PartnerProfile{}).
			Where("handle = ? AND id <> ?", handle, selfID).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return handle, nil
		}
		handle = fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])
	}
	return "", fmt.Errorf("could not find a free handle for %q", companyName)
}

// bumpStep advances the furthest-reached wizard step, never backwards
func bumpStep(p *models.PartnerProfile, step int) {
	if p.OnboardingStep < step {
		p.OnboardingStep = step
	}
}

// readUpload reads one multipart file field, enforcing the size cap
func readUpload(c *gin.Context, field string) ([]byte, string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s file is required", field)})
		return nil, "", false
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds the 10MB limit"})
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return nil, "", false
	}

	return data, fileHeader.Filename, true
}
