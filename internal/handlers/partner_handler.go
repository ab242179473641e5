package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/partnerly/backend/internal/middleware"
	"github.com/partnerly/backend/internal/models"
	"github.com/partnerly/backend/internal/utils"
	"github.com/partnerly/backend/internal/verification"
)

// PartnerHandler serves the partner-facing verification surface
type PartnerHandler struct {
	db  *gorm.DB
	svc *verification.Service
}

// NewPartnerHandler creates a new partner handler
func NewPartnerHandler(db *gorm.DB, svc *verification.Service) *PartnerHandler {
	return &PartnerHandler{db: db, svc: svc}
}

// Route resolves the client navigation target for the current account
// state. The endpoint is public: without a valid token it answers LOGIN
// instead of 401 so every client entry point can call it unconditionally.
func (h *PartnerHandler) Route(c *gin.Context) {
	in := verification.RouteInput{}

	if claims := h.optionalClaims(c); claims != nil {
		var user models.User
		if err := h.db.First(&user, "id = ?", claims.UserID).Error; err == nil {
			in.Authenticated = true
			in.EmailVerified = user.EmailVerified
			in.BackendAccountExists = true

			var partner models.PartnerProfile
			err := h.db.Where("user_id = ?", user.ID).First(&partner).Error
			switch {
			case err == nil:
				in.Status = partner.OnboardingStatus
			case errors.Is(err, gorm.ErrRecordNotFound):
				// No profile yet, the wizard starts from scratch.
				in.Status = models.OnboardingStatusIncomplete
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load partner profile"})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"route": verification.Resolve(in)})
}

// Profile returns the partner's own profile with all sections
func (h *PartnerHandler) Profile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var partner models.PartnerProfile
	err := h.db.
		Preload("Services").
		Preload("Locations").
		Preload("Portfolio").
		Preload("Documents").
		Where("user_id = ?", userID).
		First(&partner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load partner profile"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"partner":  partner,
		"verified": partner.IsVerified(),
	})
}

// History returns the partner's own verification history, oldest first
func (h *PartnerHandler) History(c *gin.Context) {
	partner, ok := h.currentPartner(c)
	if !ok {
		return
	}

	entries, err := h.svc.History(c.Request.Context(), partner.ID)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// Dashboard returns the verification state the partner dashboard renders
func (h *PartnerHandler) Dashboard(c *gin.Context) {
	partner, ok := h.currentPartner(c)
	if !ok {
		return
	}

	summary, err := h.svc.GetOnboardingStatus(c.Request.Context(), partner.ID)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	response := gin.H{
		"partner":  partner,
		"status":   summary,
		"verified": partner.IsVerified(),
	}
	if partner.OnboardingStatus == models.OnboardingStatusRejected {
		response["rejection"] = gin.H{
			"reason": partner.RejectionReason,
			"notes":  partner.RejectionNotes,
			"date":   partner.RejectionDate,
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *PartnerHandler) currentPartner(c *gin.Context) (models.PartnerProfile, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return models.PartnerProfile{}, false
	}

	var partner models.PartnerProfile
	if err := h.db.Where("user_id = ?", userID).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load partner profile"})
		}
		return models.PartnerProfile{}, false
	}

	return partner, true
}

// optionalClaims parses the bearer token if one is present, without failing
// the request when it is absent or invalid
func (h *PartnerHandler) optionalClaims(c *gin.Context) *utils.Claims {
	bearerToken := c.GetHeader("Authorization")
	parts := strings.Split(bearerToken, " ")
	if len(parts) != 2 {
		return nil
	}

	claims, err := utils.ValidateToken(parts[1])
	if err != nil {
		return nil
	}
	return claims
}
