package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"

	"github.com/partnerly/backend/internal/config"
	"github.com/partnerly/backend/internal/models"
	"github.com/partnerly/backend/internal/services/email"
)

// StaleSubmissionJob periodically scans for partner submissions that have
// been sitting in pending_verification past the configured threshold and
// emails admins a digest.
type StaleSubmissionJob struct {
	db        *gorm.DB
	emailSvc  *email.EmailService
	cfg       config.VerificationConfig
	scheduler *gocron.Scheduler
}

// NewStaleSubmissionJob creates a new stale submission job
func NewStaleSubmissionJob(db *gorm.DB, emailSvc *email.EmailService, cfg config.VerificationConfig) *StaleSubmissionJob {
	return &StaleSubmissionJob{
		db:        db,
		emailSvc:  emailSvc,
		cfg:       cfg,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Schedule starts the hourly stale submission check
func (j *StaleSubmissionJob) Schedule() error {
	if _, err := j.scheduler.Every(1).Hour().Do(j.checkStaleSubmissions); err != nil {
		return err
	}
	j.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler
func (j *StaleSubmissionJob) Stop() {
	j.scheduler.Stop()
}

func (j *StaleSubmissionJob) checkStaleSubmissions() {
	cutoff := time.Now().Add(-time.Duration(j.cfg.PendingReminderAfterHours) * time.Hour)

	var stale []models.PartnerProfile
	err := j.db.
		Where("onboarding_status = ? AND submitted_at < ?", models.OnboardingStatusPendingVerification, cutoff).
		Order("submitted_at asc").
		Find(&stale).Error
	if err != nil {
		log.Printf("Stale submission check failed: %v", err)
		return
	}

	if len(stale) == 0 {
		return
	}

	oldest := stale[0]
	waitingHours := 0
	if oldest.SubmittedAt != nil {
		waitingHours = int(time.Since(*oldest.SubmittedAt).Hours())
	}

	log.Printf("%d partner submissions pending longer than %dh (oldest: %s)",
		len(stale), j.cfg.PendingReminderAfterHours, oldest.CompanyName)

	if j.cfg.AdminEmail == "" {
		return
	}
	if err := j.emailSvc.SendStaleSubmissionsDigest(j.cfg.AdminEmail, len(stale), oldest.CompanyName, waitingHours); err != nil {
		log.Printf("Failed to send stale submissions digest: %v", err)
	}
}
