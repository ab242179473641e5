package jobs

import (
	"gorm.io/gorm"

	"github.com/partnerly/backend/internal/config"
	"github.com/partnerly/backend/internal/queue"
	"github.com/partnerly/backend/internal/services/email"
)

// RegisterAllJobHandlers registers all job handlers with the queue and
// returns the notification job for enqueueing from handlers.
func RegisterAllJobHandlers(q *queue.Queue, db *gorm.DB, emailSvc *email.EmailService) *NotificationJob {
	notificationJob := NewNotificationJob(db, q, emailSvc)
	notificationJob.RegisterHandlers()
	return notificationJob
}

// ScheduleRecurringJobs schedules all recurring jobs
func ScheduleRecurringJobs(db *gorm.DB, emailSvc *email.EmailService, cfg config.VerificationConfig) (*StaleSubmissionJob, error) {
	staleJob := NewStaleSubmissionJob(db, emailSvc, cfg)
	if err := staleJob.Schedule(); err != nil {
		return nil, err
	}
	return staleJob, nil
}
