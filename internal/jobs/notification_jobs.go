package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partnerly/backend/internal/models"
	"github.com/partnerly/backend/internal/queue"
	"github.com/partnerly/backend/internal/services/email"
)

// DecisionNotificationPayload is the payload for a verification decision notification
type DecisionNotificationPayload struct {
	PartnerID uuid.UUID `json:"partner_id"`
	Decision  string    `json:"decision"` // verified or rejected
	Reason    string    `json:"reason,omitempty"`
}

// DocumentReviewNotificationPayload is the payload for a document rejection notification
type DocumentReviewNotificationPayload struct {
	PartnerID    uuid.UUID `json:"partner_id"`
	DocumentName string    `json:"document_name"`
	Reason       string    `json:"reason"`
}

// SubmissionNotificationPayload is the payload for a submission confirmation
type SubmissionNotificationPayload struct {
	PartnerID uuid.UUID `json:"partner_id"`
}

// AccountEmailPayload is the payload for account lifecycle emails
type AccountEmailPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// NotificationJob sends partner-facing emails off the request path. Every
// decision email goes through the queue so a slow or down SMTP relay never
// blocks or fails an admin action.
type NotificationJob struct {
	db       *gorm.DB
	queue    *queue.Queue
	emailSvc *email.EmailService
}

// NewNotificationJob creates a new notification job handler
func NewNotificationJob(db *gorm.DB, q *queue.Queue, emailSvc *email.EmailService) *NotificationJob {
	return &NotificationJob{db: db, queue: q, emailSvc: emailSvc}
}

// RegisterHandlers registers all notification job handlers with the queue
func (j *NotificationJob) RegisterHandlers() {
	j.queue.RegisterHandler(queue.JobTypeNotifyDecision, j.processDecision)
	j.queue.RegisterHandler(queue.JobTypeNotifyDocumentReview, j.processDocumentReview)
	j.queue.RegisterHandler(queue.JobTypeNotifySubmission, j.processSubmission)
	j.queue.RegisterHandler(queue.JobTypeSendVerificationEmail, j.processVerificationEmail)
	j.queue.RegisterHandler(queue.JobTypeSendPasswordResetEmail, j.processPasswordResetEmail)
}

// EnqueueDecisionNotification queues an email about a verify or reject decision
func (j *NotificationJob) EnqueueDecisionNotification(partnerID uuid.UUID, decision, reason string) error {
	_, err := j.queue.EnqueueJob(queue.JobTypeNotifyDecision, DecisionNotificationPayload{
		PartnerID: partnerID,
		Decision:  decision,
		Reason:    reason,
	})
	return err
}

// EnqueueDocumentRejectedNotification queues an email about a rejected document
func (j *NotificationJob) EnqueueDocumentRejectedNotification(partnerID uuid.UUID, documentName, reason string) error {
	_, err := j.queue.EnqueueJob(queue.JobTypeNotifyDocumentReview, DocumentReviewNotificationPayload{
		PartnerID:    partnerID,
		DocumentName: documentName,
		Reason:       reason,
	})
	return err
}

// EnqueueSubmissionNotification queues the submission confirmation email
func (j *NotificationJob) EnqueueSubmissionNotification(partnerID uuid.UUID) error {
	_, err := j.queue.EnqueueJob(queue.JobTypeNotifySubmission, SubmissionNotificationPayload{PartnerID: partnerID})
	return err
}

// EnqueueVerificationEmail queues the account email verification message
func (j *NotificationJob) EnqueueVerificationEmail(userID uuid.UUID, token string) error {
	_, err := j.queue.EnqueueJob(queue.JobTypeSendVerificationEmail, AccountEmailPayload{UserID: userID, Token: token})
	return err
}

// EnqueuePasswordResetEmail queues the password reset message
func (j *NotificationJob) EnqueuePasswordResetEmail(userID uuid.UUID, token string) error {
	_, err := j.queue.EnqueueJob(queue.JobTypeSendPasswordResetEmail, AccountEmailPayload{UserID: userID, Token: token})
	return err
}

func (j *NotificationJob) processDecision(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload DecisionNotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decision notification payload: %w", err)
	}

	partner, user, err := j.partnerWithUser(payload.PartnerID)
	if err != nil {
		return nil, err
	}

	switch payload.Decision {
	case string(models.OnboardingStatusVerified):
		err = j.emailSvc.SendVerifiedEmail(user.Email, partner.CompanyName)
	case string(models.OnboardingStatusRejected):
		err = j.emailSvc.SendRejectedEmail(user.Email, partner.CompanyName, payload.Reason)
	default:
		return nil, fmt.Errorf("unknown decision %q", payload.Decision)
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{"email": user.Email, "decision": payload.Decision}, nil
}

func (j *NotificationJob) processDocumentReview(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload DocumentReviewNotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document review payload: %w", err)
	}

	partner, user, err := j.partnerWithUser(payload.PartnerID)
	if err != nil {
		return nil, err
	}

	if err := j.emailSvc.SendDocumentRejectedEmail(user.Email, partner.CompanyName, payload.DocumentName, payload.Reason); err != nil {
		return nil, err
	}

	return map[string]interface{}{"email": user.Email, "document": payload.DocumentName}, nil
}

func (j *NotificationJob) processSubmission(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload SubmissionNotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submission notification payload: %w", err)
	}

	partner, user, err := j.partnerWithUser(payload.PartnerID)
	if err != nil {
		return nil, err
	}

	if err := j.emailSvc.SendSubmissionReceivedEmail(user.Email, partner.CompanyName); err != nil {
		return nil, err
	}

	return map[string]interface{}{"email": user.Email}, nil
}

func (j *NotificationJob) processVerificationEmail(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload AccountEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account email payload: %w", err)
	}

	var user models.User
	if err := j.db.First(&user, "id = ?", payload.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", payload.UserID, err)
	}

	if err := j.emailSvc.SendVerificationEmail(user.Email, user.FirstName, payload.Token); err != nil {
		return nil, err
	}

	return map[string]interface{}{"email": user.Email}, nil
}

func (j *NotificationJob) processPasswordResetEmail(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload AccountEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account email payload: %w", err)
	}

	var user models.User
	if err := j.db.First(&user, "id = ?", payload.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", payload.UserID, err)
	}

	if err := j.emailSvc.SendPasswordResetEmail(user.Email, user.FirstName, payload.Token); err != nil {
		return nil, err
	}

	return map[string]interface{}{"email": user.Email}, nil
}

func (j *NotificationJob) partnerWithUser(partnerID uuid.UUID) (models.PartnerProfile, models.User, error) {
	var partner models.PartnerProfile
	if err := j.db.First(&partner, "id = ?", partnerID).Error; err != nil {
		return models.PartnerProfile{}, models.User{}, fmt.Errorf("failed to load partner %s: %w", partnerID, err)
	}

	var user models.User
	if err := j.db.First(&user, "id = ?", partner.UserID).Error; err != nil {
		return models.PartnerProfile{}, models.User{}, fmt.Errorf("failed to load user %s: %w", partner.UserID, err)
	}

	return partner, user, nil
}
