package handlers

import "github.com/google/uuid"

// Notifier enqueues outbound notification jobs after a state change. The
// production implementation is jobs.NotificationJob; handlers only log
// enqueue failures, the state change itself has already committed.
type Notifier interface {
	EnqueueDecisionNotification(partnerID uuid.UUID, decision, reason string) error
	EnqueueDocumentRejectedNotification(partnerID uuid.UUID, documentName, reason string) error
	EnqueueSubmissionNotification(partnerID uuid.UUID) error
	EnqueueVerificationEmail(userID uuid.UUID, token string) error
	EnqueuePasswordResetEmail(userID uuid.UUID, token string) error
}
