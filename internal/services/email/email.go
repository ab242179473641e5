package email

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/partnerly/backend/internal/config"
)

// EmailService handles sending emails
type EmailService struct {
	cfg         config.SMTPConfig
	frontendURL string
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.SMTPConfig, frontendURL string) *EmailService {
	return &EmailService{cfg: cfg, frontendURL: frontendURL}
}

// SendVerificationEmail sends an email with an account verification link
func (s *EmailService) SendVerificationEmail(toEmail, name, token string) error {
	subject := "Verify Your Partnerly Account"
	verificationLink := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, token)

	body := s.wrap(fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>Thank you for signing up with Partnerly! Please verify your email address to activate your account.</p>
		<p><a href="%s" class="button">Verify Email</a></p>
		<p>Or copy and paste this link in your browser: %s</p>
		<p>This link will expire in 48 hours.</p>
		<p>If you did not create an account with Partnerly, please ignore this email.</p>
	`, name, verificationLink, verificationLink))

	return s.sendEmail(toEmail, subject, body)
}

// SendPasswordResetEmail sends an email with a password reset link
func (s *EmailService) SendPasswordResetEmail(toEmail, name, token string) error {
	subject := "Reset Your Partnerly Password"
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)

	body := s.wrap(fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>We received a request to reset your Partnerly password. Click the button below to create a new password:</p>
		<p><a href="%s" class="button">Reset Password</a></p>
		<p>Or copy and paste this link in your browser: %s</p>
		<p>This link will expire in 24 hours.</p>
		<p>If you did not request a password reset, please ignore this email or contact support if you have concerns.</p>
	`, name, resetLink, resetLink))

	return s.sendEmail(toEmail, subject, body)
}

// SendSubmissionReceivedEmail confirms that a partner profile entered review
func (s *EmailService) SendSubmissionReceivedEmail(toEmail, companyName string) error {
	subject := "Your Partnerly Profile Is Under Review"

	body := s.wrap(fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>Your partner profile has been submitted for verification. Our team will review your details and documents shortly.</p>
		<p>You will receive an email as soon as a decision is made. You can check your verification status from your dashboard at any time.</p>
	`, companyName))

	return s.sendEmail(toEmail, subject, body)
}

// SendVerifiedEmail notifies a partner their profile was approved
func (s *EmailService) SendVerifiedEmail(toEmail, companyName string) error {
	subject := "Your Partnerly Profile Is Verified"
	dashboardLink := fmt.Sprintf("%s/dashboard", s.frontendURL)

	body := s.wrap(fmt.Sprintf(`
		<h2>Congratulations %s,</h2>
		<p>Your partner profile has been verified. Your listings are now visible to customers on the marketplace.</p>
		<p><a href="%s" class="button">Go to Dashboard</a></p>
	`, companyName, dashboardLink))

	return s.sendEmail(toEmail, subject, body)
}

// SendRejectedEmail notifies a partner their profile was rejected with the reason
func (s *EmailService) SendRejectedEmail(toEmail, companyName, reason string) error {
	subject := "Your Partnerly Profile Needs Changes"
	onboardingLink := fmt.Sprintf("%s/onboarding", s.frontendURL)

	body := s.wrap(fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>Our team reviewed your partner profile and could not verify it in its current state.</p>
		<p><strong>Reason:</strong> %s</p>
		<p>You can update your profile and submit it again at any time.</p>
		<p><a href="%s" class="button">Update Profile</a></p>
	`, companyName, reason, onboardingLink))

	return s.sendEmail(toEmail, subject, body)
}

// SendDocumentRejectedEmail notifies a partner one of their documents was rejected
func (s *EmailService) SendDocumentRejectedEmail(toEmail, companyName, documentName, reason string) error {
	subject := "A Document on Your Partnerly Profile Was Rejected"
	documentsLink := fmt.Sprintf("%s/onboarding/documents", s.frontendURL)

	body := s.wrap(fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>The document <strong>%s</strong> on your partner profile was rejected during review.</p>
		<p><strong>Reason:</strong> %s</p>
		<p>Please upload a replacement document.</p>
		<p><a href="%s" class="button">Upload Replacement</a></p>
	`, companyName, documentName, reason, documentsLink))

	return s.sendEmail(toEmail, subject, body)
}

// SendStaleSubmissionsDigest reminds admins about submissions waiting too long
func (s *EmailService) SendStaleSubmissionsDigest(toEmail string, count int, oldestCompany string, waitingHours int) error {
	subject := fmt.Sprintf("%d Partner Submissions Awaiting Review", count)
	reviewLink := fmt.Sprintf("%s/admin/partners/pending", s.frontendURL)

	body := s.wrap(fmt.Sprintf(`
		<h2>Hello,</h2>
		<p>There are <strong>%d</strong> partner submissions waiting for a verification decision.</p>
		<p>The oldest, <strong>%s</strong>, has been waiting for about %d hours.</p>
		<p><a href="%s" class="button">Review Submissions</a></p>
	`, count, oldestCompany, waitingHours, reviewLink))

	return s.sendEmail(toEmail, subject, body)
}

// wrap puts body content into the shared HTML shell
func (s *EmailService) wrap(content string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: Arial, sans-serif; line-height: 1.6; }
			.container { max-width: 600px; margin: 0 auto; padding: 20px; }
			.header { background-color: #0F766E; color: white; padding: 10px; text-align: center; }
			.content { padding: 20px; }
			.button { display: inline-block; background-color: #0F766E; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>Partnerly</h1>
			</div>
			<div class="content">
				%s
				<p>Best regards,<br>The Partnerly Team</p>
			</div>
		</div>
	</body>
	</html>
	`, content)
}

// sendEmail sends an email with HTML content
func (s *EmailService) sendEmail(toEmail, subject, htmlBody string) error {
	if s.cfg.Host == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		log.Println("Email service not configured properly. Check environment variables.")
		return fmt.Errorf("email service not configured")
	}

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	from := fmt.Sprintf("From: %s <%s>\n", s.cfg.FromName, s.cfg.From)
	to := fmt.Sprintf("To: %s\n", toEmail)
	subjectLine := fmt.Sprintf("Subject: %s\n", subject)

	message := []byte(from + to + subjectLine + mime + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{toEmail}, message)
}
