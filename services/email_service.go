package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/edusphere/internship-api/config"
)

// EmailService sends transactional mail over SMTP. A zero-value host makes
// the service a logging no-op so local development works without a mail
// server.
type EmailService struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	baseURL string
}

// NewEmailServiceFromEnv builds the email service from environment
// configuration
func NewEmailServiceFromEnv() (*EmailService, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	baseURL := getEnv.APP_BASE_URL
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &EmailService{
		host:    getEnv.SMTP_HOST,
		port:    getEnv.SMTP_PORT,
		user:    getEnv.SMTP_USER,
		pass:    getEnv.SMTP_PASS,
		from:    getEnv.SMTP_FROM,
		baseURL: baseURL,
	}, nil
}

// IsConfigured reports whether a mail server is configured
func (s *EmailService) IsConfigured() bool {
	return s.host != ""
}

func (s *EmailService) send(to, subject, body string) error {
	if !s.IsConfigured() {
		log.Printf("SMTP not configured; would send %q to %s", subject, to)
		return nil
	}

	from := s.from
	if from == "" {
		from = s.user
	}

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	return smtp.SendMail(s.host+":"+s.port, auth, from, []string{to}, []byte(msg))
}

// SendPasswordReset emails the reset link for a freshly created token
func (s *EmailService) SendPasswordReset(to, name, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	body := fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. Open the link below to choose a new password:\n\n%s\n\nThe link expires in 1 hour. If you did not request this, you can ignore this email.\n",
		name, link)
	return s.send(to, "Reset your password", body)
}

// SendCertificateIssued tells the student a certificate is ready
func (s *EmailService) SendCertificateIssued(to, name, courseTitle, certType string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour %s for \"%s\" has been issued. Log in to download it from your dashboard.\n",
		name, certificateTitles[certType], courseTitle)
	return s.send(to, "Your certificate is ready", body)
}
