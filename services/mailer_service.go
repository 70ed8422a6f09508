package services

import (
	"fmt"
	"net/smtp"

	"github.com/wanamsabukid860/wanam-sa-bukid-booking/config"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/utils"
)

// MailerService sends verification emails over SMTP. It is best-effort: when
// credentials are missing or the send fails, the verification link is logged
// instead so signup never blocks on the mail provider.
type MailerService struct {
	cfg *config.Config
}

func NewMailerService(cfg *config.Config) *MailerService {
	return &MailerService{cfg: cfg}
}

// Configured reports whether SMTP credentials are present.
func (m *MailerService) Configured() bool {
	return m.cfg.EmailFrom != "" && m.cfg.EmailPass != ""
}

// SendVerificationEmail mails the verification link to a new customer.
// Returns true only when the message was handed to the SMTP server.
func (m *MailerService) SendVerificationEmail(email, token, fullname string) bool {
	link := fmt.Sprintf("%s/api/verify-email?token=%s", m.cfg.PublicBaseURL, token)

	if !m.Configured() {
		m.logVerificationLink(email, fullname, link)
		return false
	}

	subject := "Verify Your Email - Wanam Sa Bukid Restaurant"
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"Thank you for creating an account with Wanam Sa Bukid Restaurant & Event Hall!\r\n"+
			"To complete your registration and start making reservations, please verify\r\n"+
			"your email address by opening the link below:\r\n\r\n"+
			"%s\r\n\r\n"+
			"This verification link will expire in 24 hours.\r\n"+
			"If you didn't create an account with Wanam Sa Bukid, please ignore this email.\r\n",
		fullname, link)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.cfg.EmailFromName, m.cfg.EmailFrom, email, subject, body))

	addr := fmt.Sprintf("%s:%d", m.cfg.EmailHost, m.cfg.EmailPort)
	auth := smtp.PlainAuth("", m.cfg.EmailUser, m.cfg.EmailPass, m.cfg.EmailHost)

	if err := smtp.SendMail(addr, auth, m.cfg.EmailFrom, []string{email}, msg); err != nil {
		utils.ErrorLogger.Printf("Failed to send verification email to %s: %v", email, err)
		m.logVerificationLink(email, fullname, link)
		return false
	}

	utils.InfoLogger.Printf("Verification email sent to %s", email)
	return true
}

func (m *MailerService) logVerificationLink(email, fullname, link string) {
	utils.InfoLogger.Printf("DEVELOPMENT MODE - email verification for %s (%s): %s",
		fullname, email, link)
}
