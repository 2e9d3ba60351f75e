package email

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Mailer sends the resume-request flow emails over SMTP. Unlike tracking,
// mail failures are surfaced to the caller so the requester sees an error.
type Mailer struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	OwnerEmail   string
	SiteURL      string
	Enabled      bool
}

// NewMailerFromEnv builds a Mailer from environment configuration. When
// MAIL_ENABLED is not "true" sends are logged and skipped, which keeps local
// development from needing SMTP credentials.
func NewMailerFromEnv() *Mailer {
	host := os.Getenv("MAIL_HOSTNAME")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("MAIL_PORT")
	if port == "" {
		port = "465"
	}
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:3000"
	}
	return &Mailer{
		SMTPHost:     host,
		SMTPPort:     port,
		SMTPUsername: os.Getenv("MAILER_EMAIL"),
		SMTPPassword: os.Getenv("MAILER_PASSWORD"),
		FromEmail:    os.Getenv("MAILER_EMAIL"),
		FromName:     os.Getenv("MAILER_NAME"),
		OwnerEmail:   os.Getenv("OWNER_EMAIL"),
		SiteURL:      siteURL,
		Enabled:      os.Getenv("MAIL_ENABLED") == "true",
	}
}

// Attachment is one file carried in an outgoing message.
type Attachment struct {
	Filename string
	Content  []byte
}

// SendResumeRequest notifies the site owner that someone asked for the resume.
func (m *Mailer) SendResumeRequest(requesterEmail string) error {
	subject := "NEW RESUME REQUEST: Someone has requested your resume"
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
    <div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; padding: 20px;">
        <p>Hello,</p>
        <p><strong>%s</strong> has requested your resume. If you would like to share it,
        accept the request by clicking the button below.</p>
        <div>
            <a href="%s/api/send?email=%s"
               style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">
               Send Resume</a>
        </div>
        <p style="margin-top: 30px; font-size: 14px; color: #777;">If you did not expect this email, please ignore it.</p>
    </div>
</body>
</html>`, requesterEmail, m.SiteURL, requesterEmail)

	return m.send(m.OwnerEmail, subject, body, nil)
}

// SendResumeConfirmation acknowledges the request to the requester.
func (m *Mailer) SendResumeConfirmation(to string) error {
	subject := "CONFIRMATION: Your resume request was received"
	body := `<p>I have received your request for my resume and will send it to you as soon as possible, within today.</p>
<p>Thank you for your patience.</p>
<p>Best regards</p>`

	return m.send(to, subject, body, nil)
}

// SendResume delivers the resume PDF to the requester.
func (m *Mailer) SendResume(to, resumePath string) error {
	content, err := os.ReadFile(resumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	subject := "Resume"
	body := `<p>Attached below is my resume.</p>
<p>Thank you for your patience.</p>
<p>Best regards</p>`

	return m.send(to, subject, body, []Attachment{{
		Filename: filepath.Base(resumePath),
		Content:  content,
	}})
}

func (m *Mailer) send(to, subject, htmlBody string, attachments []Attachment) error {
	if to == "" {
		return fmt.Errorf("recipient address is required")
	}
	if !m.Enabled {
		log.Warn().Str("to", to).Str("subject", subject).Msg("Mail disabled - message not sent")
		return nil
	}

	msg := buildMessage(m.fromHeader(), to, subject, htmlBody, attachments)

	auth := smtp.PlainAuth("", m.SMTPUsername, m.SMTPPassword, m.SMTPHost)
	addr := fmt.Sprintf("%s:%s", m.SMTPHost, m.SMTPPort)

	if err := smtp.SendMail(addr, auth, m.FromEmail, []string{to}, msg); err != nil {
		log.Error().Err(err).Str("to", to).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

func (m *Mailer) fromHeader() string {
	if m.FromName != "" {
		return fmt.Sprintf("%s <%s>", m.FromName, m.FromEmail)
	}
	return m.FromEmail
}

const mimeBoundary = "devfolio-mail-boundary"

// buildMessage assembles the raw RFC 2822 message. Attachments turn the body
// into a multipart/mixed message with base64-encoded file parts.
func buildMessage(from, to, subject, htmlBody string, attachments []Attachment) []byte {
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n", from, to, subject)

	if len(attachments) == 0 {
		return []byte(headers +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			htmlBody + "\r\n")
	}

	msg := headers
	msg += fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mimeBoundary)

	msg += fmt.Sprintf("--%s\r\n", mimeBoundary)
	msg += "Content-Type: text/html; charset=UTF-8\r\n\r\n"
	msg += htmlBody + "\r\n"

	for _, a := range attachments {
		msg += fmt.Sprintf("--%s\r\n", mimeBoundary)
		msg += "Content-Type: application/octet-stream\r\n"
		msg += "Content-Transfer-Encoding: base64\r\n"
		msg += fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", a.Filename)

		encoded := base64.StdEncoding.EncodeToString(a.Content)
		for len(encoded) > 76 {
			msg += encoded[:76] + "\r\n"
			encoded = encoded[76:]
		}
		msg += encoded + "\r\n"
	}
	msg += fmt.Sprintf("--%s--\r\n", mimeBoundary)

	return []byte(msg)
}
