package mailer

import (
	"fmt"
	"html"
	"strings"

	"meal-ordering-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

// Notice is a short transactional email about a meal, payment or refund.
type Notice struct {
	Subject string
	Heading string
	Lines   []string
}

type IEmailService interface {
	SendNotice(toEmail string, notice Notice) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderEmail string, log logger.ILogger) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		logger:      log,
	}
}

func (s *emailService) SendNotice(toEmail string, notice Notice) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", notice.Subject)
	m.SetBody("text/html", RenderNotice(notice))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send notice", map[string]interface{}{
			"to":      toEmail,
			"subject": notice.Subject,
			"error":   err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Notice sent", map[string]interface{}{"to": toEmail, "subject": notice.Subject})
	return nil
}

// RenderNotice builds the HTML body. Lines are escaped.
func RenderNotice(notice Notice) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">`)
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(notice.Heading))
	for _, line := range notice.Lines {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(line))
	}
	b.WriteString("<p>Thank you for dining with us.</p></div>")
	return b.String()
}

// noopEmailService is used when SMTP is not configured.
type noopEmailService struct {
	logger logger.ILogger
}

func NewNoopEmailService(log logger.ILogger) IEmailService {
	return &noopEmailService{logger: log}
}

func (s *noopEmailService) SendNotice(toEmail string, notice Notice) error {
	s.logger.Debug("MAILER", "SMTP disabled, notice skipped", map[string]interface{}{"to": toEmail, "subject": notice.Subject})
	return nil
}
