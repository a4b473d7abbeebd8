package services

import (
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendContract(to, clientName, dealNumber string, pdf []byte) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendContract(to, clientName, dealNumber string, pdf []byte) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Your contract %s", dealNumber))

	body := fmt.Sprintf(`
		<h2>Dear %s,</h2>
		<p>Please find attached your service contract <strong>%s</strong>.</p>
		<p>Reply to this email if any detail needs correcting.</p>
	`, clientName, dealNumber)
	m.SetBody("text/html", body)

	m.Attach(dealNumber+".pdf", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(pdf)
		return err
	}))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send contract email: %w", err)
	}
	return nil
}
