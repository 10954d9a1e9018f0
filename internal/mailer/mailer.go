package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Result carries the outcome of a send attempt. The sender never fails the
// calling operation, callers inspect Success and log Detail.
type Result struct {
	Success bool
	Detail  string
}

type Sender interface {
	SendConfirmation(email, name string, seats []string) Result
}

// SMTPSender delivers booking confirmations over plain SMTP.
type SMTPSender struct {
	Addr     string // host:port
	Host     string
	From     string
	Password string
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(addr, host, from, password string) *SMTPSender {
	return &SMTPSender{
		Addr:     addr,
		Host:     host,
		From:     from,
		Password: password,
	}
}

func (s *SMTPSender) SendConfirmation(email, name string, seats []string) Result {
	if s.Addr == "" || s.From == "" {
		return Result{Success: false, Detail: "smtp not configured"}
	}

	subject := "Your booking is confirmed"
	body := fmt.Sprintf("Hello %s,\n\nYour payment was received and your booking is confirmed.\nSeats: %s\n\nSee you there!",
		name, strings.Join(seats, ", "))
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.From, email, subject, body,
	)

	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	if err := smtp.SendMail(s.Addr, auth, s.From, []string{email}, []byte(msg)); err != nil {
		return Result{Success: false, Detail: err.Error()}
	}
	return Result{Success: true, Detail: "sent"}
}
