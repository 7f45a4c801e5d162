package services

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

const (
	activationSubject  = "Verify Your Account."
	orderStatusSubject = "[Rentify]: Your order status."
	orderMailFooter    = `<p>Thank you for choosing Rentify. Please contact us if you have any questions regarding your order.</p>
<p>Best regards,<br>Rentify Team</p>`
)

// OrderMail carries the values rendered into an order status e-mail.
// RentalInterval and TotalPrice are only shown for pending orders.
type OrderMail struct {
	OrderID        uint
	UserName       string
	Status         string
	RentalInterval int
	TotalPrice     string
}

type Mailer interface {
	SendActivation(email, code string) error
	SendOrderStatus(email string, info OrderMail) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.Username,
	}
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "Rentify")
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (m *smtpMailer) SendActivation(email, code string) error {
	return m.send(email, activationSubject, activationBody(code))
}

func (m *smtpMailer) SendOrderStatus(email string, info OrderMail) error {
	return m.send(email, orderStatusSubject, orderStatusBody(info)+"<br/><br/>"+orderMailFooter)
}

func activationBody(code string) string {
	return fmt.Sprintf("<p>Your OTP code is <strong>%s</strong></p>", code)
}

func orderStatusBody(info OrderMail) string {
	status := ucFirst(info.Status)

	var b strings.Builder
	b.WriteString("<h1>Order Update from Rentify</h1>")
	fmt.Fprintf(&b, "<p>Dear %s,</p>", info.UserName)
	fmt.Fprintf(&b, "<p>Your car rental order with id <strong>#%d</strong> is <strong>%s</strong>.</p>", info.OrderID, status)

	if strings.EqualFold(info.Status, "pending") {
		b.WriteString("<p><strong>Order Details:</strong></p><ul>")
		fmt.Fprintf(&b, "<li>Rental Interval: %d day(s)</li>", info.RentalInterval)
		fmt.Fprintf(&b, "<li>Total Price: %s</li>", info.TotalPrice)
		fmt.Fprintf(&b, "<li>Status: %s</li>", status)
		b.WriteString("</ul>")
	}

	return b.String()
}

func ucFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
