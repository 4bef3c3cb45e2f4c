package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/yeremiapane/food-ordering-app/config"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/utils"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// MailSender diimplementasikan oleh *gomail.Dialer
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService mengirim email ke pelanggan dan mencatat setiap percobaan
// di tabel notifications.
type EmailService struct {
	db      *gorm.DB
	cfg     config.SMTPConfig
	sender  MailSender
	baseURL string
}

func NewEmailService(db *gorm.DB, cfg config.SMTPConfig, baseURL string) *EmailService {
	var sender MailSender
	if cfg.Enabled() {
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return &EmailService{db: db, cfg: cfg, sender: sender, baseURL: baseURL}
}

// WithSender mengganti dialer SMTP, dipakai di test
func (s *EmailService) WithSender(sender MailSender) *EmailService {
	s.sender = sender
	return s
}

var emailTemplate = template.Must(template.New("email").Parse(`<div style="font-family:Arial,sans-serif;max-width:600px">
<h2>{{.Heading}}</h2>
<p>Hello {{.Order.CustomerName}},</p>
<p>{{.Lead}}</p>
<table>
<tr><td>Order code</td><td><strong>{{.Order.Code}}</strong></td></tr>
<tr><td>Status</td><td>{{.StatusLabel}}</td></tr>
<tr><td>Total</td><td>{{.Total}}</td></tr>
{{if .Reason}}<tr><td>Reason</td><td>{{.Reason}}</td></tr>{{end}}
</table>
<p><a href="{{.TrackURL}}">Track your order</a></p>
</div>`))

type emailData struct {
	Heading     string
	Lead        string
	Order       *models.Order
	StatusLabel string
	Total       string
	Reason      string
	TrackURL    string
}

func (s *EmailService) NotifyOrderPlaced(ctx context.Context, order *models.Order) error {
	return s.send(ctx, order, fmt.Sprintf("Order confirmation #%s", order.Code), emailData{
		Heading: "Thank you for your order!",
		Lead:    "We have received your order and will confirm it shortly.",
	})
}

func (s *EmailService) NotifyStatusChange(ctx context.Context, order *models.Order, from models.OrderStatus, _ string, _ string) error {
	return s.send(ctx, order, fmt.Sprintf("Order #%s: %s", order.Code, order.Status.DisplayName()), emailData{
		Heading: "Your order status has changed",
		Lead:    fmt.Sprintf("Your order moved from %q to %q.", from.DisplayName(), order.Status.DisplayName()),
	})
}

func (s *EmailService) NotifyCancellation(ctx context.Context, order *models.Order, _ models.OrderStatus, _ string, reason string) error {
	return s.send(ctx, order, fmt.Sprintf("Order #%s has been cancelled", order.Code), emailData{
		Heading: "Your order has been cancelled",
		Lead:    "We are sorry, your order could not be completed.",
		Reason:  reason,
	})
}

func (s *EmailService) send(ctx context.Context, order *models.Order, subject string, data emailData) error {
	record := models.Notification{
		OrderID:   &order.ID,
		Channel:   "email",
		Recipient: order.Email,
		Subject:   subject,
	}

	if s.sender == nil || order.Email == "" {
		record.Status = models.NotificationSkipped
		utils.InfoLogger.WithField("order_code", order.Code).Info("email not configured or no recipient, skipping")
		s.record(&record)
		return nil
	}

	data.Order = order
	data.StatusLabel = order.Status.DisplayName()
	data.Total = utils.FormatCurrency(order.FinalTotal)
	data.TrackURL = fmt.Sprintf("%s/orders/track/%s", s.baseURL, order.Code)

	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, data); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", order.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialAndSend(ctx, m); err != nil {
		record.Status = models.NotificationFailed
		record.Error = err.Error()
		s.record(&record)
		return fmt.Errorf("send email to %s: %w", order.Email, err)
	}

	record.Status = models.NotificationSent
	s.record(&record)
	return nil
}

// dialAndSend berhenti menunggu SMTP saat ctx selesai. Goroutine pengirim
// tetap jalan sampai dialer gomail menyerah sendiri.
func (s *EmailService) dialAndSend(ctx context.Context, m *gomail.Message) error {
	done := make(chan error, 1)
	go func() { done <- s.sender.DialAndSend(m) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *EmailService) record(n *models.Notification) {
	if s.db == nil {
		return
	}
	if err := s.db.Create(n).Error; err != nil {
		utils.ErrorLogger.Printf("Error saving notification log: %v", err)
	}
}
