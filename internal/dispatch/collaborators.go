package dispatch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"refab-api/internal/model"

	"github.com/skip2/go-qrcode"
)

// EmailSender is the outbound mail boundary. The real provider lives outside
// this engine; LogEmailSender stands in for development and tests.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MessageSender is the proactive SMS/WhatsApp-style boundary.
type MessageSender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogEmailSender writes outbound mail to the log instead of sending it.
type LogEmailSender struct{}

func (LogEmailSender) Send(ctx context.Context, to, subject, body string) error {
	log.Printf("[Email] to=%s subject=%q", to, subject)
	return nil
}

// LogMessageSender writes outbound messages to the log instead of sending them.
type LogMessageSender struct{}

func (LogMessageSender) Send(ctx context.Context, phone, message string) error {
	log.Printf("[Message] phone=%s", phone)
	return nil
}

// InvoiceDispatcher generates a business invoice. Only company orders request
// one; consumer orders are a no-op.
type InvoiceDispatcher struct {
	OutDir string
}

func (d *InvoiceDispatcher) Name() string { return "invoice" }

func (d *InvoiceDispatcher) Dispatch(ctx context.Context, q *model.Quote) error {
	if !q.IsCompany {
		return nil
	}
	if d.OutDir == "" {
		return fmt.Errorf("invoice output directory not configured")
	}
	if err := os.MkdirAll(d.OutDir, 0755); err != nil {
		return fmt.Errorf("failed to create invoice directory: %w", err)
	}
	path := filepath.Join(d.OutDir, fmt.Sprintf("invoice-%s.txt", q.OrderID))
	body := fmt.Sprintf("Invoice for order %s\n%s %s %s\nAmount: %d\nCustomer: %s\n",
		q.OrderID, q.DeviceCategory, q.Brand, q.Model, q.VerifiedPrice, q.CustomerName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return fmt.Errorf("failed to write invoice: %w", err)
	}
	return nil
}

// EmailDispatcher sends the order confirmation email.
type EmailDispatcher struct {
	Sender EmailSender
}

func (d *EmailDispatcher) Name() string { return "email" }

func (d *EmailDispatcher) Dispatch(ctx context.Context, q *model.Quote) error {
	if q.CustomerEmail == "" {
		return fmt.Errorf("quote has no customer email")
	}
	subject := fmt.Sprintf("Your Refab order %s is confirmed", q.OrderID)
	body := fmt.Sprintf("Hi %s,\n\nWe received your %s order for the %s %s.", q.CustomerName, q.Type, q.Brand, q.Model)
	if q.Diagnostic {
		body += "\nOur technicians will diagnose the device and send you a quote before any work starts."
	} else {
		body += fmt.Sprintf("\nVerified price: %d", q.VerifiedPrice)
	}
	body += fmt.Sprintf("\nTrack it with order id %s and token %s.\n", q.OrderID, q.TrackingToken)
	return d.Sender.Send(ctx, q.CustomerEmail, subject, body)
}

// NotifyDispatcher sends the proactive confirmation message.
type NotifyDispatcher struct {
	Sender MessageSender
}

func (d *NotifyDispatcher) Name() string { return "notify" }

func (d *NotifyDispatcher) Dispatch(ctx context.Context, q *model.Quote) error {
	if q.CustomerPhone == "" {
		return nil
	}
	msg := fmt.Sprintf("Refab: order %s received. We'll keep you posted.", q.OrderID)
	return d.Sender.Send(ctx, q.CustomerPhone, msg)
}

// LabelDispatcher renders a drop-off/shipping slip: a QR code of the
// tracking URL that the shop or carrier scans at intake. Orders collected by
// courier or sent by the customer both get one; counter drop-offs skip it.
type LabelDispatcher struct {
	OutDir  string
	BaseURL string
}

func (d *LabelDispatcher) Name() string { return "label" }

func (d *LabelDispatcher) Dispatch(ctx context.Context, q *model.Quote) error {
	if q.DeliveryMethod == model.DeliveryDropoff {
		return nil
	}
	if d.OutDir == "" {
		return fmt.Errorf("label output directory not configured")
	}
	if err := os.MkdirAll(d.OutDir, 0755); err != nil {
		return fmt.Errorf("failed to create label directory: %w", err)
	}
	trackingURL := fmt.Sprintf("%s/track/%s?token=%s", d.BaseURL, q.OrderID, q.TrackingToken)
	png, err := qrcode.Encode(trackingURL, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to encode label QR: %w", err)
	}
	path := filepath.Join(d.OutDir, fmt.Sprintf("label-%s.png", q.OrderID))
	if err := os.WriteFile(path, png, 0644); err != nil {
		return fmt.Errorf("failed to write label: %w", err)
	}
	return nil
}
