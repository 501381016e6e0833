package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"tooma/internal/pkg/logging"
)

// DefaultSendTimeout bounds a single delivery attempt.
const DefaultSendTimeout = 30 * time.Second

// Notifier renders the product emails and hands them to a Sender.
// Product emails are sent in the background and failures are only logged,
// so a slow mail server never holds up the request that triggered them.
type Notifier struct {
	sender  Sender
	log     logging.Logger
	timeout time.Duration

	inflight sync.WaitGroup
}

func NewNotifier(sender Sender, log logging.Logger) *Notifier {
	return &Notifier{sender: sender, log: log, timeout: DefaultSendTimeout}
}

// Wait blocks until background deliveries have finished. Each one is
// bounded by the send timeout.
func (n *Notifier) Wait() {
	n.inflight.Wait()
}

type BuyerRegistered struct {
	BuyerName   string
	BuyerEmail  string
	FileTitle   string
	PaymentLink string
	SharedURL   string
}

type PaymentReceived struct {
	BuyerName  string
	BuyerEmail string
	FileTitle  string
	Amount     string
	Currency   string
	SharedURL  string
}

type NewPurchase struct {
	OwnerEmail string
	BuyerName  string
	BuyerEmail string
	FileTitle  string
	Amount     string
	Currency   string
}

type ExpiryNotice struct {
	OwnerEmail string
	FileTitle  string
	UniqueID   string
	ExpiresAt  time.Time
}

func (n *Notifier) BuyerRegistered(ctx context.Context, m BuyerRegistered) {
	n.deliver(ctx, "Your request for "+m.FileTitle, m.BuyerEmail, buyerRegisteredTmpl, m)
}

func (n *Notifier) PaymentReceived(ctx context.Context, m PaymentReceived) {
	n.deliver(ctx, "Payment received for "+m.FileTitle, m.BuyerEmail, paymentReceivedTmpl, m)
}

func (n *Notifier) NewPurchase(ctx context.Context, m NewPurchase) {
	n.deliver(ctx, "New purchase: "+m.FileTitle, m.OwnerEmail, newPurchaseTmpl, m)
}

// ExpiryNotice sends synchronously so the sweep can count failures.
func (n *Notifier) ExpiryNotice(ctx context.Context, m ExpiryNotice) error {
	body, err := render(expiryNoticeTmpl, m)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	return n.sender.Send(ctx, "File Expiration Notice", m.OwnerEmail, body)
}

func (n *Notifier) deliver(ctx context.Context, subject, recipient string, tmpl *template.Template, data any) {
	if recipient == "" {
		return
	}
	body, err := render(tmpl, data)
	if err != nil {
		n.log.Error("render email failed", "template", tmpl.Name(), "err", err)
		return
	}
	// Detached from the request so the send outlives the response.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		defer cancel()
		n.log.Info("sending email", "recipient", recipient, "subject", subject)
		if err := n.sender.Send(ctx, subject, recipient, body); err != nil {
			n.log.Error("send email failed", "recipient", recipient, "subject", subject, "err", err)
		}
	}()
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
