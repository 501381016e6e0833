package notify

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"tooma/internal/pkg/logging"

	"github.com/wneessen/go-mail"
)

// Sender delivers one HTML email.
type Sender interface {
	Send(ctx context.Context, subject, recipient, htmlBody string) error
}

type SMTPOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// Timeout caps one delivery from dial to QUIT.
	Timeout time.Duration
}

type SMTPSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(opts SMTPOptions) (*SMTPSender, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	clientOpts := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(dialWithDeadline),
	}
	if opts.User != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.User),
			mail.WithPassword(opts.Password),
		)
	}

	client, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: opts.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, subject, recipient, htmlBody string) error {
	if recipient == "" {
		return fmt.Errorf("empty recipient")
	}
	msg, err := newMessage(s.from, recipient, subject, htmlBody)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", recipient, err)
	}
	return nil
}

func newMessage(from, to, subject, htmlBody string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("sender address %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("recipient address %q: %w", to, err)
	}
	msg.Subject(sanitizeHeader(subject))
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}

// dialWithDeadline carries the context deadline onto the connection so a
// server that accepts and then stalls cannot hold the session open. The
// client only consults the context while dialing.
func dialWithDeadline(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// LogSender only records what would have been sent. Used when SMTP is not
// configured.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, subject, recipient, _ string) error {
	s.log.Info("email delivery disabled, dropping message", "recipient", recipient, "subject", subject)
	return nil
}
