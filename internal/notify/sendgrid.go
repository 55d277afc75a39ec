package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"jobalert/internal/digest"
)

const DefaultSendGridURL = "https://api.sendgrid.com/v3/mail/send"

type SendGridOptions struct {
	APIKey   string
	From     string
	To       []string
	Endpoint string
	Timeout  time.Duration
}

// SendGrid sends through the v3 mail send API. Anything but 2xx is a
// failure.
type SendGrid struct {
	opts SendGridOptions
}

func NewSendGrid(opts SendGridOptions) (*SendGrid, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if strings.TrimSpace(opts.From) == "" {
		return nil, ErrNoSender
	}
	if len(opts.To) == 0 {
		return nil, ErrNoRecipients
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultSendGridURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &SendGrid{opts: opts}, nil
}

func (s *SendGrid) Name() string { return "sendgrid" }

func (s *SendGrid) message(d digest.Digest) *mail.SGMailV3 {
	to := make([]*mail.Email, 0, len(s.opts.To))
	for _, addr := range s.opts.To {
		to = append(to, mail.NewEmail("", addr))
	}
	p := mail.NewPersonalization()
	p.AddTos(to...)

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("", s.opts.From))
	m.Subject = d.Subject
	m.AddPersonalizations(p)
	// text/plain must precede text/html.
	m.AddContent(
		mail.NewContent("text/plain", d.Text),
		mail.NewContent("text/html", d.HTML),
	)
	return m
}

func (s *SendGrid) Notify(ctx context.Context, d digest.Digest) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	// The client keeps the request body, so each send gets its own.
	client := sendgrid.NewSendClient(s.opts.APIKey)
	client.BaseURL = s.opts.Endpoint

	res, err := client.SendWithContext(ctx, s.message(d))
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, strings.TrimSpace(res.Body))
	}
	return nil
}
