// Package notify delivers a digest. Every configured notifier is tried;
// any failure makes the whole notification a failure.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobalert/internal/digest"
	"jobalert/internal/logger"
)

var (
	ErrNoRecipients = errors.New("no recipients configured")
	ErrNoSender     = errors.New("no sender configured")
	ErrNoAPIKey     = errors.New("no api key configured")
)

type Notifier interface {
	Name() string
	Notify(ctx context.Context, d digest.Digest) error
}

// NotificationFailureError means the digest did not reach at least one
// destination. It is reported only after the seen cache is persisted.
type NotificationFailureError struct {
	Notifier string
	Err      error
}

func (e *NotificationFailureError) Error() string {
	return fmt.Sprintf("notification via %s failed: %v", e.Notifier, e.Err)
}

func (e *NotificationFailureError) Unwrap() error { return e.Err }

// Multi fans out to every notifier in order.
type Multi struct {
	notifiers []Notifier
	log       logger.Logger
}

func NewMulti(log logger.Logger, ns ...Notifier) *Multi {
	if log == nil {
		log = logger.NewNop()
	}
	return &Multi{notifiers: ns, log: log}
}

func (m *Multi) Name() string {
	names := make([]string, 0, len(m.notifiers))
	for _, n := range m.notifiers {
		names = append(names, n.Name())
	}
	return strings.Join(names, "+")
}

func (m *Multi) Len() int { return len(m.notifiers) }

// Notify sends d through every notifier, even after one fails.
func (m *Multi) Notify(ctx context.Context, d digest.Digest) error {
	var failed []string
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, d); err != nil {
			m.log.Error("notify failed", logger.String("notifier", n.Name()), logger.Error(err))
			failed = append(failed, n.Name())
			errs = append(errs, err)
			continue
		}
		m.log.Info("notified",
			logger.String("notifier", n.Name()),
			logger.Int("postings", d.Count))
	}
	if len(errs) == 0 {
		return nil
	}
	return &NotificationFailureError{Notifier: strings.Join(failed, "+"), Err: errors.Join(errs...)}
}
