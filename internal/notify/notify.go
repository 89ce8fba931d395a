package notify

import (
	"context"
	"errors"

	"stable-app-go/pkg/logger"
)

type Recipient struct {
	UserID    string
	Name      string
	Email     string
	PushToken string
}

type Message struct {
	Kind    string
	Subject string
	Title   string
	Body    string
	HTML    string
	Data    map[string]string
}

type Notifier interface {
	Notify(ctx context.Context, to Recipient, msg Message) error
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, to Recipient, msg Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, to, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, to Recipient, msg Message) error {
	n.log.Info("notify: message", "kind", msg.Kind, "user_id", to.UserID, "title", msg.Title)
	return nil
}

type Nop struct{}

func (Nop) Notify(context.Context, Recipient, Message) error {
	return nil
}
