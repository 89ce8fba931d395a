package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailNotifier struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewEmailNotifier(apiKey, fromAddress, fromName string) *EmailNotifier {
	return &EmailNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

// Notify sends msg by email. Recipients without an address are skipped.
func (n *EmailNotifier) Notify(ctx context.Context, to Recipient, msg Message) error {
	if to.Email == "" || msg.Subject == "" {
		return nil
	}

	message := mail.NewSingleEmail(n.from, msg.Subject, mail.NewEmail(to.Name, to.Email), msg.Body, msg.HTML)
	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d", resp.StatusCode)
	}
	return nil
}
