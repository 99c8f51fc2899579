package mail

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	mg "github.com/mailgun/mailgun-go/v4"
)

const mailgunSendTimeout = 10 * time.Second

// MailgunSender delivers email through the Mailgun HTTP API.
type MailgunSender struct {
	client mg.Mailgun
	sender string
}

func NewMailgunSender(domain, apiKey, sender string) *MailgunSender {
	return &MailgunSender{client: mg.NewMailgun(domain, apiKey), sender: sender}
}

var _ portssvc.Mailer = (*MailgunSender)(nil)

func (m *MailgunSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	message := m.client.NewMessage(m.sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}
	for _, tag := range sortedTagValues(msg.Tags) {
		if err := message.AddTag(tag); err != nil {
			return fmt.Errorf("failed to tag email: %w", err)
		}
	}

	c, cancel := context.WithTimeout(ctx, mailgunSendTimeout)
	defer cancel()
	if _, _, err := m.client.Send(c, message); err != nil {
		return fmt.Errorf("mailgun send to %s: %w", msg.To, err)
	}
	return nil
}

// sortedTagValues returns the tag values in key order so retries tag identically.
func sortedTagValues(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, tags[k])
	}
	return values
}
