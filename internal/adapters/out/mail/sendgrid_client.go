package mail

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// EmailClient is the low-level sender (SendGrid in production).
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// SendGridClient implements EmailClient.
type SendGridClient struct {
	apiKey     string
	senderName string
	log        *zap.Logger
}

func NewSendGridClient(apiKey, senderName string, log *zap.Logger) *SendGridClient {
	if log == nil {
		log = zap.NewNop()
	}
	if senderName == "" {
		senderName = "Storefront"
	}
	return &SendGridClient{apiKey: apiKey, senderName: senderName, log: log.Named("sendgrid")}
}

// Send delivers body as plain text (and preformatted HTML).
func (c *SendGridClient) Send(ctx context.Context, from, to, subject, body string) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if from == "" {
		return fmt.Errorf("from address is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(c.senderName, from),
		subject,
		mail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(body)),
	)

	response, err := sendgrid.NewSendClient(c.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		c.log.Warn("send rejected", zap.Int("status", response.StatusCode), zap.String("body", response.Body))
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	c.log.Info("mail sent", zap.Int("status", response.StatusCode), zap.String("to", to), zap.String("subject", subject))
	return nil
}
