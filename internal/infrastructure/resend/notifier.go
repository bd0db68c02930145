package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

const from = "Mixsønαr <onboarding@resend.dev>"

const bodyTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="background: linear-gradient(135deg, #9b87f5, #d946ef, #f97316);
             -webkit-background-clip: text; -webkit-text-fill-color: transparent;">
    Mixs&oslash;n&alpha;r
  </h1>
  <p style="font-size: 16px; color: #333;">Ваш код для входа:</p>
  <h2 style="font-size: 36px; letter-spacing: 8px; color: #9b87f5;
             font-weight: bold; margin: 20px 0;">%s</h2>
  <p style="font-size: 14px; color: #666;">
    Код действителен 10 минут.<br>
    Если вы не запрашивали код, проигнорируйте это письмо.
  </p>
</div>`

// Notifier delivers login codes through the Resend transactional email API.
type Notifier struct {
	client *resend.Client
}

// NewNotifier fails when no API key is configured; a missing provider
// credential is a deployment mistake, not a per-request condition.
func NewNotifier(apiKey string) (*Notifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend: API key is required")
	}
	return &Notifier{client: resend.NewClient(apiKey)}, nil
}

func (n *Notifier) SendCode(ctx context.Context, email, code string) error {
	_, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      []string{email},
		Subject: "Ваш код для входа: " + code,
		Html:    fmt.Sprintf(bodyTemplate, code),
	})
	if err != nil {
		return fmt.Errorf("send code email: %w", err)
	}
	return nil
}
