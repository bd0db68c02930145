// Package smtp is the local-development notifier. It delivers the same
// login code message as the Resend gateway, but over plain SMTP so a
// Mailpit container can catch it.
package smtp

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

type Mailer struct {
	host     string
	port     int
	from     string
	username string
	password string
}

type Options struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

func NewMailer(opts Options) *Mailer {
	return &Mailer{
		host:     opts.Host,
		port:     opts.Port,
		from:     opts.From,
		username: opts.Username,
		password: opts.Password,
	}
}

func (m *Mailer) SendCode(ctx context.Context, email, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject("Ваш код для входа: " + code)
	msg.SetBodyString(mail.TypeTextPlain,
		fmt.Sprintf("Ваш код для входа: %s\n\nКод действителен 10 минут.\nЕсли вы не запрашивали код, проигнорируйте это письмо.\n", code))

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.NoTLS),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
