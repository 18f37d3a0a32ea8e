package notify

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/wneessen/go-mail"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
)

// SMTPEmail delivers notification emails over SMTP
type SMTPEmail struct {
	client *mail.Client
	from   string
}

var _ interfaces.EmailProvider = &SMTPEmail{}

func NewSMTPEmail(host string, port int, username, password, from string) (*SMTPEmail, error) {
	if host == "" || from == "" {
		return nil, goerr.New("smtp host and sender address are required")
	}

	options := []mail.Option{
		mail.WithPort(port),
	}
	if username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create smtp client", goerr.V("host", host))
	}

	return &SMTPEmail{
		client: client,
		from:   from,
	}, nil
}

func (s *SMTPEmail) SendEmail(ctx context.Context, recipients []string, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return goerr.Wrap(err, "invalid sender address", goerr.V("from", s.from))
	}
	if err := msg.To(recipients...); err != nil {
		return goerr.Wrap(err, "invalid recipient address", goerr.V("recipients", recipients))
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to send email", goerr.V("subject", subject))
	}
	return nil
}
