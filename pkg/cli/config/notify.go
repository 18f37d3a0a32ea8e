package config

import (
	"github.com/urfave/cli/v3"

	"github.com/actio-dev/actio/pkg/service/notify"
	syncsvc "github.com/actio-dev/actio/pkg/service/sync"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// Notify holds CLI flags for the notification channels
type Notify struct {
	smtpHost     string
	smtpPort     int
	smtpUsername string
	smtpPassword string
	smtpFrom     string

	slackToken   string
	slackChannel string
}

// Flags returns CLI flags for notification configuration
func (n *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "smtp-host",
			Usage:       "SMTP host for email notifications (empty disables email)",
			Sources:     cli.EnvVars("ACTIO_SMTP_HOST"),
			Destination: &n.smtpHost,
		},
		&cli.IntFlag{
			Name:        "smtp-port",
			Usage:       "SMTP port",
			Value:       587,
			Sources:     cli.EnvVars("ACTIO_SMTP_PORT"),
			Destination: &n.smtpPort,
		},
		&cli.StringFlag{
			Name:        "smtp-username",
			Usage:       "SMTP username",
			Sources:     cli.EnvVars("ACTIO_SMTP_USERNAME"),
			Destination: &n.smtpUsername,
		},
		&cli.StringFlag{
			Name:        "smtp-password",
			Usage:       "SMTP password",
			Sources:     cli.EnvVars("ACTIO_SMTP_PASSWORD"),
			Destination: &n.smtpPassword,
		},
		&cli.StringFlag{
			Name:        "smtp-from",
			Usage:       "Sender address for notification emails",
			Sources:     cli.EnvVars("ACTIO_SMTP_FROM"),
			Destination: &n.smtpFrom,
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token for chat notifications (empty disables chat)",
			Sources:     cli.EnvVars("ACTIO_SLACK_BOT_TOKEN"),
			Destination: &n.slackToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel for chat notifications",
			Sources:     cli.EnvVars("ACTIO_SLACK_CHANNEL"),
			Destination: &n.slackChannel,
		},
	}
}

// Configure builds the dispatcher with every configured channel. Missing
// providers leave their channels reported as skipped, never as errors.
func (n *Notify) Configure(engine *syncsvc.Engine) (*notify.Dispatcher, error) {
	opts := []notify.Option{
		notify.WithSMS(notify.NewLoggingSMS()),
		notify.WithWhatsApp(notify.NewLoggingWhatsApp()),
	}

	if n.smtpHost != "" {
		email, err := notify.NewSMTPEmail(n.smtpHost, n.smtpPort, n.smtpUsername, n.smtpPassword, n.smtpFrom)
		if err != nil {
			return nil, err
		}
		opts = append(opts, notify.WithEmail(email))
		logging.Default().Info("Email notifications enabled", "host", n.smtpHost)
	} else {
		logging.Default().Info("SMTP not configured, email channel will be skipped")
	}

	if n.slackToken != "" && n.slackChannel != "" {
		chat, err := notify.NewSlackChat(n.slackToken)
		if err != nil {
			return nil, err
		}
		opts = append(opts, notify.WithChat(chat, n.slackChannel))
		logging.Default().Info("Slack notifications enabled", "channel", n.slackChannel)
	} else {
		logging.Default().Info("Slack not configured, chat channel will be skipped")
	}

	return notify.New(engine, opts...), nil
}
