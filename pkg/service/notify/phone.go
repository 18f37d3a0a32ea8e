package notify

import (
	"context"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// LoggingPhone is a stand-in phone provider used when no SMS or WhatsApp
// gateway is configured. It logs the message and reports success, which
// keeps the dispatch pipeline exercisable end to end without a gateway
// contract.
type LoggingPhone struct {
	label string
}

var _ interfaces.PhoneProvider = &LoggingPhone{}

func NewLoggingSMS() *LoggingPhone {
	return &LoggingPhone{label: "sms"}
}

func NewLoggingWhatsApp() *LoggingPhone {
	return &LoggingPhone{label: "whatsapp"}
}

func (p *LoggingPhone) SendText(ctx context.Context, phone, message string) error {
	logging.From(ctx).Info("no gateway configured, logging text message",
		"provider", p.label,
		"phone", phone,
		"message", message)
	return nil
}
