package interfaces

import "context"

// EmailProvider sends notification emails through an external service
type EmailProvider interface {
	SendEmail(ctx context.Context, recipients []string, subject, htmlBody string) error
}

// PhoneProvider delivers a text message to a phone number. SMS and
// WhatsApp are separate providers; either may be a no-op stub.
type PhoneProvider interface {
	SendText(ctx context.Context, phone, message string) error
}

// ChatProvider posts a notification to a team chat channel
type ChatProvider interface {
	PostMessage(ctx context.Context, channel, text string) error
}
