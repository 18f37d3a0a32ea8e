package types

// Channel is a notification delivery channel
type Channel string

const (
	ChannelInternal Channel = "internal"
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelChat     Channel = "chat"
)

// AllChannels returns all supported channels
func AllChannels() []Channel {
	return []Channel{
		ChannelInternal,
		ChannelEmail,
		ChannelSMS,
		ChannelWhatsApp,
		ChannelChat,
	}
}

// IsValid checks if the channel is valid
func (c Channel) IsValid() bool {
	switch c {
	case ChannelInternal, ChannelEmail, ChannelSMS, ChannelWhatsApp, ChannelChat:
		return true
	default:
		return false
	}
}

// String returns the string representation of the channel
func (c Channel) String() string {
	return string(c)
}

// DeliveryState is the per-channel outcome of a dispatch attempt.
// Skipped (no contact data on file) is distinct from Failed (transport error).
type DeliveryState string

const (
	DeliveryDelivered DeliveryState = "delivered"
	DeliverySkipped   DeliveryState = "skipped"
	DeliveryFailed    DeliveryState = "failed"
)

// String returns the string representation of the delivery state
func (s DeliveryState) String() string {
	return string(s)
}
