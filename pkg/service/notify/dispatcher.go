package notify

import (
	"context"
	gosync "sync"

	"golang.org/x/sync/errgroup"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/service/sync"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// Trigger describes the event being announced to recipients
type Trigger struct {
	Title         string
	Body          string
	ReferenceID   string
	ReferenceKind string
	SenderID      types.EntityID
}

// ChannelResult is the outcome of one delivery attempt. Skipped means the
// recipient had no contact data for the channel or the channel is not
// configured; Failed means the transport itself errored.
type ChannelResult struct {
	Channel   types.Channel
	Recipient types.EntityID
	State     types.DeliveryState
	Err       error
}

// DispatchResult aggregates every per-channel outcome of one dispatch
type DispatchResult struct {
	Results []ChannelResult
}

// Delivered counts successful deliveries
func (r *DispatchResult) Delivered() int {
	return r.count(types.DeliveryDelivered)
}

// Failed counts transport failures
func (r *DispatchResult) Failed() int {
	return r.count(types.DeliveryFailed)
}

// Skipped counts attempts short-circuited for missing contact data
func (r *DispatchResult) Skipped() int {
	return r.count(types.DeliverySkipped)
}

func (r *DispatchResult) count(state types.DeliveryState) int {
	n := 0
	for _, result := range r.Results {
		if result.State == state {
			n++
		}
	}
	return n
}

// Dispatcher fans a trigger out to the requested channels. Channels run
// independently: one failing provider never blocks the others, and the
// internal notification row is persisted through the sync engine like any
// other write.
type Dispatcher struct {
	engine *sync.Engine

	email       interfaces.EmailProvider
	sms         interfaces.PhoneProvider
	whatsapp    interfaces.PhoneProvider
	chat        interfaces.ChatProvider
	chatChannel string
}

type Option func(*Dispatcher)

func WithEmail(provider interfaces.EmailProvider) Option {
	return func(d *Dispatcher) {
		d.email = provider
	}
}

func WithSMS(provider interfaces.PhoneProvider) Option {
	return func(d *Dispatcher) {
		d.sms = provider
	}
}

func WithWhatsApp(provider interfaces.PhoneProvider) Option {
	return func(d *Dispatcher) {
		d.whatsapp = provider
	}
}

func WithChat(provider interfaces.ChatProvider, channel string) Option {
	return func(d *Dispatcher) {
		d.chat = provider
		d.chatChannel = channel
	}
}

func New(engine *sync.Engine, opts ...Option) *Dispatcher {
	dispatcher := &Dispatcher{
		engine: engine,
	}
	for _, opt := range opts {
		opt(dispatcher)
	}
	return dispatcher
}

// Dispatch delivers the trigger to every recipient on every requested
// channel and reports the outcome of each attempt. It never returns an
// error: delivery failures are per-channel outcomes, not dispatch
// failures.
func (d *Dispatcher) Dispatch(ctx context.Context, trigger Trigger, recipients []types.EntityID, channels []types.Channel) *DispatchResult {
	result := &DispatchResult{}
	var mu gosync.Mutex
	record := func(r ChannelResult) {
		mu.Lock()
		defer mu.Unlock()
		result.Results = append(result.Results, r)
	}

	var eg errgroup.Group

	for _, channel := range channels {
		channel := channel

		// Chat announces to a shared team channel, once per dispatch
		if channel == types.ChannelChat {
			eg.Go(func() error {
				record(d.dispatchChat(ctx, trigger))
				return nil
			})
			continue
		}

		for _, recipientID := range recipients {
			recipientID := recipientID
			eg.Go(func() error {
				record(d.dispatchTo(ctx, trigger, channel, recipientID))
				return nil
			})
		}
	}

	_ = eg.Wait()

	for _, r := range result.Results {
		if r.State == types.DeliveryFailed && r.Err != nil {
			logging.From(ctx).Warn("notification delivery failed",
				"channel", r.Channel.String(),
				"recipient", r.Recipient.String(),
				"error", r.Err.Error())
		}
	}

	return result
}

func (d *Dispatcher) dispatchTo(ctx context.Context, trigger Trigger, channel types.Channel, recipientID types.EntityID) ChannelResult {
	result := ChannelResult{Channel: channel, Recipient: recipientID}

	if channel == types.ChannelInternal {
		_, err := d.engine.CreateNotification(ctx, &model.Notification{
			RecipientID:   recipientID,
			SenderID:      trigger.SenderID,
			Title:         trigger.Title,
			Body:          trigger.Body,
			ReferenceID:   trigger.ReferenceID,
			ReferenceKind: trigger.ReferenceKind,
		})
		if err != nil {
			result.State = types.DeliveryFailed
			result.Err = err
			return result
		}
		result.State = types.DeliveryDelivered
		return result
	}

	recipient, err := d.engine.GetEntity(ctx, types.KindResponsible, recipientID)
	if err != nil {
		result.State = types.DeliveryFailed
		result.Err = err
		return result
	}

	switch channel {
	case types.ChannelEmail:
		if d.email == nil || recipient.Email == "" {
			result.State = types.DeliverySkipped
			return result
		}
		if err := d.email.SendEmail(ctx, []string{recipient.Email}, trigger.Title, trigger.Body); err != nil {
			result.State = types.DeliveryFailed
			result.Err = err
			return result
		}

	case types.ChannelSMS:
		if d.sms == nil || recipient.Phone == "" {
			result.State = types.DeliverySkipped
			return result
		}
		if err := d.sms.SendText(ctx, recipient.Phone, trigger.Title+": "+trigger.Body); err != nil {
			result.State = types.DeliveryFailed
			result.Err = err
			return result
		}

	case types.ChannelWhatsApp:
		if d.whatsapp == nil || recipient.Phone == "" {
			result.State = types.DeliverySkipped
			return result
		}
		if err := d.whatsapp.SendText(ctx, recipient.Phone, trigger.Title+": "+trigger.Body); err != nil {
			result.State = types.DeliveryFailed
			result.Err = err
			return result
		}

	default:
		result.State = types.DeliverySkipped
		return result
	}

	result.State = types.DeliveryDelivered
	return result
}

func (d *Dispatcher) dispatchChat(ctx context.Context, trigger Trigger) ChannelResult {
	result := ChannelResult{Channel: types.ChannelChat}

	if d.chat == nil || d.chatChannel == "" {
		result.State = types.DeliverySkipped
		return result
	}

	if err := d.chat.PostMessage(ctx, d.chatChannel, trigger.Title+"\n"+trigger.Body); err != nil {
		result.State = types.DeliveryFailed
		result.Err = err
		return result
	}

	result.State = types.DeliveryDelivered
	return result
}
