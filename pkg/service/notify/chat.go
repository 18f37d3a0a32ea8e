package notify

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
)

// SlackChat posts notifications to a Slack channel
type SlackChat struct {
	client *slack.Client
}

var _ interfaces.ChatProvider = &SlackChat{}

func NewSlackChat(token string) (*SlackChat, error) {
	if token == "" {
		return nil, goerr.New("slack token is required")
	}
	return &SlackChat{
		client: slack.New(token),
	}, nil
}

func (s *SlackChat) PostMessage(ctx context.Context, channel, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post slack message", goerr.V("channel", channel))
	}
	return nil
}
