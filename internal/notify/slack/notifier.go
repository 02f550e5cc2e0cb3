// Package slack posts onboarding review notifications to a Slack channel.
package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/safeplate/internal/domain"
)

// SlackAPI abstracts the subset of the Slack client used by Notifier.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// Notifier announces completed onboardings in a review channel.
type Notifier struct {
	api     SlackAPI
	channel string
}

// New creates a Notifier posting to channelID.
func New(api SlackAPI, channelID string) *Notifier {
	return &Notifier{api: api, channel: channelID}
}

// NewFromToken creates a Notifier backed by a bot token.
func NewFromToken(botToken, channelID string) *Notifier {
	return New(slacklib.New(botToken), channelID)
}

// NotifyBusinessOnboarded posts the business summary with a plain-text
// fallback for clients that do not render blocks.
func (n *Notifier) NotifyBusinessOnboarded(ctx context.Context, b *domain.Business, teamMembers, facilityPhotos int) error {
	fallback := fmt.Sprintf("New business onboarded: %s (FSSAI license %s)", b.Name, b.FSSAILicense)

	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slacklib.MsgOptionText(fallback, false),
		slacklib.MsgOptionBlocks(BuildOnboardingBlocks(b, teamMembers, facilityPhotos)...),
	)
	if err != nil {
		return fmt.Errorf("slack.Notifier.NotifyBusinessOnboarded: %w", err)
	}

	return nil
}
