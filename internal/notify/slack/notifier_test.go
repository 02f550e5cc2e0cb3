package slack_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	slacklib "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/safeplate/internal/domain"
	slacknotify "github.com/gosuda/safeplate/internal/notify/slack"
)

// --- mock SlackAPI ---

type mockSlackAPI struct {
	channel string
	opts    []slacklib.MsgOption
	ctx     context.Context //nolint:containedctx // captured for assertions
	err     error
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error) {
	m.ctx = ctx
	m.channel = channelID
	m.opts = options
	if m.err != nil {
		return "", "", m.err
	}
	return channelID, "1234567890.123456", nil
}

func cafe() *domain.Business {
	return &domain.Business{
		ID:            42,
		OwnerID:       uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"),
		Name:          "Cafe A",
		Address:       "1 Main St",
		Phone:         "555-0100",
		Email:         "a@cafe.test",
		LicenseNumber: "LIC-1",
		FSSAILicense:  "FSSAI-1",
		LogoURL:       "http://localhost:9000/safeplate/uploads/business_FSSAI-1_logo.png",
	}
}

// --- Notifier tests ---

func TestNotifier_NotifyBusinessOnboarded(t *testing.T) {
	t.Parallel()

	t.Run("posts to the review channel", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		api := &mockSlackAPI{}
		n := slacknotify.New(api, "C-REVIEW")

		require.NoError(t, n.NotifyBusinessOnboarded(ctx, cafe(), 2, 1))
		assert.Equal(t, "C-REVIEW", api.channel)
		assert.Len(t, api.opts, 2, "fallback text and blocks")
		assert.Equal(t, ctx, api.ctx)
	})

	t.Run("error wraps Slack API error", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{err: errors.New("channel_not_found")}
		n := slacknotify.New(api, "C-MISSING")

		err := n.NotifyBusinessOnboarded(t.Context(), cafe(), 0, 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "slack.Notifier.NotifyBusinessOnboarded")
		assert.Contains(t, err.Error(), "channel_not_found")
	})
}

// --- Block tests ---

func TestBuildOnboardingBlocks(t *testing.T) {
	t.Parallel()

	t.Run("summarises business and counts", func(t *testing.T) {
		t.Parallel()

		blocks := slacknotify.BuildOnboardingBlocks(cafe(), 2, 1)
		require.Len(t, blocks, 3)

		header, ok := blocks[0].(*slacklib.HeaderBlock)
		require.True(t, ok, "first block should be a HeaderBlock")
		assert.Equal(t, slacklib.MBTHeader, header.Type)

		section, ok := blocks[1].(*slacklib.SectionBlock)
		require.True(t, ok, "second block should be a SectionBlock")
		require.NotNil(t, section.Text)
		assert.Contains(t, section.Text.Text, "1 Main St")
		require.Len(t, section.Fields, 4)
		assert.Contains(t, section.Fields[0].Text, "Cafe A")
		assert.Contains(t, section.Fields[1].Text, "FSSAI-1")
		assert.Contains(t, section.Fields[2].Text, "2")
		assert.Contains(t, section.Fields[3].Text, "1")

		require.NotNil(t, section.Accessory)
		require.NotNil(t, section.Accessory.ImageElement)
		assert.Equal(t, cafe().LogoURL, section.Accessory.ImageElement.ImageURL)

		footer, ok := blocks[2].(*slacklib.ContextBlock)
		require.True(t, ok, "third block should be a ContextBlock")
		require.Len(t, footer.ContextElements.Elements, 1)
		text, ok := footer.ContextElements.Elements[0].(*slacklib.TextBlockObject)
		require.True(t, ok)
		assert.Contains(t, text.Text, "42")
		assert.Contains(t, text.Text, "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	})

	t.Run("optional fields and no logo", func(t *testing.T) {
		t.Parallel()

		b := cafe()
		b.LogoURL = ""
		b.BusinessType = "Restaurant"
		b.OwnerName = "Dana"

		blocks := slacknotify.BuildOnboardingBlocks(b, 0, 0)
		section, ok := blocks[1].(*slacklib.SectionBlock)
		require.True(t, ok)
		assert.Nil(t, section.Accessory)
		require.Len(t, section.Fields, 6)
		assert.Contains(t, section.Fields[4].Text, "Restaurant")
		assert.Contains(t, section.Fields[5].Text, "Dana")
	})
}
