package slack

import (
	"fmt"
	"strconv"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/safeplate/internal/domain"
)

// BuildOnboardingBlocks builds Slack Block Kit blocks announcing a newly
// onboarded business to reviewers. The logo is shown as the section
// accessory when the business has one.
func BuildOnboardingBlocks(b *domain.Business, teamMembers, facilityPhotos int) []slacklib.Block {
	header := slacklib.NewHeaderBlock(
		slacklib.NewTextBlockObject(slacklib.PlainTextType, "New business onboarded", false, false),
	)

	fields := []*slacklib.TextBlockObject{
		markdown(fmt.Sprintf("*Business:*\n%s", b.Name)),
		markdown(fmt.Sprintf("*FSSAI license:*\n`%s`", b.FSSAILicense)),
		markdown(fmt.Sprintf("*Team members:*\n%d", teamMembers)),
		markdown(fmt.Sprintf("*Facility photos:*\n%d", facilityPhotos)),
	}
	if b.BusinessType != "" {
		fields = append(fields, markdown(fmt.Sprintf("*Type:*\n%s", b.BusinessType)))
	}
	if b.OwnerName != "" {
		fields = append(fields, markdown(fmt.Sprintf("*Owner:*\n%s", b.OwnerName)))
	}

	var accessory *slacklib.Accessory
	if b.LogoURL != "" {
		accessory = slacklib.NewAccessory(slacklib.NewImageBlockElement(b.LogoURL, b.Name+" logo"))
	}

	section := slacklib.NewSectionBlock(
		markdown(fmt.Sprintf("%s\n%s | %s", b.Address, b.Phone, b.Email)),
		fields,
		accessory,
	)

	footer := slacklib.NewContextBlock(
		"onboarding_context",
		markdown("Business ID "+strconv.FormatInt(b.ID, 10)+" | owner "+b.OwnerID.String()),
	)

	return []slacklib.Block{header, section, footer}
}

func markdown(text string) *slacklib.TextBlockObject {
	return slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false)
}
