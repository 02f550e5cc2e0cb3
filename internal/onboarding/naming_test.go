package onboarding_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosuda/safeplate/internal/onboarding"
)

func TestFileExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "logo.png", want: ".png"},
		{in: "LOGO.JPG", want: ".jpg"},
		{in: "archive.tar.gz", want: ".gz"},
		{in: `C:\Users\me\photo.jpeg`, want: ".jpeg"},
		{in: "noext", want: ""},
		{in: "trailingdot.", want: ""},
		{in: "weird.p$g", want: ""},
		{in: "long.abcdefghijk", want: ""},
		{in: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, onboarding.FileExt(tc.in))
		})
	}
}

func TestBlobNames(t *testing.T) {
	t.Parallel()

	t.Run("root media keyed by license", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "uploads/business_FSSAI-1_logo.png", onboarding.LogoBlobName("FSSAI-1", "logo.png"))
		assert.Equal(t, "uploads/business_FSSAI-1_owner.jpg", onboarding.OwnerPhotoBlobName(" FSSAI-1 ", "me.JPG"))
	})

	t.Run("child media keyed by business and index", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "uploads/business_42_team_0.jpg", onboarding.TeamPhotoBlobName(42, 0, "a.jpg"))
		assert.Equal(t, "uploads/business_42_facility_3.png", onboarding.FacilityPhotoBlobName(42, 3, "k.png"))
	})

	t.Run("same file name at different indexes does not collide", func(t *testing.T) {
		t.Parallel()

		a := onboarding.TeamPhotoBlobName(42, 0, "photo.jpg")
		b := onboarding.TeamPhotoBlobName(42, 1, "photo.jpg")
		assert.NotEqual(t, a, b)
	})

	t.Run("license cannot escape the prefix", func(t *testing.T) {
		t.Parallel()

		name := onboarding.LogoBlobName("../../etc/passwd", "x.png")
		assert.True(t, strings.HasPrefix(name, onboarding.BlobPrefix))
		assert.Equal(t, 1, strings.Count(name, "/"))
	})

	t.Run("distinct licenses give distinct names", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t,
			onboarding.LogoBlobName("A/B", "x.png"),
			onboarding.LogoBlobName("A_B", "x.png"),
		)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			onboarding.LogoBlobName("FSSAI-1", "logo.png"),
			onboarding.LogoBlobName("FSSAI-1", "logo.png"),
		)
	})
}
