package onboarding

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// BlobPrefix is prepended to every blob name written by onboarding.
const BlobPrefix = "uploads/"

const maxExtLen = 10

// Blob names are pure functions of submission-unique values. Root media is
// keyed by FSSAI license, so names exist before the business row does;
// child media is keyed by business id and list index, so two members with
// the same file name never collide. The license is path-escaped: distinct
// licenses give distinct names and a name never contains a further "/".
// The same inputs always give the same name, so a retried upload overwrites
// its own blob rather than creating a new one.

// LogoBlobName names the business logo blob.
func LogoBlobName(license, filename string) string {
	return licenseBlobName(license, "logo", filename)
}

// OwnerPhotoBlobName names the owner photo blob.
func OwnerPhotoBlobName(license, filename string) string {
	return licenseBlobName(license, "owner", filename)
}

// TeamPhotoBlobName names the photo of the team member at index.
func TeamPhotoBlobName(businessID int64, index int, filename string) string {
	return childBlobName(businessID, "team", index, filename)
}

// FacilityPhotoBlobName names the facility photo at index.
func FacilityPhotoBlobName(businessID int64, index int, filename string) string {
	return childBlobName(businessID, "facility", index, filename)
}

// FileExt returns the lower-cased extension of filename including the dot,
// or "" when the extension is missing, too long or not alphanumeric.
func FileExt(filename string) string {
	// Browsers on Windows may send full paths.
	filename = filename[strings.LastIndexByte(filename, '\\')+1:]

	ext := strings.ToLower(path.Ext(filename))
	if len(ext) < 2 || len(ext) > maxExtLen+1 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}

func licenseBlobName(license, role, filename string) string {
	return BlobPrefix + "business_" + url.PathEscape(strings.TrimSpace(license)) + "_" + role + FileExt(filename)
}

func childBlobName(businessID int64, kind string, index int, filename string) string {
	return BlobPrefix + "business_" + strconv.FormatInt(businessID, 10) + "_" + kind + "_" + strconv.Itoa(index) + FileExt(filename)
}
