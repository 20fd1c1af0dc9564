package model

// platformUnknownStr is the string representation for unknown platform values.
const platformUnknownStr = "unknown"

// SocialPlatform represents a social media platform recognized in footer
// links. Values double as the domain keyword matched against link targets.
type SocialPlatform string

// Social media platform constants.
const (
	// SocialPlatformUnknown represents an unrecognized platform.
	SocialPlatformUnknown SocialPlatform = ""
	// SocialPlatformTwitter represents Twitter/X.
	SocialPlatformTwitter SocialPlatform = "twitter"
	// SocialPlatformFacebook represents Facebook.
	SocialPlatformFacebook SocialPlatform = "facebook"
	// SocialPlatformLinkedIn represents LinkedIn.
	SocialPlatformLinkedIn SocialPlatform = "linkedin"
	// SocialPlatformYouTube represents YouTube.
	SocialPlatformYouTube SocialPlatform = "youtube"
	// SocialPlatformInstagram represents Instagram.
	SocialPlatformInstagram SocialPlatform = "instagram"
)

// AllSocialPlatforms returns the recognized platforms in the order they are
// matched against link targets. The order is stable so social_links output
// is deterministic for a given page.
func AllSocialPlatforms() []SocialPlatform {
	return []SocialPlatform{
		SocialPlatformTwitter,
		SocialPlatformFacebook,
		SocialPlatformLinkedIn,
		SocialPlatformYouTube,
		SocialPlatformInstagram,
	}
}

// String returns the string representation of the SocialPlatform.
func (p SocialPlatform) String() string {
	if p == SocialPlatformUnknown {
		return platformUnknownStr
	}
	return string(p)
}

// IsValid returns true if this is a known platform.
func (p SocialPlatform) IsValid() bool {
	switch p {
	case SocialPlatformTwitter, SocialPlatformFacebook, SocialPlatformLinkedIn,
		SocialPlatformYouTube, SocialPlatformInstagram:
		return true
	default:
		return false
	}
}

// ParseSocialPlatform converts a string to SocialPlatform.
func ParseSocialPlatform(s string) SocialPlatform {
	switch s {
	case "twitter", "x":
		return SocialPlatformTwitter
	case "facebook":
		return SocialPlatformFacebook
	case "linkedin":
		return SocialPlatformLinkedIn
	case "youtube":
		return SocialPlatformYouTube
	case "instagram":
		return SocialPlatformInstagram
	default:
		return SocialPlatformUnknown
	}
}
