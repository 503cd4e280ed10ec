package roster

// State bag keys written by the roster. The key set is open-ended: agents
// may introduce new keys, and the synchronizer passes unknown keys through
// untouched. These constants cover the keys the workflow gate and the
// synchronizer give meaning to.
const (
	KeyCompanyProfile       = "company_profile"        // CompanyProfile - whole record, overwritten wholesale
	KeyTopic                = "topic"                  // Topic - overwritten wholesale
	KeyFetchedArticles      = "fetched_articles"       // []Article
	KeyEvaluatedArticles    = "evaluated_articles"     // []Article with Evaluation set
	KeyGoodArticles         = "good_articles"          // []Article, filtered view where Evaluation == "good"
	KeyCompetitorAnalysis   = "competitor_analysis"    // string - free-text analysis blob
	KeyViralContentAnalysis = "viral_content_analysis" // string - free-text analysis blob
)

// Platform identifies one drafting target. The platform value doubles as
// the state bag key holding its drafted content.
type Platform string

const (
	PlatformTwitterPost   Platform = "twitter_post"
	PlatformTwitterThread Platform = "twitter_thread"
	PlatformInstagram     Platform = "instagram_post"
	PlatformLinkedIn      Platform = "linkedin_post"
)

// Platforms lists the drafting targets in display order.
var Platforms = []Platform{PlatformTwitterPost, PlatformTwitterThread, PlatformInstagram, PlatformLinkedIn}

// ContentKey returns the state bag key holding the platform's drafted
// content.
func (p Platform) ContentKey() string {
	return string(p)
}

// ImageKey returns the state bag key holding the platform's generated image
// artifact filename. The two Twitter formats share one image.
func (p Platform) ImageKey() string {
	switch p {
	case PlatformTwitterPost, PlatformTwitterThread:
		return "twitter_image"
	case PlatformInstagram:
		return "instagram_image"
	case PlatformLinkedIn:
		return "linkedin_image"
	default:
		return ""
	}
}

// Valid reports whether p is a known drafting target.
func (p Platform) Valid() bool {
	switch p {
	case PlatformTwitterPost, PlatformTwitterThread, PlatformInstagram, PlatformLinkedIn:
		return true
	}
	return false
}
