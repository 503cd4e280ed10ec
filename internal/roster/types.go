package roster

// CompanyProfile describes the business the studio generates content for.
// Every field is optional: the profile updater synthesizes a whole new
// record from the old record plus freeform text, so fields the text never
// mentioned stay empty. The record is always replaced wholesale, never
// patched field by field.
type CompanyProfile struct {
	CompanyName     string `json:"company_name,omitempty"`
	CompanyWork     string `json:"company_work,omitempty"`
	LinkedInPageURL string `json:"linkedin_page_url,omitempty"`

	Tagline          string `json:"tagline,omitempty"`
	MissionStatement string `json:"mission_statement,omitempty"`
	ValueProposition string `json:"value_proposition,omitempty"`
	BrandVoice       string `json:"brand_voice,omitempty"`

	PrimaryIndustry       string `json:"primary_industry,omitempty"`
	IndustryVerticals     string `json:"industry_verticals,omitempty"`
	BusinessModel         string `json:"business_model,omitempty"`
	TargetMarket          string `json:"target_market,omitempty"`
	CompetitiveLandscape  string `json:"competitive_landscape,omitempty"`
	MarketDifferentiation string `json:"market_differentiation,omitempty"`

	EmployeeCount  string `json:"employee_count,omitempty"`
	OfficeLocation string `json:"office_location,omitempty"`

	TotalFunding       string `json:"total_funding,omitempty"`
	LatestFundingRound string `json:"latest_funding_round,omitempty"`
	RevenueRange       string `json:"revenue_range,omitempty"`
	Investors          string `json:"investors,omitempty"`
	BrandKeywords      string `json:"brand_keywords,omitempty"`
}

// Empty reports whether no field of the profile is set.
func (p CompanyProfile) Empty() bool {
	return p == CompanyProfile{}
}

// Topic is the selected content topic. Overwritten wholesale by the topic
// generator or the custom topic setter.
type Topic struct {
	Topic    string `json:"topic"`
	Context  string `json:"context,omitempty"`
	Keywords string `json:"keywords,omitempty"`
	Angle    string `json:"angle,omitempty"`
}

// Article evaluation verdicts.
const (
	EvaluationGood = "good"
	EvaluationBad  = "bad"
)

// Article is one fetched (and possibly evaluated) article record.
type Article struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date,omitempty"`
	Evaluation    string `json:"evaluation,omitempty"`
}
