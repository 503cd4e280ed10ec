package roster

const mergeProfilePrompt = `You maintain a company profile as a single JSON object.
Merge the new information below into the existing profile. Keep existing
fields unless the new information updates or contradicts them. Return ONLY
the merged JSON object, matching this schema (all fields optional strings):
company_name, company_work, linkedin_page_url, tagline, mission_statement,
value_proposition, brand_voice, primary_industry, industry_verticals,
business_model, target_market, competitive_landscape,
market_differentiation, employee_count, office_location, total_funding,
latest_funding_round, revenue_range, investors, brand_keywords.

Existing profile:
%s

New information:
%s`

const generateTopicPrompt = `You pick one social media content topic for the company below,
informed by the recent news snippet. Return ONLY a JSON object:
{"topic": "...", "context": "...", "keywords": "...", "angle": "..."}.

Company profile:
%s

Recent news:
%s`

const customTopicPrompt = `Expand the user-supplied topic below into a content topic for
social media. Return ONLY a JSON object:
{"topic": "...", "context": "...", "keywords": "...", "angle": "..."}.

Topic: %s`

const evaluateArticlePrompt = `You judge whether an article is useful for professional social
media content. Good articles offer insight, analysis or actionable
takeaways; bad articles merely report news or lack depth. Return ONLY a
JSON object: {"evaluation": "good"} or {"evaluation": "bad"}.

%s`

const competitorSynthesisPrompt = `Analyze the competitor posts below and produce one unified
competitor content analysis for the topic %q: recurring strategies, hooks,
formats and engagement patterns that work across LinkedIn, X and Instagram.

%s`

const viralSynthesisPrompt = `Analyze the viral posts below and produce one unified viral
content analysis for the topic %q: universal patterns that travel across
LinkedIn, X and Instagram, and how to apply them.

%s`
