package discovery

import (
	"context"
	"strings"
)

// MatchResult is the relevance verdict for a discovered tender.
type MatchResult struct {
	Score       int
	Explanation string
	Tags        []string
	Label       string
}

// Matcher scores a discovered tender against the tenant's business profile.
type Matcher interface {
	Match(ctx context.Context, tender DiscoveredTender) (MatchResult, error)
}

// KeywordMatcher scores tenders by preferred-domain keyword hits in the title.
// It is the deterministic fallback used when no semantic matcher is wired in.
type KeywordMatcher struct {
	PreferredDomains []string
}

func NewKeywordMatcher(preferredDomains []string) *KeywordMatcher {
	return &KeywordMatcher{PreferredDomains: preferredDomains}
}

func (m *KeywordMatcher) Match(ctx context.Context, tender DiscoveredTender) (MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return MatchResult{}, err
	}

	title := strings.ToLower(tender.Title)

	tags := []string{}
	for _, domain := range m.PreferredDomains {
		if strings.Contains(title, strings.ToLower(domain)) {
			tags = append(tags, domain)
		}
	}

	// Keyword hit in the title means a plausible lead, otherwise a weak one
	score := 20
	if len(tags) > 0 {
		score = 50
	}

	return MatchResult{
		Score:       score,
		Explanation: "Automated domain keyword match (LLM Unavailable).",
		Tags:        tags,
		Label:       ScoreLabel(score),
	}, nil
}

// ScoreLabel converts a match score to a human-readable relevance label.
func ScoreLabel(score int) string {
	switch {
	case score > 80:
		return "Highly Relevant"
	case score > 50:
		return "Related"
	default:
		return "Weak Match"
	}
}
