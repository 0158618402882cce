package discovery

import (
	"context"
	"time"
)

// MockPortalScraper simulates a portal scraper. Real scrapers would use
// HTTP clients or a headless browser against the portal markup.
type MockPortalScraper struct{}

func NewMockPortalScraper() *MockPortalScraper {
	return &MockPortalScraper{}
}

func (s *MockPortalScraper) Scan(ctx context.Context) ([]DiscoveredTender, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	publish1 := now.AddDate(0, 0, -2)
	deadline1 := now.AddDate(0, 0, 20)
	publish2 := now.AddDate(0, 0, -1)
	deadline2 := now.AddDate(0, 0, 15)

	return []DiscoveredTender{
		{
			ExternalRefID: "TEND-2024-001",
			Title:         "AI-Powered Document Analysis System for Defense Department",
			Authority:     "Ministry of Defense",
			Category:      "IT Services / AI",
			SourcePortal:  "Government E-Marketplace",
			Description:   "The Ministry of Defense requires a secure, AI-powered system to analyze internal documents and extract key requirements automatically.",
			PublishDate:   &publish1,
			Deadline:      &deadline1,
		},
		{
			ExternalRefID: "TEND-2024-002",
			Title:         "Cloud Infrastructure Modernization Phase 2",
			Authority:     "Public Health Authority",
			Category:      "Infrastructure",
			SourcePortal:  "ProcureNet Private",
			Description:   "Modernization of legacy cloud servers to a hybrid cloud architecture using Kubernetes and AWS/Azure.",
			PublishDate:   &publish2,
			Deadline:      &deadline2,
		},
	}, nil
}

func (s *MockPortalScraper) GetDetails(ctx context.Context, tender DiscoveredTender) (DiscoveredTender, error) {
	if err := ctx.Err(); err != nil {
		return tender, err
	}

	switch tender.ExternalRefID {
	case "TEND-2024-001":
		tender.Attachments = []DiscoveredAttachment{
			{Name: "Technical_Specifications.pdf", URL: "https://example.com/files/spec.pdf"},
			{Name: "Financial_Bid_Format.xlsx", URL: "https://example.com/files/bid.xlsx"},
		}
	case "TEND-2024-002":
		tender.Attachments = []DiscoveredAttachment{
			{Name: "Infra_Modernization_Scope.pdf", URL: "https://example.com/files/scope.pdf"},
		}
	}
	return tender, nil
}
