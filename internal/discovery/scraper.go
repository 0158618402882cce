package discovery

import (
	"context"
	"time"
)

// DiscoveredAttachment is a document link found on a portal tender page.
type DiscoveredAttachment struct {
	Name string
	URL  string
}

// DiscoveredTender is a raw tender as seen on a portal, before moderation.
type DiscoveredTender struct {
	ExternalRefID string
	Title         string
	Authority     string
	Category      string
	Location      string
	Description   string
	SourcePortal  string
	SourceURL     string
	PublishDate   *time.Time
	Deadline      *time.Time
	Attachments   []DiscoveredAttachment
}

// Scraper scans a procurement portal for tenders.
type Scraper interface {
	// Scan returns the tenders currently listed on the portal.
	Scan(ctx context.Context) ([]DiscoveredTender, error)
	// GetDetails enriches a tender with attachments and deep fields.
	GetDetails(ctx context.Context, tender DiscoveredTender) (DiscoveredTender, error)
}
