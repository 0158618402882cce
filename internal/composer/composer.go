package composer

import (
	"context"
	"fmt"
	"strings"

	"bidpilot_backend/internal/models"
)

// Composer drafts response text for a tender requirement.
type Composer interface {
	Compose(ctx context.Context, tender *models.Tender, requirement *models.Requirement, mode models.GenerationMode, tone models.ResponseTone) (string, error)
}

// TemplateComposer is the deterministic fallback used when no LLM backend
// is configured. Output quality is intentionally basic.
type TemplateComposer struct {
	CompanyName string
}

func NewTemplateComposer(companyName string) *TemplateComposer {
	if companyName == "" {
		companyName = "Our company"
	}
	return &TemplateComposer{CompanyName: companyName}
}

func (c *TemplateComposer) Compose(ctx context.Context, tender *models.Tender, requirement *models.Requirement, mode models.GenerationMode, tone models.ResponseTone) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder

	switch tone {
	case models.ResponseToneCasual:
		fmt.Fprintf(&b, "We are excited to respond to \"%s\".\n\n", tender.Title)
	case models.ResponseToneFormal:
		fmt.Fprintf(&b, "In reference to tender \"%s\", we hereby submit our response.\n\n", tender.Title)
	case models.ResponseToneSimple:
		fmt.Fprintf(&b, "This is our response to \"%s\".\n\n", tender.Title)
	case models.ResponseToneAcademic:
		fmt.Fprintf(&b, "The following constitutes the formal response of %s to the tender \"%s\".\n\n", c.CompanyName, tender.Title)
	default:
		fmt.Fprintf(&b, "%s submits the following response to tender \"%s\".\n\n", c.CompanyName, tender.Title)
	}

	if requirement != nil {
		fmt.Fprintf(&b, "Requirement: %s\n", requirement.Title)
		if requirement.Description != "" {
			fmt.Fprintf(&b, "%s\n", requirement.Description)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s confirms full compliance with this requirement and will provide supporting documentation on request.\n", c.CompanyName)
	} else {
		fmt.Fprintf(&b, "%s confirms readiness to deliver the full scope described in the tender documentation.\n", c.CompanyName)
	}

	switch mode {
	case models.GenerationModeAggressive:
		fmt.Fprintf(&b, "\n%s maintains a proven delivery record on engagements of this scale and is prepared to commit dedicated capacity from day one.\n", c.CompanyName)
	case models.GenerationModeCreative:
		fmt.Fprintf(&b, "\n%s sees this engagement as an opportunity to go beyond the stated requirements and proposes to explore complementary improvements during delivery.\n", c.CompanyName)
	default:
		if tender.Description != "" {
			fmt.Fprintf(&b, "\nContext: %s\n", tender.Description)
		}
	}

	return b.String(), nil
}
