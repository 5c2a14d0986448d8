// Package generators builds the outgoing test emails for each supported
// email type. Generators are pure with respect to the store: they take
// explicit parameters and return fully-formed messages with in-memory
// attachments; sending and persistence are the caller's concern.
package generators

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/crucial707/mailprobe/internal/models"
)

// Request carries the per-send parameters common to all generators plus
// the fields only some of them use.
type Request struct {
	Count      int
	Recipients []string

	// Phishing only.
	TemplateType string

	// Custom only.
	Subject        string
	Body           string
	DisplayName    string
	AttachmentType string
}

// Generator produces test emails of every supported type.
type Generator struct {
	// HTTPClient is used for feed fetches. Nil means a 60s default client.
	HTTPClient *http.Client
	// FeedURL overrides the PhishTank feed endpoint. Empty means the default.
	FeedURL string
	// SevenZipPath is the 7z binary used for cynic archives.
	SevenZipPath string
	// Now is the clock, injectable for tests. Nil means time.Now.
	Now func() time.Time
}

func (g *Generator) clock() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Generate dispatches to the generator for the given email type.
func (g *Generator) Generate(ctx context.Context, emailType string, req Request) ([]models.Email, error) {
	if req.Count < 1 {
		req.Count = 1
	}
	if len(req.Recipients) == 0 {
		return nil, fmt.Errorf("no recipients specified")
	}

	switch emailType {
	case models.EmailTypePhishing:
		return g.Phishing(ctx, req)
	case models.EmailTypeEICAR:
		return g.EICAR(req)
	case models.EmailTypeGTUBE:
		return g.GTUBE(req)
	case models.EmailTypeCynic:
		return g.Cynic(ctx, req)
	case models.EmailTypeCustom:
		return g.Custom(req)
	default:
		return nil, fmt.Errorf("unknown email type %q", emailType)
	}
}
