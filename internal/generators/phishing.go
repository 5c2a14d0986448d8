package generators

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/crucial707/mailprobe/internal/models"
)

// DefaultFeedURL is the PhishTank verified-online feed (gzipped JSON).
const DefaultFeedURL = "http://data.phishtank.com/data/online-valid.json.gz"

const phishingSubject = "Warning - Potentially Hazardous URL"

// fallbackURLs keeps phishing sends working when the feed is unreachable.
// These are well-known harmless test URLs.
var fallbackURLs = []string{
	"http://malware.wicar.org/data/eicar.com",
	"http://malware.wicar.org/data/java_jre17_exec.html",
	"http://malware.wicar.org/data/js_crypto_miner.html",
	"http://malware.wicar.org/data/ms14_064_ole_not_xp.html",
}

const (
	TemplateWarning      = "warning"
	TemplateUrgent       = "urgent"
	TemplateNotification = "notification"
)

// Phishing builds count messages, each flagging one URL from the PhishTank
// feed. Feed failures fall back to a built-in URL list rather than failing
// the send.
func (g *Generator) Phishing(ctx context.Context, req Request) ([]models.Email, error) {
	urls, err := g.fetchFeedURLs(ctx, req.Count*2)
	if err != nil || len(urls) == 0 {
		urls = fallbackURLs
	}

	emails := make([]models.Email, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		url := urls[i%len(urls)]
		emails = append(emails, models.Email{
			Subject:    fmt.Sprintf("%s - %d", phishingSubject, i+1),
			Body:       phishingBody(url, req.TemplateType),
			Recipients: req.Recipients,
		})
	}
	return emails, nil
}

func phishingBody(url, templateType string) string {
	switch templateType {
	case TemplateUrgent:
		return fmt.Sprintf(`URGENT: Security Alert

A potentially malicious URL has been detected:

%s

Please review this URL immediately.

This is a test email generated for security testing purposes.`, url)
	case TemplateNotification:
		return fmt.Sprintf(`Security Notification

The following URL has been identified as potentially hazardous:

%s

This is a test email generated for security testing purposes.`, url)
	default:
		return fmt.Sprintf(`Warning - Potentially Hazardous URL Detected

This email contains a potentially hazardous URL that has been flagged:

%s

Please exercise caution when accessing this link.

This is a test email generated for security testing purposes.`, url)
	}
}

// fetchFeedURLs downloads and decodes the gzipped feed, returning at most
// limit URLs.
func (g *Generator) fetchFeedURLs(ctx context.Context, limit int) ([]string, error) {
	feedURL := g.FeedURL
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	client := g.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decompress feed: %w", err)
	}
	defer gz.Close()

	var entries []struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(gz).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	urls := make([]string, 0, limit)
	for _, e := range entries {
		if e.URL == "" {
			continue
		}
		urls = append(urls, e.URL)
		if len(urls) >= limit {
			break
		}
	}
	return urls, nil
}
