package fetcher

import (
	"context"
	"strings"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
	"github.com/grantley-gardens/tribunal-cli/internal/resilience"
)

// ContentDocument is the subset of the GOV.UK content API response the
// pipeline consumes.
type ContentDocument struct {
	ContentID string         `json:"content_id"`
	Details   ContentDetails `json:"details"`
}

// ContentDetails nests the indexable text and the attachment list.
type ContentDetails struct {
	Metadata    ContentMetadata     `json:"metadata"`
	Attachments []ContentAttachment `json:"attachments"`
}

// ContentMetadata carries the hidden full text of the decision.
type ContentMetadata struct {
	HiddenIndexableContent string `json:"hidden_indexable_content"`
}

// ContentAttachment is one attachment descriptor from the API.
type ContentAttachment struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
}

// FullText returns the decision's indexable text, or "".
func (d *ContentDocument) FullText() string {
	return d.Details.Metadata.HiddenIndexableContent
}

// Attachments converts the API attachment list into model form.
func (d *ContentDocument) Attachments() []model.Attachment {
	if len(d.Details.Attachments) == 0 {
		return nil
	}
	out := make([]model.Attachment, 0, len(d.Details.Attachments))
	for _, a := range d.Details.Attachments {
		out = append(out, model.Attachment{
			Title:       a.Title,
			URL:         a.URL,
			ContentType: a.ContentType,
			ContentID:   a.ContentID,
		})
	}
	return out
}

// PDFURLs returns the non-empty attachment URLs in order.
func (d *ContentDocument) PDFURLs() []string {
	var urls []string
	for _, a := range d.Details.Attachments {
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}
	return urls
}

// ContentClient fetches decision documents from the GOV.UK content API with
// the shared retry policy.
type ContentClient struct {
	base   string
	client *Client
	retry  resilience.RetryConfig
}

// NewContentClient creates a ContentClient rooted at base
// (e.g. "https://www.gov.uk/api/content").
func NewContentClient(base string, client *Client, retry resilience.RetryConfig) *ContentClient {
	return &ContentClient{
		base:   strings.TrimSuffix(base, "/"),
		client: client,
		retry:  retry,
	}
}

// FetchDecision fetches the content document for a GOV.UK path. A
// resilience.NotFoundError means the decision no longer exists; any other
// error means the retry budget was exhausted.
func (c *ContentClient) FetchDecision(ctx context.Context, govUKPath string) (*ContentDocument, error) {
	url := c.base + govUKPath
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*ContentDocument, error) {
		var doc ContentDocument
		if err := c.client.GetJSON(ctx, url, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	})
}
