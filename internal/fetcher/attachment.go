package fetcher

import (
	"context"
	"strings"

	"github.com/grantley-gardens/tribunal-cli/internal/resilience"
)

// AttachmentClient downloads binary attachments with the shared retry policy.
type AttachmentClient struct {
	client *Client
	retry  resilience.RetryConfig
}

// NewAttachmentClient creates an AttachmentClient.
func NewAttachmentClient(client *Client, retry resilience.RetryConfig) *AttachmentClient {
	return &AttachmentClient{client: client, retry: retry}
}

// Download streams the attachment at url to dest. Returns a
// resilience.NotFoundError for a vanished attachment.
func (c *AttachmentClient) Download(ctx context.Context, url, dest string) error {
	return resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		_, err := c.client.DownloadToFile(ctx, url, dest)
		return err
	})
}

// FilenameFromURL derives a safe local filename from an attachment URL.
// GOV.UK upload URLs look like
// /government/uploads/system/uploads/attachment_data/file/12345/foo.pdf;
// the numeric file id is prepended for uniqueness across same-named files.
func FilenameFromURL(rawURL string) string {
	parts := strings.Split(strings.TrimRight(rawURL, "/"), "/")
	if len(parts) == 0 {
		return "unknown.pdf"
	}
	filename := parts[len(parts)-1]
	if filename == "" {
		return "unknown.pdf"
	}
	for i := len(parts) - 2; i >= 0; i-- {
		if isDigits(parts[i]) {
			return parts[i] + "_" + filename
		}
	}
	return filename
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
