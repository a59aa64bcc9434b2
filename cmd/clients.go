package main

import (
	"github.com/grantley-gardens/tribunal-cli/internal/config"
	"github.com/grantley-gardens/tribunal-cli/internal/fetcher"
	"github.com/grantley-gardens/tribunal-cli/internal/resilience"
	"github.com/grantley-gardens/tribunal-cli/internal/store"
)

// retryConfig builds the shared retry policy from config.
func retryConfig(cfg *config.Config, operation string) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts: cfg.Fetch.MaxRetries,
		BaseDelay:   cfg.Fetch.RetryDelay(),
		OnRetry:     resilience.RetryLogger("govuk", operation),
	}
}

// newContentClient wires the content API client from config.
func newContentClient(cfg *config.Config) *fetcher.ContentClient {
	client := fetcher.NewClient(fetcher.Options{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout(),
		Delay:     cfg.Fetch.ContentDelay(),
	})
	return fetcher.NewContentClient(cfg.Fetch.ContentAPI, client, retryConfig(cfg, "fetch_decision"))
}

// newAttachmentClient wires the binary download client from config.
func newAttachmentClient(cfg *config.Config) *fetcher.AttachmentClient {
	client := fetcher.NewClient(fetcher.Options{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout(),
		Delay:     cfg.Fetch.PDFDelay(),
	})
	return fetcher.NewAttachmentClient(client, retryConfig(cfg, "download_pdf"))
}

func newDatasetStore(cfg *config.Config) *store.DatasetStore {
	return store.NewDatasetStore(cfg.Data.InputPath, cfg.Data.OutputPath)
}

func newManifestStore(cfg *config.Config) *store.ManifestStore {
	return store.NewManifestStore(cfg.Data.ManifestPath)
}
