// Package assets holds the contract for the external image host. Products
// store the {url, public_id} pair the host returns on upload; the only call
// the API makes itself is delete-by-public-id when a product is removed or
// its image replaced.
package assets

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/config"
)

// Storage is the asset-host contract.
type Storage interface {
	DeleteByPublicID(ctx context.Context, publicID string) error
}

type httpStorage struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPStorage creates a Storage backed by the configured asset host.
func NewHTTPStorage(cfg config.AssetsConfig) Storage {
	return &httpStorage{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *httpStorage) DeleteByPublicID(ctx context.Context, publicID string) error {
	endpoint := fmt.Sprintf("%s/assets/%s", s.baseURL, url.PathEscape(publicID))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build asset delete request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", publicID, err)
	}
	defer resp.Body.Close()

	// A missing asset is fine; the goal is that it is gone.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("asset host returned status %d for %s", resp.StatusCode, publicID)
	}

	return nil
}

// Noop returns a Storage that does nothing, for deployments without an
// asset host configured.
func Noop() Storage {
	return noopStorage{}
}

type noopStorage struct{}

func (noopStorage) DeleteByPublicID(context.Context, string) error { return nil }
