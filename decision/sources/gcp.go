package sources

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/normalize"
	"cloud-sku-compare/pkg/platform"
)

// Compute Engine service in the Cloud Billing catalog.
const GCPBillingBaseURL = "https://cloudbilling.googleapis.com/v1/services/6F81-5844-456A/skus"

// GCPBillingSource reads Compute Engine SKUs from the Cloud Billing Catalog API.
type GCPBillingSource struct {
	BaseURL  string
	APIKey   string
	PageSize int
	MaxPages int

	client     *platform.HTTPClient
	normalizer *normalize.Normalizer
	logger     zerolog.Logger
}

func NewGCPBillingSource(client *platform.HTTPClient, normalizer *normalize.Normalizer, apiKey string, logger zerolog.Logger) *GCPBillingSource {
	return &GCPBillingSource{
		BaseURL:    GCPBillingBaseURL,
		APIKey:     apiKey,
		PageSize:   5000,
		MaxPages:   DefaultMaxPages,
		client:     client,
		normalizer: normalizer,
		logger:     logger,
	}
}

func (s *GCPBillingSource) Name() string { return "gcp-billing" }

func (s *GCPBillingSource) LoadCatalog(ctx context.Context, provider catalog.Provider) ([]catalog.SkuRecord, error) {
	if err := checkProvider(s.Name(), catalog.GCP, provider); err != nil {
		return nil, err
	}
	if s.APIKey == "" {
		return nil, unavailable(s.Name(), errors.New("no GCP API key configured"))
	}

	var pages []normalize.Payload
	token := ""
	for {
		if len(pages) >= s.MaxPages {
			s.logger.Warn().Int("pages", len(pages)).Msg("GCP billing pagination truncated")
			break
		}
		page := &normalize.GCPBillingPage{}
		if err := s.client.GetJSON(ctx, s.pageURL(token), page); err != nil {
			return nil, unavailable(s.Name(), err)
		}
		pages = append(pages, page)
		if token = page.NextPage(); token == "" {
			break
		}
	}
	return s.normalizer.NormalizeAll(pages), nil
}

func (s *GCPBillingSource) pageURL(token string) string {
	q := url.Values{}
	q.Set("key", s.APIKey)
	if s.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(s.PageSize))
	}
	if token != "" {
		q.Set("pageToken", token)
	}
	return s.BaseURL + "?" + q.Encode()
}
