package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/normalize"
	"cloud-sku-compare/pkg/platform"
)

const AzureRetailBaseURL = "https://prices.azure.com/api/retail/prices"

// AzureRetailSource reads the public Azure Retail Prices API.
type AzureRetailSource struct {
	BaseURL  string
	Region   string
	MaxPages int

	client     *platform.HTTPClient
	normalizer *normalize.Normalizer
	logger     zerolog.Logger
}

func NewAzureRetailSource(client *platform.HTTPClient, normalizer *normalize.Normalizer, region string, logger zerolog.Logger) *AzureRetailSource {
	return &AzureRetailSource{
		BaseURL:    AzureRetailBaseURL,
		Region:     region,
		MaxPages:   DefaultMaxPages,
		client:     client,
		normalizer: normalizer,
		logger:     logger,
	}
}

func (s *AzureRetailSource) Name() string { return "azure-retail" }

// LoadCatalog fetches every pay-as-you-go VM meter in the configured region.
func (s *AzureRetailSource) LoadCatalog(ctx context.Context, provider catalog.Provider) ([]catalog.SkuRecord, error) {
	if err := checkProvider(s.Name(), catalog.Azure, provider); err != nil {
		return nil, err
	}
	filter := fmt.Sprintf("serviceName eq 'Virtual Machines' and armRegionName eq '%s' and priceType eq 'Consumption'", odataQuote(s.Region))
	return s.fetch(ctx, filter)
}

// LookupPrice fetches the pay-as-you-go retail meters of a single ARM SKU name.
func (s *AzureRetailSource) LookupPrice(ctx context.Context, skuID string) ([]catalog.SkuRecord, error) {
	if skuID == "" {
		return nil, nil
	}
	filter := fmt.Sprintf("armRegionName eq '%s' and armSkuName eq '%s' and priceType eq 'Consumption'", odataQuote(s.Region), odataQuote(skuID))
	return s.fetch(ctx, filter)
}

func (s *AzureRetailSource) fetch(ctx context.Context, filter string) ([]catalog.SkuRecord, error) {
	next := s.BaseURL + "?$filter=" + strings.ReplaceAll(url.QueryEscape(filter), "+", "%20")

	var pages []normalize.Payload
	for next != "" {
		if len(pages) >= s.MaxPages {
			s.logger.Warn().Int("pages", len(pages)).Msg("Azure retail pagination truncated")
			break
		}
		page := &normalize.AzureRetailPage{}
		if err := s.client.GetJSON(ctx, next, page); err != nil {
			return nil, unavailable(s.Name(), err)
		}
		pages = append(pages, page)
		next = page.NextPage()
	}
	s.logger.Debug().Int("pages", len(pages)).Str("filter", filter).Msg("Fetched Azure retail prices")
	return s.normalizer.NormalizeAll(pages), nil
}

func odataQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
