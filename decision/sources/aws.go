package sources

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/rs/zerolog"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/normalize"
)

// The Price List API is only served from a few regions.
const DefaultAWSPricingRegion = "us-east-1"

// GetProductsAPI is the subset of the pricing client used here.
type GetProductsAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// AWSPricingSource reads on-demand Linux EC2 offers from the AWS Price List API.
type AWSPricingSource struct {
	RegionCode string
	MaxPages   int

	client     GetProductsAPI
	normalizer *normalize.Normalizer
	logger     zerolog.Logger
}

func NewAWSPricingSource(client GetProductsAPI, normalizer *normalize.Normalizer, regionCode string, logger zerolog.Logger) *AWSPricingSource {
	return &AWSPricingSource{
		RegionCode: regionCode,
		MaxPages:   DefaultMaxPages,
		client:     client,
		normalizer: normalizer,
		logger:     logger,
	}
}

// NewAWSPricingSourceFromConfig builds the pricing client from the default credential chain.
func NewAWSPricingSourceFromConfig(ctx context.Context, pricingRegion, regionCode string, normalizer *normalize.Normalizer, logger zerolog.Logger) (*AWSPricingSource, error) {
	if pricingRegion == "" {
		pricingRegion = DefaultAWSPricingRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(pricingRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewAWSPricingSource(pricing.NewFromConfig(cfg), normalizer, regionCode, logger), nil
}

func (s *AWSPricingSource) Name() string { return "aws-pricing" }

// LoadCatalog fetches every shared-tenancy Linux instance type in the region.
func (s *AWSPricingSource) LoadCatalog(ctx context.Context, provider catalog.Provider) ([]catalog.SkuRecord, error) {
	if err := checkProvider(s.Name(), catalog.AWS, provider); err != nil {
		return nil, err
	}
	return s.fetch(ctx, s.filters())
}

// LookupPrice fetches the offers of a single instance type.
func (s *AWSPricingSource) LookupPrice(ctx context.Context, instanceType string) ([]catalog.SkuRecord, error) {
	if instanceType == "" {
		return nil, nil
	}
	return s.fetch(ctx, s.filters(termMatch("instanceType", instanceType)))
}

func (s *AWSPricingSource) filters(extra ...types.Filter) []types.Filter {
	filters := []types.Filter{
		termMatch("regionCode", s.RegionCode),
		termMatch("operatingSystem", "Linux"),
		termMatch("tenancy", "Shared"),
		termMatch("preInstalledSw", "NA"),
		termMatch("capacitystatus", "Used"),
	}
	return append(filters, extra...)
}

func (s *AWSPricingSource) fetch(ctx context.Context, filters []types.Filter) ([]catalog.SkuRecord, error) {
	paginator := pricing.NewGetProductsPaginator(s.client, &pricing.GetProductsInput{
		ServiceCode:   aws.String("AmazonEC2"),
		FormatVersion: aws.String("aws_v1"),
		Filters:       filters,
	})

	var pages []normalize.Payload
	for paginator.HasMorePages() {
		if len(pages) >= s.MaxPages {
			s.logger.Warn().Int("pages", len(pages)).Msg("AWS price list pagination truncated")
			break
		}
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, unavailable(s.Name(), err)
		}
		pages = append(pages, &normalize.AWSProductsPage{
			FormatVersion: aws.ToString(out.FormatVersion),
			NextToken:     aws.ToString(out.NextToken),
			PriceList:     out.PriceList,
		})
	}
	s.logger.Debug().Int("pages", len(pages)).Msg("Fetched AWS price list")
	return s.normalizer.NormalizeAll(pages), nil
}

func termMatch(field, value string) types.Filter {
	return types.Filter{
		Field: aws.String(field),
		Type:  types.FilterTypeTermMatch,
		Value: aws.String(value),
	}
}
