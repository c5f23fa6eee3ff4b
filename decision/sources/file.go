package sources

import (
	"context"
	"fmt"
	"os"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/normalize"
)

// FileSource reads static catalog files (JSON or YAML arrays), one per provider.
type FileSource struct {
	paths      map[catalog.Provider]string
	normalizer *normalize.Normalizer
}

func NewFileSource(paths map[catalog.Provider]string, normalizer *normalize.Normalizer) *FileSource {
	return &FileSource{paths: paths, normalizer: normalizer}
}

func (s *FileSource) Name() string { return "file" }

// LoadCatalog reads and normalizes the provider's catalog file.
func (s *FileSource) LoadCatalog(ctx context.Context, provider catalog.Provider) ([]catalog.SkuRecord, error) {
	path := s.paths[provider]
	if path == "" {
		return nil, unavailable(s.Name(), fmt.Errorf("no catalog file configured for %s", provider))
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable(s.Name(), err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("failed to read %s: %w", path, err))
	}
	records, err := s.normalizer.NormalizeRaw(provider, normalize.ShapeStatic, data)
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("failed to parse %s: %w", path, err))
	}
	return records, nil
}
