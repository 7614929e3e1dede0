package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/ports"
	"gopkg.in/yaml.v3"
)

// DefaultPageSize is the page size of a Catalog created without one.
const DefaultPageSize = 5

// Fixture is a catalog and store directory described in a YAML file.
type Fixture struct {
	PageSize int                     `yaml:"pageSize"`
	Products []domain.CatalogRecord  `yaml:"products"`
	Stores   []domain.StoreSelection `yaml:"stores"`
}

type fixtureStore struct {
	StoreID       string `yaml:"storeId"`
	StoreName     string `yaml:"storeName"`
	LocationGroup string `yaml:"locationGroup"`
}

type fixtureFile struct {
	PageSize int            `yaml:"pageSize"`
	Products []fixtureProd  `yaml:"products"`
	Stores   []fixtureStore `yaml:"stores"`
}

type fixtureProd struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML.
func ParseFixture(data []byte) (*Fixture, error) {
	var raw fixtureFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog fixture: %w", err)
	}

	f := &Fixture{PageSize: raw.PageSize}
	for i, p := range raw.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("product %d missing id", i)
		}
		f.Products = append(f.Products, domain.CatalogRecord{ID: p.ID, Name: p.Name, Category: p.Category})
	}
	for i, s := range raw.Stores {
		if s.StoreID == "" {
			return nil, fmt.Errorf("store %d missing storeId", i)
		}
		f.Stores = append(f.Stores, domain.StoreSelection{StoreID: s.StoreID, StoreName: s.StoreName, LocationGroup: s.LocationGroup})
	}
	return f, nil
}

// Catalog implements ports.CatalogService over a fixed list of records.
type Catalog struct {
	mu       sync.RWMutex
	records  []domain.CatalogRecord
	pageSize int
}

// NewCatalog creates a catalog serving records in pages of pageSize.
func NewCatalog(pageSize int, records ...domain.CatalogRecord) *Catalog {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Catalog{records: records, pageSize: pageSize}
}

// NewCatalogFromFixture creates a catalog from a loaded fixture.
func NewCatalogFromFixture(f *Fixture) *Catalog {
	return NewCatalog(f.PageSize, f.Products...)
}

// FetchPage returns one page, filtered by category when a filter is given.
func (c *Catalog) FetchPage(ctx context.Context, req ports.CatalogRequest) (ports.CatalogResponse, error) {
	if err := ctx.Err(); err != nil {
		return ports.CatalogResponse{}, err
	}
	if req.PageNumber < 1 {
		return ports.CatalogResponse{}, fmt.Errorf("invalid page number %d", req.PageNumber)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	matching := c.records
	if req.CategoryFilter != nil {
		matching = nil
		for _, r := range c.records {
			if r.Category == *req.CategoryFilter {
				matching = append(matching, r)
			}
		}
	}

	start := min((req.PageNumber-1)*c.pageSize, len(matching))
	end := min(start+c.pageSize, len(matching))
	records := make([]domain.CatalogRecord, end-start)
	copy(records, matching[start:end])

	return ports.CatalogResponse{
		PageSize:       c.pageSize,
		TotalItemCount: len(matching),
		Records:        records,
	}, nil
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
