package service

import (
	"context"
	"fmt"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"golang.org/x/sync/errgroup"
)

var _ port.CatalogBrowser = (*Catalog)(nil)

const defaultCatalogConcurrency = 4

type Catalog struct {
	catalog       port.ProductCatalog
	maxConcurrent int
}

func NewCatalog(catalog port.ProductCatalog, maxConcurrent int) *Catalog {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultCatalogConcurrency
	}
	return &Catalog{catalog: catalog, maxConcurrent: maxConcurrent}
}

// Products lists the catalog narrowed by f. A positive limit caps the result.
func (c *Catalog) Products(
	ctx context.Context, f domain.ProductFilter, limit int,
) ([]domain.Product, error) {
	const op = "Catalog.Products"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		ps  []domain.Product
		err error
	)
	switch {
	case f.IsZero() && limit > 0:
		ps, err = c.catalog.ListLimitedProducts(ctx, limit)
	case len(f.Categories) != 0:
		ps, err = c.byCategories(ctx, f.Categories)
	default:
		ps, err = c.catalog.ListProducts(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps = domain.FilterProducts(ps, f)
	if limit > 0 && len(ps) > limit {
		ps = ps[:limit]
	}
	return ps, nil
}

func (c *Catalog) Product(ctx context.Context, id int) (domain.Product, error) {
	const op = "Catalog.Product"

	p, err := c.catalog.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	const op = "Catalog.Categories"

	cs, err := c.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cs, nil
}

// byCategories fetches every category concurrently and merges the
// results in category order, each product once.
func (c *Catalog) byCategories(
	ctx context.Context, categories []string,
) ([]domain.Product, error) {
	results := make([][]domain.Product, len(categories))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	for i, category := range categories {
		g.Go(func() error {
			ps, err := c.catalog.ListProductsByCategory(ctx, category)
			if err != nil {
				return fmt.Errorf("category %q: %w", category, err)
			}
			results[i] = ps
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	var merged []domain.Product
	for _, ps := range results {
		for _, p := range ps {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged, nil
}
