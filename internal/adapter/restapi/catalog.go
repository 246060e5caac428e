package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.ProductCatalog = (*CatalogClient)(nil)

type productDTO struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (p productDTO) toDomain() domain.Product {
	return domain.Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       decimal.NewFromFloat(p.Price),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Rating: domain.ProductRating{
			Rate:  p.Rating.Rate,
			Count: p.Rating.Count,
		},
	}
}

func toProducts(dtos []productDTO) []domain.Product {
	ps := make([]domain.Product, len(dtos))
	for i, dto := range dtos {
		ps[i] = dto.toDomain()
	}
	return ps
}

// CatalogClient reads products from a fakestore compatible API.
type CatalogClient struct {
	cl *Client
}

func NewCatalogClient(cl *Client) CatalogClient {
	return CatalogClient{cl}
}

func (c CatalogClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "CatalogClient.ListProducts"
	return c.list(ctx, op, "/products")
}

func (c CatalogClient) ListLimitedProducts(
	ctx context.Context, limit int,
) ([]domain.Product, error) {
	const op = "CatalogClient.ListLimitedProducts"
	return c.list(ctx, op, "/products?limit="+strconv.Itoa(limit))
}

func (c CatalogClient) ListProductsByCategory(
	ctx context.Context, category string,
) ([]domain.Product, error) {
	const op = "CatalogClient.ListProductsByCategory"
	return c.list(ctx, op, "/products/category/"+url.PathEscape(category))
}

// GetProduct maps both 404 and an empty 200 answer to
// [domain.ErrProductNotFound].
func (c CatalogClient) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	const op = "CatalogClient.GetProduct"

	var dto productDTO
	empty, err := c.cl.getJSON(ctx, "/products/"+strconv.Itoa(id), &dto)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		empty, err = true, nil
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	if empty || dto.ID == 0 {
		return domain.Product{}, fmt.Errorf("%s: id %d: %w", op, id, domain.ErrProductNotFound)
	}
	return dto.toDomain(), nil
}

func (c CatalogClient) ListCategories(ctx context.Context) ([]string, error) {
	const op = "CatalogClient.ListCategories"

	var cs []string
	if _, err := c.cl.getJSON(ctx, "/products/categories", &cs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cs, nil
}

func (c CatalogClient) list(
	ctx context.Context, op, path string,
) ([]domain.Product, error) {
	var dtos []productDTO
	if _, err := c.cl.getJSON(ctx, path, &dtos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toProducts(dtos), nil
}
