package service_test

import (
	"errors"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func titled(id int, title, category string) domain.Product {
	p := product(id, "1")
	p.Title = title
	p.Category = category
	return p
}

func ids(ps []domain.Product) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestCatalogProducts(t *testing.T) {
	t.Run("LimitedWithoutFilter", func(t *testing.T) {
		catalog := new(MockProductCatalog)
		catalog.On("ListLimitedProducts", mock.Anything, 2).Return([]domain.Product{
			titled(1, "Backpack", "bags"),
			titled(2, "Jacket", "clothing"),
		}, nil).Once()

		ps, err := service.NewCatalog(catalog, 0).
			Products(t.Context(), domain.ProductFilter{}, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, ids(ps))
		catalog.AssertExpectations(t)
	})

	t.Run("CategoriesMergedInOrder", func(t *testing.T) {
		catalog := new(MockProductCatalog)
		catalog.On("ListProductsByCategory", mock.Anything, "jewelery").
			Return([]domain.Product{
				titled(5, "Ring", "jewelery"),
				titled(6, "Bracelet", "jewelery"),
			}, nil)
		catalog.On("ListProductsByCategory", mock.Anything, "electronics").
			Return([]domain.Product{
				titled(9, "Monitor", "electronics"),
				titled(5, "Ring", "jewelery"),
			}, nil)

		f := domain.ProductFilter{Categories: []string{"jewelery", "electronics"}}
		ps, err := service.NewCatalog(catalog, 1).Products(t.Context(), f, 0)
		require.NoError(t, err)
		assert.Equal(t, []int{5, 6, 9}, ids(ps))
	})

	t.Run("QueryAndLimit", func(t *testing.T) {
		catalog := new(MockProductCatalog)
		catalog.On("ListProducts", mock.Anything).Return([]domain.Product{
			titled(1, "Slim Fit T-Shirt", "clothing"),
			titled(2, "Hard Drive", "electronics"),
			titled(3, "Cotton T-Shirt", "clothing"),
			titled(4, "Rain T-shirt", "clothing"),
		}, nil)

		f := domain.ProductFilter{Query: "  t-shirt "}
		ps, err := service.NewCatalog(catalog, 0).Products(t.Context(), f, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, ids(ps))
		catalog.AssertNotCalled(t, "ListLimitedProducts", mock.Anything, mock.Anything)
	})

	t.Run("CategoryFailure", func(t *testing.T) {
		errDown := errors.New("bad gateway")
		catalog := new(MockProductCatalog)
		catalog.On("ListProductsByCategory", mock.Anything, "bags").Return(nil, errDown)

		f := domain.ProductFilter{Categories: []string{"bags"}}
		_, err := service.NewCatalog(catalog, 0).Products(t.Context(), f, 0)
		require.ErrorIs(t, err, errDown)
	})
}

func TestCatalogProduct(t *testing.T) {
	catalog := new(MockProductCatalog)
	catalog.On("GetProduct", mock.Anything, 7).Return(titled(7, "Mug", "home"), nil)
	catalog.On("GetProduct", mock.Anything, 8).
		Return(domain.Product{}, domain.ErrProductNotFound)

	c := service.NewCatalog(catalog, 0)

	p, err := c.Product(t.Context(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Title)

	_, err = c.Product(t.Context(), 8)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalogCategories(t *testing.T) {
	catalog := new(MockProductCatalog)
	catalog.On("ListCategories", mock.Anything).
		Return([]string{"electronics", "jewelery"}, nil)

	cs, err := service.NewCatalog(catalog, 0).Categories(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"electronics", "jewelery"}, cs)
}
