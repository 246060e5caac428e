package domain

import (
	"slices"
	"strings"
)

// A ProductFilter narrows a product listing.
// An empty Categories set matches every category.
type ProductFilter struct {
	Categories []string
	Query      string
}

func (f ProductFilter) IsZero() bool {
	return len(f.Categories) == 0 && strings.TrimSpace(f.Query) == ""
}

func (f ProductFilter) Match(p Product) bool {
	if len(f.Categories) != 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q)
}

// FilterProducts keeps the products matching f in their original order.
func FilterProducts(ps []Product, f ProductFilter) []Product {
	if f.IsZero() {
		return ps
	}
	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
