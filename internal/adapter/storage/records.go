package storage

import (
	"errors"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

var errMalformedBasket = errors.New("malformed basket record")

type (
	ratingRecord struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	}

	productRecord struct {
		ID          int          `json:"id"`
		Title       string       `json:"title"`
		Price       float64      `json:"price"`
		Description string       `json:"description"`
		Category    string       `json:"category"`
		Image       string       `json:"image"`
		Rating      ratingRecord `json:"rating"`
	}

	lineRecord struct {
		Product  productRecord `json:"product"`
		Quantity int           `json:"quantity"`
	}

	basketRecord struct {
		Items      []lineRecord `json:"items"`
		TotalItems int          `json:"totalItems"`
		TotalPrice float64      `json:"totalPrice"`
	}

	userRecord struct {
		ID        string    `json:"id"`
		FullName  string    `json:"fullName"`
		Email     string    `json:"email"`
		Phone     string    `json:"phone"`
		Password  string    `json:"password"`
		Budget    float64   `json:"budget"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

func newProductRecord(p domain.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.InexactFloat64(),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Rating: ratingRecord{
			Rate:  p.Rating.Rate,
			Count: p.Rating.Count,
		},
	}
}

func (r productRecord) toDomain() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Title:       r.Title,
		Price:       decimal.NewFromFloat(r.Price),
		Description: r.Description,
		Category:    r.Category,
		Image:       r.Image,
		Rating: domain.ProductRating{
			Rate:  r.Rating.Rate,
			Count: r.Rating.Count,
		},
	}
}

func newBasketRecord(b domain.Basket) basketRecord {
	items := make([]lineRecord, len(b.Lines))
	for i, l := range b.Lines {
		items[i] = lineRecord{
			Product:  newProductRecord(l.Product),
			Quantity: l.Quantity,
		}
	}
	return basketRecord{
		Items:      items,
		TotalItems: b.TotalItems,
		TotalPrice: b.TotalPrice.InexactFloat64(),
	}
}

// toDomain rebuilds the basket from its lines. Stored totals are
// ignored and recomputed.
func (r basketRecord) toDomain() domain.Basket {
	lines := make([]domain.BasketLine, len(r.Items))
	for i, item := range r.Items {
		lines[i] = domain.BasketLine{
			Product:  item.Product.toDomain(),
			Quantity: item.Quantity,
		}
	}
	return domain.NewBasket(lines)
}

func newUserRecord(u domain.User) userRecord {
	return userRecord{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Password:  u.Password,
		Budget:    u.Budget.InexactFloat64(),
		CreatedAt: u.CreatedAt,
	}
}

func (r userRecord) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		FullName:  r.FullName,
		Email:     r.Email,
		Phone:     r.Phone,
		Password:  r.Password,
		Budget:    decimal.NewFromFloat(r.Budget),
		CreatedAt: r.CreatedAt,
	}
}
