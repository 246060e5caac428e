package httphandler

import (
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
)

type (
	Product struct {
		ID          int           `json:"id"`
		Title       string        `json:"title"`
		Price       float64       `json:"price"`
		Description string        `json:"description"`
		Category    string        `json:"category"`
		Image       string        `json:"image"`
		Rating      ProductRating `json:"rating"`
	}

	ProductRating struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	}

	BasketLine struct {
		Product  Product `json:"product"`
		Quantity int     `json:"quantity"`
		Subtotal float64 `json:"subtotal"`
	}

	Basket struct {
		Items      []BasketLine `json:"items"`
		TotalItems int          `json:"totalItems"`
		TotalPrice float64      `json:"totalPrice"`
	}

	Quote struct {
		Budget     float64 `json:"budget"`
		TotalPrice float64 `json:"totalPrice"`
		Remaining  float64 `json:"remaining"`
		Affordable bool    `json:"affordable"`
	}

	Receipt struct {
		UserID         string       `json:"userId"`
		Items          []BasketLine `json:"items"`
		TotalItems     int          `json:"totalItems"`
		TotalPrice     float64      `json:"totalPrice"`
		PreviousBudget float64      `json:"previousBudget"`
		NewBudget      float64      `json:"newBudget"`
		CheckedOutAt   time.Time    `json:"checkedOutAt"`
	}

	User struct {
		ID        string    `json:"id"`
		FullName  string    `json:"fullName"`
		Email     string    `json:"email"`
		Phone     string    `json:"phone"`
		Budget    float64   `json:"budget"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Spending struct {
		UserID         string    `json:"userId"`
		TotalSpent     float64   `json:"totalSpent"`
		Checkouts      int64     `json:"checkouts"`
		LastCheckoutAt time.Time `json:"lastCheckoutAt"`
	}

	AddItemRequest struct {
		ProductID int  `json:"product_id"`
		Quantity  *int `json:"quantity"`
	}

	QuantityRequest struct {
		Quantity int `json:"quantity"`
	}

	AmountRequest struct {
		Amount float64 `json:"amount"`
	}

	ErrorResponse struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields,omitempty"`
	}
)

func newProduct(p domain.Product) Product {
	return Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.InexactFloat64(),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Rating: ProductRating{
			Rate:  p.Rating.Rate,
			Count: p.Rating.Count,
		},
	}
}

func newProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = newProduct(p)
	}
	return out
}

func newBasketLines(lines []domain.BasketLine) []BasketLine {
	out := make([]BasketLine, len(lines))
	for i, l := range lines {
		out[i] = BasketLine{
			Product:  newProduct(l.Product),
			Quantity: l.Quantity,
			Subtotal: l.Subtotal().InexactFloat64(),
		}
	}
	return out
}

func newBasket(b domain.Basket) Basket {
	return Basket{
		Items:      newBasketLines(b.Lines),
		TotalItems: b.TotalItems,
		TotalPrice: b.TotalPrice.InexactFloat64(),
	}
}

func newQuote(q domain.Quote) Quote {
	return Quote{
		Budget:     q.Budget.InexactFloat64(),
		TotalPrice: q.TotalPrice.InexactFloat64(),
		Remaining:  q.Remaining.InexactFloat64(),
		Affordable: q.Affordable,
	}
}

func newReceipt(r domain.Receipt) Receipt {
	return Receipt{
		UserID:         r.UserID,
		Items:          newBasketLines(r.Lines),
		TotalItems:     r.TotalItems,
		TotalPrice:     r.TotalPrice.InexactFloat64(),
		PreviousBudget: r.PreviousBudget.InexactFloat64(),
		NewBudget:      r.NewBudget.InexactFloat64(),
		CheckedOutAt:   r.CheckedOutAt,
	}
}

// newUser never exposes the password.
func newUser(u domain.User) User {
	return User{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Budget:    u.Budget.InexactFloat64(),
		CreatedAt: u.CreatedAt,
	}
}

func newSpending(s domain.Spending) Spending {
	return Spending{
		UserID:         s.UserID,
		TotalSpent:     s.TotalSpent.InexactFloat64(),
		Checkouts:      s.Checkouts,
		LastCheckoutAt: s.LastCheckoutAt,
	}
}
