package domain

import "github.com/shopspring/decimal"

// A BasketLine pairs one product with a positive quantity.
type BasketLine struct {
	Product  Product
	Quantity int
}

// Subtotal returns price multiplied by quantity.
func (l BasketLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// A Basket is an ordered set of lines with cached totals.
//
// TotalItems and TotalPrice always equal the fold over Lines:
// every transition below recomputes them before returning.
// Transitions never mutate the receiver, they return a new Basket
// and report whether anything changed.
type Basket struct {
	Lines      []BasketLine
	TotalItems int
	TotalPrice decimal.Decimal
}

// NewBasket builds a basket from lines, merging duplicate products
// and dropping lines with a non-positive quantity.
func NewBasket(lines []BasketLine) Basket {
	var b Basket
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := b.indexOf(l.Product.ID); i >= 0 {
			b.Lines[i].Quantity += l.Quantity
			continue
		}
		b.Lines = append(b.Lines, l)
	}
	b.recompute()
	return b
}

// Totals folds lines into item count and price.
func Totals(lines []BasketLine) (items int, price decimal.Decimal) {
	price = decimal.Zero
	for _, l := range lines {
		items += l.Quantity
		price = price.Add(l.Subtotal())
	}
	return items, price
}

func (b Basket) IsEmpty() bool {
	return len(b.Lines) == 0
}

// Line returns the line for productID.
func (b Basket) Line(productID int) (BasketLine, bool) {
	i := b.indexOf(productID)
	if i < 0 {
		return BasketLine{}, false
	}
	return b.Lines[i], true
}

// Clone returns a deep copy safe to hand out as a snapshot.
func (b Basket) Clone() Basket {
	c := Basket{TotalItems: b.TotalItems, TotalPrice: b.TotalPrice}
	if len(b.Lines) != 0 {
		c.Lines = make([]BasketLine, len(b.Lines))
		copy(c.Lines, b.Lines)
	}
	return c
}

func (b Basket) Add(p Product, quantity int) (Basket, bool) {
	if quantity <= 0 {
		return b, false
	}
	next := b.Clone()
	if i := next.indexOf(p.ID); i >= 0 {
		next.Lines[i].Quantity += quantity
	} else {
		next.Lines = append(next.Lines, BasketLine{Product: p, Quantity: quantity})
	}
	next.recompute()
	return next, true
}

func (b Basket) Remove(productID int) (Basket, bool) {
	i := b.indexOf(productID)
	if i < 0 {
		return b, false
	}
	next := b.Clone()
	next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
	next.recompute()
	return next, true
}

// SetQuantity overwrites the line quantity, a non-positive value removes it.
func (b Basket) SetQuantity(productID, quantity int) (Basket, bool) {
	i := b.indexOf(productID)
	if i < 0 {
		return b, false
	}
	if quantity <= 0 {
		return b.Remove(productID)
	}
	next := b.Clone()
	next.Lines[i].Quantity = quantity
	next.recompute()
	return next, true
}

func (b Basket) Increment(productID int) (Basket, bool) {
	i := b.indexOf(productID)
	if i < 0 {
		return b, false
	}
	next := b.Clone()
	next.Lines[i].Quantity++
	next.recompute()
	return next, true
}

// Decrement lowers the quantity by one, a line at one is removed.
func (b Basket) Decrement(productID int) (Basket, bool) {
	i := b.indexOf(productID)
	if i < 0 {
		return b, false
	}
	if b.Lines[i].Quantity <= 1 {
		return b.Remove(productID)
	}
	next := b.Clone()
	next.Lines[i].Quantity--
	next.recompute()
	return next, true
}

func (b Basket) Clear() Basket {
	var next Basket
	next.recompute()
	return next
}

func (b *Basket) recompute() {
	b.TotalItems, b.TotalPrice = Totals(b.Lines)
}

func (b Basket) indexOf(productID int) int {
	for i := range b.Lines {
		if b.Lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
