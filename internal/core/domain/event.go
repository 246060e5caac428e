package domain

type BasketEventKind string

const (
	EventLoaded      BasketEventKind = "loaded"
	EventAdded       BasketEventKind = "added"
	EventRemoved     BasketEventKind = "removed"
	EventQuantitySet BasketEventKind = "quantity_set"
	EventIncremented BasketEventKind = "incremented"
	EventDecremented BasketEventKind = "decremented"
	EventCleared     BasketEventKind = "cleared"
	EventCheckedOut  BasketEventKind = "checked_out"
)

// A BasketEvent describes one applied mutation and the resulting basket.
// ProductID is zero for basket-wide events.
type BasketEvent struct {
	Kind      BasketEventKind
	ProductID int
	Basket    Basket
}
