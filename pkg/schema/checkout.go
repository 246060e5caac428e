package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

// CheckoutSchemaTextV1 is the value schema of the checkouts topic.
const CheckoutSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "checkout",
	"fields": [
		{"name": "user_id", "type": "string"},
		{"name": "items", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "checkout_item",
				"fields": [
					{"name": "product_id", "type": "long"},
					{"name": "title", "type": "string"},
					{"name": "category", "type": "string"},
					{"name": "price", "type": "double"},
					{"name": "quantity", "type": "int"}
				]
			}
		}},
		{"name": "total_items", "type": "int"},
		{"name": "total_price", "type": "double"},
		{"name": "previous_budget", "type": "double"},
		{"name": "new_budget", "type": "double"},
		{"name": "checked_out_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

// SpendingSchemaTextV1 is the value schema of the spending group table.
const SpendingSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "spending",
	"fields": [
		{"name": "user_id", "type": "string"},
		{"name": "total_spent", "type": "double"},
		{"name": "checkouts", "type": "long"},
		{"name": "last_checkout_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type (
	CheckoutV1 struct {
		UserID         string           `avro:"user_id"`
		Items          []CheckoutItemV1 `avro:"items"`
		TotalItems     int              `avro:"total_items"`
		TotalPrice     float64          `avro:"total_price"`
		PreviousBudget float64          `avro:"previous_budget"`
		NewBudget      float64          `avro:"new_budget"`
		CheckedOutAt   time.Time        `avro:"checked_out_at"`
	}

	CheckoutItemV1 struct {
		ProductID int64   `avro:"product_id"`
		Title     string  `avro:"title"`
		Category  string  `avro:"category"`
		Price     float64 `avro:"price"`
		Quantity  int     `avro:"quantity"`
	}

	SpendingV1 struct {
		UserID         string    `avro:"user_id"`
		TotalSpent     float64   `avro:"total_spent"`
		Checkouts      int64     `avro:"checkouts"`
		LastCheckoutAt time.Time `avro:"last_checkout_at"`
	}
)

func CheckoutV1Avro() avro.Schema {
	return avro.MustParse(CheckoutSchemaTextV1)
}

func SpendingV1Avro() avro.Schema {
	return avro.MustParse(SpendingSchemaTextV1)
}
