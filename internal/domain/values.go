package domain

import "fmt"

// Principal identifies the actor performing a mutation.
type Principal struct {
	ID string
}

// SKU is a stock keeping unit identifier.
type SKU string

// NewSKU validates and returns a SKU.
func NewSKU(s string) (SKU, error) {
	if s == "" {
		return "", &ValidationError{Field: "sku", Reason: "must not be empty"}
	}
	return SKU(s), nil
}

// Money is an amount in minor units (cents) with a currency code.
// Arithmetic returns new values.
type Money struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
}

// NewMoney creates a Money value. Negative amounts are rejected.
func NewMoney(cents int64, currency string) (Money, error) {
	if cents < 0 {
		return Money{}, &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if currency == "" {
		return Money{}, &ValidationError{Field: "currency", Reason: "must not be empty"}
	}
	return Money{Cents: cents, Currency: currency}, nil
}

// Add returns the sum of two amounts. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, &ValidationError{
			Field:  "currency",
			Reason: fmt.Sprintf("cannot add %s to %s", other.Currency, m.Currency),
		}
	}
	return Money{Cents: m.Cents + other.Cents, Currency: m.Currency}, nil
}

// Times returns the amount multiplied by a quantity.
func (m Money) Times(qty int) Money {
	return Money{Cents: m.Cents * int64(qty), Currency: m.Currency}
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.Cents/100, m.Cents%100, m.Currency)
}

// Address is a shipping address. Every field is required.
type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// NewAddress validates and returns an Address.
func NewAddress(line1, city, postalCode, country string) (Address, error) {
	switch {
	case line1 == "":
		return Address{}, &ValidationError{Field: "line1", Reason: "must not be empty"}
	case city == "":
		return Address{}, &ValidationError{Field: "city", Reason: "must not be empty"}
	case postalCode == "":
		return Address{}, &ValidationError{Field: "postal_code", Reason: "must not be empty"}
	case country == "":
		return Address{}, &ValidationError{Field: "country", Reason: "must not be empty"}
	}
	return Address{Line1: line1, City: city, PostalCode: postalCode, Country: country}, nil
}

// LineItem is a single order or subscription line.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
}

// NewLineItem validates and returns a LineItem.
func NewLineItem(productID, name string, quantity int, unitPrice Money) (LineItem, error) {
	switch {
	case productID == "":
		return LineItem{}, &ValidationError{Field: "product_id", Reason: "must not be empty"}
	case name == "":
		return LineItem{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	case quantity <= 0:
		return LineItem{}, &ValidationError{Field: "quantity", Reason: "must be positive"}
	case unitPrice.Cents < 0:
		return LineItem{}, &ValidationError{Field: "unit_price", Reason: "must not be negative"}
	}
	return LineItem{ProductID: productID, Name: name, Quantity: quantity, UnitPrice: unitPrice}, nil
}

// Total returns the line total.
func (l LineItem) Total() Money {
	return l.UnitPrice.Times(l.Quantity)
}

func sumLineItems(items []LineItem) (Money, error) {
	total := items[0].Total()
	for _, item := range items[1:] {
		sum, err := total.Add(item.Total())
		if err != nil {
			return Money{}, err
		}
		total = sum
	}
	return total, nil
}

func copyLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
