package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrProductNotFound  = errors.New("product not found in catalog")
	ErrProductNotInCart = errors.New("product not in cart")
	ErrInvalidAmount    = errors.New("cart item amount must be at least 1")
)

// CartLineItem is one product plus the quantity requested for it. It encodes
// as the product's fields with "amount" added, so the persisted snapshot stays
// a plain array of objects.
type CartLineItem struct {
	Product
	Amount int
}

func (i CartLineItem) MarshalJSON() ([]byte, error) {
	fields, err := i.Product.fieldMap()
	if err != nil {
		return nil, err
	}
	amount, err := json.Marshal(i.Amount)
	if err != nil {
		return nil, err
	}
	fields["amount"] = amount
	return json.Marshal(fields)
}

func (i *CartLineItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var item CartLineItem
	if amountRaw, ok := raw["amount"]; ok {
		if err := json.Unmarshal(amountRaw, &item.Amount); err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		delete(raw, "amount")
	}
	if err := item.Product.fromFields(raw); err != nil {
		return err
	}

	*i = item
	return nil
}

func (i CartLineItem) Subtotal() float64 {
	return i.Price * float64(i.Amount)
}

// Cart is an ordered, id-unique list of line items. Methods never modify the
// receiver; each mutation returns a fresh Cart.
type Cart []CartLineItem

func NewCart() Cart {
	return make(Cart, 0)
}

func (c Cart) GetItem(productID int) (CartLineItem, int) {
	for i, item := range c {
		if item.ID == productID {
			return item, i
		}
	}
	return CartLineItem{}, -1
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// AddItem increments the amount of an existing line or appends the product
// with amount 1.
func (c Cart) AddItem(product Product) Cart {
	_, index := c.GetItem(product.ID)
	if index != -1 {
		next := c.Clone()
		next[index].Amount++
		return next
	}

	next := make(Cart, len(c), len(c)+1)
	copy(next, c)
	return append(next, CartLineItem{Product: product, Amount: 1})
}

func (c Cart) UpdateItemAmount(productID int, amount int) (Cart, error) {
	_, index := c.GetItem(productID)
	if index == -1 {
		return c, ErrProductNotInCart
	}
	if amount < 1 {
		return c, ErrInvalidAmount
	}

	next := c.Clone()
	next[index].Amount = amount
	return next, nil
}

func (c Cart) RemoveItem(productID int) (Cart, error) {
	_, index := c.GetItem(productID)
	if index == -1 {
		return c, ErrProductNotInCart
	}

	next := make(Cart, 0, len(c)-1)
	next = append(next, c[:index]...)
	return append(next, c[index+1:]...), nil
}

// Normalize drops lines that break the id-uniqueness or positive amount
// invariants, keeping the first line seen for a repeated id. It returns the
// repaired cart and how many lines were dropped.
func (c Cart) Normalize() (Cart, int) {
	seen := make(map[int]struct{}, len(c))
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if _, dup := seen[item.ID]; dup || item.Amount < 1 {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out, len(c) - len(out)
}

type CartSummary struct {
	Items      int     `json:"items"`
	Units      int     `json:"units"`
	TotalPrice float64 `json:"totalPrice"`
}

func (c Cart) Summary() CartSummary {
	summary := CartSummary{Items: len(c)}
	for _, item := range c {
		summary.Units += item.Amount
		summary.TotalPrice += item.Subtotal()
	}
	return summary
}
