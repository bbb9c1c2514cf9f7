package entity

import (
	"encoding/json"
	"fmt"
)

const DefaultSnapshotKey = "@RocketShoes:cart"

// MarshalSnapshot serializes the cart as a plain JSON array of line items.
// An empty cart is written as "[]", never "null".
func MarshalSnapshot(c Cart) (string, error) {
	if c == nil {
		c = NewCart()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}
	return string(data), nil
}

// UnmarshalSnapshot decodes a snapshot line by line. Only a snapshot that is
// not a JSON array is an error; a line that cannot be decoded, has an amount
// below 1 or repeats an earlier id is dropped and counted in dropped.
func UnmarshalSnapshot(raw string) (cart Cart, dropped int, err error) {
	var lines []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal cart snapshot: %w", err)
	}

	cart = make(Cart, 0, len(lines))
	for _, line := range lines {
		var item CartLineItem
		if err := json.Unmarshal(line, &item); err != nil {
			dropped++
			continue
		}
		cart = append(cart, item)
	}

	cart, invalid := cart.Normalize()
	return cart, dropped + invalid, nil
}
