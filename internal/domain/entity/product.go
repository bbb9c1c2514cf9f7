package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errMissingProductID = errors.New("product id is missing")

// Product is a catalog record. ID, Title, Price and Image are typed views;
// every other attribute the catalog sends is kept verbatim in Fields and
// written back flat next to them. A typed field that is zero or not of the
// expected JSON type also stays in Fields, so encoding is lossless.
type Product struct {
	ID     int
	Title  string
	Price  float64
	Image  string
	Fields map[string]json.RawMessage
}

type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	fields, err := p.fieldMap()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return p.fromFields(raw)
}

func (p Product) fieldMap() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(p.Fields)+5)
	for k, v := range p.Fields {
		out[k] = v
	}

	typed := []struct {
		key   string
		value interface{}
		set   bool
	}{
		{"id", p.ID, true},
		{"title", p.Title, p.Title != ""},
		{"price", p.Price, p.Price != 0},
		{"image", p.Image, p.Image != ""},
	}
	for _, f := range typed {
		if !f.set {
			continue
		}
		encoded, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode product %s: %w", f.key, err)
		}
		out[f.key] = encoded
	}
	return out, nil
}

func (p *Product) fromFields(raw map[string]json.RawMessage) error {
	idRaw, ok := raw["id"]
	if !ok {
		return errMissingProductID
	}
	var product Product
	if err := json.Unmarshal(idRaw, &product.ID); err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}

	for key, value := range raw {
		var decoded bool
		switch key {
		case "id":
			continue
		case "title":
			decoded = json.Unmarshal(value, &product.Title) == nil && product.Title != ""
		case "price":
			decoded = json.Unmarshal(value, &product.Price) == nil && product.Price != 0
		case "image":
			decoded = json.Unmarshal(value, &product.Image) == nil && product.Image != ""
		}
		if decoded {
			continue
		}
		if product.Fields == nil {
			product.Fields = make(map[string]json.RawMessage)
		}
		product.Fields[key] = value
	}

	*p = product
	return nil
}
