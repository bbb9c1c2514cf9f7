package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	shoe   = Product{ID: 1, Title: "Shoe", Price: 139.9, Image: "shoe.jpg"}
	sneak  = Product{ID: 2, Title: "Sneaker", Price: 179.9, Image: "sneaker.jpg"}
	sandal = Product{ID: 3, Title: "Sandal", Price: 59.9, Image: "sandal.jpg"}
)

func TestCart_AddItem_NewProduct(t *testing.T) {
	cart := NewCart()

	next := cart.AddItem(shoe)

	require.Len(t, next, 1)
	assert.Equal(t, CartLineItem{Product: shoe, Amount: 1}, next[0])
	assert.Empty(t, cart, "original cart must not change")
}

func TestCart_AddItem_ExistingProductIncrements(t *testing.T) {
	cart := Cart{{Product: shoe, Amount: 1}, {Product: sneak, Amount: 3}}

	next := cart.AddItem(sneak)

	require.Len(t, next, 2)
	assert.Equal(t, 1, next[0].Amount)
	assert.Equal(t, 4, next[1].Amount)
	assert.Equal(t, 3, cart[1].Amount, "original cart must not change")
}

func TestCart_RemoveItem_PreservesOrder(t *testing.T) {
	cart := Cart{{Product: shoe, Amount: 1}, {Product: sneak, Amount: 2}, {Product: sandal, Amount: 1}}

	next, err := cart.RemoveItem(sneak.ID)

	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, shoe.ID, next[0].ID)
	assert.Equal(t, sandal.ID, next[1].ID)
	assert.Len(t, cart, 3)
	assert.Equal(t, sneak.ID, cart[1].ID)
}

func TestCart_RemoveItem_Missing(t *testing.T) {
	cart := Cart{{Product: shoe, Amount: 1}}

	next, err := cart.RemoveItem(99)

	assert.ErrorIs(t, err, ErrProductNotInCart)
	assert.Equal(t, cart, next)
}

func TestCart_UpdateItemAmount(t *testing.T) {
	cart := Cart{{Product: shoe, Amount: 1}, {Product: sneak, Amount: 2}}

	next, err := cart.UpdateItemAmount(shoe.ID, 5)

	require.NoError(t, err)
	assert.Equal(t, 5, next[0].Amount)
	assert.Equal(t, 2, next[1].Amount)
	assert.Equal(t, 1, cart[0].Amount)
}

func TestCart_UpdateItemAmount_Errors(t *testing.T) {
	cart := Cart{{Product: shoe, Amount: 2}}

	_, err := cart.UpdateItemAmount(42, 3)
	assert.ErrorIs(t, err, ErrProductNotInCart)

	_, err = cart.UpdateItemAmount(shoe.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = cart.UpdateItemAmount(shoe.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, 2, cart[0].Amount)
}

func TestCart_Summary(t *testing.T) {
	cart := Cart{{Product: Product{ID: 1, Price: 10}, Amount: 2}, {Product: Product{ID: 2, Price: 2.5}, Amount: 4}}

	summary := cart.Summary()

	assert.Equal(t, 2, summary.Items)
	assert.Equal(t, 6, summary.Units)
	assert.InDelta(t, 30.0, summary.TotalPrice, 1e-9)
}

func TestCart_Normalize(t *testing.T) {
	cart := Cart{{Product: shoe, Amount: 2}, {Product: sneak, Amount: 0}, {Product: shoe, Amount: 5}, {Product: sandal, Amount: 1}}

	next, dropped := cart.Normalize()

	assert.Equal(t, Cart{{Product: shoe, Amount: 2}, {Product: sandal, Amount: 1}}, next)
	assert.Equal(t, 2, dropped)
	assert.Len(t, cart, 4)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	cart := Cart{{Product: shoe, Amount: 2}, {Product: sandal, Amount: 1}}

	raw, err := MarshalSnapshot(cart)
	require.NoError(t, err)

	restored, dropped, err := UnmarshalSnapshot(raw)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Equal(t, cart, restored)
}

func TestSnapshot_FlatJSONShape(t *testing.T) {
	raw, err := MarshalSnapshot(Cart{{Product: Product{ID: 1, Title: "Shoe"}, Amount: 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"Shoe","amount":1}]`, raw)

	empty, err := MarshalSnapshot(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestSnapshot_KeepsUnknownProductFields(t *testing.T) {
	const raw = `[{"id":1,"name":"Shoe","sizes":[38,39],"price":0,"title":7,"amount":2}]`

	cart, dropped, err := UnmarshalSnapshot(raw)
	require.NoError(t, err)
	require.Zero(t, dropped)
	require.Len(t, cart, 1)
	assert.Equal(t, 1, cart[0].ID)
	assert.Equal(t, 2, cart[0].Amount)
	assert.Empty(t, cart[0].Title, "non-string title stays raw")
	assert.JSONEq(t, `"Shoe"`, string(cart[0].Fields["name"]))

	again, err := MarshalSnapshot(cart)
	require.NoError(t, err)
	assert.JSONEq(t, raw, again)
}

func TestProduct_DecodeCatalogRecord(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"title":"Boot","price":99.5,"image":"b.jpg","brand":"Acme"}`), &p))

	assert.Equal(t, 4, p.ID)
	assert.Equal(t, "Boot", p.Title)
	assert.Equal(t, 99.5, p.Price)
	assert.Equal(t, "b.jpg", p.Image)
	assert.Equal(t, map[string]json.RawMessage{"brand": json.RawMessage(`"Acme"`)}, p.Fields)

	assert.Error(t, json.Unmarshal([]byte(`{"title":"no id"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"one"}`), &p))
}

func TestSnapshot_Malformed(t *testing.T) {
	_, _, err := UnmarshalSnapshot("{not json")
	assert.Error(t, err)

	_, _, err = UnmarshalSnapshot(`{"id":1,"amount":1}`)
	assert.Error(t, err, "a single object is not a snapshot")

	cart, dropped, err := UnmarshalSnapshot(`[{"id":1,"amount":0},{"id":"x","amount":1},{"id":2,"amount":"two"}]`)
	require.NoError(t, err)
	assert.Empty(t, cart)
	assert.Equal(t, 3, dropped)

	cart, dropped, err = UnmarshalSnapshot("null")
	require.NoError(t, err)
	assert.Empty(t, cart)
	assert.Zero(t, dropped)
}
