package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeadingNumber(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"US $12.50", 12.50, true},
		{"US $1,299.99", 1299.99, true},
		{"35%", 35, true},
		{"42", 42, true},
		{"free", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLeadingNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestFlexString_Unmarshal(t *testing.T) {
	var payload struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}

	err := json.Unmarshal([]byte(`{"a":"abc","b":1005001234,"c":null}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, FlexString("abc"), payload.A)
	assert.Equal(t, FlexString("1005001234"), payload.B)
	assert.Equal(t, FlexString(""), payload.C)
}

func TestFlexString_RejectsObjects(t *testing.T) {
	var f FlexString
	err := json.Unmarshal([]byte(`{"x":1}`), &f)
	assert.Error(t, err)
}

func TestFlexFloat_Unmarshal(t *testing.T) {
	var payload struct {
		Num  FlexFloat `json:"num"`
		Str  FlexFloat `json:"str"`
		Junk FlexFloat `json:"junk"`
	}

	err := json.Unmarshal([]byte(`{"num":4.7,"str":"4.5","junk":"n/a"}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, FlexFloat(4.7), payload.Num)
	assert.Equal(t, FlexFloat(4.5), payload.Str)
	assert.Equal(t, FlexFloat(0), payload.Junk)
}

func TestEtsyPrice_Unmarshal(t *testing.T) {
	tests := map[string]struct {
		raw  string
		want float64
	}{
		"money object":   {raw: `{"amount":2599,"divisor":100,"currency_code":"USD"}`, want: 25.99},
		"zero divisor":   {raw: `{"amount":12,"divisor":0}`, want: 12},
		"decimal string": {raw: `"45.10"`, want: 45.10},
		"plain number":   {raw: `19.5`, want: 19.5},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var p EtsyPrice
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &p))
			assert.InDelta(t, tt.want, float64(p), 0.0001)
		})
	}
}

func TestParseStore(t *testing.T) {
	store, err := ParseStore("EBAY")
	require.NoError(t, err)
	assert.Equal(t, StoreEbay, store)

	store, err = ParseStore("aliexpress")
	require.NoError(t, err)
	assert.Equal(t, StoreAliExpress, store)

	_, err = ParseStore("amazon")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestAliExpressItem_Aliases(t *testing.T) {
	var item AliExpressItem
	require.NoError(t, json.Unmarshal([]byte(`{"product_id":987,"title":"USB Hub"}`), &item))

	assert.Equal(t, "987", item.NativeID())
	assert.Equal(t, "USB Hub", item.DisplayTitle())

	assert.Equal(t, "", AliExpressItem{}.NativeID())
}
