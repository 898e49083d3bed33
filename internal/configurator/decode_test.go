package configurator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionEnvelope_Decode(t *testing.T) {
	cases := []struct {
		raw  string
		want Action
	}{
		{`{"type":"select_variant","payload":{"variant_id":"v1"}}`, &SelectVariant{VariantID: "v1"}},
		{`{"type":"set_quantity","payload":{"quantity":3}}`, &SetQuantity{Quantity: 3}},
		{`{"type":"set_free_drink","payload":{"drink_id":"D1","quantity":2}}`, &SetFreeDrink{DrinkID: "D1", Quantity: 2}},
		{`{"type":"set_variant_note","payload":{"variant_id":"v2","text":"well done"}}`, &SetVariantNote{VariantID: "v2", Text: "well done"}},
		{`{"type":"set_note"}`, &SetNote{}},
	}

	for _, tc := range cases {
		var env ActionEnvelope
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &env))

		got, err := env.Decode()
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestActionEnvelope_DecodeErrors(t *testing.T) {
	_, err := ActionEnvelope{Type: "launch_rocket"}.Decode()
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = ActionEnvelope{Type: "set_quantity", Payload: json.RawMessage(`{"quantity":"many"}`)}.Decode()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownAction)
}

func TestActionEnvelope_DecodedActionReduces(t *testing.T) {
	ctx := newTestContext(burgerModel(), testDrinks())
	env := ActionEnvelope{Type: "set_note", Payload: json.RawMessage(`{"text":"  no ice  "}`)}

	a, err := env.Decode()
	require.NoError(t, err)

	next, err := Reduce(ctx, NewState(), a)
	require.NoError(t, err)
	assert.Equal(t, "no ice", next.Note)
}
