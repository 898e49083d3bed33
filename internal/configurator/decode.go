package configurator

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownAction = errors.New("unknown action")

// ActionEnvelope is the wire form of an action: {"type": "...", "payload": {...}}.
type ActionEnvelope struct {
	Type    string          `json:"type" binding:"required"`
	Payload json.RawMessage `json:"payload"`
}

var actionTypes = map[string]func() Action{
	"select_variant":         func() Action { return &SelectVariant{} },
	"select_pricing":         func() Action { return &SelectPricing{} },
	"toggle_supplement":      func() Action { return &ToggleSupplement{} },
	"cycle_ingredient":       func() Action { return &CycleIngredient{} },
	"select_pack_option":     func() Action { return &SelectPackOption{} },
	"cycle_pack_ingredient":  func() Action { return &CyclePackIngredient{} },
	"toggle_pack_supplement": func() Action { return &TogglePackSupplement{} },
	"set_quantity":           func() Action { return &SetQuantity{} },
	"set_free_drink":         func() Action { return &SetFreeDrink{} },
	"set_paid_drink":         func() Action { return &SetPaidDrink{} },
	"set_note":               func() Action { return &SetNote{} },
	"set_variant_note":       func() Action { return &SetVariantNote{} },
}

// Decode turns an envelope into a typed action.
func (e ActionEnvelope) Decode() (Action, error) {
	build, ok := actionTypes[e.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, e.Type)
	}

	a := build()
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, a); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Type, err)
		}
	}
	return a, nil
}
