package configurator

import (
	"orderconfig/internal/cart"
	"orderconfig/internal/catalog"
)

type PackSlotView struct {
	VariantID   string   `json:"variant_id"`
	RepeatCount int      `json:"repeat_count"`
	Options     []string `json:"options"`
	Ingredients []string `json:"ingredients"`
	Supplements []string `json:"supplements"`
}

// View is the read-only projection handed to the presentation layer.
type View struct {
	SessionID          string              `json:"session_id"`
	ItemID             string              `json:"item_id"`
	Kind               string              `json:"kind"`
	Edit               bool                `json:"edit"`
	Selection          cart.Customizations `json:"selection"`
	RequiredFreeDrinks int                 `json:"required_free_drinks"`
	AssignedFreeDrinks int                 `json:"assigned_free_drinks"`
	EligibleFreeDrinks []catalog.Drink     `json:"eligible_free_drinks"`
	PackSlots          []PackSlotView      `json:"pack_slots,omitempty"`
	SavedOrders        []cart.LineItem     `json:"saved_orders"`
	Validation         *ValidationFailure  `json:"validation,omitempty"`
}

func (c *Configurator) View() View {
	s := c.state
	drinks, _ := compileDrinks(c.ctx, s)

	selection := encode(c.ctx, s, s.SelectedVariants, drinks)
	selection.Supplements = sortedKeys(s.Supplements)
	selection.VariantQuantities = cloneMap(s.VariantQuantities)
	selection.VariantNotes = cloneMap(s.VariantNotes)
	selection.GroupID = c.groupID

	v := View{
		SessionID:          c.ctx.SessionID,
		ItemID:             c.ctx.Catalog.ItemID,
		Kind:               c.ctx.Kind.String(),
		Edit:               c.ctx.Edit,
		Selection:          selection,
		RequiredFreeDrinks: RequiredFreeDrinks(c.ctx, s),
		AssignedFreeDrinks: s.AssignedFreeDrinks(),
		EligibleFreeDrinks: EligibleFreeDrinks(c.ctx, s),
		SavedOrders:        c.buffer.Lines(),
		Validation:         c.Validate(),
	}
	if v.SavedOrders == nil {
		v.SavedOrders = []cart.LineItem{}
	}

	if c.ctx.Kind == catalog.KindSpecialPack {
		for _, variant := range c.ctx.Catalog.Variants {
			layout := c.ctx.slots(variant.ID)
			v.PackSlots = append(v.PackSlots, PackSlotView{
				VariantID:   variant.ID,
				RepeatCount: layout.RepeatCount,
				Options:     layout.Options,
				Ingredients: layout.Ingredients,
				Supplements: layout.OfferedSupplements(),
			})
		}
	}

	return v
}
