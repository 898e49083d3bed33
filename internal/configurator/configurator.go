package configurator

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"orderconfig/internal/cart"
	"orderconfig/internal/catalog"
)

// Configurator owns the selection and saved orders of one session. It is not
// safe for concurrent use; the owning session serializes access.
type Configurator struct {
	ctx     *SessionContext
	state   State
	buffer  SavedOrderBuffer
	groupID string
	// replaces lists cart lines an edit session will swap out on confirm.
	replaces []string
}

// New starts a fresh configuration.
func New(ctx *SessionContext) *Configurator {
	return &Configurator{
		ctx:     ctx,
		state:   freshState(ctx),
		groupID: uuid.NewString(),
	}
}

// NewForEdit starts from an existing cart line. For packs, the other lines
// confirmed together with it (same group) come back as saved orders so they
// can be reviewed and removed before the edit is confirmed.
func NewForEdit(ctx *SessionContext, line cart.LineItem, siblings []cart.LineItem) *Configurator {
	ctx.Edit = true
	c := &Configurator{
		ctx:      ctx,
		state:    Reconcile(ctx, line),
		groupID:  line.Customizations.GroupID,
		replaces: []string{line.ID},
	}
	if c.groupID == "" {
		c.groupID = uuid.NewString()
	}

	if ctx.Kind == catalog.KindSpecialPack {
		for _, sib := range siblings {
			if sib.ID == line.ID || sib.ItemID != line.ItemID || sib.Customizations.GroupID == "" ||
				sib.Customizations.GroupID != line.Customizations.GroupID {
				continue
			}
			c.buffer.Append(SavedEntry{Lines: []cart.LineItem{sib}, Snapshot: Reconcile(ctx, sib)})
			c.replaces = append(c.replaces, sib.ID)
		}
	}
	return c
}

// freshState bootstraps a new configuration: pack slots whose variant offers
// a single option get it pre-selected; variants with several options are
// left for the customer to choose slot by slot. The first load of an edit
// reconciles the cart line instead and never comes through here.
func freshState(ctx *SessionContext) State {
	s := NewState()
	if ctx.Kind == catalog.KindSpecialPack {
		for _, v := range ctx.Catalog.Variants {
			layout := ctx.slots(v.ID)
			if len(layout.Options) != 1 {
				continue
			}
			for slot := 0; slot < layout.RepeatCount; slot++ {
				s.Slots[SlotKey{VariantID: v.ID, Slot: slot, Facet: FacetOption}] = layout.Options[0]
			}
		}
	}
	autoAssignFreeDrinks(ctx, &s)
	return s
}

func (c *Configurator) Context() *SessionContext {
	return c.ctx
}

// State returns a copy of the current selection.
func (c *Configurator) State() State {
	return c.state.Clone()
}

func (c *Configurator) Buffer() *SavedOrderBuffer {
	return &c.buffer
}

// Replaces lists the cart line ids an edit confirm removes.
func (c *Configurator) Replaces() []string {
	return append([]string(nil), c.replaces...)
}

func (c *Configurator) Apply(a Action) error {
	next, err := Reduce(c.ctx, c.state, a)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Configurator) checkFreeDrinks() bool {
	return len(c.ctx.Drinks) > 0
}

// Validate reports whether the current configuration could be confirmed.
func (c *Configurator) Validate() *ValidationFailure {
	return Validate(c.ctx, c.state, c.buffer.Len(), c.checkFreeDrinks())
}

// SaveAndAddAnother parks the current configuration as a compiled order and
// starts over with an empty one.
func (c *Configurator) SaveAndAddAnother() *ValidationFailure {
	if len(c.state.SelectedVariants) == 0 {
		return failNoVariant()
	}
	if f := c.Validate(); f != nil {
		return f
	}

	c.buffer.Append(SavedEntry{
		Lines:    Compile(c.ctx, c.state, c.groupID),
		Snapshot: c.state.Clone(),
	})
	c.state = freshState(c.ctx)
	return nil
}

// Confirm returns every line to commit: saved orders first, then the current
// configuration when it has a variant. Nothing is cleared on failure.
func (c *Configurator) Confirm() ([]cart.LineItem, *ValidationFailure) {
	if f := c.Validate(); f != nil {
		return nil, f
	}

	lines := c.buffer.Lines()
	if len(c.state.SelectedVariants) > 0 {
		lines = append(lines, Compile(c.ctx, c.state, c.groupID)...)
	}
	return lines, nil
}

// Refresh swaps in a reloaded catalog. The current selection and every saved
// order are rebuilt against it the way an edit is, dropping references the
// new catalog no longer knows. Saved orders whose variants are all gone, or
// that stop validating, are dropped.
func (c *Configurator) Refresh(next *SessionContext) {
	prev := c.ctx
	next.Edit = prev.Edit
	c.ctx = next
	log := next.logger().With(zap.String("session_id", next.SessionID))

	var kept []SavedEntry
	for i, e := range c.buffer.Entries() {
		if len(e.Lines) == 0 || !knowsAnyVariant(next.Catalog, e.Lines[0]) {
			log.Warn("dropping saved order after catalog refresh", zap.Int("index", i), zap.String("reason", "variant removed"))
			continue
		}
		snap := Reconcile(next, e.Lines[0])
		if f := Validate(next, snap, 0, false); f != nil {
			log.Warn("dropping saved order after catalog refresh", zap.Int("index", i), zap.String("reason", f.Reason))
			continue
		}
		kept = append(kept, SavedEntry{Lines: Compile(next, snap, c.groupID), Snapshot: snap})
	}
	c.buffer.entries = kept

	if len(c.state.SelectedVariants) > 0 {
		if lines := Compile(prev, c.state, c.groupID); len(lines) > 0 && knowsAnyVariant(next.Catalog, lines[0]) {
			c.state = Reconcile(next, lines[0])
			return
		}
	}
	note := c.state.Note
	c.state = freshState(next)
	c.state.Note = note
}

func knowsAnyVariant(m *catalog.Model, line cart.LineItem) bool {
	for _, id := range line.Customizations.SelectedVariants {
		if _, ok := m.Variant(id); ok {
			return true
		}
	}
	return false
}

// ClearAll drops the selection and every saved order.
func (c *Configurator) ClearAll() {
	c.state = NewState()
	c.buffer.Clear()
	c.replaces = nil
}
