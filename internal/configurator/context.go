package configurator

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"orderconfig/internal/cart"
	"orderconfig/internal/catalog"
)

// Labels are the clause prefixes used in special instructions.
type Labels struct {
	Without string `yaml:"without"`
	Extra   string `yaml:"extra"`
	Less    string `yaml:"less"`
	No      string `yaml:"no"`
}

var DefaultLabels = Labels{
	Without: "Without",
	Extra:   "Extra",
	Less:    "Less",
	No:      "No",
}

// SessionContext is everything an operation may read besides the selection.
// It is built once per catalog load; only the stored drinks grow afterwards.
type SessionContext struct {
	SessionID string
	Kind      catalog.ItemKind
	Catalog   *catalog.Model
	Slots     map[string]catalog.PackSlots
	Drinks    []catalog.Drink
	Labels    Labels
	Edit      bool

	Now    func() time.Time
	NewID  func() string
	Logger *zap.Logger

	// stored holds drinks known only from edited cart lines. They stand in
	// for the restaurant drink list while it is unavailable.
	stored map[string]catalog.Drink
}

// NewSessionContext derives the item kind and parses pack layouts once.
func NewSessionContext(sessionID string, m *catalog.Model, drinks []catalog.Drink) *SessionContext {
	return &SessionContext{
		SessionID: sessionID,
		Kind:      catalog.DetectKind(m),
		Catalog:   m,
		Slots:     catalog.ResolveAll(m),
		Drinks:    drinks,
		Labels:    DefaultLabels,
		Now:       time.Now,
		NewID:     uuid.NewString,
		Logger:    zap.NewNop(),
	}
}

func (c *SessionContext) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *SessionContext) newID() string {
	if c.NewID == nil {
		return uuid.NewString()
	}
	return c.NewID()
}

func (c *SessionContext) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *SessionContext) drink(id string) (catalog.Drink, bool) {
	for _, d := range c.Drinks {
		if d.ID == id {
			return d, true
		}
	}
	if len(c.Drinks) == 0 {
		d, ok := c.stored[id]
		return d, ok
	}
	return catalog.Drink{}, false
}

// rememberDrinks records the drink entries of a cart line with their stored
// size and price. Paid entries win over free ones, which carry no price.
// Nothing is recorded when the restaurant drink list is loaded.
func (c *SessionContext) rememberDrinks(line cart.LineItem) {
	if len(c.Drinks) > 0 {
		return
	}
	for _, d := range line.Customizations.Drinks {
		if d.ID == "" {
			continue
		}
		if _, seen := c.stored[d.ID]; seen && d.IsFree {
			continue
		}
		if c.stored == nil {
			c.stored = map[string]catalog.Drink{}
		}
		c.stored[d.ID] = catalog.Drink{ID: d.ID, Name: d.ID, Size: d.Size, Price: d.Price}
	}
}

// slots returns the parsed layout of a pack variant (a single slot with no
// facets for anything unknown).
func (c *SessionContext) slots(variantID string) catalog.PackSlots {
	if s, ok := c.Slots[variantID]; ok {
		return s
	}
	return catalog.PackSlots{RepeatCount: 1}
}
