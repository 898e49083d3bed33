package catalog

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var ErrInvalidSeed = errors.New("invalid catalog seed")

// SeedFile is the YAML catalog loaded by cmd/catalog-seed.
type SeedFile struct {
	Restaurants []SeedRestaurant `yaml:"restaurants"`
}

type SeedRestaurant struct {
	ID     string  `yaml:"id"`
	Drinks []Drink `yaml:"drinks"`
	Items  []Model `yaml:"items"`
}

// SeedWriter is the write side of a catalog store.
type SeedWriter interface {
	SaveItem(ctx context.Context, m *Model, category string) error
	SaveDrink(ctx context.Context, restaurantID string, d Drink) error
}

// ParseSeed decodes and checks a seed file. Items inherit the restaurant id
// of their block.
func ParseSeed(raw []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	seen := map[string]bool{}
	claim := func(id, what string) error {
		if id == "" {
			return fmt.Errorf("%w: %s without id", ErrInvalidSeed, what)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidSeed, id)
		}
		seen[id] = true
		return nil
	}

	for ri := range f.Restaurants {
		r := &f.Restaurants[ri]
		if r.ID == "" {
			return nil, fmt.Errorf("%w: restaurant without id", ErrInvalidSeed)
		}
		for _, d := range r.Drinks {
			if err := claim(d.ID, "drink"); err != nil {
				return nil, err
			}
		}
		for i := range r.Items {
			m := &r.Items[i]
			m.RestaurantID = r.ID
			if err := claim(m.ItemID, "item"); err != nil {
				return nil, err
			}
			for _, v := range m.Variants {
				if err := claim(v.ID, "variant of "+m.ItemID); err != nil {
					return nil, err
				}
			}
			for _, p := range m.Pricing {
				if err := claim(p.ID, "pricing of "+m.ItemID); err != nil {
					return nil, err
				}
				if p.VariantID != "" {
					if _, ok := m.Variant(p.VariantID); !ok {
						return nil, fmt.Errorf("%w: pricing %q references unknown variant %q", ErrInvalidSeed, p.ID, p.VariantID)
					}
				}
			}
			for _, d := range m.Deals {
				if err := claim(d.ID, "deal of "+m.ItemID); err != nil {
					return nil, err
				}
				if d.Type != DealPercentage && d.Type != DealFlat {
					return nil, fmt.Errorf("%w: deal %q has type %q", ErrInvalidSeed, d.ID, d.Type)
				}
			}
		}
	}

	return &f, nil
}

// Seed writes every drink and item of the file. It stops at the first error.
func Seed(ctx context.Context, w SeedWriter, f *SeedFile) (items, drinks int, err error) {
	for _, r := range f.Restaurants {
		for _, d := range r.Drinks {
			if err := w.SaveDrink(ctx, r.ID, d); err != nil {
				return items, drinks, fmt.Errorf("drink %s: %w", d.ID, err)
			}
			drinks++
		}
		for i := range r.Items {
			m := &r.Items[i]
			if err := w.SaveItem(ctx, m, "dish"); err != nil {
				return items, drinks, fmt.Errorf("item %s: %w", m.ItemID, err)
			}
			items++
		}
	}
	return items, drinks, nil
}
