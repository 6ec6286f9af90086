// Package catalog loads and validates the list of purchasable items.
// The catalog is authored as YAML and seeded into the store; at runtime the store is
// the source of truth.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"chat_economy/internal/models"
)

// ErrInvalidCatalog is returned when the catalog file violates an item rule.
var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

// File is the YAML layout of a catalog file.
type File struct {
	Items []Entry `yaml:"items"`
}

// Entry is one item as authored in the catalog file.
type Entry struct {
	Name        string                   `yaml:"name"`
	Description string                   `yaml:"description"`
	Price       int64                    `yaml:"price"`
	Category    models.Category          `yaml:"category"`
	Rarity      models.Rarity            `yaml:"rarity"`
	Effect      *models.EffectDescriptor `yaml:"effect,omitempty"`
}

// Load reads the catalog file at path and returns its validated items.
func Load(path string) ([]models.Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes catalog YAML and validates every entry.
func Parse(raw []byte) ([]models.Item, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog.yaml: %w", err)
	}

	items := make([]models.Item, 0, len(f.Items))
	for _, e := range f.Items {
		effect, err := models.DecodeEffect(e.Effect)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", e.Name, err)
		}
		items = append(items, models.Item{
			Name:        strings.TrimSpace(e.Name),
			Description: e.Description,
			Price:       e.Price,
			Category:    e.Category,
			Rarity:      e.Rarity,
			Effect:      effect,
		})
	}

	if err := Validate(items); err != nil {
		return nil, err
	}
	return items, nil
}

// Validate checks names, prices, categories and rarities and that item names are unique
// regardless of case.
func Validate(items []models.Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Name == "" {
			return fmt.Errorf("%w: item with empty name", ErrInvalidCatalog)
		}
		key := strings.ToLower(it.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate item name %q", ErrInvalidCatalog, it.Name)
		}
		seen[key] = struct{}{}

		if it.Price <= 0 {
			return fmt.Errorf("%w: item %q has non-positive price %d", ErrInvalidCatalog, it.Name, it.Price)
		}
		if !it.Category.Valid() {
			return fmt.Errorf("%w: item %q has unknown category %q", ErrInvalidCatalog, it.Name, it.Category)
		}
		if !it.Rarity.Valid() {
			return fmt.Errorf("%w: item %q has unknown rarity %q", ErrInvalidCatalog, it.Name, it.Rarity)
		}
		if _, ok := it.Effect.(models.Consumable); ok && it.Category != models.CategoryConsumable {
			return fmt.Errorf("%w: item %q has a consumable effect outside the consumable category", ErrInvalidCatalog, it.Name)
		}
	}
	return nil
}

// Filter returns the items of the given category; an empty category keeps every item.
func Filter(items []models.Item, category models.Category) []models.Item {
	if category == "" {
		return items
	}
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// SortByPrice orders items by ascending price, then by name.
func SortByPrice(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Price != items[j].Price {
			return items[i].Price < items[j].Price
		}
		return items[i].Name < items[j].Name
	})
}
