package catalog

import "github.com/puchkadas/orderbot/internal/domain"

// Catalog is read-only menu data, loaded once at startup. Implementations
// must be safe for concurrent readers.
type Catalog interface {
	Items() []domain.CatalogItem
	Item(id string) (domain.CatalogItem, bool)
}

// StaticCatalog serves a fixed item list. Items() preserves insertion order.
type StaticCatalog struct {
	items []domain.CatalogItem
	byID  map[string]domain.CatalogItem
}

func NewStaticCatalog(items []domain.CatalogItem) *StaticCatalog {
	byID := make(map[string]domain.CatalogItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &StaticCatalog{items: items, byID: byID}
}

func (c *StaticCatalog) Items() []domain.CatalogItem {
	return c.items
}

func (c *StaticCatalog) Item(id string) (domain.CatalogItem, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// DefaultMenu is the built-in Puchka Das street food menu, used when no
// catalog database is configured.
func DefaultMenu() []domain.CatalogItem {
	return []domain.CatalogItem{
		{ID: "pani_puri", Name: "Pani Puri", Variations: []domain.Variation{
			{Name: "small", Price: 20},
			{Name: "large", Price: 35},
		}},
		{ID: "bhel_puri", Name: "Bhel Puri", Variations: []domain.Variation{
			{Name: "regular", Price: 30},
			{Name: "spicy", Price: 35},
		}},
		{ID: "sev_puri", Name: "Sev Puri", Variations: []domain.Variation{
			{Name: "regular", Price: 25},
			{Name: "extra_cheese", Price: 30},
		}},
		{ID: "dahi_puri", Name: "Dahi Puri", Variations: []domain.Variation{
			{Name: "regular", Price: 35},
			{Name: "extra_dahi", Price: 40},
		}},
	}
}
