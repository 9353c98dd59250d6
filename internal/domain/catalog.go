package domain

// Variation is one orderable size or style of a menu item.
type Variation struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// CatalogItem is a menu entry with its orderable variations. Variations
// keep their catalog insertion order so option lists render deterministically.
type CatalogItem struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Variations []Variation `json:"variations"`
}

func (i CatalogItem) Variation(name string) (Variation, bool) {
	for _, v := range i.Variations {
		if v.Name == name {
			return v, true
		}
	}
	return Variation{}, false
}
