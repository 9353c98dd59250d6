package domain

// CartLine is one confirmed item+variation+quantity selection. The unit
// price is copied from the catalog when the quantity is confirmed, so later
// catalog price changes cannot reach an open cart.
type CartLine struct {
	ItemName  string `json:"item_name"`
	Variation string `json:"variation"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

func (l CartLine) Subtotal() int {
	return l.UnitPrice * l.Quantity
}

// CartTotal sums the line subtotals.
func CartTotal(lines []CartLine) int {
	total := 0
	for _, line := range lines {
		total += line.Subtotal()
	}
	return total
}
