// Package catalog exposes price and tax-rate lookups for sale items. The
// lookup is a read-only collaborator queried synchronously from cached
// state; handlers never block on it.
package catalog

type Item struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost"`
	TaxCategory string  `json:"taxCategory"`
}

type Lookup interface {
	ItemByID(id string) (Item, bool)
	// TaxRateForCategory returns the rate as a percentage, e.g. 8.25.
	TaxRateForCategory(category string) (float64, bool)
}

// Memory is an in-memory Lookup seeded once at startup.
type Memory struct {
	items map[string]Item
	rates map[string]float64
}

func NewMemory(items []Item, rates map[string]float64) *Memory {
	m := &Memory{
		items: make(map[string]Item, len(items)),
		rates: make(map[string]float64, len(rates)),
	}
	for _, item := range items {
		m.items[item.ID] = item
	}
	for category, rate := range rates {
		m.rates[category] = rate
	}
	return m
}

func (m *Memory) ItemByID(id string) (Item, bool) {
	item, ok := m.items[id]
	return item, ok
}

func (m *Memory) TaxRateForCategory(category string) (float64, bool) {
	rate, ok := m.rates[category]
	return rate, ok
}
