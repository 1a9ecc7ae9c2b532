// Package items manages the sale line items of a contract draft: catalog
// and custom adds, soft/hard removal, quantity and price updates with tax
// recomputation, and the live display aggregates. The figures computed here
// are for UI display only; the backend recalculates authoritatively on
// commit.
package items

import (
	"time"

	"github.com/oakhaven/contracts/internal/catalog"
	"github.com/oakhaven/contracts/internal/model"
)

type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	TaxTotal      float64 `json:"taxTotal"`
	DiscountTotal float64 `json:"discountTotal"`
	GrandTotal    float64 `json:"grandTotal"`
}

// Active returns the items that count toward totals: cancelled rows are
// kept for audit but excluded here.
func Active(items []model.SaleItem) []model.SaleItem {
	out := make([]model.SaleItem, 0, len(items))
	for _, item := range items {
		if !item.IsCancelled {
			out = append(out, item)
		}
	}
	return out
}

// Compute derives the display aggregates over active items.
func Compute(items []model.SaleItem) Totals {
	var t Totals
	for i := range items {
		item := &items[i]
		if item.IsCancelled {
			continue
		}
		t.Subtotal += float64(item.Quantity) * item.UnitPrice
		for _, tax := range item.SalesTax {
			t.TaxTotal += tax.TaxAmount
		}
		for _, d := range item.Discounts {
			t.DiscountTotal += d.Amount
		}
	}
	t.GrandTotal = t.Subtotal + t.TaxTotal - t.DiscountTotal
	return t
}

// Handler mutates the draft's item sequence. Every mutation is a no-op
// returning false when the draft is not editable.
type Handler struct {
	catalog    catalog.Lookup
	taxEnabled bool
}

func NewHandler(lookup catalog.Lookup, taxEnabled bool) *Handler {
	return &Handler{catalog: lookup, taxEnabled: taxEnabled}
}

func (h *Handler) Totals(d *model.ContractDraft) Totals {
	if d == nil {
		return Totals{}
	}
	return Compute(d.Sale.Items)
}

// AddFromCatalog appends a line item priced from the catalog. Tax is seeded
// from the item's tax category.
func (h *Handler) AddFromCatalog(d *model.ContractDraft, itemID string, quantity int) bool {
	if !d.Editable() || quantity < 1 {
		return false
	}
	entry, ok := h.catalog.ItemByID(itemID)
	if !ok {
		return false
	}
	item := model.SaleItem{
		ID:          model.TempID(),
		ItemID:      entry.ID,
		Description: entry.Description,
		NeedType:    d.NeedType,
		Quantity:    quantity,
		UnitPrice:   entry.Price,
		Cost:        entry.Cost,
		BookPrice:   entry.Price,
		BookCost:    entry.Cost,
		Ordinal:     nextOrdinal(d.Sale.Items),
		SalesTax:    []model.TaxLine{},
		Discounts:   []model.Discount{},
	}
	if h.taxEnabled {
		if rate, ok := h.catalog.TaxRateForCategory(entry.TaxCategory); ok {
			item.SalesTax = append(item.SalesTax, model.TaxLine{
				TaxRate:   rate,
				TaxAmount: taxAmount(quantity, entry.Price, rate),
			})
		}
	}
	d.Sale.Items = append(d.Sale.Items, item)
	touch(d)
	return true
}

// AddCustom appends a free-form line item with no catalog reference.
func (h *Handler) AddCustom(d *model.ContractDraft, description string, unitPrice float64, quantity int) bool {
	if !d.Editable() || quantity < 1 {
		return false
	}
	d.Sale.Items = append(d.Sale.Items, model.SaleItem{
		ID:          model.TempID(),
		Description: description,
		NeedType:    d.NeedType,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Ordinal:     nextOrdinal(d.Sale.Items),
		SalesTax:    []model.TaxLine{},
		Discounts:   []model.Discount{},
	})
	touch(d)
	return true
}

// SoftRemove cancels the row but keeps it for audit.
func (h *Handler) SoftRemove(d *model.ContractDraft, id string) bool {
	if !d.Editable() {
		return false
	}
	item := find(d, id)
	if item == nil {
		return false
	}
	item.IsCancelled = true
	touch(d)
	return true
}

// HardDelete drops the row entirely. Only rows the backend has never seen
// may be hard-deleted.
func (h *Handler) HardDelete(d *model.ContractDraft, id string) bool {
	if !d.Editable() || model.IsPersisted(id) {
		return false
	}
	for i := range d.Sale.Items {
		if d.Sale.Items[i].ID == id {
			d.Sale.Items = append(d.Sale.Items[:i], d.Sale.Items[i+1:]...)
			touch(d)
			return true
		}
	}
	return false
}

func (h *Handler) UpdateQuantity(d *model.ContractDraft, id string, quantity int) bool {
	if !d.Editable() || quantity < 1 {
		return false
	}
	item := find(d, id)
	if item == nil {
		return false
	}
	item.Quantity = quantity
	h.recomputeTax(item)
	touch(d)
	return true
}

func (h *Handler) UpdatePrice(d *model.ContractDraft, id string, unitPrice float64) bool {
	if !d.Editable() || unitPrice < 0 {
		return false
	}
	item := find(d, id)
	if item == nil {
		return false
	}
	item.UnitPrice = unitPrice
	h.recomputeTax(item)
	touch(d)
	return true
}

func (h *Handler) AddDiscount(d *model.ContractDraft, id, description string, amount float64) bool {
	if !d.Editable() || amount <= 0 {
		return false
	}
	item := find(d, id)
	if item == nil {
		return false
	}
	item.Discounts = append(item.Discounts, model.Discount{Description: description, Amount: amount})
	touch(d)
	return true
}

func (h *Handler) RemoveDiscount(d *model.ContractDraft, id string, index int) bool {
	if !d.Editable() {
		return false
	}
	item := find(d, id)
	if item == nil || index < 0 || index >= len(item.Discounts) {
		return false
	}
	item.Discounts = append(item.Discounts[:index], item.Discounts[index+1:]...)
	touch(d)
	return true
}

func (h *Handler) recomputeTax(item *model.SaleItem) {
	if !h.taxEnabled {
		return
	}
	for i := range item.SalesTax {
		item.SalesTax[i].TaxAmount = taxAmount(item.Quantity, item.UnitPrice, item.SalesTax[i].TaxRate)
	}
}

func taxAmount(quantity int, unitPrice, rate float64) float64 {
	return float64(quantity) * unitPrice * (rate / 100)
}

func find(d *model.ContractDraft, id string) *model.SaleItem {
	for i := range d.Sale.Items {
		if d.Sale.Items[i].ID == id {
			return &d.Sale.Items[i]
		}
	}
	return nil
}

func nextOrdinal(items []model.SaleItem) int {
	max := 0
	for _, item := range items {
		if item.Ordinal > max {
			max = item.Ordinal
		}
	}
	return max + 1
}

func touch(d *model.ContractDraft) {
	d.Meta.UpdatedAt = time.Now().UTC()
}
