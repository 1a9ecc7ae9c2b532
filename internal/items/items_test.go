package items

import (
	"math"
	"testing"

	"github.com/oakhaven/contracts/internal/catalog"
	"github.com/oakhaven/contracts/internal/model"
)

func testCatalog() *catalog.Memory {
	return catalog.NewMemory(
		[]catalog.Item{
			{ID: "cat-1", SKU: "CSK-100", Description: "Oak Casket", Price: 100, Cost: 60, TaxCategory: "goods"},
			{ID: "cat-2", SKU: "SRV-200", Description: "Memorial Service", Price: 800, Cost: 0, TaxCategory: "services"},
		},
		map[string]float64{"goods": 8},
	)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAddFromCatalogComputesTax(t *testing.T) {
	h := NewHandler(testCatalog(), true)
	d := model.NewDraft("loc-1")

	if !h.AddFromCatalog(d, "cat-1", 2) {
		t.Fatal("add from catalog failed")
	}
	item := d.Sale.Items[0]
	if item.ItemID != "cat-1" || item.UnitPrice != 100 || item.Cost != 60 {
		t.Fatalf("catalog pricing not copied: %+v", item)
	}
	if len(item.SalesTax) != 1 || !approx(item.SalesTax[0].TaxAmount, 16) {
		t.Fatalf("tax = %+v, want 16 at rate 8", item.SalesTax)
	}

	totals := h.Totals(d)
	if !approx(totals.Subtotal, 200) || !approx(totals.TaxTotal, 16) || !approx(totals.GrandTotal, 216) {
		t.Fatalf("totals = %+v", totals)
	}
}

func TestAddFromCatalogUnknownItem(t *testing.T) {
	h := NewHandler(testCatalog(), true)
	d := model.NewDraft("loc-1")
	if h.AddFromCatalog(d, "nope", 1) {
		t.Fatal("unknown catalog item must fail")
	}
	if len(d.Sale.Items) != 0 {
		t.Fatal("failed add must not touch the draft")
	}
}

func TestTotalsLaw(t *testing.T) {
	h := NewHandler(testCatalog(), true)
	d := model.NewDraft("loc-1")
	h.AddFromCatalog(d, "cat-1", 2)
	h.AddCustom(d, "Flowers", 50, 1)
	h.AddDiscount(d, d.Sale.Items[1].ID, "veteran", 10)

	totals := h.Totals(d)
	if !approx(totals.GrandTotal, totals.Subtotal+totals.TaxTotal-totals.DiscountTotal) {
		t.Fatalf("grand total law violated: %+v", totals)
	}

	// Cancelling one item removes exactly its contribution.
	before := totals
	if !h.SoftRemove(d, d.Sale.Items[0].ID) {
		t.Fatal("soft remove failed")
	}
	after := h.Totals(d)
	if !approx(after.Subtotal, before.Subtotal-200) || !approx(after.TaxTotal, before.TaxTotal-16) {
		t.Fatalf("cancelled item contribution not removed: %+v", after)
	}
	if !approx(after.DiscountTotal, before.DiscountTotal) {
		t.Fatal("other items' discounts must be untouched")
	}
	if len(d.Sale.Items) != 2 {
		t.Fatal("soft-removed row must be retained for audit")
	}
}

func TestQuantityUpdateRecomputesTax(t *testing.T) {
	h := NewHandler(testCatalog(), true)
	d := model.NewDraft("loc-1")
	h.AddFromCatalog(d, "cat-1", 1)
	id := d.Sale.Items[0].ID

	if !h.UpdateQuantity(d, id, 3) {
		t.Fatal("quantity update failed")
	}
	if !approx(d.Sale.Items[0].SalesTax[0].TaxAmount, 24) {
		t.Fatalf("tax after quantity update = %v, want 24", d.Sale.Items[0].SalesTax[0].TaxAmount)
	}

	if !h.UpdatePrice(d, id, 200) {
		t.Fatal("price update failed")
	}
	if !approx(d.Sale.Items[0].SalesTax[0].TaxAmount, 48) {
		t.Fatalf("tax after price update = %v, want 48", d.Sale.Items[0].SalesTax[0].TaxAmount)
	}
}

func TestTaxDisabled(t *testing.T) {
	h := NewHandler(testCatalog(), false)
	d := model.NewDraft("loc-1")
	h.AddFromCatalog(d, "cat-1", 2)
	if len(d.Sale.Items[0].SalesTax) != 0 {
		t.Fatal("tax disabled must not seed tax lines")
	}
}

func TestHardDeleteOnlyForUnpersistedRows(t *testing.T) {
	h := NewHandler(testCatalog(), true)
	d := model.NewDraft("loc-1")
	h.AddCustom(d, "Flowers", 50, 1)
	tempID := d.Sale.Items[0].ID
	d.Sale.Items = append(d.Sale.Items, model.SaleItem{ID: "i-persisted", Description: "Urn", Quantity: 1, UnitPrice: 300})

	if h.HardDelete(d, "i-persisted") {
		t.Fatal("persisted row must not be hard-deletable")
	}
	if !h.HardDelete(d, tempID) {
		t.Fatal("unpersisted row must be hard-deletable")
	}
	if len(d.Sale.Items) != 1 || d.Sale.Items[0].ID != "i-persisted" {
		t.Fatalf("unexpected items: %+v", d.Sale.Items)
	}
}

func TestMutationsNoopWhenNotEditable(t *testing.T) {
	h := NewHandler(testCatalog(), true)
	d := model.NewDraft("loc-1")
	h.AddCustom(d, "Flowers", 50, 1)
	d.Meta.Status = model.ContractStatusExecuted

	id := d.Sale.Items[0].ID
	if h.AddFromCatalog(d, "cat-1", 1) || h.AddCustom(d, "x", 1, 1) ||
		h.SoftRemove(d, id) || h.UpdateQuantity(d, id, 5) ||
		h.UpdatePrice(d, id, 1) || h.AddDiscount(d, id, "x", 1) {
		t.Fatal("mutations on a non-editable draft must be no-ops")
	}
	if len(d.Sale.Items) != 1 || d.Sale.Items[0].Quantity != 1 {
		t.Fatal("non-editable draft must be unchanged")
	}
}

func TestOrdinalsIncrease(t *testing.T) {
	h := NewHandler(testCatalog(), true)
	d := model.NewDraft("loc-1")
	h.AddCustom(d, "A", 1, 1)
	h.AddCustom(d, "B", 1, 1)
	if d.Sale.Items[0].Ordinal >= d.Sale.Items[1].Ordinal {
		t.Fatalf("ordinals must increase: %d, %d", d.Sale.Items[0].Ordinal, d.Sale.Items[1].Ordinal)
	}
}
