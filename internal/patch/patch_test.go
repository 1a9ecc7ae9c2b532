package patch

import (
	"reflect"
	"testing"
	"time"

	"github.com/oakhaven/contracts/internal/model"
)

func sampleDraft() *model.ContractDraft {
	d := model.NewDraft("loc-1")
	d.People = []model.ContractPerson{
		{
			ID:    "p-1",
			Roles: model.NewRoleSet(model.RolePrimaryBuyer),
			Name:  model.PersonName{First: "John", Last: "Doe"},
		},
	}
	d.Sale.Items = []model.SaleItem{
		{ID: "i-1", Description: "Casket", Quantity: 1, UnitPrice: 2000},
	}
	return d
}

func TestGetResolvesNestedPaths(t *testing.T) {
	d := sampleDraft()

	got, ok := Get(d, "people.0.name.first")
	if !ok || got != "John" {
		t.Fatalf("people.0.name.first = %v, %v", got, ok)
	}
	got, ok = Get(d, "sale.items.0.unitPrice")
	if !ok || got != 2000.0 {
		t.Fatalf("sale.items.0.unitPrice = %v, %v", got, ok)
	}
	got, ok = Get(d, "locationId")
	if !ok || got != "loc-1" {
		t.Fatalf("locationId = %v, %v", got, ok)
	}
}

func TestGetMissing(t *testing.T) {
	d := sampleDraft()
	for _, path := range []string{"", "people.5.name.first", "nosuchfield", "people.x"} {
		if _, ok := Get(d, path); ok {
			t.Fatalf("Get(%q) should report no value", path)
		}
	}
}

func TestSetDoesNotMutateInput(t *testing.T) {
	d := sampleDraft()

	out, ok := Set(d, "people.0.name.first", "Jane")
	if !ok {
		t.Fatal("set failed")
	}
	next := out.(*model.ContractDraft)
	if next == d {
		t.Fatal("set must return a different root")
	}
	if d.People[0].Name.First != "John" {
		t.Fatalf("input mutated: %q", d.People[0].Name.First)
	}
	if next.People[0].Name.First != "Jane" {
		t.Fatalf("new root missing write: %q", next.People[0].Name.First)
	}
	if next.People[0].Name.Last != "Doe" || next.ID != d.ID {
		t.Fatal("untouched fields must carry over")
	}
	// Siblings off the traversed spine share references.
	if &d.Sale.Items[0] != &next.Sale.Items[0] {
		t.Fatal("sibling slice should be shared, not copied")
	}
}

func TestSetIdempotent(t *testing.T) {
	d := sampleDraft()

	once, ok := Set(d, "people.0.name.first", "Jane")
	if !ok {
		t.Fatal("first set failed")
	}
	twice, ok := Set(once, "people.0.name.first", "Jane")
	if !ok {
		t.Fatal("second set failed")
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatal("applying the same patch twice must converge")
	}
}

func TestSetEmptyPathIsNoop(t *testing.T) {
	d := sampleDraft()
	out, ok := Set(d, "", "x")
	if ok {
		t.Fatal("empty path must not report a write")
	}
	if out.(*model.ContractDraft) != d {
		t.Fatal("empty path must return the input unchanged")
	}
}

func TestSetSliceBounds(t *testing.T) {
	d := sampleDraft()

	if _, ok := Set(d, "people.3.name.first", "X"); ok {
		t.Fatal("write past a missing parent slot must fail")
	}
	// Appending at exactly the current length is allowed.
	out, ok := Set(d, "sale.items.1.description", "Urn")
	if !ok {
		t.Fatal("append at len failed")
	}
	next := out.(*model.ContractDraft)
	if len(next.Sale.Items) != 2 || next.Sale.Items[1].Description != "Urn" {
		t.Fatalf("unexpected items: %+v", next.Sale.Items)
	}
}

func TestSetCoercesScalars(t *testing.T) {
	d := sampleDraft()

	out, ok := Set(d, "sale.items.0.quantity", "3")
	if !ok {
		t.Fatal("string→int coercion failed")
	}
	if got := out.(*model.ContractDraft).Sale.Items[0].Quantity; got != 3 {
		t.Fatalf("quantity = %d", got)
	}

	out, ok = Set(d, "sale.items.0.unitPrice", 150)
	if !ok {
		t.Fatal("int→float coercion failed")
	}
	if got := out.(*model.ContractDraft).Sale.Items[0].UnitPrice; got != 150.0 {
		t.Fatalf("unitPrice = %v", got)
	}

	out, ok = Set(d, "needType", "PRE_NEED")
	if !ok {
		t.Fatal("string→NeedType coercion failed")
	}
	if got := out.(*model.ContractDraft).NeedType; got != model.NeedTypePreNeed {
		t.Fatalf("needType = %v", got)
	}
}

func TestApplyBumpsUpdatedAt(t *testing.T) {
	d := sampleDraft()
	d.Meta.UpdatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	next, ok := Apply(d, "contractNumber", "FC-1")
	if !ok {
		t.Fatal("apply failed")
	}
	if !next.Meta.UpdatedAt.After(d.Meta.UpdatedAt) {
		t.Fatal("UpdatedAt must advance on every patch")
	}

	same, ok := Apply(d, "", "x")
	if ok || same != d {
		t.Fatal("failed apply must leave the draft untouched")
	}
}

func TestSetMapValue(t *testing.T) {
	d := sampleDraft()
	d.Payments = []model.ContractPayment{{ID: "pay-1", Amount: 100}}

	out, ok := Set(d, "payments.0.allocations.i-1", 50)
	if !ok {
		t.Fatal("map write through nil map failed")
	}
	next := out.(*model.ContractDraft)
	if next.Payments[0].Allocations["i-1"] != 50 {
		t.Fatalf("allocations = %+v", next.Payments[0].Allocations)
	}
	if d.Payments[0].Allocations != nil {
		t.Fatal("input map must stay nil")
	}
}
