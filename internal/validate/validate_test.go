package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/oakhaven/contracts/internal/model"
)

func commitReadyDraft() *model.ContractDraft {
	d := model.NewDraft("loc-1")
	d.NeedType = model.NeedTypeAtNeed
	d.Sale.SaleDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d.People = []model.ContractPerson{
		{ID: "p-1", Roles: model.NewRoleSet(model.RolePrimaryBuyer)},
		{ID: "p-2", Roles: model.NewRoleSet(model.RolePrimaryBeneficiary)},
	}
	d.Sale.Items = []model.SaleItem{
		{ID: "i-1", ItemID: "cat-1", Description: "Casket", Quantity: 1, UnitPrice: 2000},
	}
	d.Payments = []model.ContractPayment{
		{ID: "pay-1", Method: model.PaymentMethodCash, Amount: 500},
	}
	return d
}

func TestDraftModeOnlyRequiresLocation(t *testing.T) {
	v := New(LocationContext{})
	d := model.NewDraft("")

	res := v.Section(d, SectionGeneral, ModeDraft)
	if res.Valid {
		t.Fatal("missing location must fail draft validation")
	}
	if _, ok := res.Errors["locationId"]; !ok {
		t.Fatalf("expected locationId error, got %v", res.Errors)
	}

	d.LocationID = "loc-1"
	if res := v.Section(d, SectionReview, ModeDraft); !res.Valid {
		t.Fatalf("bare draft with a location must pass draft mode: %v", res.Errors)
	}
}

func TestPreneedRequiresSaleDateInDraftMode(t *testing.T) {
	v := New(LocationContext{})
	d := model.NewDraft("loc-1")
	d.NeedType = model.NeedTypePreNeed

	res := v.Section(d, SectionGeneral, ModeDraft)
	if res.Valid {
		t.Fatal("preneed draft without a sale date must fail")
	}
	if _, ok := res.Errors["sale.saleDate"]; !ok {
		t.Fatalf("expected sale.saleDate error, got %v", res.Errors)
	}

	// A preneed location forces the same rule regardless of need type.
	d.NeedType = model.NeedTypeAtNeed
	vLoc := New(LocationContext{LocationType: model.NeedTypePreNeed})
	if res := vLoc.Section(d, SectionGeneral, ModeDraft); res.Valid {
		t.Fatal("preneed location must require a sale date in draft mode")
	}
}

func TestCommitRequiresPrimaryBeneficiary(t *testing.T) {
	v := New(LocationContext{})
	d := commitReadyDraft()
	d.People = d.People[:1] // buyer only

	res := v.Section(d, SectionPeople, ModeCommit)
	if res.Valid {
		t.Fatal("commit without a beneficiary must fail")
	}
	found := false
	for _, msg := range res.Errors {
		if strings.Contains(msg, "primary beneficiary") {
			found = true
		}
	}
	if !found {
		t.Fatalf("error must mention the primary beneficiary: %v", res.Errors)
	}

	if res := v.Section(d, SectionPeople, ModeDraft); !res.Valid {
		t.Fatal("the same draft must pass people in draft mode")
	}
}

func TestCommitRejectsDuplicatePrimaries(t *testing.T) {
	v := New(LocationContext{})
	d := commitReadyDraft()
	d.People = append(d.People, model.ContractPerson{ID: "p-3", Roles: model.NewRoleSet(model.RolePrimaryBuyer)})

	res := v.Section(d, SectionPeople, ModeCommit)
	if res.Valid {
		t.Fatal("two primary buyers must fail commit validation")
	}
}

func TestCommitRequiresItemsAndPositivePayments(t *testing.T) {
	v := New(LocationContext{})

	d := commitReadyDraft()
	d.Sale.Items[0].IsCancelled = true
	res := v.Section(d, SectionItems, ModeCommit)
	if res.Valid {
		t.Fatal("all items cancelled must fail commit validation")
	}
	if _, ok := res.Errors["sale.items"]; !ok {
		t.Fatalf("expected sale.items error, got %v", res.Errors)
	}

	d = commitReadyDraft()
	d.Payments[0].Amount = 0
	res = v.Section(d, SectionPayments, ModeCommit)
	if res.Valid {
		t.Fatal("zero payment must fail commit validation")
	}
	if _, ok := res.Errors["payments.0.amount"]; !ok {
		t.Fatalf("expected payments.0.amount error, got %v", res.Errors)
	}
}

func TestCommitIsSupersetOfDraft(t *testing.T) {
	v := New(LocationContext{})
	drafts := []*model.ContractDraft{
		model.NewDraft(""),
		model.NewDraft("loc-1"),
		commitReadyDraft(),
	}
	for _, d := range drafts {
		draftRes := v.Section(d, SectionReview, ModeDraft)
		commitRes := v.Section(d, SectionReview, ModeCommit)
		for path := range draftRes.Errors {
			if _, ok := commitRes.Errors[path]; !ok && commitRes.Valid {
				t.Fatalf("draft-mode error at %q vanished in commit mode", path)
			}
		}
	}
}

func TestAllValidSummary(t *testing.T) {
	v := New(LocationContext{})
	d := commitReadyDraft()

	summary := v.All(d, ModeCommit)
	if !summary.Valid() {
		t.Fatalf("commit-ready draft must validate: %v", summary.ErrorsByPath)
	}
	for _, section := range append(Sections, SectionReview) {
		if !summary.Validity[section] {
			t.Fatalf("section %s unexpectedly invalid", section)
		}
	}
}

func TestValidatorNeverPanics(t *testing.T) {
	v := New(LocationContext{})

	res := v.Section(nil, SectionReview, ModeCommit)
	if res.Valid || len(res.Errors) == 0 {
		t.Fatal("nil draft must come back as a structured error")
	}
	res = v.Section(commitReadyDraft(), Section("bogus"), ModeDraft)
	if res.Valid {
		t.Fatal("unknown section must come back as a structured error")
	}
}

func TestSectionForPath(t *testing.T) {
	cases := map[string]Section{
		"people.0.name.first":     SectionPeople,
		"people.primaryBuyer":     SectionPeople,
		"sale.items.0.quantity":   SectionItems,
		"payments.1.amount":       SectionPayments,
		"locationId":              SectionGeneral,
		"sale.saleDate":           SectionGeneral,
		"needType":                SectionGeneral,
		"meta.status":             SectionReview,
		"somethingNew.0.whatever": SectionReview,
	}
	for path, want := range cases {
		if got := SectionForPath(path); got != want {
			t.Fatalf("SectionForPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestClearSection(t *testing.T) {
	errs := map[string]string{
		"people.0.name.first": "x",
		"payments.0.amount":   "y",
		"locationId":          "z",
	}
	ClearSection(errs, SectionPeople)
	if _, ok := errs["people.0.name.first"]; ok {
		t.Fatal("people error must be cleared")
	}
	if len(errs) != 2 {
		t.Fatalf("unrelated sections must survive: %v", errs)
	}
}
