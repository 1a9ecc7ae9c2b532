// Package validate holds the per-section business rules for a contract
// draft. Validators never panic: malformed input comes back as path-keyed
// errors in a structured result. Error keys use the same dot-path syntax as
// the patch engine so the UI can bind a field to its own error exactly.
package validate

import (
	"fmt"
	"strings"

	"github.com/oakhaven/contracts/internal/model"
)

// Mode selects rule strictness. Draft gates partial saves, Commit gates
// execution/finalization and is a strict superset of Draft.
type Mode string

const (
	ModeDraft  Mode = "DRAFT"
	ModeCommit Mode = "COMMIT"
)

type Section string

const (
	SectionGeneral  Section = "general"
	SectionPeople   Section = "people"
	SectionItems    Section = "items"
	SectionPayments Section = "payments"
	SectionReview   Section = "review"
)

// Sections lists the editable sections, review excluded.
var Sections = []Section{SectionGeneral, SectionPeople, SectionItems, SectionPayments}

type Result struct {
	Valid  bool
	Errors map[string]string
}

type Summary struct {
	Validity     map[Section]bool
	ErrorsByPath map[string]string
}

func (s Summary) Valid() bool {
	for _, ok := range s.Validity {
		if !ok {
			return false
		}
	}
	return true
}

// LocationContext carries the identity facts that vary commit rules by
// location. Preneed locations require a sale date even on draft saves.
type LocationContext struct {
	LocationID   string
	LocationType model.NeedType
}

type Validator struct {
	loc LocationContext
}

func New(loc LocationContext) *Validator {
	return &Validator{loc: loc}
}

// Section validates one section of the draft under the given mode.
func (v *Validator) Section(d *model.ContractDraft, section Section, mode Mode) Result {
	if d == nil {
		return Result{Valid: false, Errors: map[string]string{"": "contract draft is missing"}}
	}

	errs := map[string]string{}
	switch section {
	case SectionGeneral:
		v.general(d, mode, errs)
	case SectionPeople:
		v.people(d, mode, errs)
	case SectionItems:
		v.items(d, mode, errs)
	case SectionPayments:
		v.payments(d, mode, errs)
	case SectionReview:
		v.general(d, mode, errs)
		v.people(d, mode, errs)
		v.items(d, mode, errs)
		v.payments(d, mode, errs)
	default:
		return Result{Valid: false, Errors: map[string]string{"": fmt.Sprintf("unknown section %q", section)}}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// All validates every section plus the cross-section review check and
// returns per-section validity with a merged error map. Review is the
// superset: its errors are the source of truth for the whole document.
func (v *Validator) All(d *model.ContractDraft, mode Mode) Summary {
	summary := Summary{
		Validity:     map[Section]bool{},
		ErrorsByPath: map[string]string{},
	}
	for _, section := range Sections {
		res := v.Section(d, section, mode)
		summary.Validity[section] = res.Valid
		for path, msg := range res.Errors {
			summary.ErrorsByPath[path] = msg
		}
	}
	review := v.Section(d, SectionReview, mode)
	summary.Validity[SectionReview] = review.Valid
	for path, msg := range review.Errors {
		summary.ErrorsByPath[path] = msg
	}
	return summary
}

func (v *Validator) general(d *model.ContractDraft, mode Mode, errs map[string]string) {
	if strings.TrimSpace(d.LocationID) == "" {
		errs["locationId"] = "location is required"
	}
	if v.saleDateRequired(d, mode) && d.Sale.SaleDate.IsZero() {
		errs["sale.saleDate"] = "sale date is required"
	}
	if mode == ModeCommit && d.NeedType == "" {
		errs["needType"] = "need type is required"
	}
}

func (v *Validator) saleDateRequired(d *model.ContractDraft, mode Mode) bool {
	if mode == ModeCommit {
		return true
	}
	return d.NeedType == model.NeedTypePreNeed || v.loc.LocationType == model.NeedTypePreNeed
}

func (v *Validator) people(d *model.ContractDraft, mode Mode, errs map[string]string) {
	if mode != ModeCommit {
		return
	}
	if len(d.People) < 2 {
		errs["people"] = "a contract requires at least a buyer and a beneficiary"
	}
	buyers, beneficiaries := 0, 0
	for i := range d.People {
		if d.People[i].Roles.Has(model.RolePrimaryBuyer) {
			buyers++
		}
		if d.People[i].Roles.Has(model.RolePrimaryBeneficiary) {
			beneficiaries++
		}
	}
	switch {
	case buyers == 0:
		errs["people.primaryBuyer"] = "a primary buyer is required"
	case buyers > 1:
		errs["people.primaryBuyer"] = "only one person may be the primary buyer"
	}
	switch {
	case beneficiaries == 0:
		errs["people.primaryBeneficiary"] = "a primary beneficiary is required"
	case beneficiaries > 1:
		errs["people.primaryBeneficiary"] = "only one person may be the primary beneficiary"
	}
}

func (v *Validator) items(d *model.ContractDraft, mode Mode, errs map[string]string) {
	if mode != ModeCommit {
		return
	}
	active := 0
	for i := range d.Sale.Items {
		item := &d.Sale.Items[i]
		if item.IsCancelled {
			continue
		}
		active++
		if item.Quantity < 1 {
			errs[fmt.Sprintf("sale.items.%d.quantity", i)] = "quantity must be at least 1"
		}
		if item.UnitPrice < 0 {
			errs[fmt.Sprintf("sale.items.%d.unitPrice", i)] = "unit price cannot be negative"
		}
		if item.ItemID == "" && strings.TrimSpace(item.Description) == "" {
			errs[fmt.Sprintf("sale.items.%d.description", i)] = "a custom item needs a description"
		}
	}
	if active == 0 {
		errs["sale.items"] = "at least one sale item is required"
	}
}

func (v *Validator) payments(d *model.ContractDraft, mode Mode, errs map[string]string) {
	if mode != ModeCommit {
		return
	}
	for i := range d.Payments {
		p := &d.Payments[i]
		if p.Amount <= 0 {
			errs[fmt.Sprintf("payments.%d.amount", i)] = "payment amount must be greater than zero"
		}
		if p.Method == "" {
			errs[fmt.Sprintf("payments.%d.method", i)] = "payment method is required"
		}
	}
}

// SectionForPath maps a field path to the section that owns it, for
// incremental revalidation. Paths that match no section prefix return
// SectionReview so an edit can never dodge the whole-document check.
func SectionForPath(path string) Section {
	switch {
	case path == "people" || strings.HasPrefix(path, "people."):
		return SectionPeople
	case path == "sale.items" || strings.HasPrefix(path, "sale.items."):
		return SectionItems
	case path == "payments" || strings.HasPrefix(path, "payments."):
		return SectionPayments
	case path == "locationId", path == "needType", path == "contractNumber",
		path == "prePrintedContractNumber", path == "sale.saleDate":
		return SectionGeneral
	default:
		return SectionReview
	}
}

// ClearSection drops every error owned by section from the map, so a
// re-validated section never leaves stale entries behind.
func ClearSection(errs map[string]string, section Section) {
	for path := range errs {
		if SectionForPath(path) == section {
			delete(errs, path)
		}
	}
}
