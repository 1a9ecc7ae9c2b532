package model

import (
	"reflect"
	"time"
)

// ContractDraft is the client-held working copy of a contract under edit. It
// carries a single editable sale slot instead of the persisted sale array;
// all mutation goes through the patch engine.
type ContractDraft struct {
	ID                       string            `json:"id"`
	ContractNumber           string            `json:"contractNumber"`
	LocationID               string            `json:"locationId"`
	NeedType                 NeedType          `json:"needType"`
	PrePrintedContractNumber string            `json:"prePrintedContractNumber"`
	People                   []ContractPerson  `json:"people"`
	Sale                     DraftSale         `json:"sale"`
	Payments                 []ContractPayment `json:"payments"`
	Meta                     ContractMeta      `json:"meta"`
}

type DraftSale struct {
	ID       string     `json:"id"`
	SaleDate time.Time  `json:"saleDate"`
	Items    []SaleItem `json:"items"`
}

// NewDraft builds an empty unpersisted draft for a new contract.
func NewDraft(locationID string) *ContractDraft {
	now := time.Now().UTC()
	return &ContractDraft{
		ID:         SentinelID,
		LocationID: locationID,
		NeedType:   NeedTypeAtNeed,
		People:     []ContractPerson{},
		Sale: DraftSale{
			ID:    SentinelID,
			Items: []SaleItem{},
		},
		Payments: []ContractPayment{},
		Meta: ContractMeta{
			Status:    ContractStatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// DraftFromContract converts a persisted document into an editable draft. The
// result shares no references with doc: edits to the draft must never leak
// back into the source document. The primary sale is selected by sale type
// and its date truncated to calendar-date precision; absent sub-collections
// become empty sequences.
func DraftFromContract(doc *Contract) *ContractDraft {
	d := &ContractDraft{
		ID:                       doc.ID,
		ContractNumber:           doc.ContractNumber,
		LocationID:               doc.LocationID,
		NeedType:                 doc.NeedType,
		PrePrintedContractNumber: doc.PrePrintedContractNumber,
		People:                   clonePeople(doc.People),
		Payments:                 clonePayments(doc.Payments),
		Meta:                     doc.Meta.Clone(),
	}
	if d.ID == "" {
		d.ID = SentinelID
	}
	if d.People == nil {
		d.People = []ContractPerson{}
	}
	if d.Payments == nil {
		d.Payments = []ContractPayment{}
	}

	d.Sale = DraftSale{ID: SentinelID, Items: []SaleItem{}}
	for i := range doc.Sales {
		if doc.Sales[i].SaleType != SaleTypePrimary {
			continue
		}
		s := doc.Sales[i]
		d.Sale.ID = s.ID
		d.Sale.SaleDate = DateOnly(s.SaleDate)
		d.Sale.Items = cloneItems(s.Items)
		if d.Sale.ID == "" {
			d.Sale.ID = SentinelID
		}
		if d.Sale.Items == nil {
			d.Sale.Items = []SaleItem{}
		}
		break
	}
	return d
}

// PersistedShape converts the draft back into the backend document shape.
// Sentinel ids become absent so the backend treats those rows as inserts,
// payments without a persisted id are flagged new, and all totals are zeroed:
// the backend recomputes them authoritatively on commit.
func (d *ContractDraft) PersistedShape() *Contract {
	doc := &Contract{
		ID:                       stripSentinel(d.ID),
		ContractNumber:           d.ContractNumber,
		LocationID:               d.LocationID,
		NeedType:                 d.NeedType,
		PrePrintedContractNumber: d.PrePrintedContractNumber,
		People:                   clonePeople(d.People),
		Payments:                 clonePayments(d.Payments),
		Meta:                     d.Meta.Clone(),
	}
	for i := range doc.People {
		doc.People[i].ID = stripSentinel(doc.People[i].ID)
	}
	for i := range doc.Payments {
		doc.Payments[i].ID = stripSentinel(doc.Payments[i].ID)
		doc.Payments[i].IsNew = doc.Payments[i].ID == ""
	}

	sale := Sale{
		ID:       stripSentinel(d.Sale.ID),
		SaleType: SaleTypePrimary,
		SaleDate: d.Sale.SaleDate,
		Items:    cloneItems(d.Sale.Items),
	}
	for i := range sale.Items {
		sale.Items[i].ID = stripSentinel(sale.Items[i].ID)
	}
	doc.Sales = []Sale{sale}
	return doc
}

// Clone returns a deep copy of the draft.
func (d *ContractDraft) Clone() *ContractDraft {
	if d == nil {
		return nil
	}
	out := *d
	out.People = clonePeople(d.People)
	out.Payments = clonePayments(d.Payments)
	out.Sale.Items = cloneItems(d.Sale.Items)
	out.Meta = d.Meta.Clone()
	return &out
}

// EqualIgnoringUpdatedAt reports structural equality between two drafts with
// Meta.UpdatedAt normalized out. This is the sole dirty signal.
func EqualIgnoringUpdatedAt(a, b *ContractDraft) bool {
	if a == nil || b == nil {
		return a == b
	}
	ca, cb := a.Clone(), b.Clone()
	ca.Meta.UpdatedAt = time.Time{}
	cb.Meta.UpdatedAt = time.Time{}
	return reflect.DeepEqual(ca, cb)
}

// DateOnly truncates a timestamp to calendar-date precision in UTC.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stripSentinel(id string) string {
	if !IsPersisted(id) {
		return ""
	}
	return id
}

func (m ContractMeta) Clone() ContractMeta {
	out := m
	if m.DateExecuted != nil {
		t := *m.DateExecuted
		out.DateExecuted = &t
	}
	if m.DateSigned != nil {
		t := *m.DateSigned
		out.DateSigned = &t
	}
	return out
}

func (p ContractPerson) Clone() ContractPerson {
	out := p
	out.Roles = p.Roles.Clone()
	if p.Phones != nil {
		out.Phones = make([]Phone, len(p.Phones))
		copy(out.Phones, p.Phones)
	}
	if p.Addresses != nil {
		out.Addresses = make([]Address, len(p.Addresses))
		copy(out.Addresses, p.Addresses)
	}
	if p.Emails != nil {
		out.Emails = make([]Email, len(p.Emails))
		copy(out.Emails, p.Emails)
	}
	return out
}

func (i SaleItem) Clone() SaleItem {
	out := i
	if i.SalesTax != nil {
		out.SalesTax = make([]TaxLine, len(i.SalesTax))
		copy(out.SalesTax, i.SalesTax)
	}
	if i.Discounts != nil {
		out.Discounts = make([]Discount, len(i.Discounts))
		copy(out.Discounts, i.Discounts)
	}
	return out
}

func (p ContractPayment) Clone() ContractPayment {
	out := p
	if p.Allocations != nil {
		out.Allocations = make(map[string]float64, len(p.Allocations))
		for k, v := range p.Allocations {
			out.Allocations[k] = v
		}
	}
	return out
}

func clonePeople(people []ContractPerson) []ContractPerson {
	if people == nil {
		return nil
	}
	out := make([]ContractPerson, len(people))
	for i := range people {
		out[i] = people[i].Clone()
	}
	return out
}

func cloneItems(items []SaleItem) []SaleItem {
	if items == nil {
		return nil
	}
	out := make([]SaleItem, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}

func clonePayments(payments []ContractPayment) []ContractPayment {
	if payments == nil {
		return nil
	}
	out := make([]ContractPayment, len(payments))
	for i := range payments {
		out[i] = payments[i].Clone()
	}
	return out
}

// Editable reports whether the contract can still be modified. Executed,
// finalized and cancelled contracts are read-only.
func (d *ContractDraft) Editable() bool {
	if d == nil || d.Meta.IsCancelled {
		return false
	}
	return d.Meta.Status == "" || d.Meta.Status == ContractStatusDraft
}
