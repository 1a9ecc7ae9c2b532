// Package payments manages the payment records of a contract draft. Each
// mutation targets one record by id and is a no-op returning false when the
// draft is not editable.
package payments

import (
	"time"

	"github.com/oakhaven/contracts/internal/model"
)

// Total sums all payment amounts.
func Total(payments []model.ContractPayment) float64 {
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	return total
}

// TotalsByMethod groups payment amounts by method.
func TotalsByMethod(payments []model.ContractPayment) map[model.PaymentMethod]float64 {
	out := make(map[model.PaymentMethod]float64)
	for _, p := range payments {
		out[p.Method] += p.Amount
	}
	return out
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Add appends a new payment record and returns its client-side id.
func (h *Handler) Add(d *model.ContractDraft, method model.PaymentMethod, amount float64, date time.Time) (string, bool) {
	if !d.Editable() {
		return "", false
	}
	id := model.TempID()
	d.Payments = append(d.Payments, model.ContractPayment{
		ID:     id,
		Date:   model.DateOnly(date),
		Method: method,
		Amount: amount,
	})
	touch(d)
	return id, true
}

func (h *Handler) Remove(d *model.ContractDraft, id string) bool {
	if !d.Editable() {
		return false
	}
	for i := range d.Payments {
		if d.Payments[i].ID == id {
			d.Payments = append(d.Payments[:i], d.Payments[i+1:]...)
			touch(d)
			return true
		}
	}
	return false
}

func (h *Handler) UpdateAmount(d *model.ContractDraft, id string, amount float64) bool {
	return h.update(d, id, func(p *model.ContractPayment) { p.Amount = amount })
}

func (h *Handler) UpdateMethod(d *model.ContractDraft, id string, method model.PaymentMethod) bool {
	return h.update(d, id, func(p *model.ContractPayment) { p.Method = method })
}

func (h *Handler) UpdateReference(d *model.ContractDraft, id, reference string) bool {
	return h.update(d, id, func(p *model.ContractPayment) { p.Reference = reference })
}

func (h *Handler) UpdateNotes(d *model.ContractDraft, id, notes string) bool {
	return h.update(d, id, func(p *model.ContractPayment) { p.Notes = notes })
}

func (h *Handler) UpdateDate(d *model.ContractDraft, id string, date time.Time) bool {
	return h.update(d, id, func(p *model.ContractPayment) { p.Date = model.DateOnly(date) })
}

// UpdateAllocations replaces the per-item allocation map of a payment.
func (h *Handler) UpdateAllocations(d *model.ContractDraft, id string, allocations map[string]float64) bool {
	return h.update(d, id, func(p *model.ContractPayment) {
		if allocations == nil {
			p.Allocations = nil
			return
		}
		out := make(map[string]float64, len(allocations))
		for item, amount := range allocations {
			out[item] = amount
		}
		p.Allocations = out
	})
}

func (h *Handler) update(d *model.ContractDraft, id string, fn func(*model.ContractPayment)) bool {
	if !d.Editable() {
		return false
	}
	for i := range d.Payments {
		if d.Payments[i].ID == id {
			fn(&d.Payments[i])
			touch(d)
			return true
		}
	}
	return false
}

func touch(d *model.ContractDraft) {
	d.Meta.UpdatedAt = time.Now().UTC()
}
