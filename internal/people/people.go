// Package people manages the person graph of a contract draft. Four logical
// slots are derived from the role sets: one primary buyer, one primary
// beneficiary, co-buyers, and additional beneficiaries; anyone else is
// unclassified. The primary roles are structural: they pin a person to a
// slot and cannot be reassigned through ChangeRole.
package people

import (
	"time"

	"github.com/oakhaven/contracts/internal/model"
)

// PrimaryBuyer returns the buyer slot, if occupied.
func PrimaryBuyer(d *model.ContractDraft) (model.ContractPerson, bool) {
	return findByRole(d, model.RolePrimaryBuyer)
}

// PrimaryBeneficiary returns the beneficiary slot, if occupied.
func PrimaryBeneficiary(d *model.ContractDraft) (model.ContractPerson, bool) {
	return findByRole(d, model.RolePrimaryBeneficiary)
}

func CoBuyers(d *model.ContractDraft) []model.ContractPerson {
	return listByRole(d, model.RoleCoBuyer)
}

func AdditionalBeneficiaries(d *model.ContractDraft) []model.ContractPerson {
	return listByRole(d, model.RoleAdditionalBeneficiary)
}

// Unclassified lists people holding no classifying role.
func Unclassified(d *model.ContractDraft) []model.ContractPerson {
	out := []model.ContractPerson{}
	for i := range d.People {
		roles := d.People[i].Roles
		if len(roles) == 0 || (len(roles) == 1 && roles.Has(model.RolePerson)) {
			out = append(out, d.People[i].Clone())
		}
	}
	return out
}

func HasRole(p model.ContractPerson, role model.Role) bool {
	return p.Roles.Has(role)
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// SetPrimaryBuyer fills or updates the buyer slot. An existing buyer keeps
// its identity; only the contact data is replaced.
func (h *Handler) SetPrimaryBuyer(d *model.ContractDraft, p model.ContractPerson) bool {
	return h.setSingular(d, model.RolePrimaryBuyer, p)
}

func (h *Handler) SetPrimaryBeneficiary(d *model.ContractDraft, p model.ContractPerson) bool {
	return h.setSingular(d, model.RolePrimaryBeneficiary, p)
}

// ClearPrimaryBuyer empties the buyer slot, removing the person row.
func (h *Handler) ClearPrimaryBuyer(d *model.ContractDraft) bool {
	return h.clearSingular(d, model.RolePrimaryBuyer)
}

func (h *Handler) ClearPrimaryBeneficiary(d *model.ContractDraft) bool {
	return h.clearSingular(d, model.RolePrimaryBeneficiary)
}

// Add appends a person under the given plural role (or unclassified when
// role is RolePerson) and returns the client-side id.
func (h *Handler) Add(d *model.ContractDraft, role model.Role, p model.ContractPerson) (string, bool) {
	if !d.Editable() {
		return "", false
	}
	if role == model.RolePrimaryBuyer || role == model.RolePrimaryBeneficiary {
		return "", false
	}
	now := time.Now().UTC()
	p.ID = model.TempID()
	p.Roles = model.NewRoleSet(role)
	p.CreatedAt = now
	p.UpdatedAt = now
	d.People = append(d.People, p)
	touch(d)
	return p.ID, true
}

// Remove deletes a person row by id. Structural slot holders must be
// cleared through the slot operations instead.
func (h *Handler) Remove(d *model.ContractDraft, id string) bool {
	if !d.Editable() {
		return false
	}
	for i := range d.People {
		if d.People[i].ID != id {
			continue
		}
		if d.People[i].Roles.IsStructural() {
			return false
		}
		d.People = append(d.People[:i], d.People[i+1:]...)
		touch(d)
		return true
	}
	return false
}

// Update replaces the contact data of a person, preserving id, roles and
// creation time.
func (h *Handler) Update(d *model.ContractDraft, id string, p model.ContractPerson) bool {
	if !d.Editable() {
		return false
	}
	for i := range d.People {
		if d.People[i].ID != id {
			continue
		}
		copyContact(&d.People[i], p)
		d.People[i].UpdatedAt = time.Now().UTC()
		touch(d)
		return true
	}
	return false
}

// ChangeRole moves a person to a different plural role. Holders of a
// structural role cannot be reassigned, and nobody can be promoted into a
// structural role this way.
func (h *Handler) ChangeRole(d *model.ContractDraft, id string, role model.Role) bool {
	if !d.Editable() {
		return false
	}
	if role == model.RolePrimaryBuyer || role == model.RolePrimaryBeneficiary {
		return false
	}
	for i := range d.People {
		if d.People[i].ID != id {
			continue
		}
		if d.People[i].Roles.IsStructural() {
			return false
		}
		d.People[i].Roles = model.NewRoleSet(role)
		d.People[i].UpdatedAt = time.Now().UTC()
		touch(d)
		return true
	}
	return false
}

// CopyBuyerToBeneficiary duplicates the buyer's contact data into the
// beneficiary slot. The beneficiary keeps its own identity and id; the slot
// is created when empty.
func (h *Handler) CopyBuyerToBeneficiary(d *model.ContractDraft) bool {
	if !d.Editable() {
		return false
	}
	buyer, ok := PrimaryBuyer(d)
	if !ok {
		return false
	}
	return h.setSingular(d, model.RolePrimaryBeneficiary, buyer)
}

func (h *Handler) setSingular(d *model.ContractDraft, role model.Role, p model.ContractPerson) bool {
	if !d.Editable() {
		return false
	}
	now := time.Now().UTC()
	for i := range d.People {
		if !d.People[i].Roles.Has(role) {
			continue
		}
		copyContact(&d.People[i], p)
		d.People[i].UpdatedAt = now
		touch(d)
		return true
	}
	fresh := model.ContractPerson{
		ID:        model.TempID(),
		Roles:     model.NewRoleSet(role),
		CreatedAt: now,
		UpdatedAt: now,
	}
	copyContact(&fresh, p)
	d.People = append(d.People, fresh)
	touch(d)
	return true
}

func (h *Handler) clearSingular(d *model.ContractDraft, role model.Role) bool {
	if !d.Editable() {
		return false
	}
	for i := range d.People {
		if d.People[i].Roles.Has(role) {
			d.People = append(d.People[:i], d.People[i+1:]...)
			touch(d)
			return true
		}
	}
	return false
}

func copyContact(dst *model.ContractPerson, src model.ContractPerson) {
	clone := src.Clone()
	dst.Name = clone.Name
	dst.Phones = clone.Phones
	dst.Addresses = clone.Addresses
	dst.Emails = clone.Emails
}

func findByRole(d *model.ContractDraft, role model.Role) (model.ContractPerson, bool) {
	for i := range d.People {
		if d.People[i].Roles.Has(role) {
			return d.People[i].Clone(), true
		}
	}
	return model.ContractPerson{}, false
}

func listByRole(d *model.ContractDraft, role model.Role) []model.ContractPerson {
	out := []model.ContractPerson{}
	for i := range d.People {
		if d.People[i].Roles.Has(role) {
			out = append(out, d.People[i].Clone())
		}
	}
	return out
}

func touch(d *model.ContractDraft) {
	d.Meta.UpdatedAt = time.Now().UTC()
}
