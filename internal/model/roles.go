package model

// Role classifies a person on a contract. A person may hold several roles at
// once, except that the two primary roles are each held by at most one person
// per contract at commit time.
type Role string

const (
	RolePerson                Role = "PERSON"
	RolePrimaryBuyer          Role = "PRIMARY_BUYER"
	RoleCoBuyer               Role = "CO_BUYER"
	RolePrimaryBeneficiary    Role = "PRIMARY_BENEFICIARY"
	RoleAdditionalBeneficiary Role = "ADDITIONAL_BENEFICIARY"
)

// RoleSet is an unordered tag set. The zero value is usable.
type RoleSet []Role

func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.Add(r)
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	for _, v := range s {
		if v == r {
			return true
		}
	}
	return false
}

// Add returns a set containing r. The receiver is not modified.
func (s RoleSet) Add(r Role) RoleSet {
	if s.Has(r) {
		return s
	}
	out := make(RoleSet, 0, len(s)+1)
	out = append(out, s...)
	out = append(out, r)
	return out
}

// Remove returns a set without r. The receiver is not modified.
func (s RoleSet) Remove(r Role) RoleSet {
	if !s.Has(r) {
		return s
	}
	out := make(RoleSet, 0, len(s))
	for _, v := range s {
		if v != r {
			out = append(out, v)
		}
	}
	return out
}

// IsStructural reports whether the set holds a role that pins the person to a
// fixed slot on the contract (primary buyer or primary beneficiary).
func (s RoleSet) IsStructural() bool {
	return s.Has(RolePrimaryBuyer) || s.Has(RolePrimaryBeneficiary)
}

func (s RoleSet) Clone() RoleSet {
	if s == nil {
		return nil
	}
	out := make(RoleSet, len(s))
	copy(out, s)
	return out
}
