package domain

// Relation captures how a user relates to an application. The gate decides
// from role plus these two booleans alone; it never touches storage.
type Relation struct {
	Owner        bool
	Counterparty bool
}

// CanTransitionApplication decides whether an actor may move an application
// from one status to another.
//
// Admins may force any transition. Everyone else is checked twice: first the
// role/relation rule, then the state machine. A staff counterparty may only
// withdraw their own application; the owning business account may only accept
// or reject. Any other combination is a permission failure, even when the
// transition itself would be valid.
func CanTransitionApplication(role Role, rel Relation, from, to ApplicationStatus) error {
	if role == RoleAdmin {
		return nil
	}

	switch {
	case role == RoleStaff && rel.Counterparty && to == ApplicationWithdrawn:
	case role.Business() && rel.Owner && (to == ApplicationAccepted || to == ApplicationRejected):
	default:
		return ErrPermissionDenied
	}

	if !from.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	return nil
}

// CanReadApplication reports whether an actor may see an application. Admins
// see everything, owners see applications against their shifts, applicants
// see their own.
func CanReadApplication(role Role, rel Relation) bool {
	if role == RoleAdmin {
		return true
	}
	return rel.Owner || rel.Counterparty
}

// CanManageShift reports whether an actor may mutate a shift. Only the owning
// business account or an admin qualifies.
func CanManageShift(role Role, isOwner bool) bool {
	if role == RoleAdmin {
		return true
	}
	return role.Business() && isOwner
}

// CanPostShift reports whether a role may create shifts at all.
func CanPostShift(role Role) bool {
	return role == RoleAdmin || role.Business()
}

// CanApply reports whether a role may apply to shifts.
func CanApply(role Role) bool {
	return role == RoleStaff
}
