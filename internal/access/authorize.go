package access

import "github.com/yukikurage/assessment-api/internal/models"

// MatchMode decides how a required role set is compared with the actor's roles.
type MatchMode int

const (
	MatchAny MatchMode = iota
	MatchAll
)

// Authorize checks that actor is a member of orgID holding the required roles.
// Super admins always pass; an empty required set only demands membership.
func Authorize(actor Actor, orgID uint64, required []models.OrganizationRole, match MatchMode) error {
	if actor.IsSuperAdmin() {
		return nil
	}

	held, ok := actor.RolesIn(orgID)
	if !ok {
		return ErrNotOrganizationMember
	}
	if len(required) == 0 {
		return nil
	}

	has := make(map[models.OrganizationRole]bool, len(held))
	for _, r := range held {
		has[r] = true
	}

	switch match {
	case MatchAll:
		for _, r := range required {
			if !has[r] {
				return ErrMissingOrganizationRole
			}
		}
		return nil
	default:
		for _, r := range required {
			if has[r] {
				return nil
			}
		}
		return ErrMissingOrganizationRole
	}
}

// IsManager reports whether the actor may manage sessions of orgID.
func IsManager(actor Actor, orgID uint64) bool {
	return Authorize(actor, orgID, models.ManagerRoles, MatchAny) == nil
}
