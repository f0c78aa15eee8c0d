package access

import (
	"sort"
	"strings"

	"github.com/yukikurage/assessment-api/internal/models"
)

// Actor is the authenticated caller as seen by every service call.
type Actor struct {
	UserID      uint64
	GlobalRoles []models.GlobalRole
	Memberships map[uint64][]models.OrganizationRole
}

// IsSuperAdmin reports whether the actor bypasses organization checks.
func (a Actor) IsSuperAdmin() bool {
	for _, r := range a.GlobalRoles {
		if r == models.GlobalRoleSuperAdmin {
			return true
		}
	}
	return false
}

// RolesIn returns the actor's roles in orgID and whether the actor is a member at all.
func (a Actor) RolesIn(orgID uint64) ([]models.OrganizationRole, bool) {
	roles, ok := a.Memberships[orgID]
	return roles, ok
}

// OrganizationIDs lists the organizations the actor belongs to in ascending order.
func (a Actor) OrganizationIDs() []uint64 {
	ids := make([]uint64, 0, len(a.Memberships))
	for id := range a.Memberships {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ParseRoles accepts a membership's role claim either as a single role or as a role set.
func ParseRoles(raw interface{}) []models.OrganizationRole {
	var names []string
	switch v := raw.(type) {
	case string:
		names = []string{v}
	case []string:
		names = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
	case models.OrganizationRole:
		names = []string{string(v)}
	case []models.OrganizationRole:
		return v
	}

	roles := make([]models.OrganizationRole, 0, len(names))
	for _, n := range names {
		role := models.OrganizationRole(strings.ToUpper(strings.TrimSpace(n)))
		if role.IsValid() {
			roles = append(roles, role)
		}
	}
	return roles
}
