package domain

import (
	"slices"
	"strconv"
)

// RoleID identifies one of the fixed roles.
type RoleID int

const (
	RoleEmployee   RoleID = 1
	RoleSecurity   RoleID = 2
	RoleConfirming RoleID = 3
	RoleAdmin      RoleID = 4
)

var roleNames = map[RoleID]string{
	RoleEmployee:   "employee",
	RoleSecurity:   "security",
	RoleConfirming: "confirming",
	RoleAdmin:      "admin",
}

// Role is static reference data.
type Role struct {
	ID   RoleID `json:"id"`
	Name string `json:"name"`
}

// AllRoles returns the closed role enumeration ordered by id.
func AllRoles() []Role {
	return []Role{
		{ID: RoleEmployee, Name: roleNames[RoleEmployee]},
		{ID: RoleSecurity, Name: roleNames[RoleSecurity]},
		{ID: RoleConfirming, Name: roleNames[RoleConfirming]},
		{ID: RoleAdmin, Name: roleNames[RoleAdmin]},
	}
}

func (r RoleID) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r RoleID) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// RoleSet is the unordered set of roles held by a user.
type RoleSet []RoleID

// Has reports whether the set contains role.
func (s RoleSet) Has(role RoleID) bool {
	return slices.Contains(s, role)
}

// EmployeeOnly reports whether employee is the only role in the set.
// Such actors are scoped to their own requests.
func (s RoleSet) EmployeeOnly() bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r != RoleEmployee {
			return false
		}
	}
	return true
}

// Names returns the role names, sorted by role id.
func (s RoleSet) Names() []string {
	ids := slices.Clone(s)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// RoleAssignment joins a user and a role. The (UserID, RoleID) pair is unique.
type RoleAssignment struct {
	UserID string
	RoleID RoleID
}

// ParseRole resolves a role by name or numeric id.
func ParseRole(s string) (RoleID, bool) {
	for id, name := range roleNames {
		if name == s || strconv.Itoa(int(id)) == s {
			return id, true
		}
	}
	return 0, false
}
