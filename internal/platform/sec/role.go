// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"
	"strings"
)

// # User Roles

// Role is the authorization level granted to an identity. The set is closed:
// only the constants below are valid.
type Role string

const (
	// Unrestricted access, including contact deletion
	RoleAdmin Role = "admin"

	// Can edit contacts on behalf of users
	RoleModerator Role = "moderator"

	// Default role for registered users
	RoleUser Role = "user"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleModerator, RoleUser}

// ParseRole converts a string into a [Role], rejecting unknown values.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("sec: unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// String implements [fmt.Stringer].
func (r Role) String() string { return string(r) }

// # Allow-Lists

// RoleSet is an immutable allow-list of roles attached to a route.
type RoleSet struct {
	members map[Role]struct{}
}

// NewRoleSet builds an allow-list. It panics on unknown roles because
// allow-lists are constructed at startup from constants.
func NewRoleSet(roles ...Role) RoleSet {
	members := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		if !role.Valid() {
			panic(fmt.Sprintf("sec: invalid role %q in allow-list", role))
		}
		members[role] = struct{}{}
	}
	return RoleSet{members: members}
}

// Contains reports whether role is allowed.
func (s RoleSet) Contains(role Role) bool {
	_, ok := s.members[role]
	return ok
}

// Roles returns the allowed roles in declaration order of [Roles].
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s.members))
	for _, role := range Roles {
		if s.Contains(role) {
			out = append(out, role)
		}
	}
	return out
}
