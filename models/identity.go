package models

import (
	"sort"
	"strings"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleMod   Role = "MOD"
)

// RoleSet is the capability set attached to an authenticated identity.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from raw role strings; blanks are dropped and
// names are upper-cased.
func NewRoleSet(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		set[Role(r)] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// HasAny reports whether the set shares at least one role with required.
// An empty required list is always satisfied.
func (s RoleSet) HasAny(required ...Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if s.Has(r) {
			return true
		}
	}
	return false
}

func (s RoleSet) List() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

// Identity is what the identity provider yields for a verified credential.
type Identity struct {
	UserID    string
	Username  string
	AvatarURL string
	Roles     RoleSet
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Roles.Has(RoleAdmin)
}
