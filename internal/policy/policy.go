// Package policy holds the access-control decisions of the service. Every function is pure:
// callers supply the requester and the owning identity of the resource, the policy never loads anything.
package policy

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"dms/internal/model"
)

// Principal is the authenticated identity making a request.
type Principal struct {
	ID   int64
	Role model.Role
}

// NormalizeID returns the canonical string form of an identifier so that numeric and textual
// representations of the same id compare equal ("007", " 7", int64(7) -> "7").
// Values that cannot be represented yield "".
func NormalizeID(v any) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return s
}

// SameID reports whether two identifiers refer to the same resource after normalization.
func SameID(a, b any) bool {
	na := NormalizeID(a)
	return na != "" && na == NormalizeID(b)
}

func IsAdmin(role model.Role) bool {
	return role == model.RoleAdmin
}

// HasPermission gates read, update and delete of a user-owned record: the requester must own it
// or be an admin.
func HasPermission(requester Principal, targetOwnerID any) bool {
	return SameID(requester.ID, targetOwnerID) || IsAdmin(requester.Role)
}

// CanViewDocument reports whether the requester may read doc.
func CanViewDocument(requester Principal, doc model.Document) bool {
	return SameID(requester.ID, doc.Owner) || IsAdmin(requester.Role) || doc.Access == model.AccessPublic
}
