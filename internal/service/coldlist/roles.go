// internal/service/coldlist/roles.go
package coldlist

import (
	"coldlist-service/internal/domain/coldlist"
	"coldlist-service/internal/domain/vendor"
)

type RoleKind int

const (
	RoleNone RoleKind = iota
	RoleVendor
	RoleDelegate
	RoleOwner
)

func (k RoleKind) String() string {
	switch k {
	case RoleOwner:
		return "owner"
	case RoleDelegate:
		return "delegate"
	case RoleVendor:
		return "vendor"
	default:
		return "none"
	}
}

// Role is what a user may do on one cold list. VendorIDs is set for RoleVendor
// and lists the selected vendors linked to the user.
type Role struct {
	Kind      RoleKind
	VendorIDs []int64
}

// CanSeeAll reports whether the role sees every lead of the list.
func (r Role) CanSeeAll() bool {
	return r.Kind == RoleOwner || r.Kind == RoleDelegate
}

// CanTouch reports whether the role may read or mutate the given lead.
func (r Role) CanTouch(c *coldlist.Client) bool {
	if r.CanSeeAll() {
		return true
	}
	if r.Kind != RoleVendor || c.AssignedVendorID == nil {
		return false
	}
	return r.ownsVendor(*c.AssignedVendorID)
}

func (r Role) ownsVendor(id int64) bool {
	for _, v := range r.VendorIDs {
		if v == id {
			return true
		}
	}
	return false
}

// ResolveRole picks the strongest role userID holds on the list. linked are the
// vendors whose login is userID.
func ResolveRole(l *coldlist.ColdList, userID int64, linked []vendor.Vendor) Role {
	if l.OwnerID == userID {
		return Role{Kind: RoleOwner}
	}
	if l.EffectiveAssignee() == userID {
		return Role{Kind: RoleDelegate}
	}

	var ids []int64
	for i := range linked {
		if linked[i].LinkedTo(userID) && l.SelectsVendor(linked[i].ID) {
			ids = append(ids, linked[i].ID)
		}
	}
	if len(ids) > 0 {
		return Role{Kind: RoleVendor, VendorIDs: ids}
	}

	return Role{Kind: RoleNone}
}
