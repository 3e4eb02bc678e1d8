package token

import "fmt"

// SecurityBadge is the privilege tier assigned to an identity. Exactly one
// badge is stored per identity; identities without a stored badge hold no
// privileges at all.
type SecurityBadge uint8

const (
	// BadgeAdmin may change configuration, security assignments and settle
	// bridge requests.
	BadgeAdmin SecurityBadge = iota
	// BadgeMinter may mint new supply.
	BadgeMinter
	// BadgeNone is stored explicitly to strip a previously granted badge.
	BadgeNone
)

// BadgeFromValue maps a stored byte back onto a badge.
func BadgeFromValue(v uint8) (SecurityBadge, error) {
	switch SecurityBadge(v) {
	case BadgeAdmin, BadgeMinter, BadgeNone:
		return SecurityBadge(v), nil
	default:
		return BadgeNone, fmt.Errorf("token: unknown badge value %d", v)
	}
}

func (b SecurityBadge) String() string {
	switch b {
	case BadgeAdmin:
		return "admin"
	case BadgeMinter:
		return "minter"
	case BadgeNone:
		return "none"
	default:
		return fmt.Sprintf("badge(%d)", uint8(b))
	}
}

func badgeAllowed(badge SecurityBadge, allowed []SecurityBadge) bool {
	for _, candidate := range allowed {
		if candidate == badge {
			return true
		}
	}
	return false
}
