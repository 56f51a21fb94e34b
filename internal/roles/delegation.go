// Package roles reads roles and their permission sets and decides whether a
// holder of one role may grant another.
package roles

import "github.com/google/uuid"

// HasDelegationRights reports whether every id in target is among held.
// An empty target is always delegable; any missing id fails the whole check.
func HasDelegationRights(held, target []uuid.UUID) bool {
	if len(target) == 0 {
		return true
	}
	set := make(map[uuid.UUID]struct{}, len(held))
	for _, id := range held {
		set[id] = struct{}{}
	}
	for _, id := range target {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
