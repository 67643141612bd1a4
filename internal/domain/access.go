package domain

import (
	"slices"
)

// AccessPolicy decides who may connect to a room. Trusted and Blocked are
// sorted, duplicate free and disjoint; use the mutators to keep them so.
type AccessPolicy struct {
	Locked  bool
	Trusted []string
	Blocked []string
}

func (p AccessPolicy) IsTrusted(userID string) bool {
	_, ok := slices.BinarySearch(p.Trusted, userID)
	return ok
}

func (p AccessPolicy) IsBlocked(userID string) bool {
	_, ok := slices.BinarySearch(p.Blocked, userID)
	return ok
}

// Trust adds userID to the trusted set and drops it from the blocked set.
func (p *AccessPolicy) Trust(userID string) {
	p.Blocked = remove(p.Blocked, userID)
	p.Trusted = insert(p.Trusted, userID)
}

// Untrust reports whether userID was trusted.
func (p *AccessPolicy) Untrust(userID string) bool {
	if !p.IsTrusted(userID) {
		return false
	}
	p.Trusted = remove(p.Trusted, userID)
	return true
}

// Block adds userID to the blocked set and drops it from the trusted set.
func (p *AccessPolicy) Block(userID string) {
	p.Trusted = remove(p.Trusted, userID)
	p.Blocked = insert(p.Blocked, userID)
}

// Unblock reports whether userID was blocked.
func (p *AccessPolicy) Unblock(userID string) bool {
	if !p.IsBlocked(userID) {
		return false
	}
	p.Blocked = remove(p.Blocked, userID)
	return true
}

// Forget removes userID from both sets.
func (p *AccessPolicy) Forget(userID string) {
	p.Trusted = remove(p.Trusted, userID)
	p.Blocked = remove(p.Blocked, userID)
}

func (p AccessPolicy) Clone() AccessPolicy {
	return AccessPolicy{
		Locked:  p.Locked,
		Trusted: slices.Clone(p.Trusted),
		Blocked: slices.Clone(p.Blocked),
	}
}

// Normalize sorts and deduplicates both sets. A user present in both is kept
// only in Blocked.
func (p *AccessPolicy) Normalize() {
	p.Trusted = compact(p.Trusted)
	p.Blocked = compact(p.Blocked)
	for _, id := range p.Blocked {
		p.Trusted = remove(p.Trusted, id)
	}
}

func insert(set []string, id string) []string {
	i, ok := slices.BinarySearch(set, id)
	if ok {
		return set
	}
	return slices.Insert(set, i, id)
}

func remove(set []string, id string) []string {
	i, ok := slices.BinarySearch(set, id)
	if !ok {
		return set
	}
	return slices.Delete(set, i, i+1)
}

func compact(set []string) []string {
	out := slices.Clone(set)
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
