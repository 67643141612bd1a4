// Package policy turns a room's access policy into channel permission
// overwrites. Everything here is pure.
package policy

import (
	"slices"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
)

const (
	OwnerAllow = domain.PermissionViewChannel |
		domain.PermissionConnect |
		domain.PermissionSpeak |
		domain.PermissionManageChannel |
		domain.PermissionMoveMembers
	TrustedAllow = domain.PermissionConnect | domain.PermissionSpeak
	BlockedDeny  = domain.PermissionConnect | domain.PermissionSpeak
	LockedDeny   = domain.PermissionConnect

	// SelfAllow is what the bot grants itself on every room it creates.
	SelfAllow = domain.PermissionViewChannel |
		domain.PermissionConnect |
		domain.PermissionManageChannel |
		domain.PermissionMoveMembers
)

// Derive returns the overwrite set for a room: owner first, then everyone,
// then trusted and blocked subjects in id order. Each subject appears once.
// The owner entry wins over any set membership, and a blocked entry wins over
// a trusted one.
func Derive(p domain.AccessPolicy, ownerID, everyoneID string) []domain.Overwrite {
	out := make([]domain.Overwrite, 0, 2+len(p.Trusted)+len(p.Blocked))
	seen := make(map[string]struct{}, cap(out))

	out = append(out, domain.Overwrite{
		SubjectID: ownerID,
		Kind:      domain.SubjectMember,
		Allow:     OwnerAllow,
	})
	seen[ownerID] = struct{}{}

	everyone := domain.Overwrite{SubjectID: everyoneID, Kind: domain.SubjectRole}
	if p.Locked {
		everyone.Deny = LockedDeny
	}
	out = append(out, everyone)
	seen[everyoneID] = struct{}{}

	blocked := sorted(p.Blocked)
	for _, id := range sorted(p.Trusted) {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, ok := slices.BinarySearch(blocked, id); ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, domain.Overwrite{
			SubjectID: id,
			Kind:      domain.SubjectMember,
			Allow:     TrustedAllow,
		})
	}

	for _, id := range blocked {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, domain.Overwrite{
			SubjectID: id,
			Kind:      domain.SubjectMember,
			Deny:      BlockedDeny,
		})
	}

	return out
}

// Changes is the minimal set of edits that brings a channel to a derived
// overwrite set.
type Changes struct {
	Set    []domain.Overwrite
	Remove []string
}

func (c Changes) Empty() bool {
	return len(c.Set) == 0 && len(c.Remove) == 0
}

// Plan compares the live overwrites of a channel with the desired set.
// Entries already matching are skipped, so applying the same plan twice is a
// no-op. Member entries absent from desired are removed unless listed in keep;
// role entries other than those in desired are left alone.
func Plan(current, desired []domain.Overwrite, keep ...string) Changes {
	live := make(map[string]domain.Overwrite, len(current))
	for _, ow := range current {
		live[ow.SubjectID] = ow
	}

	var c Changes
	wanted := make(map[string]struct{}, len(desired))
	for _, ow := range desired {
		wanted[ow.SubjectID] = struct{}{}
		if cur, ok := live[ow.SubjectID]; ok && cur.Allow == ow.Allow && cur.Deny == ow.Deny && cur.Kind == ow.Kind {
			continue
		}
		c.Set = append(c.Set, ow)
	}

	for _, ow := range current {
		if ow.Kind != domain.SubjectMember {
			continue
		}
		if _, ok := wanted[ow.SubjectID]; ok {
			continue
		}
		if slices.Contains(keep, ow.SubjectID) {
			continue
		}
		c.Remove = append(c.Remove, ow.SubjectID)
	}
	slices.Sort(c.Remove)

	return c
}

// Merge joins two plans towards the same desired set. Entries set by both
// plans are written once; removals are the union of both.
func (c Changes) Merge(o Changes) Changes {
	out := Changes{Set: slices.Clone(c.Set)}
	seen := make(map[string]struct{}, len(c.Set))
	for _, ow := range c.Set {
		seen[ow.SubjectID] = struct{}{}
	}
	for _, ow := range o.Set {
		if _, ok := seen[ow.SubjectID]; ok {
			continue
		}
		seen[ow.SubjectID] = struct{}{}
		out.Set = append(out.Set, ow)
	}

	out.Remove = append(slices.Clone(c.Remove), o.Remove...)
	slices.Sort(out.Remove)
	out.Remove = slices.Compact(out.Remove)
	return out
}

func sorted(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
