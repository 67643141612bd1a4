package domain

import (
	"strings"
)

// Permission is a set of channel permissions the core reasons about.
// Adapters translate it to platform bits.
type Permission uint64

const (
	PermissionViewChannel Permission = 1 << iota
	PermissionConnect
	PermissionSpeak
	PermissionManageChannel
	PermissionMoveMembers
	PermissionSendMessages
	PermissionReadHistory
	PermissionManageMessages
	PermissionEmbedLinks
)

var permissionNames = []struct {
	p    Permission
	name string
}{
	{PermissionViewChannel, "ViewChannel"},
	{PermissionConnect, "Connect"},
	{PermissionSpeak, "Speak"},
	{PermissionManageChannel, "ManageChannel"},
	{PermissionMoveMembers, "MoveMembers"},
	{PermissionSendMessages, "SendMessages"},
	{PermissionReadHistory, "ReadHistory"},
	{PermissionManageMessages, "ManageMessages"},
	{PermissionEmbedLinks, "EmbedLinks"},
}

func (p Permission) Has(q Permission) bool {
	return p&q == q
}

func (p Permission) String() string {
	if p == 0 {
		return "none"
	}
	names := make([]string, 0, len(permissionNames))
	for _, n := range permissionNames {
		if p.Has(n.p) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

type SubjectKind int

const (
	SubjectRole SubjectKind = iota
	SubjectMember
)

// Overwrite is a per-subject allow/deny entry on a channel.
type Overwrite struct {
	SubjectID string
	Kind      SubjectKind
	Allow     Permission
	Deny      Permission
}
