package domain

import (
	"time"
)

// Room is the ownership record of a live temporary voice channel.
// ID is the platform channel id; there is at most one Room per ID and at most
// one Room per (GuildID, OwnerID).
type Room struct {
	ID        string
	GuildID   string
	OwnerID   string
	Policy    AccessPolicy
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom constructs an unlocked room owned by ownerID.
func NewRoom(id, guildID, ownerID string) *Room {
	now := time.Now().UTC()
	return &Room{
		ID:        id,
		GuildID:   guildID,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers never share policy slices with a store.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	c.Policy = r.Policy.Clone()
	return &c
}

// TransferTo makes userID the owner. The new owner is removed from the
// trusted and blocked sets since the owner entry supersedes both.
func (r *Room) TransferTo(userID string) {
	r.OwnerID = userID
	r.Policy.Forget(userID)
	r.Touch()
}

func (r *Room) Touch() {
	r.UpdatedAt = time.Now().UTC()
}
