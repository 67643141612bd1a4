package repository

import (
	"context"
	"errors"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrOwnerHasRoom  = errors.New("owner already has a room in this guild")
	ErrSetupNotFound = errors.New("setup not found")
)

// RoomRepository stores room ownership records. FindByOwner never returns
// more than one room per (guild, owner); Save rejects a write that would break
// that with ErrOwnerHasRoom. Writes are last-writer-wins.
type RoomRepository interface {
	Find(ctx context.Context, guildID, roomID string) (*domain.Room, error)
	FindByOwner(ctx context.Context, guildID, ownerID string) (*domain.Room, error)
	Save(ctx context.Context, room *domain.Room) error
	Delete(ctx context.Context, roomID string) error
	// List returns the rooms of a guild, or of every guild when guildID is empty.
	List(ctx context.Context, guildID string) ([]*domain.Room, error)
}

type SetupRepository interface {
	Get(ctx context.Context, guildID string) (*domain.GuildSetup, error)
	Save(ctx context.Context, setup *domain.GuildSetup) error
	Delete(ctx context.Context, guildID string) error
}
