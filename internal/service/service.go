package service

import (
	"context"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/platform"
)

// RoomView is the state of a room after an operation, for rendering.
type RoomView struct {
	Room    *domain.Room
	Channel *platform.Channel
	// Notified is set by Invite when the direct message went through.
	Notified bool
	// DisconnectFailed is set by Block when the target is blocked but could
	// not be removed from the room.
	DisconnectFailed bool
}

type RoomInteractor interface {
	Current(ctx context.Context, actor domain.Actor) (*RoomView, error)
	Rename(ctx context.Context, actor domain.Actor, name string) (*RoomView, error)
	SetLimit(ctx context.Context, actor domain.Actor, limit int) (*RoomView, error)
	ToggleLock(ctx context.Context, actor domain.Actor) (*RoomView, error)
	Trust(ctx context.Context, actor domain.Actor, target string) (*RoomView, error)
	Untrust(ctx context.Context, actor domain.Actor, target string) (*RoomView, error)
	Invite(ctx context.Context, actor domain.Actor, target string) (*RoomView, error)
	Kick(ctx context.Context, actor domain.Actor, target string) (*RoomView, error)
	Block(ctx context.Context, actor domain.Actor, target string) (*RoomView, error)
	Unblock(ctx context.Context, actor domain.Actor, target string) (*RoomView, error)
	Claim(ctx context.Context, actor domain.Actor) (*RoomView, error)
	Transfer(ctx context.Context, actor domain.Actor, target string) (*RoomView, error)
	Delete(ctx context.Context, actor domain.Actor) (*RoomView, error)
	List(ctx context.Context, guildID string) ([]*domain.Room, error)
}

type SetupInteractor interface {
	Validate(ctx context.Context, guildID string) (*SetupStatus, error)
	Setup(ctx context.Context, actor domain.Actor, variant domain.InterfaceVariant) (*SetupOutcome, error)
	NewCreator(ctx context.Context, actor domain.Actor) (*SetupOutcome, error)
	NewInterface(ctx context.Context, actor domain.Actor) (*SetupOutcome, error)
}

type SweepInteractor interface {
	Sweep(ctx context.Context, guildID string) (SweepReport, error)
}
