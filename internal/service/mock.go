package service

import (
	"context"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockRoomInteractor struct {
	mock.Mock
}

func viewOf(args mock.Arguments) (*RoomView, error) {
	if view, ok := args.Get(0).(*RoomView); ok {
		return view, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomInteractor) Current(ctx context.Context, actor domain.Actor) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor))
}

func (m *MockRoomInteractor) Rename(ctx context.Context, actor domain.Actor, name string) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor, name))
}

func (m *MockRoomInteractor) SetLimit(ctx context.Context, actor domain.Actor, limit int) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor, limit))
}

func (m *MockRoomInteractor) ToggleLock(ctx context.Context, actor domain.Actor) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor))
}

func (m *MockRoomInteractor) Trust(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor, target))
}

func (m *MockRoomInteractor) Untrust(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor, target))
}

func (m *MockRoomInteractor) Invite(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor, target))
}

func (m *MockRoomInteractor) Kick(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor, target))
}

func (m *MockRoomInteractor) Block(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor, target))
}

func (m *MockRoomInteractor) Unblock(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor, target))
}

func (m *MockRoomInteractor) Transfer(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor, target))
}

func (m *MockRoomInteractor) Claim(ctx context.Context, actor domain.Actor) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor))
}

func (m *MockRoomInteractor) Delete(ctx context.Context, actor domain.Actor) (*RoomView, error) {
	return viewOf(m.Called(ctx, actor))
}

func (m *MockRoomInteractor) List(ctx context.Context, guildID string) ([]*domain.Room, error) {
	args := m.Called(ctx, guildID)
	if rooms, ok := args.Get(0).([]*domain.Room); ok {
		return rooms, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSetupInteractor struct {
	mock.Mock
}

func outcomeOf(args mock.Arguments) (*SetupOutcome, error) {
	if out, ok := args.Get(0).(*SetupOutcome); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSetupInteractor) Validate(ctx context.Context, guildID string) (*SetupStatus, error) {
	args := m.Called(ctx, guildID)
	if status, ok := args.Get(0).(*SetupStatus); ok {
		return status, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSetupInteractor) Setup(ctx context.Context, actor domain.Actor, variant domain.InterfaceVariant) (*SetupOutcome, error) {
	return outcomeOf(m.Called(ctx, actor, variant))
}

func (m *MockSetupInteractor) NewCreator(ctx context.Context, actor domain.Actor) (*SetupOutcome, error) {
	return outcomeOf(m.Called(ctx, actor))
}

func (m *MockSetupInteractor) NewInterface(ctx context.Context, actor domain.Actor) (*SetupOutcome, error) {
	return outcomeOf(m.Called(ctx, actor))
}

type MockSweepInteractor struct {
	mock.Mock
}

func (m *MockSweepInteractor) Sweep(ctx context.Context, guildID string) (SweepReport, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(SweepReport), args.Error(1)
}
