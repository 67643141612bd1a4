package repository

import (
	"context"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Find(ctx context.Context, guildID, roomID string) (*domain.Room, error) {
	args := m.Called(ctx, guildID, roomID)
	if room, ok := args.Get(0).(*domain.Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomRepository) FindByOwner(ctx context.Context, guildID, ownerID string) (*domain.Room, error) {
	args := m.Called(ctx, guildID, ownerID)
	if room, ok := args.Get(0).(*domain.Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomRepository) Save(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepository) Delete(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MockRoomRepository) List(ctx context.Context, guildID string) ([]*domain.Room, error) {
	args := m.Called(ctx, guildID)
	if rooms, ok := args.Get(0).([]*domain.Room); ok {
		return rooms, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSetupRepository struct {
	mock.Mock
}

func (m *MockSetupRepository) Get(ctx context.Context, guildID string) (*domain.GuildSetup, error) {
	args := m.Called(ctx, guildID)
	if setup, ok := args.Get(0).(*domain.GuildSetup); ok {
		return setup, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSetupRepository) Save(ctx context.Context, setup *domain.GuildSetup) error {
	args := m.Called(ctx, setup)
	return args.Error(0)
}

func (m *MockSetupRepository) Delete(ctx context.Context, guildID string) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}
