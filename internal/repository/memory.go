package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
)

type ownerKey struct {
	guildID string
	ownerID string
}

type InMemoryRoomRepository struct {
	mu     sync.RWMutex
	rooms  map[string]*domain.Room
	owners map[ownerKey]string
}

func NewInMemoryRoomRepository() *InMemoryRoomRepository {
	return &InMemoryRoomRepository{
		rooms:  make(map[string]*domain.Room),
		owners: make(map[ownerKey]string),
	}
}

func (r *InMemoryRoomRepository) Find(ctx context.Context, guildID, roomID string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok || room.GuildID != guildID {
		return nil, ErrRoomNotFound
	}

	return room.Clone(), nil
}

func (r *InMemoryRoomRepository) FindByOwner(ctx context.Context, guildID, ownerID string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.owners[ownerKey{guildID, ownerID}]
	if !ok {
		return nil, ErrRoomNotFound
	}

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return room.Clone(), nil
}

func (r *InMemoryRoomRepository) Save(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if room == nil {
		return errors.New("room is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := ownerKey{room.GuildID, room.OwnerID}
	if other, ok := r.owners[key]; ok && other != room.ID {
		return ErrOwnerHasRoom
	}

	if prev, ok := r.rooms[room.ID]; ok {
		delete(r.owners, ownerKey{prev.GuildID, prev.OwnerID})
	}

	stored := room.Clone()
	stored.Policy.Normalize()
	r.rooms[room.ID] = stored
	r.owners[key] = room.ID
	return nil
}

func (r *InMemoryRoomRepository) Delete(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}

	delete(r.owners, ownerKey{room.GuildID, room.OwnerID})
	delete(r.rooms, roomID)
	return nil
}

func (r *InMemoryRoomRepository) List(ctx context.Context, guildID string) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		if guildID != "" && room.GuildID != guildID {
			continue
		}
		result = append(result, room.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type InMemorySetupRepository struct {
	mu     sync.RWMutex
	setups map[string]*domain.GuildSetup
}

func NewInMemorySetupRepository() *InMemorySetupRepository {
	return &InMemorySetupRepository{
		setups: make(map[string]*domain.GuildSetup),
	}
}

func (r *InMemorySetupRepository) Get(ctx context.Context, guildID string) (*domain.GuildSetup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	setup, ok := r.setups[guildID]
	if !ok {
		return nil, ErrSetupNotFound
	}

	return setup.Clone(), nil
}

func (r *InMemorySetupRepository) Save(ctx context.Context, setup *domain.GuildSetup) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if setup == nil {
		return errors.New("setup is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.setups[setup.GuildID] = setup.Clone()
	return nil
}

func (r *InMemorySetupRepository) Delete(ctx context.Context, guildID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.setups[guildID]; !ok {
		return ErrSetupNotFound
	}

	delete(r.setups, guildID)
	return nil
}
