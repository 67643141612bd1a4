package repository

import (
	"testing"
	"time"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/repository/model"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestRoomModelConversion(t *testing.T) {
	room := domain.NewRoom("100", "1", "10")
	room.Policy = domain.AccessPolicy{
		Locked:  true,
		Trusted: []string{"30", "20", "40"},
		Blocked: []string{"40"},
	}

	m := toModelRoom(room)
	assert.Equal(t, pq.StringArray{"20", "30"}, m.Trusted)
	assert.Equal(t, pq.StringArray{"40"}, m.Blocked)
	assert.True(t, m.Locked)

	back := toDomainRoom(m)
	assert.Equal(t, room.ID, back.ID)
	assert.Equal(t, room.OwnerID, back.OwnerID)
	assert.Equal(t, []string{"20", "30"}, back.Policy.Trusted)
	assert.Equal(t, []string{"40"}, back.Policy.Blocked)
}

func TestRoomModelConversion_EmptySetsAreNotNull(t *testing.T) {
	m := toModelRoom(domain.NewRoom("100", "1", "10"))
	assert.NotNil(t, m.Trusted)
	assert.NotNil(t, m.Blocked)
}

func TestSetupModelConversion(t *testing.T) {
	now := time.Now().UTC()
	m := &model.GuildSetup{
		GuildID:            "1",
		CategoryID:         "2",
		CreatorChannelID:   "3",
		InterfaceChannelID: "4",
		InterfaceMessageID: "5",
		Variant:            "bogus",
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	setup := toDomainSetup(m)
	assert.Equal(t, domain.VariantStandard, setup.Variant)
	assert.Equal(t, "3", setup.CreatorChannelID)

	setup.Variant = domain.VariantOriginal
	assert.Equal(t, "original", toModelSetup(setup).Variant)
}
