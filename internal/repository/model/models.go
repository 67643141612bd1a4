package model

import (
	"time"

	"github.com/lib/pq"
)

type Room struct {
	ID        string         `gorm:"size:32;primaryKey"`
	GuildID   string         `gorm:"size:32;not null;uniqueIndex:idx_rooms_guild_owner"`
	OwnerID   string         `gorm:"size:32;not null;uniqueIndex:idx_rooms_guild_owner"`
	Locked    bool           `gorm:"not null;default:false"`
	Trusted   pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Blocked   pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

type GuildSetup struct {
	GuildID            string    `gorm:"size:32;primaryKey"`
	CategoryID         string    `gorm:"size:32;not null"`
	CreatorChannelID   string    `gorm:"size:32;not null"`
	InterfaceChannelID string    `gorm:"size:32;not null"`
	InterfaceMessageID string    `gorm:"size:32"`
	Variant            string    `gorm:"size:16;not null;default:standard"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}
